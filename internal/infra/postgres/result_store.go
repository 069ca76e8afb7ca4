package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"pm-quiz-runner/internal/domain"
)

// ResultStore keeps team start times, submissions and feedback in Postgres.
// Scores are written by graders outside this service.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) MarkStarted(ctx context.Context, team string, at time.Time) (time.Time, error) {
	var started time.Time
	err := s.pool.QueryRow(ctx, `
		INSERT INTO teams (name, started_at) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING started_at`, team, at).Scan(&started)
	if err != nil {
		return time.Time{}, fmt.Errorf("mark started: %w", err)
	}
	return started, nil
}

func (s *ResultStore) RecordSubmission(ctx context.Context, sub domain.Submission) error {
	data, err := domain.MarshalAnswers(sub.Answers)
	if err != nil {
		return err
	}
	if _, err := s.MarkStarted(ctx, sub.Team, sub.StartedAt); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE teams SET submitted_at = $2, answers = $3::jsonb
		WHERE name = $1 AND submitted_at IS NULL`, sub.Team, sub.SubmittedAt, string(data))
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySubmitted
	}
	return nil
}

func (s *ResultStore) Submissions(ctx context.Context) ([]domain.Submission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, started_at, submitted_at, score, COALESCE(answers, '{}'::jsonb)
		FROM teams
		WHERE submitted_at IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var (
			sub domain.Submission
			raw []byte
		)
		if err := rows.Scan(&sub.Team, &sub.StartedAt, &sub.SubmittedAt, &sub.Score, &raw); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if answers, err := domain.UnmarshalAnswers(raw); err == nil {
			sub.Answers = answers
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *ResultStore) SaveFeedback(ctx context.Context, fb domain.Feedback) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO feedback (content, created_at) VALUES ($1, $2)`, fb.Content, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}
