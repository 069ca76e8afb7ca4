package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v4/pgxpool"
	"pm-quiz-runner/internal/domain"
)

// CatalogLoader loads a quiz's questions from Postgres, answer key excluded.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, quizID string) (domain.Catalog, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, COALESCE(content_text, ''), COALESCE(content_image, ''), COALESCE(options, ''), points, difficulty
		FROM questions
		WHERE quiz_id = $1
		ORDER BY position, id`, quizID)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	catalog := domain.Catalog{ID: quizID, Questions: []domain.Question{}}
	for rows.Next() {
		var (
			id         int64
			q          domain.Question
			difficulty string
		)
		if err := rows.Scan(&id, &q.ContentText, &q.ContentImage, &q.Options, &q.Points, &difficulty); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan question: %w", err)
		}
		q.ID = domain.QuestionID(strconv.FormatInt(id, 10))
		q.Difficulty = domain.Difficulty(difficulty)
		catalog.Questions = append(catalog.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}
