package memory

import (
	"context"
	"sync"
	"time"

	"pm-quiz-runner/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore.
type ResultStore struct {
	mu          sync.RWMutex
	started     map[string]time.Time
	submissions map[string]domain.Submission
	order       []string
	feedback    []domain.Feedback
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		started:     make(map[string]time.Time),
		submissions: make(map[string]domain.Submission),
	}
}

func (s *ResultStore) MarkStarted(_ context.Context, team string, at time.Time) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if started, ok := s.started[team]; ok {
		return started, nil
	}
	s.started[team] = at
	return at, nil
}

func (s *ResultStore) RecordSubmission(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[sub.Team]; ok {
		return domain.ErrAlreadySubmitted
	}
	sub.Answers = sub.Answers.Clone()
	s.submissions[sub.Team] = sub
	s.order = append(s.order, sub.Team)
	return nil
}

func (s *ResultStore) Submissions(context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0, len(s.order))
	for _, team := range s.order {
		out = append(out, s.submissions[team])
	}
	return out, nil
}

// SetScore records a grade for a submitted team. Grading happens outside the
// runner, so this exists for seeding leaderboards in tests and demos.
func (s *ResultStore) SetScore(team string, score int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[team]
	if !ok {
		return false
	}
	sub.Score = score
	s.submissions[team] = sub
	return true
}

func (s *ResultStore) SaveFeedback(_ context.Context, fb domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, fb)
	return nil
}

// Feedback returns stored feedback in arrival order. It is an inspection
// helper for tests; no service reads feedback back.
func (s *ResultStore) Feedback() []domain.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Feedback(nil), s.feedback...)
}
