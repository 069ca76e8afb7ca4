package memory

import (
	"context"
	"sync"

	"pm-quiz-runner/internal/domain"
)

// AnswerStore keeps the AnswerMap in process memory. It does not survive a
// restart; use it for tests and throwaway sessions.
type AnswerStore struct {
	mu      sync.Mutex
	answers domain.AnswerMap
	saves   int
}

func NewAnswerStore(initial domain.AnswerMap) *AnswerStore {
	var answers domain.AnswerMap
	if initial != nil {
		answers = initial.Clone()
	}
	return &AnswerStore{answers: answers}
}

func (s *AnswerStore) Load(context.Context) domain.AnswerMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answers == nil {
		return domain.AnswerMap{}
	}
	return s.answers.Clone()
}

func (s *AnswerStore) Save(_ context.Context, answers domain.AnswerMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = answers.Clone()
	s.saves++
	return nil
}

func (s *AnswerStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = nil
	return nil
}

// Stored reports whether a value is currently persisted.
func (s *AnswerStore) Stored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers != nil
}

// Saves counts Save calls.
func (s *AnswerStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
