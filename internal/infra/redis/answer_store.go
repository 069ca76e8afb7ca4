package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"pm-quiz-runner/internal/domain"
)

// AnswerStore keeps the AnswerMap under a single Redis string key.
// SET replaces the whole value, so no partial map is ever visible.
type AnswerStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    *log.Logger
}

// NewAnswerStore stores answers at key. A zero ttl keeps the value until Clear.
func NewAnswerStore(client *redis.Client, key string, ttl time.Duration) *AnswerStore {
	return &AnswerStore{
		client: client,
		key:    key,
		ttl:    ttl,
		log:    log.Default(),
	}
}

func (s *AnswerStore) Load(ctx context.Context) domain.AnswerMap {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AnswerMap{}
	}
	if err != nil {
		s.log.Printf("failed to load saved state %s: %v", s.key, err)
		return domain.AnswerMap{}
	}
	answers, err := domain.UnmarshalAnswers(raw)
	if err != nil {
		s.log.Printf("discarding malformed saved state %s: %v", s.key, err)
		_ = s.client.Del(ctx, s.key).Err()
		return domain.AnswerMap{}
	}
	return answers
}

func (s *AnswerStore) Save(ctx context.Context, answers domain.AnswerMap) error {
	data, err := domain.MarshalAnswers(answers)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	return nil
}

func (s *AnswerStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	return nil
}
