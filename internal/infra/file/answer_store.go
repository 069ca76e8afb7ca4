package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pm-quiz-runner/internal/domain"
)

// AnswerStore persists the AnswerMap as a JSON file. Writes go to a temp file
// in the same directory that is then renamed over the target, so a reader
// sees either the previous map or the new one.
type AnswerStore struct {
	path string
	log  *log.Logger
}

// NewAnswerStore stores answers for key under dir.
func NewAnswerStore(dir, key string) (*AnswerStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create answer dir: %w", err)
	}
	name := strings.NewReplacer(":", "_", "/", "_", string(filepath.Separator), "_").Replace(key) + ".json"
	return &AnswerStore{
		path: filepath.Join(dir, name),
		log:  log.Default(),
	}, nil
}

// Path is the file holding the persisted map.
func (s *AnswerStore) Path() string { return s.path }

func (s *AnswerStore) Load(context.Context) domain.AnswerMap {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.AnswerMap{}
	}
	if err != nil {
		s.log.Printf("failed to load saved state from %s: %v", s.path, err)
		return domain.AnswerMap{}
	}
	answers, err := domain.UnmarshalAnswers(data)
	if err != nil {
		s.log.Printf("discarding malformed saved state in %s: %v", s.path, err)
		_ = os.Remove(s.path)
		return domain.AnswerMap{}
	}
	return answers
}

func (s *AnswerStore) Save(_ context.Context, answers domain.AnswerMap) error {
	data, err := domain.MarshalAnswers(answers)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write answers: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync answers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close answers: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace answers: %w", err)
	}
	return nil
}

func (s *AnswerStore) Clear(context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear answers: %w", err)
	}
	return nil
}
