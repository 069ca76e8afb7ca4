package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"pm-quiz-runner/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// AnswerStore persists the AnswerMap as one row of a local SQLite key/value
// table. Each Save is a single upsert, so readers never see a partial map.
type AnswerStore struct {
	db  *sql.DB
	key string
	log *log.Logger
}

// Open opens (or creates) the database at path and prepares the table.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return db, nil
}

func NewAnswerStore(db *sql.DB, key string) *AnswerStore {
	return &AnswerStore{db: db, key: key, log: log.Default()}
}

func (s *AnswerStore) Load(ctx context.Context) domain.AnswerMap {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AnswerMap{}
	}
	if err != nil {
		s.log.Printf("failed to load saved state %s: %v", s.key, err)
		return domain.AnswerMap{}
	}
	answers, err := domain.UnmarshalAnswers([]byte(raw))
	if err != nil {
		s.log.Printf("discarding malformed saved state %s: %v", s.key, err)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.key)
		return domain.AnswerMap{}
	}
	return answers
}

func (s *AnswerStore) Save(ctx context.Context, answers domain.AnswerMap) error {
	data, err := domain.MarshalAnswers(answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		s.key, string(data))
	if err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	return nil
}

func (s *AnswerStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	return nil
}
