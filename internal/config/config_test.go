package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pm-quiz-runner/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("QUIZ_STORE", "")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, config.StoreFile, cfg.Store.Driver)
	assert.Equal(t, "default", cfg.Quiz.ID)
	assert.Equal(t, 20*time.Minute, cfg.QuizDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  base_url: https://quiz.example.com
team: Alpha
store:
  driver: sqlite
  path: /tmp/answers.db
quiz:
  duration: 45m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("QUIZ_TEAM", "Bravo")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://quiz.example.com", cfg.API.BaseURL)
	assert.Equal(t, "Bravo", cfg.Team)
	assert.Equal(t, config.StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, 45*time.Minute, cfg.QuizDuration())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unterminated"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := config.Config{}
	cfg.Store.Driver = "floppy"
	cfg.Quiz.Duration = "soon"
	cfg.API.BaseURL = "localhost"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store driver "floppy"`)
	assert.Contains(t, err.Error(), "quiz.duration")
	assert.Contains(t, err.Error(), "api.base_url")
}

func TestValidateRedisNeedsAddr(t *testing.T) {
	cfg := config.Config{}
	cfg.Store.Driver = config.StoreRedis
	cfg.Quiz.Duration = "10m"
	cfg.API.BaseURL = "http://localhost:8080"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.addr")

	cfg.Redis.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, config.TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, config.TTLDuration("nonsense", time.Minute))
	assert.Equal(t, 5*time.Second, config.TTLDuration("5s", time.Minute))
}

func TestAnswerTTL(t *testing.T) {
	cfg := config.Config{}
	cfg.Store.Driver = config.StoreRedis
	cfg.Redis.TTL = "10m"
	assert.Equal(t, 10*time.Minute, cfg.AnswerTTL())

	cfg.Store.TTL = "90s"
	assert.Equal(t, 90*time.Second, cfg.AnswerTTL())

	cfg.Store.TTL = ""
	cfg.Store.Driver = config.StoreSQLite
	assert.Zero(t, cfg.AnswerTTL(), "redis.ttl only applies to the redis driver")
}
