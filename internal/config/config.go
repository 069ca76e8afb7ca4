package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers for the client's in-progress answers.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Team  string `yaml:"team"`
	Store struct {
		Driver    string `yaml:"driver"`
		Dir       string `yaml:"dir"`
		Path      string `yaml:"path"`
		Namespace string `yaml:"namespace"`
		TTL       string `yaml:"ttl"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		ID          string `yaml:"id"`
		Duration    string `yaml:"duration"`
		CatalogFile string `yaml:"catalog_file"`
		TTL         string `yaml:"ttl"`
	} `yaml:"quiz"`
	Leaderboard struct {
		Interval string `yaml:"interval"`
	} `yaml:"leaderboard"`
	Log struct {
		File string `yaml:"file"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies .env and QUIZ_* environment
// overrides and defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	// Ignore error so the binary still starts when .env is absent.
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config %s not found, using defaults", path)
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.API.BaseURL, "QUIZ_API_URL")
	setFromEnv(&c.Team, "QUIZ_TEAM")
	setFromEnv(&c.Store.Driver, "QUIZ_STORE")
	setFromEnv(&c.Store.Dir, "QUIZ_STORE_DIR")
	setFromEnv(&c.Store.Path, "QUIZ_STORE_PATH")
	setFromEnv(&c.Store.Namespace, "QUIZ_STORE_NAMESPACE")
	setFromEnv(&c.Redis.Addr, "QUIZ_REDIS_ADDR")
	setFromEnv(&c.Redis.Password, "QUIZ_REDIS_PASSWORD")
	c.Redis.DB = envIntOr("QUIZ_REDIS_DB", c.Redis.DB)
	setFromEnv(&c.Postgres.URL, "QUIZ_POSTGRES_URL")
	setFromEnv(&c.Quiz.ID, "QUIZ_ID")
	setFromEnv(&c.Quiz.Duration, "QUIZ_DURATION")
	setFromEnv(&c.Quiz.CatalogFile, "QUIZ_CATALOG_FILE")
	setFromEnv(&c.Leaderboard.Interval, "QUIZ_LEADERBOARD_INTERVAL")
	setFromEnv(&c.Log.File, "QUIZ_LOG_FILE")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:" + c.Server.Port
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreFile
	}
	if c.Store.Dir == "" {
		c.Store.Dir = defaultStoreDir()
	}
	if c.Quiz.ID == "" {
		c.Quiz.ID = "default"
	}
	if c.Quiz.Duration == "" {
		c.Quiz.Duration = "20m"
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreFile, StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("store driver redis requires redis.addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if d, err := time.ParseDuration(c.Quiz.Duration); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("quiz.duration %q must be a positive duration", c.Quiz.Duration))
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api.base_url %q must be an http(s) URL", c.API.BaseURL))
	}
	if c.Store.Namespace != "" && strings.ContainsAny(c.Store.Namespace, " \t\n") {
		errs = append(errs, errors.New("store.namespace cannot contain whitespace"))
	}
	return errors.Join(errs...)
}

// QuizDuration is the session deadline.
func (c Config) QuizDuration() time.Duration {
	return TTLDuration(c.Quiz.Duration, 20*time.Minute)
}

// AnswerTTL is the expiry for persisted answers. store.ttl wins; redis.ttl is
// the default for the redis driver.
func (c Config) AnswerTTL() time.Duration {
	fallback := time.Duration(0)
	if c.Store.Driver == StoreRedis {
		fallback = TTLDuration(c.Redis.TTL, 0)
	}
	return TTLDuration(c.Store.TTL, fallback)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func defaultStoreDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "pm-quiz-runner"
	}
	return ".pm-quiz-runner"
}
