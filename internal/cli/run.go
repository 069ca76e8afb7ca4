package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/config"
	"pm-quiz-runner/internal/domain"
	"pm-quiz-runner/internal/infra/file"
	"pm-quiz-runner/internal/infra/memory"
	redisstore "pm-quiz-runner/internal/infra/redis"
	"pm-quiz-runner/internal/infra/sqlite"
	"pm-quiz-runner/internal/terminal"
	transport "pm-quiz-runner/internal/transport/http"
)

// NewRunCmd takes the quiz interactively in the terminal.
func NewRunCmd(configPath *string) *cobra.Command {
	var team, store, apiURL string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Take the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if team != "" {
				cfg.Team = team
			}
			if store != "" {
				cfg.Store.Driver = store
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runQuiz(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "team name sent with every request")
	cmd.Flags().StringVar(&store, "store", "", "answer store: file, sqlite, redis or memory")
	cmd.Flags().StringVar(&apiURL, "api", "", "backend base URL")
	return cmd
}

func runQuiz(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	closeLog, err := redirectLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	sessionLog := log.New(log.Writer(), fmt.Sprintf("session %s ", uuid.NewString()[:8]), log.LstdFlags)

	store, closeStore, err := openAnswerStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := transport.NewClient(cfg.API.BaseURL, cfg.Team,
		transport.WithHTTPClient(apiHTTPClient(cfg)))

	deadline := int(cfg.QuizDuration() / time.Second)
	if status, err := client.Status(ctx); err == nil {
		deadline = status.RemainingSeconds
	} else {
		sessionLog.Printf("status unavailable, using configured duration: %v", err)
	}

	presenter := terminal.NewPresenter(out)
	runner := app.NewRunner(client, store, client, presenter, deadline,
		app.WithRunnerLogger(sessionLog))

	result, err := runner.Run(ctx, terminal.ReadLines(ctx, in))
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "\nInterrupted; your answers are saved.")
		return nil
	case err != nil:
		return err
	case result.Quit:
		fmt.Fprintln(out, "Your answers are saved. Run again to resume.")
		return nil
	}

	entries, err := client.FetchLeaderboard(ctx)
	fmt.Fprintln(out)
	terminal.PrintLeaderboard(out, entries, err)
	return nil
}

func openAnswerStore(ctx context.Context, cfg config.Config) (app.AnswerStore, func(), error) {
	namespace := cfg.Store.Namespace
	if namespace == "" {
		namespace = cfg.Team
	}
	key := domain.NamespacedKey(namespace)
	noop := func() {}

	switch cfg.Store.Driver {
	case config.StoreMemory:
		return memory.NewAnswerStore(nil), noop, nil
	case config.StoreSQLite:
		path := cfg.Store.Path
		if path == "" {
			if err := os.MkdirAll(cfg.Store.Dir, 0o755); err != nil {
				return nil, nil, err
			}
			path = filepath.Join(cfg.Store.Dir, "answers.db")
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewAnswerStore(db, key), func() { _ = db.Close() }, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisstore.NewAnswerStore(client, key, cfg.AnswerTTL()), func() { _ = client.Close() }, nil
	default:
		store, err := file.NewAnswerStore(cfg.Store.Dir, key)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	}
}

// redirectLog sends log output to a file so it does not interleave with the
// quiz on the terminal.
func redirectLog(cfg config.Config) (func(), error) {
	path := cfg.Log.File
	if path == "" {
		if err := os.MkdirAll(cfg.Store.Dir, 0o755); err != nil {
			return nil, err
		}
		path = filepath.Join(cfg.Store.Dir, "quizrunner.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	prev := log.Writer()
	log.SetOutput(f)
	return func() {
		log.SetOutput(prev)
		_ = f.Close()
	}, nil
}
