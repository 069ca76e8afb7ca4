package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/config"
	"pm-quiz-runner/internal/domain"
	"pm-quiz-runner/internal/infra/file"
	"pm-quiz-runner/internal/infra/memory"
	"pm-quiz-runner/internal/infra/postgres"
	rediscache "pm-quiz-runner/internal/infra/redis"
	transport "pm-quiz-runner/internal/transport/http"
)

// NewServeCmd starts the development backend the runner talks to.
func NewServeCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz backend (questions, submissions, leaderboard)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (default from config or 8080)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader
	switch {
	case pool != nil:
		loader = postgres.NewCatalogLoader(pool)
	case cfg.Quiz.CatalogFile != "":
		loader = file.NewCatalogLoader(cfg.Quiz.CatalogFile)
	default:
		loader = memory.NewStaticCatalogLoader(sampleCatalogs(cfg.Quiz.ID))
	}

	catalogTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = rediscache.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var results app.ResultStore
	if pool != nil {
		results = postgres.NewResultStore(pool)
	} else {
		results = memory.NewResultStore()
	}

	service := app.NewQuizService(catalogs, results, cfg.Quiz.ID, cfg.QuizDuration())

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz backend on :%s (quiz %q, %s)", finalPort, cfg.Quiz.ID, cfg.QuizDuration())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalogs is served when neither Postgres nor a catalog file is configured.
func sampleCatalogs(quizID string) map[string]domain.Catalog {
	return map[string]domain.Catalog{
		quizID: {
			ID: quizID,
			Questions: []domain.Question{
				{ID: "1", ContentText: "What is 2 + 2?", Options: "3|4|5", Points: 1, Difficulty: domain.DifficultyEasy},
				{ID: "2", ContentText: "Which planet is known as the Red Planet?", Options: "Venus | Mars | Jupiter", Points: 2, Difficulty: domain.DifficultyMedium},
				{ID: "3", ContentText: "Name the process plants use to turn light into chemical energy.", Points: 3, Difficulty: domain.DifficultyHard},
			},
		},
	}
}
