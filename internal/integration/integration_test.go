package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"pm-quiz-runner/internal/app"
	"pm-quiz-runner/internal/domain"
	"pm-quiz-runner/internal/infra/postgres"
	pgmigrations "pm-quiz-runner/internal/infra/postgres/migrations"
	infraredis "pm-quiz-runner/internal/infra/redis"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestions(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalogs := infraredis.NewCatalogRepository(redisClient, postgres.NewCatalogLoader(pool), 5*time.Minute)
	results := postgres.NewResultStore(pool)
	service := app.NewQuizService(catalogs, results, "default", 30*time.Minute)

	questions, err := service.Questions(ctx, "Alpha")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 2 || questions[0].ContentText != "What is 2 + 2?" {
		t.Fatalf("unexpected catalog %+v", questions)
	}
	if got := questions[0].Choices(); len(got) != 3 || got[1] != "4" {
		t.Fatalf("unexpected choices %v", got)
	}

	// The participant's answers survive a restart through the Redis store.
	key := domain.NamespacedKey("Alpha")
	store := infraredis.NewAnswerStore(redisClient, key, time.Hour)
	input := &app.PendingInput{}
	cursor := app.NewCursor(store, input, submitterFunc(func(ctx context.Context, answers domain.AnswerMap) (domain.SubmitResult, error) {
		return service.Submit(ctx, "Alpha", answers)
	}))
	if _, err := cursor.Initialize(ctx, questions, store.Load(ctx)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	input.Set("4")
	if err := cursor.SaveCurrentAnswer(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := infraredis.NewAnswerStore(redisClient, key, time.Hour).Load(ctx); got[questions[0].ID] != "4" {
		t.Fatalf("expected persisted answer, got %v", got)
	}

	outcome, err := cursor.Submit(ctx, true)
	if err != nil || outcome != app.OutcomeSubmitted {
		t.Fatalf("submit: outcome=%s err=%v", outcome, err)
	}
	if got := store.Load(ctx); len(got) != 0 {
		t.Fatalf("expected store cleared after submit, got %v", got)
	}

	again, err := service.Submit(ctx, "Alpha", domain.AnswerMap{})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if again.Accepted() {
		t.Fatalf("expected repeat submission to be refused, got %+v", again)
	}

	if _, err := pool.Exec(ctx, `UPDATE teams SET score = 3 WHERE name = $1`, "Alpha"); err != nil {
		t.Fatalf("grade: %v", err)
	}
	lb, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].Name != "Alpha" || lb.Entries[0].Score != 3 {
		t.Fatalf("unexpected leaderboard %+v", lb.Entries)
	}

	if err := service.Feedback(ctx, "nice"); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if err := service.Feedback(ctx, " "); !errors.Is(err, domain.ErrEmptyFeedback) {
		t.Fatalf("expected ErrEmptyFeedback, got %v", err)
	}
}

type submitterFunc func(ctx context.Context, answers domain.AnswerMap) (domain.SubmitResult, error)

func (f submitterFunc) Submit(ctx context.Context, answers domain.AnswerMap) (domain.SubmitResult, error) {
	return f(ctx, answers)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rows := []struct {
		position   int
		text       string
		options    string
		answer     string
		difficulty string
		points     int
	}{
		{1, "What is 2 + 2?", "3|4|5", "4", "Easy", 1},
		{2, "Capital of France?", "", "Paris", "Medium", 2},
	}
	for _, r := range rows {
		var options any
		if r.options != "" {
			options = r.options
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO questions (quiz_id, position, content_text, options, answer, difficulty, points) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"default", r.position, r.text, options, r.answer, r.difficulty, r.points); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
