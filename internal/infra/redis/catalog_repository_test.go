package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"pm-quiz-runner/internal/domain"
	"pm-quiz-runner/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[string]domain.Catalog{
			"quiz-1": sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(client, loader, time.Minute)

	_, err = repo.GetCatalog(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:quiz-1:catalog") {
		t.Fatalf("expected catalog cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	catalog, _ := repo.GetCatalog(context.Background(), "quiz-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(catalog.Questions) != 2 || catalog.Questions[0].Options != "3|4|5" {
		t.Fatalf("unexpected cached catalog %+v", catalog)
	}
	// Order survives the round trip.
	if catalog.Questions[0].ID != "q1" || catalog.Questions[1].ID != "q2" {
		t.Fatalf("expected question order preserved, got %+v", catalog.Questions)
	}

	if err := repo.Invalidate(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetCatalog(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestCatalogRepositoryExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(map[string]domain.Catalog{"quiz-1": sampleCatalog()}),
	}
	repo := NewCatalogRepository(newClient(mr), loader, time.Minute)

	_, _ = repo.GetCatalog(context.Background(), "quiz-1")
	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background(), "quiz-1")

	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, quizID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, quizID)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		ID: "quiz-1",
		Questions: []domain.Question{
			{ID: "q1", ContentText: "What is 2 + 2?", Options: "3|4|5", Points: 1, Difficulty: domain.DifficultyEasy},
			{ID: "q2", ContentText: "Capital of France?", Points: 2, Difficulty: domain.DifficultyMedium},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
