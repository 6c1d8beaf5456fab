package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"pairquiz-service/internal/domain"
	"pairquiz-service/internal/infra/memory"
)

func TestQuestionBankCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{PoolLoader: memory.NewStaticPoolLoader(memory.BuiltinPools())}
	bank := NewQuestionBank(client, loader, time.Minute)

	cfg := domain.QuizConfig{Subject: "mathematics", Difficulty: "easy", NumQuestions: 3}
	set, err := bank.BuildSet(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build set: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(set))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("pair:pool:mathematics:easy") {
		t.Fatalf("expected pool cached in redis")
	}

	// Second call should hit the redis cache, loader not incremented.
	if _, err := bank.BuildSet(context.Background(), cfg); err != nil {
		t.Fatalf("build set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.PoolLoader
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	l.calls++
	return l.PoolLoader.LoadPool(ctx, subject, difficulty)
}
