package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pairquiz-service/internal/domain"
)

func TestQuestionBankCachesPools(t *testing.T) {
	loader := &countingLoader{PoolLoader: NewStaticPoolLoader(BuiltinPools())}
	bank := NewQuestionBank(loader, time.Minute)

	cfg := domain.QuizConfig{Subject: "Mathematics", Difficulty: "easy", NumQuestions: 3}
	if _, err := bank.BuildSet(context.Background(), cfg); err != nil {
		t.Fatalf("build set: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := bank.BuildSet(context.Background(), cfg); err != nil {
		t.Fatalf("build set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionBankSamplesRequestedCount(t *testing.T) {
	bank := NewQuestionBank(NewStaticPoolLoader(BuiltinPools()), time.Minute)

	set, err := bank.BuildSet(context.Background(), domain.QuizConfig{
		Subject:      "mathematics",
		Difficulty:   "easy",
		NumQuestions: 5,
	})
	if err != nil {
		t.Fatalf("build set: %v", err)
	}
	if len(set) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(set))
	}

	seen := make(map[string]bool)
	for _, q := range set {
		if seen[q.ID] {
			t.Fatalf("question %s sampled twice", q.ID)
		}
		seen[q.ID] = true
	}

	// Requests larger than the pool are capped, not failed.
	set, err = bank.BuildSet(context.Background(), domain.QuizConfig{
		Subject:      "mathematics",
		Difficulty:   "easy",
		NumQuestions: 100,
	})
	if err != nil {
		t.Fatalf("oversized build set: %v", err)
	}
	if len(set) == 0 || len(set) > 100 {
		t.Fatalf("unexpected sample size %d", len(set))
	}
}

func TestQuestionBankValidation(t *testing.T) {
	bank := NewQuestionBank(NewStaticPoolLoader(BuiltinPools()), time.Minute)

	_, err := bank.BuildSet(context.Background(), domain.QuizConfig{Subject: "astrology", NumQuestions: 5})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown subject, got %v", err)
	}

	_, err = bank.BuildSet(context.Background(), domain.QuizConfig{Subject: "mathematics", Difficulty: "easy", NumQuestions: -3})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative count, got %v", err)
	}
}

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg := NormalizeConfig(domain.QuizConfig{Subject: "  Mathematics ", Difficulty: "EASY"})
	if cfg.Subject != "mathematics" || cfg.Difficulty != "easy" {
		t.Fatalf("unexpected normalization: %+v", cfg)
	}
	if cfg.NumQuestions != defaultNumQuestions {
		t.Fatalf("expected default question count, got %d", cfg.NumQuestions)
	}

	cfg = NormalizeConfig(domain.QuizConfig{})
	if cfg.Subject != "general knowledge" || cfg.Difficulty != "medium" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

type countingLoader struct {
	PoolLoader
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	l.calls++
	return l.PoolLoader.LoadPool(ctx, subject, difficulty)
}
