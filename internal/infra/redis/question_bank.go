package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"pairquiz-service/internal/domain"
	"pairquiz-service/internal/infra/memory"
)

// PoolLoader fetches a question pool from a backing store (e.g., Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, subject, difficulty string) ([]domain.Question, error)
}

// QuestionBank caches serialized question pools in Redis and falls back to a
// loader on cache miss. Pools are stored as:
// SET pair:pool:{subject}:{difficulty} {json} EX ttl
type QuestionBank struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader PoolLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) BuildSet(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	cfg = memory.NormalizeConfig(cfg)
	if cfg.NumQuestions < 1 {
		return nil, fmt.Errorf("numQuestions must be at least 1: %w", domain.ErrValidation)
	}

	pool, err := b.pool(ctx, cfg.Subject, cfg.Difficulty)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no questions for subject %q difficulty %q: %w", cfg.Subject, cfg.Difficulty, domain.ErrValidation)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return memory.SamplePool(pool, cfg.NumQuestions, b.rnd), nil
}

func (b *QuestionBank) pool(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	key := b.poolKey(subject, difficulty)

	if pool, ok := b.cachedPool(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := b.cachedPool(ctx, key); ok {
			return pool, nil
		}

		pool, err := b.loader.LoadPool(ctx, subject, difficulty)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(pool); err == nil {
			_ = b.client.Set(ctx, key, data, b.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) cachedPool(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (b *QuestionBank) poolKey(subject, difficulty string) string {
	return "pair:pool:" + subject + ":" + difficulty
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
