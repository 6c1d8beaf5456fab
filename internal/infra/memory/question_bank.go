package memory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pairquiz-service/internal/domain"
)

const defaultNumQuestions = 10

// PoolLoader fetches a question pool from a backing store (e.g., Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, subject, difficulty string) ([]domain.Question, error)
}

// QuestionBank builds frozen question sets by sampling cached pools.
// Pools are cached with TTL to avoid repeated backing-store hits.
type QuestionBank struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedPool
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader PoolLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

// BuildSet samples a shuffled question set for the config. It fails with a
// validation error when the config cannot produce at least one question.
func (b *QuestionBank) BuildSet(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	cfg = NormalizeConfig(cfg)
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
	return SamplePool(pool, cfg.NumQuestions, b.rnd), nil
}

func (b *QuestionBank) pool(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	key := subject + "|" + difficulty
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[key]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		pool, err := b.loader.LoadPool(ctx, subject, difficulty)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[key] = cachedPool{
			questions: pool,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// ttlWithJitter must be called with b.mu held (it reads b.rnd).
func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// NormalizeConfig lowercases subject and difficulty and applies defaults.
func NormalizeConfig(cfg domain.QuizConfig) domain.QuizConfig {
	cfg.Subject = strings.ToLower(strings.TrimSpace(cfg.Subject))
	if cfg.Subject == "" {
		cfg.Subject = "general knowledge"
	}
	cfg.Difficulty = strings.ToLower(strings.TrimSpace(cfg.Difficulty))
	if cfg.Difficulty == "" {
		cfg.Difficulty = "medium"
	}
	if cfg.NumQuestions == 0 {
		cfg.NumQuestions = defaultNumQuestions
	}
	return cfg
}

// SamplePool returns up to n questions drawn without replacement.
func SamplePool(pool []domain.Question, n int, rnd *rand.Rand) []domain.Question {
	shuffled := append([]domain.Question(nil), pool...)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
