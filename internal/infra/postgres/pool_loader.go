package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pairquiz-service/internal/domain"
)

// PoolLoader loads question-pool JSONB from Postgres.
type PoolLoader struct {
	pool *pgxpool.Pool
}

func NewPoolLoader(pool *pgxpool.Pool) *PoolLoader {
	return &PoolLoader{pool: pool}
}

func (l *PoolLoader) LoadPool(ctx context.Context, subject, difficulty string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx,
		`SELECT data FROM question_pools WHERE subject=$1 AND difficulty=$2`,
		subject, difficulty,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no question pool for subject %q difficulty %q: %w", subject, difficulty, domain.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal question pool: %w", err)
	}
	return questions, nil
}
