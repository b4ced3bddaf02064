package resource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects a pgx pool for task executions to check connections out
// of. The pool is the only explicitly shared resource between tasks.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PgxScope checks a pooled connection out for the duration of one task
// execution. Release is deferred, so it happens on every exit path.
type PgxScope struct {
	pool *pgxpool.Pool
}

func NewPgxScope(pool *pgxpool.Pool) *PgxScope {
	return &PgxScope{pool: pool}
}

func (s *PgxScope) With(ctx context.Context, fn func(ctx context.Context) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(ctx)
}
