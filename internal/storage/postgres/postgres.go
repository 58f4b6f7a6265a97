// Package postgres implements durable stores backed by PostgreSQL via
// pgx connection pooling.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool and verifies it.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// EnsureSchema creates the tables used by this package when absent.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS analysis_records (
			mint          TEXT PRIMARY KEY,
			checked_at    TIMESTAMPTZ NOT NULL,
			is_safe       BOOLEAN NOT NULL,
			attempts      INT NOT NULL DEFAULT 0,
			next_retry_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS trade_log (
			id          BIGSERIAL PRIMARY KEY,
			mint        TEXT NOT NULL,
			symbol      TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			quantity    NUMERIC NOT NULL,
			price       NUMERIC NOT NULL,
			cost        NUMERIC NOT NULL,
			strategy_id TEXT NOT NULL,
			executed_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
