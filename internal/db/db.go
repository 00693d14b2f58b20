// Package db persists the encounter journal to PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB owns the pool the journal writes through.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to dsn and pings the server. maxConns caps the pool; zero
// keeps the pgx default. The journal writer holds at most one connection at
// a time, so small values are fine.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Migrate applies the journal schema.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.pool)
}

// Journal returns a repository bound to this pool.
func (d *DB) Journal() *JournalRepository {
	return NewJournalRepository(d.pool)
}
