// Package testutil holds shared test helpers.
package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// MigrateFunc applies a schema to a fresh database.
type MigrateFunc func(ctx context.Context, pool *pgxpool.Pool) error

// SetupTestDB starts a PostgreSQL container, applies migrate and returns a
// pool. Skipped in -short mode. The container is terminated when the test
// finishes.
func SetupTestDB(tb testing.TB, migrate MigrateFunc) *pgxpool.Pool {
	tb.Helper()
	if testing.Short() {
		tb.Skip("postgres container tests skipped in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to test db: %v", err)
	}
	tb.Cleanup(pool.Close)

	if migrate != nil {
		if err := migrate(ctx, pool); err != nil {
			tb.Fatalf("running migrations: %v", err)
		}
	}
	return pool
}
