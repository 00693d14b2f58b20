package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/overworld/internal/db/migrations"
)

// Migrate applies the embedded journal migrations through pool. It uses a
// goose provider rather than the package-level goose state, which the
// settings store configures for SQLite in the same process.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying journal migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("journal migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
