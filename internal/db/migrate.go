package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newProvider opens a goose provider over the embedded migrations.
func newProvider(sqlDB *sql.DB) (*goose.Provider, error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, dir)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// openSQL opens a database/sql handle on the pgx stdlib driver. Goose needs
// *sql.DB and the pool's AfterConnect statements need the schema to exist,
// so migrations run on their own connection.
func openSQL(ctx context.Context, databaseURL string) (*sql.DB, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return sqlDB, nil
}

// MigrateUp applies all pending migrations.
func MigrateUp(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	sqlDB, err := openSQL(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	provider, err := newProvider(sqlDB)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		logger.Info("Applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	sqlDB, err := openSQL(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	provider, err := newProvider(sqlDB)
	if err != nil {
		return err
	}

	r, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	if r != nil {
		logger.Info("Rolled back migration", "version", r.Source.Version)
	}
	return nil
}

// MigrationStatus logs the applied state of every known migration.
func MigrationStatus(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	sqlDB, err := openSQL(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	provider, err := newProvider(sqlDB)
	if err != nil {
		return err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, s := range statuses {
		logger.Info("Migration", "version", s.Source.Version, "state", s.State, "applied_at", s.AppliedAt)
	}
	return nil
}
