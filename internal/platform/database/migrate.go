package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/phrazzld/taskhub-api/internal/platform/sqlite"
	"github.com/pressly/goose/v3"
)

// MigrationStatus describes one migration and whether it has been applied.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

func (db *DB) migrationProvider() (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		fsys    fs.FS
	)
	switch db.Dialect {
	case DialectSQLite:
		dialect, fsys = goose.DialectSQLite3, sqlite.Migrations()
	default:
		dialect, fsys = goose.DialectPostgres, postgres.Migrations()
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// MigrateUp applies every pending migration.
func (db *DB) MigrateUp(ctx context.Context, logger *slog.Logger) error {
	provider, err := db.migrationProvider()
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		logMigrationResult(logger, r)
	}
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("database schema up to date",
		slog.Int64("version", version),
		slog.Int("applied", len(results)))
	return nil
}

// MigrateDown rolls back the most recently applied migration.
// Rolling back with nothing applied is not an error.
func (db *DB) MigrateDown(ctx context.Context, logger *slog.Logger) error {
	provider, err := db.migrationProvider()
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) {
		logger.Info("no migrations to roll back")
		return nil
	}
	if result != nil {
		logMigrationResult(logger, result)
	}
	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrationStatus reports every known migration in version order.
func (db *DB) MigrationStatus(ctx context.Context) ([]MigrationStatus, error) {
	provider, err := db.migrationProvider()
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

func logMigrationResult(logger *slog.Logger, r *goose.MigrationResult) {
	attrs := []any{
		slog.Int64("version", r.Source.Version),
		slog.String("source", r.Source.Path),
		slog.String("direction", r.Direction),
		slog.Duration("duration", r.Duration),
	}
	if r.Error != nil {
		logger.Error("migration failed", append(attrs, slog.String("error", r.Error.Error()))...)
		return
	}
	logger.Info("migration applied", attrs...)
}
