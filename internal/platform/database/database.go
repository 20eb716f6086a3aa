// Package database opens the datastore named by the configured URL and
// builds the matching client and task stores.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/phrazzld/taskhub-api/internal/platform/sqlite"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// Dialect identifies the SQL backend behind a DB.
type Dialect string

// Supported dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// PingTimeout bounds the connectivity check made by Open.
const PingTimeout = 5 * time.Second

// DialectOf returns the dialect selected by a database URL's scheme.
func DialectOf(url string) (Dialect, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, nil
	case strings.HasPrefix(url, "sqlite:"):
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database URL scheme")
	}
}

// DB is a connection pool together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Stores holds the repositories bound to one DB.
type Stores struct {
	Clients store.ClientStore
	Tasks   store.TaskStore
}

// Open connects to the database in cfg, applies pool settings and verifies
// the connection. SQLite pools are always pinned to one connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	dialect, err := DialectOf(cfg.URL)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	case DialectSQLite:
		db, err = sqlite.Open(cfg.URL)
		if err != nil {
			return nil, err
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", slog.String("dialect", string(dialect)))
	return &DB{DB: db, Dialect: dialect}, nil
}

// Stores builds the client and task stores for the DB's dialect.
// A bcryptCost of zero selects bcrypt.DefaultCost.
func (db *DB) Stores(bcryptCost int, logger *slog.Logger) Stores {
	if db.Dialect == DialectSQLite {
		return Stores{
			Clients: sqlite.NewClientStore(db.DB, bcryptCost, logger),
			Tasks:   sqlite.NewTaskStore(db.DB, logger),
		}
	}
	return Stores{
		Clients: postgres.NewPostgresClientStore(db.DB, bcryptCost, logger),
		Tasks:   postgres.NewPostgresTaskStore(db.DB, logger),
	}
}
