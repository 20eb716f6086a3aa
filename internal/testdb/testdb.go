package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/phrazzld/taskhub-api/internal/ciutil"
	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/database"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection and migration work done by this package.
const TestTimeout = 10 * time.Second

// IsIntegrationTestEnvironment reports whether a PostgreSQL test database
// is configured.
func IsIntegrationTestEnvironment() bool {
	return ciutil.TestDatabaseURL(nil) != ""
}

// OpenSQLite returns a migrated in-memory SQLite database that is closed
// when the test ends.
func OpenSQLite(t *testing.T) *database.DB {
	t.Helper()
	return open(t, "sqlite::memory:")
}

// OpenPostgres returns a migrated connection to the configured PostgreSQL
// test server. Without one the test is skipped, or fails under CI.
func OpenPostgres(t *testing.T) *database.DB {
	t.Helper()

	dbURL := ciutil.TestDatabaseURL(slog.Default())
	if dbURL == "" {
		if ciutil.IsCI() {
			t.Fatalf("%s must be set in CI", ciutil.EnvTestDatabaseURL)
		}
		t.Skipf("%s not set - skipping integration test", ciutil.EnvTestDatabaseURL)
	}
	t.Logf("using test database %s", MaskDatabaseURL(dbURL))
	return open(t, dbURL)
}

func open(t *testing.T, dbURL string) *database.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.Open(ctx, config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}, log)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})

	require.NoError(t, db.MigrateUp(ctx, log), "failed to migrate test database")
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *database.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx := BeginTx(t, db)
	fn(t, tx)
}

// BeginTx starts a transaction that is rolled back when the test ends.
func BeginTx(t *testing.T, db *database.DB) *sql.Tx {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	})
	return tx
}

// MaskDatabaseURL replaces the password in a database URL for logging.
func MaskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "redacted")
		}
	}
	return parsed.String()
}

// Reset removes every client and task, restarting identifiers on PostgreSQL.
func Reset(t *testing.T, db *database.DB) {
	t.Helper()

	stmts := []string{`DELETE FROM tasks`, `DELETE FROM clients`}
	if db.Dialect == database.DialectPostgres {
		stmts = []string{`TRUNCATE tasks, clients RESTART IDENTITY`}
	}
	for _, stmt := range stmts {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, "failed to reset test database")
	}
}
