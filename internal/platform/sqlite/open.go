package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const connectionPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// DSN converts a sqlite: URL into a driver data source name with foreign
// keys enforced. "sqlite::memory:" opens a private in-memory database,
// "sqlite:///var/lib/taskhub.db" an absolute path and "sqlite:taskhub.db"
// a path relative to the working directory.
func DSN(rawURL string) (string, error) {
	name, ok := strings.CutPrefix(rawURL, "sqlite:")
	if !ok {
		return "", fmt.Errorf("not a sqlite URL: missing sqlite: scheme")
	}
	name = strings.TrimPrefix(name, "//")
	if name == "" {
		return "", fmt.Errorf("sqlite URL has no database name")
	}

	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + connectionPragmas, nil
}

// Open opens the database named by a sqlite: URL. The pool is pinned to a
// single long-lived connection, which keeps an in-memory database alive and
// serialises writers.
func Open(rawURL string) (*sql.DB, error) {
	dsn, err := DSN(rawURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	return db, nil
}
