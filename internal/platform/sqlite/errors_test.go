package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/taskhub-api/internal/platform/sqlite"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/phrazzld/taskhub-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorFromDriver(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO clients (login, password_hash) VALUES ('dup', 'h')`)
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		expected error
		unique   bool
		fk       bool
	}{
		{"unique", `INSERT INTO clients (login, password_hash) VALUES ('dup', 'h')`, store.ErrDuplicate, true, false},
		{"primary key", `INSERT INTO clients (id, login, password_hash) VALUES (1, 'other', 'h')`, store.ErrDuplicate, true, false},
		{"foreign key", `INSERT INTO tasks (title, client_id) VALUES ('t', 999)`, store.ErrInvalidEntity, false, true},
		{"check", `INSERT INTO tasks (title) VALUES ('')`, store.ErrInvalidEntity, false, false},
		{"not null", `INSERT INTO clients (login) VALUES ('nohash')`, store.ErrInvalidEntity, false, false},
		{"syntax", `INSERT INTO nowhere VALUES (1)`, store.ErrStorage, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.query)
			require.Error(t, err)

			assert.ErrorIs(t, sqlite.MapError(err, "test", "exec"), tt.expected)
			assert.Equal(t, tt.unique, sqlite.IsUniqueViolation(err))
			assert.Equal(t, tt.fk, sqlite.IsForeignKeyViolation(err))
		})
	}
}

func TestMapErrorPlainErrors(t *testing.T) {
	assert.NoError(t, sqlite.MapError(nil, "task", "save"))

	mapped := sqlite.MapError(errors.New("disk I/O error"), "task", "save")
	assert.ErrorIs(t, mapped, store.ErrStorage)

	var storeErr *store.StoreError
	require.ErrorAs(t, mapped, &storeErr)
	assert.Equal(t, "task", storeErr.Entity)
	assert.Equal(t, "save", storeErr.Operation)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"sqlite::memory:", ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"sqlite:taskhub.db", "taskhub.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"sqlite:///var/lib/taskhub.db", "/var/lib/taskhub.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"sqlite://data/taskhub.db?cache=shared", "data/taskhub.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := sqlite.DSN(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"postgres://localhost/db", "sqlite:", "sqlite://"} {
		_, err := sqlite.DSN(bad)
		assert.Error(t, err, bad)
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := t.TempDir() + "/taskhub.db"

	db, err := sqlite.Open("sqlite:" + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping())

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}
