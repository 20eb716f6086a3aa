package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskhub-api/internal/domain"
)

// Repository is the persistence capability for one entity type T keyed by ID.
type Repository[T any, ID comparable] interface {
	// FindAll returns every persisted entity ordered by ID.
	// It returns an empty slice, not nil, when there are none.
	FindAll(ctx context.Context) ([]T, error)

	// FindByID returns the entity with the given ID.
	// Returns an error wrapping ErrNotFound if it does not exist.
	FindByID(ctx context.Context, id ID) (T, error)

	// Save inserts the entity when it has no ID and returns it with the new
	// ID populated. When the ID is set the existing row is overwritten and
	// the ID is left unchanged; ErrNotFound is returned if there is no such row.
	// Returns ErrDuplicate on unique constraint violations and
	// ErrInvalidEntity on other constraint violations.
	Save(ctx context.Context, entity T) (T, error)

	// DeleteByID removes the entity with the given ID.
	// Returns an error wrapping ErrNotFound if it does not exist.
	DeleteByID(ctx context.Context, id ID) error
}

// ClientStore persists clients.
type ClientStore interface {
	Repository[domain.Client, int64]

	// WithTx returns a ClientStore that runs its queries on tx.
	WithTx(tx *sql.Tx) ClientStore
}

// TaskStore persists tasks.
type TaskStore interface {
	Repository[domain.Task, int64]

	// FindByClientID returns the tasks owned by the given client, ordered by ID.
	// It does not check that the client exists.
	FindByClientID(ctx context.Context, clientID int64) ([]domain.Task, error)

	// WithTx returns a TaskStore that runs its queries on tx.
	WithTx(tx *sql.Tx) TaskStore
}
