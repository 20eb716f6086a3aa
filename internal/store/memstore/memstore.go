// Package memstore provides an in-memory store.Repository keyed by int64
// surrogate IDs. It follows the same contract as the SQL stores and backs the
// HTTP tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/phrazzld/taskhub-api/internal/store"
)

// Accessors tells a Repository how to read and assign an entity's ID.
type Accessors[T any] struct {
	GetID func(T) int64
	SetID func(*T, int64)
	// UniqueKey, when set, returns a key that must be unique across entities.
	UniqueKey func(T) string
}

// Repository is a concurrency-safe in-memory store.Repository.
type Repository[T any] struct {
	mu       sync.RWMutex
	rows     map[int64]T
	nextID   int64
	acc      Accessors[T]
	notFound error
	conflict error
}

var _ store.Repository[struct{}, int64] = (*Repository[struct{}])(nil)

// New creates an empty Repository. notFound and conflict are the errors
// returned for missing IDs and unique key clashes; they should wrap
// store.ErrNotFound and store.ErrDuplicate.
func New[T any](acc Accessors[T], notFound, conflict error) *Repository[T] {
	if notFound == nil {
		notFound = store.ErrNotFound
	}
	if conflict == nil {
		conflict = store.ErrDuplicate
	}
	return &Repository[T]{
		rows:     make(map[int64]T),
		acc:      acc,
		notFound: notFound,
		conflict: conflict,
	}
}

// FindAll implements store.Repository.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.FindWhere(ctx, nil)
}

// FindWhere returns the entities matching keep, ordered by ID.
// A nil keep matches everything.
func (r *Repository[T]) FindWhere(ctx context.Context, keep func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.rows))
	for _, row := range r.rows {
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.acc.GetID(out[i]) < r.acc.GetID(out[j])
	})
	return out, nil
}

// FindByID implements store.Repository.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return zero, fmt.Errorf("%w: id %d", r.notFound, id)
	}
	return row, nil
}

// Save implements store.Repository.
func (r *Repository[T]) Save(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.acc.GetID(entity)
	if id != 0 {
		if _, ok := r.rows[id]; !ok {
			return zero, fmt.Errorf("%w: id %d", r.notFound, id)
		}
	}

	if r.acc.UniqueKey != nil {
		key := r.acc.UniqueKey(entity)
		for otherID, other := range r.rows {
			if otherID != id && r.acc.UniqueKey(other) == key {
				return zero, r.conflict
			}
		}
	}

	if id == 0 {
		r.nextID++
		id = r.nextID
		r.acc.SetID(&entity, id)
	}
	r.rows[id] = entity
	return entity, nil
}

// DeleteByID implements store.Repository.
func (r *Repository[T]) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("%w: id %d", r.notFound, id)
	}
	delete(r.rows, id)
	return nil
}
