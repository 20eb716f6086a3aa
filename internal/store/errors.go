package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when the datastore rejects an entity, for
	// example because it references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStorage is returned when the datastore cannot be reached or fails
	// for a reason unrelated to the data being written.
	ErrStorage = errors.New("storage failure")

	// ErrTransactionFailed is returned when a transaction cannot be started or committed.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrClientNotFound indicates that the requested client does not exist.
	ErrClientNotFound = fmt.Errorf("%w: client", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrLoginExists indicates that another client already uses the login.
	ErrLoginExists = fmt.Errorf("%w: login", ErrDuplicate)

	// ErrUnknownClient indicates that a task references a client that does not exist.
	ErrUnknownClient = fmt.Errorf("%w: unknown client", ErrInvalidEntity)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a store failure with the entity and operation it happened in.
type StoreError struct {
	Entity    string // The entity type (e.g., "client", "task")
	Operation string // The operation that failed (e.g., "find_all", "save")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// StorageFailure wraps a low-level datastore error so that it matches
// ErrStorage while keeping the original error in the chain.
func StorageFailure(entity, operation string, err error) error {
	return NewStoreError(entity, operation, "datastore error", fmt.Errorf("%w: %w", ErrStorage, err))
}
