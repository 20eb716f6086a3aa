package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEntityErrorsWrapSentinels(t *testing.T) {
	assert.ErrorIs(t, ErrClientNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrTaskNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrLoginExists, ErrDuplicate)

	wrapped := fmt.Errorf("find client 3: %w", ErrClientNotFound)
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsDuplicateError(wrapped))
	assert.True(t, IsDuplicateError(fmt.Errorf("save: %w", ErrLoginExists)))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("task", "save", "insert failed", cause)
		assert.Equal(t, "save operation on task failed: insert failed: connection refused", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("client", "find_all", "scan failed", nil)
		assert.Equal(t, "find_all operation on client failed: scan failed", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}

func TestStorageFailure(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := StorageFailure("client", "find_by_id", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFoundError(err))

	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "client", storeErr.Entity)
	assert.Equal(t, "find_by_id", storeErr.Operation)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))

	_, err = HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrInvalidEntity)
}
