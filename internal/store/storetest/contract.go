// Package storetest holds a behavioural test suite shared by every
// implementation of the client and task repositories.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TaskRepository is the task capability the suite exercises.
type TaskRepository interface {
	store.Repository[domain.Task, int64]
	FindByClientID(ctx context.Context, clientID int64) ([]domain.Task, error)
}

// Stores is a fresh, empty pair of repositories sharing one datastore.
type Stores struct {
	Clients store.Repository[domain.Client, int64]
	Tasks   TaskRepository
}

// Options toggles checks for behaviour not every backend provides.
type Options struct {
	// EnforcesReferences is true when the backend rejects tasks pointing at
	// missing clients and detaches tasks when their client is deleted.
	EnforcesReferences bool
}

// Run executes the suite. newStores is called once per subtest and must
// return empty repositories.
func Run(t *testing.T, newStores func(t *testing.T) Stores, opts Options) {
	t.Helper()

	t.Run("FindAll on empty store", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		clients, err := s.Clients.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, clients)
		assert.Empty(t, clients)

		tasks, err := s.Tasks.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("Save assigns fresh identifiers", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		seen := map[int64]bool{}
		for i := 0; i < 3; i++ {
			saved, err := s.Tasks.Save(ctx, domain.Task{Title: fmt.Sprintf("task %d", i)})
			require.NoError(t, err)
			require.NotZero(t, saved.ID)
			assert.False(t, seen[saved.ID], "identifier %d reused", saved.ID)
			seen[saved.ID] = true

			found, err := s.Tasks.FindByID(ctx, saved.ID)
			require.NoError(t, err)
			assert.Equal(t, saved, found)
		}

		all, err := s.Tasks.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID, all[i].ID, "FindAll should be ordered by ID")
		}
	})

	t.Run("Save with identifier updates in place", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		created, err := s.Tasks.Save(ctx, domain.Task{Title: "draft"})
		require.NoError(t, err)

		created.Title = "final"
		updated, err := s.Tasks.Save(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)

		found, err := s.Tasks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", found.Title)

		all, err := s.Tasks.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1, "update must not allocate a new row")
	})

	t.Run("Save with unknown identifier", func(t *testing.T) {
		s := newStores(t)

		_, err := s.Tasks.Save(context.Background(), domain.Task{ID: 4242, Title: "ghost"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing identifiers are not found", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		_, err := s.Tasks.FindByID(ctx, 999)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.ErrorIs(t, s.Tasks.DeleteByID(ctx, 999), store.ErrNotFound)

		_, err = s.Clients.FindByID(ctx, 999)
		assert.ErrorIs(t, err, store.ErrClientNotFound)
		assert.ErrorIs(t, s.Clients.DeleteByID(ctx, 999), store.ErrNotFound)
	})

	t.Run("create get delete task", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		saved, err := s.Tasks.Save(ctx, domain.Task{Title: "Test"})
		require.NoError(t, err)
		require.NotZero(t, saved.ID)
		assert.Equal(t, "Test", saved.Title)

		found, err := s.Tasks.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved, found)

		require.NoError(t, s.Tasks.DeleteByID(ctx, saved.ID))

		_, err = s.Tasks.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, s.Tasks.DeleteByID(ctx, saved.ID), store.ErrNotFound,
			"second delete must fail, not silently succeed")
	})

	t.Run("client login is unique", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		first, err := s.Clients.Save(ctx, domain.Client{Login: "a", Password: "password-one"})
		require.NoError(t, err)

		_, err = s.Clients.Save(ctx, domain.Client{Login: "a", Password: "password-two"})
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.ErrorIs(t, err, store.ErrLoginExists)

		// renaming another client onto an existing login is also a conflict
		second, err := s.Clients.Save(ctx, domain.Client{Login: "b", Password: "password-two"})
		require.NoError(t, err)
		second.Login = first.Login
		_, err = s.Clients.Save(ctx, second)
		assert.ErrorIs(t, err, store.ErrDuplicate)

		all, err := s.Clients.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("surrounding whitespace is trimmed before storing", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		client, err := s.Clients.Save(ctx, domain.Client{Login: " a ", Password: "password-one"})
		require.NoError(t, err)
		assert.Equal(t, "a", client.Login)

		_, err = s.Clients.Save(ctx, domain.Client{Login: "a", Password: "password-two"})
		assert.ErrorIs(t, err, store.ErrLoginExists, "padded and bare logins name the same client")

		title := strings.Repeat("t", domain.MaxTitleLength)
		task, err := s.Tasks.Save(ctx, domain.Task{Title: title + "  "})
		require.NoError(t, err)
		assert.Equal(t, title, task.Title)

		found, err := s.Tasks.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, title, found.Title)
	})

	t.Run("client password is hashed and write-only", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		saved, err := s.Clients.Save(ctx, domain.Client{Login: "alice", Password: "correct horse"})
		require.NoError(t, err)
		assert.Empty(t, saved.Password)

		found, err := s.Clients.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Login)
		assert.Empty(t, found.Password)
		require.NotEmpty(t, found.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(found.HashedPassword), []byte("correct horse")))

		// updating without a password keeps the stored hash
		found.Login = "alice2"
		found.HashedPassword = ""
		_, err = s.Clients.Save(ctx, found)
		require.NoError(t, err)

		again, err := s.Clients.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice2", again.Login)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(again.HashedPassword), []byte("correct horse")))

		// updating with a password replaces it
		again.Password = "battery staple"
		_, err = s.Clients.Save(ctx, again)
		require.NoError(t, err)

		last, err := s.Clients.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(last.HashedPassword), []byte("battery staple")))
	})

	t.Run("tasks for client", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		alice, err := s.Clients.Save(ctx, domain.Client{Login: "alice", Password: "password-a"})
		require.NoError(t, err)
		bob, err := s.Clients.Save(ctx, domain.Client{Login: "bob", Password: "password-b"})
		require.NoError(t, err)

		for _, task := range []domain.Task{
			{Title: "a1", ClientID: &alice.ID},
			{Title: "b1", ClientID: &bob.ID},
			{Title: "a2", ClientID: &alice.ID},
			{Title: "unowned"},
		} {
			_, err := s.Tasks.Save(ctx, task)
			require.NoError(t, err)
		}

		tasks, err := s.Tasks.FindByClientID(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "a1", tasks[0].Title)
		assert.Equal(t, "a2", tasks[1].Title)
		for _, task := range tasks {
			require.NotNil(t, task.ClientID)
			assert.Equal(t, alice.ID, *task.ClientID)
		}

		none, err := s.Tasks.FindByClientID(ctx, 12345)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("canceled context", func(t *testing.T) {
		s := newStores(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Tasks.FindAll(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	})

	if !opts.EnforcesReferences {
		return
	}

	t.Run("task referencing missing client", func(t *testing.T) {
		s := newStores(t)
		missing := int64(777)

		_, err := s.Tasks.Save(context.Background(), domain.Task{Title: "orphan", ClientID: &missing})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, store.ErrUnknownClient)
	})

	t.Run("deleting client detaches tasks", func(t *testing.T) {
		s := newStores(t)
		ctx := context.Background()

		owner, err := s.Clients.Save(ctx, domain.Client{Login: "owner", Password: "password-o"})
		require.NoError(t, err)
		task, err := s.Tasks.Save(ctx, domain.Task{Title: "owned", ClientID: &owner.ID})
		require.NoError(t, err)

		require.NoError(t, s.Clients.DeleteByID(ctx, owner.ID))

		found, err := s.Tasks.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, found.ClientID)
	})
}
