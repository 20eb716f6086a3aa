package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/sqlite"
	"github.com/phrazzld/taskhub-api/internal/store"
	"github.com/phrazzld/taskhub-api/internal/store/storetest"
	"github.com/phrazzld/taskhub-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Stores {
		db := testdb.OpenSQLite(t)
		return storetest.Stores{
			Clients: sqlite.NewClientStore(db.DB, bcrypt.MinCost, nil),
			Tasks:   sqlite.NewTaskStore(db.DB, nil),
		}
	}, storetest.Options{EnforcesReferences: true})
}

func TestStoreContractInTransaction(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Stores {
		tx := testdb.BeginTx(t, testdb.OpenSQLite(t))
		return storetest.Stores{
			Clients: sqlite.NewClientStore(tx, bcrypt.MinCost, nil),
			Tasks:   sqlite.NewTaskStore(tx, nil),
		}
	}, storetest.Options{EnforcesReferences: true})
}

func TestWithTxSharesTransaction(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()
	clients := sqlite.NewClientStore(db.DB, bcrypt.MinCost, nil)
	tasks := sqlite.NewTaskStore(db.DB, nil)

	err := store.RunInTransaction(ctx, db.DB, func(ctx context.Context, tx *sql.Tx) error {
		c, err := clients.WithTx(tx).Save(ctx, domain.Client{Login: "tx", Password: "password-tx"})
		if err != nil {
			return err
		}
		_, err = tasks.WithTx(tx).Save(ctx, domain.Task{Title: "in tx", ClientID: &c.ID})
		if err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	all, err := clients.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rolled back client must not be visible")

	allTasks, err := tasks.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, allTasks)
}

func TestClientDeleteIsAtomic(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()
	clients := sqlite.NewClientStore(db.DB, bcrypt.MinCost, nil)
	tasks := sqlite.NewTaskStore(db.DB, nil)

	owner, err := clients.Save(ctx, domain.Client{Login: "owner", Password: "password-o"})
	require.NoError(t, err)
	task, err := tasks.Save(ctx, domain.Task{Title: "owned", ClientID: &owner.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, clients.DeleteByID(ctx, owner.ID+100), store.ErrClientNotFound)

	found, err := tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ClientID)
	assert.Equal(t, owner.ID, *found.ClientID)
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(db.DB, nil)

	// stores do not validate; the schema check rejects blank titles
	_, err := tasks.Save(ctx, domain.Task{Title: "   "})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
