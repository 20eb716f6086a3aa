package memstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/store/memstore"
	"github.com/phrazzld/taskhub-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Stores {
		return storetest.Stores{
			Clients: memstore.NewClientRepository(),
			Tasks:   memstore.NewTaskRepository(),
		}
	}, storetest.Options{})
}

func TestConcurrentSaves(t *testing.T) {
	repo := memstore.NewTaskRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := repo.Save(ctx, domain.Task{Title: "parallel"})
			assert.NoError(t, err)
			ids <- saved.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
