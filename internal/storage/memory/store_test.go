package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gistpen/internal/storage"
	"github.com/dmitrijs2005/gistpen/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Adapter {
		return New()
	})
}

func TestInsertRecord_ConcurrentIDsAreUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.InsertRecord(ctx, &storage.Record{Type: "gistpen"})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, n)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestInsertRecord_StoresCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec := &storage.Record{Type: "gistpen", Title: "before"}
	id, err := s.InsertRecord(ctx, rec)
	require.NoError(t, err)

	rec.Title = "after"

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Title)
}
