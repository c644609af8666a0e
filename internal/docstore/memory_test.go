package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, CollectionJobs, "b", sample{ID: "b", Name: "second"}))
	require.NoError(t, store.Upsert(ctx, CollectionJobs, "a", sample{ID: "a", Name: "first"}))
	require.NoError(t, store.Upsert(ctx, CollectionSettings, "company", json.RawMessage(`{"name":"Acme"}`)))

	t.Run("list is ordered by id", func(t *testing.T) {
		items, err := ListAs[sample](ctx, store, CollectionJobs)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[0].ID)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, CollectionJobs, "a", sample{ID: "a", Name: "renamed"}))
		var got sample
		require.NoError(t, store.Get(ctx, CollectionJobs, "a", &got))
		assert.Equal(t, "renamed", got.Name)
	})

	t.Run("load groups collections", func(t *testing.T) {
		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Jobs, 2)
		assert.Contains(t, snap.Settings, "company")
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, CollectionJobs, "a"))
		require.NoError(t, store.Delete(ctx, CollectionJobs, "a"))
		var got sample
		assert.ErrorIs(t, store.Get(ctx, CollectionJobs, "a", &got), ErrNotFound)
	})

	t.Run("rejects invalid raw json", func(t *testing.T) {
		err := store.Upsert(ctx, CollectionJobs, "bad", json.RawMessage(`{`))
		require.Error(t, err)
	})
}
