package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, capacity int) *Store {
	t.Helper()

	if raceDetectorEnabled {
		t.Skip("boltdb/bolt trips checkptr under the race detector")
	}

	store, err := NewStore(filepath.Join(t.TempDir(), "idempotency.db"), capacity)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("begin, commit, seen", func(t *testing.T) {
		store := newTestStore(t, 10)

		claimed, err := store.Begin(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, claimed)

		require.NoError(t, store.Commit(ctx, "evt_1", time.Now()))

		seen, err := store.Seen(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, seen)

		claimed, err = store.Begin(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("in-flight duplicate refused, release reopens", func(t *testing.T) {
		store := newTestStore(t, 10)

		first, err := store.Begin(ctx, "evt_1")
		require.NoError(t, err)
		require.True(t, first)

		second, err := store.Begin(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, second)

		require.NoError(t, store.Release(ctx, "evt_1"))

		third, err := store.Begin(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, third)
	})

	t.Run("evicts oldest beyond capacity", func(t *testing.T) {
		store := newTestStore(t, 3)

		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("evt_%d", i)
			claimed, err := store.Begin(ctx, id)
			require.NoError(t, err)
			require.True(t, claimed)
			require.NoError(t, store.Commit(ctx, id, time.Now()))
		}

		seen, err := store.Seen(ctx, "evt_0")
		require.NoError(t, err)
		assert.False(t, seen, "oldest entry evicted")

		seen, err = store.Seen(ctx, "evt_1")
		require.NoError(t, err)
		assert.False(t, seen)

		seen, err = store.Seen(ctx, "evt_4")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("markers survive reopen", func(t *testing.T) {
		if raceDetectorEnabled {
			t.Skip("boltdb/bolt trips checkptr under the race detector")
		}

		path := filepath.Join(t.TempDir(), "idempotency.db")

		store, err := NewStore(path, 10)
		require.NoError(t, err)

		claimed, err := store.Begin(ctx, "evt_1")
		require.NoError(t, err)
		require.True(t, claimed)
		require.NoError(t, store.Commit(ctx, "evt_1", time.Now()))
		require.NoError(t, store.Close())

		reopened, err := NewStore(path, 10)
		require.NoError(t, err)
		defer reopened.Close()

		seen, err := reopened.Seen(ctx, "evt_1")
		require.NoError(t, err)
		assert.True(t, seen)
	})
}
