package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterStore(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("missing counter reads zero", func(t *testing.T) {
		value, err := store.Counters.Get(ctx, "never-written")
		require.NoError(t, err)
		assert.Equal(t, int64(0), value)
	})

	t.Run("increment returns running total", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := store.Counters.Increment(ctx, "requests")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		value, err := store.Counters.Get(ctx, "requests")
		require.NoError(t, err)
		assert.Equal(t, int64(3), value)
	})

	t.Run("counters are independent", func(t *testing.T) {
		_, err := store.Counters.Increment(ctx, "left")
		require.NoError(t, err)

		value, err := store.Counters.Get(ctx, "right")
		require.NoError(t, err)
		assert.Equal(t, int64(0), value)
	})

	t.Run("expiry survives further increments", func(t *testing.T) {
		_, err := store.Counters.Increment(ctx, "bucket")
		require.NoError(t, err)
		require.NoError(t, store.Counters.SetExpiry(ctx, "bucket", time.Hour))

		got, err := store.Counters.Increment(ctx, "bucket")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got)

		// The TTL set above must still be attached to the entry
		expiresAt, err := counterExpiry(store, "bucket")
		require.NoError(t, err)
		assert.NotZero(t, expiresAt)
	})

	t.Run("concurrent increments are atomic", func(t *testing.T) {
		const workers = 16
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Counters.Increment(ctx, "contended")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		value, err := store.Counters.Get(ctx, "contended")
		require.NoError(t, err)
		assert.Equal(t, int64(workers), value)
	})
}

// counterExpiry reads the raw expiry timestamp behind a counter key.
func counterExpiry(store *MemoryStore, key string) (uint64, error) {
	var expiresAt uint64
	err := store.Backend.WithTx(func(tx *badgerdb.Txn) error {
		var err error
		_, expiresAt, err = readCounter(tx, makeCounterKey(key))
		return err
	}, false)
	return expiresAt, err
}
