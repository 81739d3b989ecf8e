package tenant

import (
	"context"
	"testing"

	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
	badgerstore "github.com/poiesic/askbase/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	directory, err := NewDirectory(store.Tenants)
	require.NoError(t, err)
	t.Cleanup(func() { directory.Close() })
	return directory
}

func TestNewDirectory(t *testing.T) {
	_, err := NewDirectory(nil)
	assert.ErrorIs(t, err, ErrTenantRepositoryRequired)
}

func TestHashAPIKey(t *testing.T) {
	a := HashAPIKey("secret-key")
	b := HashAPIKey("secret-key")
	c := HashAPIKey("other-key")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	// blake2b-256 hex
	assert.Len(t, a, 64)
}

func TestCreate(t *testing.T) {
	directory := newTestDirectory(t)
	ctx := context.Background()

	t.Run("issues a working key", func(t *testing.T) {
		created, rawKey, err := directory.Create(ctx, "acme", core.PlanStarter)
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, core.PlanStarter, created.Plan)
		assert.Equal(t, core.LimitsForPlan(core.PlanStarter), created.Limits)
		assert.NotEmpty(t, rawKey)
		// The raw key is never stored
		assert.NotContains(t, created.KeyHash, rawKey)

		resolved, err := directory.ResolveByAPIKey(ctx, rawKey)
		require.NoError(t, err)
		assert.Equal(t, created.Id, resolved.Id)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, _, err := directory.Create(ctx, "   ", core.PlanFree)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("keys are unique per tenant", func(t *testing.T) {
		_, keyA, err := directory.Create(ctx, "alpha", core.PlanFree)
		require.NoError(t, err)
		_, keyB, err := directory.Create(ctx, "beta", core.PlanFree)
		require.NoError(t, err)
		assert.NotEqual(t, keyA, keyB)
	})
}

func TestResolve(t *testing.T) {
	directory := newTestDirectory(t)
	ctx := context.Background()

	created, rawKey, err := directory.Create(ctx, "acme", core.PlanFree)
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		resolved, err := directory.ResolveByID(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "acme", resolved.Name)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := directory.ResolveByAPIKey(ctx, "ak_bogus")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := directory.ResolveByID(ctx, 999999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("repeat lookups stay consistent", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			resolved, err := directory.ResolveByAPIKey(ctx, rawKey)
			require.NoError(t, err)
			assert.Equal(t, created.Id, resolved.Id)
		}
	})
}

func TestUpdatePlan(t *testing.T) {
	directory := newTestDirectory(t)
	ctx := context.Background()

	created, rawKey, err := directory.Create(ctx, "acme", core.PlanFree)
	require.NoError(t, err)

	// Warm both caches before mutating
	_, err = directory.ResolveByAPIKey(ctx, rawKey)
	require.NoError(t, err)
	_, err = directory.ResolveByID(ctx, created.Id)
	require.NoError(t, err)

	updated, err := directory.UpdatePlan(ctx, created.Id, core.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, core.PlanPro, updated.Plan)

	// The change is visible immediately despite the warmed caches
	resolved, err := directory.ResolveByID(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.PlanPro, resolved.Plan)
	assert.Equal(t, core.LimitsForPlan(core.PlanPro), resolved.Limits)

	resolved, err = directory.ResolveByAPIKey(ctx, rawKey)
	require.NoError(t, err)
	assert.Equal(t, core.PlanPro, resolved.Plan)
}

func TestRotateKey(t *testing.T) {
	directory := newTestDirectory(t)
	ctx := context.Background()

	created, oldKey, err := directory.Create(ctx, "acme", core.PlanFree)
	require.NoError(t, err)

	// Warm the key cache with the old key
	_, err = directory.ResolveByAPIKey(ctx, oldKey)
	require.NoError(t, err)

	newKey, err := directory.RotateKey(ctx, created.Id)
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, newKey)

	// Old key is dead immediately, new key works
	_, err = directory.ResolveByAPIKey(ctx, oldKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	resolved, err := directory.ResolveByAPIKey(ctx, newKey)
	require.NoError(t, err)
	assert.Equal(t, created.Id, resolved.Id)
}

func TestDelete(t *testing.T) {
	directory := newTestDirectory(t)
	ctx := context.Background()

	created, rawKey, err := directory.Create(ctx, "acme", core.PlanFree)
	require.NoError(t, err)

	// Warm both caches
	_, err = directory.ResolveByAPIKey(ctx, rawKey)
	require.NoError(t, err)
	_, err = directory.ResolveByID(ctx, created.Id)
	require.NoError(t, err)

	require.NoError(t, directory.Delete(ctx, created.Id))

	_, err = directory.ResolveByAPIKey(ctx, rawKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = directory.ResolveByID(ctx, created.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	t.Run("mutations on deleted tenant fail", func(t *testing.T) {
		_, err := directory.UpdatePlan(ctx, created.Id, core.PlanPro)
		assert.ErrorIs(t, err, ErrTenantDeleted)

		_, err = directory.RotateKey(ctx, created.Id)
		assert.ErrorIs(t, err, ErrTenantDeleted)

		err = directory.Delete(ctx, created.Id)
		assert.ErrorIs(t, err, ErrTenantDeleted)
	})
}
