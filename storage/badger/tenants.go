package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

// TenantRepository implements storage.TenantRepository for BadgerDB.
type TenantRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TenantRepository = (*TenantRepository)(nil)

// NewTenantRepository creates a new TenantRepository.
func NewTenantRepository(backend *Backend) (*TenantRepository, error) {
	idSeq, err := backend.GetSequence(tenantIDSeq)
	if err != nil {
		return nil, err
	}

	return &TenantRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TenantRepository) Close() error {
	return r.idSeq.Release()
}

// AddTenant adds a tenant to storage.
func (r *TenantRepository) AddTenant(ctx context.Context, tenant *core.Tenant) (*core.Tenant, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if tenant.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			tenant.Id = core.ID(nextID)
		}

		if tenant.InsertedAt.IsZero() {
			tenant.InsertedAt = time.Now().UTC()
		}
		tenant.UpdatedAt = tenant.InsertedAt

		key := makeTenantKey(tenant.Id)
		if err := tx.Set(key, storage.MarshalTenant(tenant)); err != nil {
			return err
		}

		// Key hash index
		if tenant.KeyHash != "" {
			if err := tx.Set(makeTenantKeyHashKey(tenant.KeyHash), storage.MarshalID(tenant.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return tenant, err
}

// UpdateTenant updates an existing tenant.
func (r *TenantRepository) UpdateTenant(ctx context.Context, tenant *core.Tenant) (*core.Tenant, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTenantKey(tenant.Id)

		old, err := readTenant(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		tenant.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalTenant(tenant)); err != nil {
			return err
		}

		// Move the key hash index on credential rotation
		if old.KeyHash != tenant.KeyHash {
			if old.KeyHash != "" {
				if err := tx.Delete(makeTenantKeyHashKey(old.KeyHash)); err != nil {
					return err
				}
			}
			if tenant.KeyHash != "" {
				if err := tx.Set(makeTenantKeyHashKey(tenant.KeyHash), storage.MarshalID(tenant.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return tenant, err
}

// GetTenant retrieves a tenant by ID.
func (r *TenantRepository) GetTenant(ctx context.Context, id core.ID) (*core.Tenant, error) {
	var result *core.Tenant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTenant(tx, makeTenantKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetTenantByKeyHash retrieves a tenant through the key hash index.
func (r *TenantRepository) GetTenantByKeyHash(ctx context.Context, keyHash string) (*core.Tenant, error) {
	var result *core.Tenant
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTenantKeyHashKey(keyHash))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var tenantID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			tenantID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readTenant(tx, makeTenantKey(tenantID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// readTenant reads a tenant record from the transaction.
func readTenant(tx *badger.Txn, key []byte) (*core.Tenant, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var tenant *core.Tenant
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		tenant, unmarshalErr = storage.UnmarshalTenant(val)
		return unmarshalErr
	})
	return tenant, err
}
