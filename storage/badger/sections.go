package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

// SectionRepository implements storage.SectionRepository for BadgerDB.
// Sections and their chunks are written and deleted in one transaction
// so ChunkCount always matches the live chunk rows.
type SectionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SectionRepository = (*SectionRepository)(nil)

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(backend *Backend) (*SectionRepository, error) {
	idSeq, err := backend.GetSequence(sectionIDSeq)
	if err != nil {
		return nil, err
	}

	return &SectionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SectionRepository) Close() error {
	return r.idSeq.Release()
}

// PutSectionWithChunks persists a section and its chunks atomically,
// replacing any previous chunks of the section.
func (r *SectionRepository) PutSectionWithChunks(ctx context.Context, section *core.Section, chunks []*core.Chunk) (*core.Section, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		if section.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			section.Id = core.ID(nextID)
			section.InsertedAt = now
		} else {
			// Replacement: clear previous chunk rows first
			if err := deleteSectionChunks(tx, section.TenantId, section.Id); err != nil {
				return err
			}
			if section.InsertedAt.IsZero() {
				section.InsertedAt = now
			}
		}
		section.UpdatedAt = now
		section.ChunkCount = len(chunks)
		if section.Status == 0 {
			section.Status = core.SectionActive
		}

		key := makeSectionKey(section.TenantId, section.Id)
		if err := tx.Set(key, storage.MarshalSection(section)); err != nil {
			return err
		}

		for i, chunk := range chunks {
			chunk.SectionId = section.Id
			chunk.TenantId = section.TenantId
			chunk.Ordinal = i
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(chunk.Text)
			}
			chunkKey := makeChunkKey(section.TenantId, section.Id, i)
			if err := tx.Set(chunkKey, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return section, err
}

// DeleteSection removes a section and all of its chunks.
func (r *SectionRepository) DeleteSection(ctx context.Context, tenantID, sectionID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSectionKey(tenantID, sectionID)
		section, err := readSection(tx, key)
		if err != nil {
			return err
		}
		if section == nil {
			return storage.ErrNotFound
		}

		if err := deleteSectionChunks(tx, tenantID, sectionID); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSection retrieves a section owned by the tenant.
func (r *SectionRepository) GetSection(ctx context.Context, tenantID, sectionID core.ID) (*core.Section, error) {
	var result *core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSection(tx, makeSectionKey(tenantID, sectionID))
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

// ListSections returns the tenant's sections in insertion order.
func (r *SectionRepository) ListSections(ctx context.Context, tenantID core.ID) ([]*core.Section, error) {
	var results []*core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSectionScanPrefix(tenantID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var section *core.Section
			err := iter.Item().Value(func(val []byte) error {
				var err error
				section, err = storage.UnmarshalSection(val)
				return err
			})
			if err != nil {
				return err
			}
			if section != nil {
				results = append(results, section)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountSections returns the number of sections the tenant owns.
func (r *SectionRepository) CountSections(ctx context.Context, tenantID core.ID) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSectionScanPrefix(tenantID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// deleteSectionChunks removes every chunk row of a section.
func deleteSectionChunks(tx *badger.Txn, tenantID, sectionID core.ID) error {
	prefix := makeChunkSectionPrefix(tenantID, sectionID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// readSection reads a section record from the transaction.
func readSection(tx *badger.Txn, key []byte) (*core.Section, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var section *core.Section
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		section, unmarshalErr = storage.UnmarshalSection(val)
		return unmarshalErr
	})
	return section, err
}
