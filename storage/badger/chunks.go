package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB with a
// brute-force cosine scan over the tenant's chunks. Vectors are stored
// unit-normalized, so the dot product is the cosine similarity.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar finds the tenant's chunks most similar to the vector.
func (r *ChunkRepository) FindSimilar(ctx context.Context, tenantID core.ID, vector []float32, typeFilter string, minScore float32, limit int) ([]storage.SimilarityMatch, error) {
	var results []storage.SimilarityMatch

	err := r.ScanChunks(ctx, tenantID, typeFilter, func(chunk *core.Chunk) error {
		if len(chunk.Vector) == 0 {
			return nil
		}
		score := dotProduct(vector, chunk.Vector)
		if score >= minScore {
			results = append(results, storage.SimilarityMatch{Chunk: chunk, Score: score})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable: insertion order breaks score ties
	slices.SortStableFunc(results, func(a, b storage.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ScanChunks iterates the tenant's chunks in insertion order.
func (r *ChunkRepository) ScanChunks(ctx context.Context, tenantID core.ID, typeFilter string, fn func(*core.Chunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScanPrefix(tenantID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil {
				continue
			}
			if typeFilter != "" && chunk.SectionType != typeFilter {
				continue
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
