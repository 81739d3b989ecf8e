package badger

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askbase/storage"
)

// CounterStore implements storage.CounterStore on BadgerDB for embedded
// deployments. A mutex serializes counter writes so increments are
// atomic within the process; multi-process deployments use the Redis
// store instead. Expiry rides on badger's native entry TTL.
type CounterStore struct {
	backend *Backend
	mu      sync.Mutex
}

var _ storage.CounterStore = (*CounterStore)(nil)

// NewCounterStore creates a new CounterStore.
func NewCounterStore(backend *Backend) *CounterStore {
	return &CounterStore{backend: backend}
}

// Close is a no-op; the store holds no resources of its own.
func (s *CounterStore) Close() error {
	return nil
}

// Increment atomically adds one to the counter and returns the new value.
// An expired or missing counter restarts at one.
func (s *CounterStore) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		k := makeCounterKey(key)
		current, expiresAt, err := readCounter(tx, k)
		if err != nil {
			return err
		}
		next = current + 1

		entry := badger.NewEntry(k, encodeCounter(next))
		// Preserve the bucket's TTL across increments
		entry.ExpiresAt = expiresAt
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Get returns the current counter value; missing counters read as zero.
func (s *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		value, _, err = readCounter(tx, makeCounterKey(key))
		return err
	}, false)
	return value, err
}

// SetExpiry attaches a TTL to the counter's key.
func (s *CounterStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend.WithTx(func(tx *badger.Txn) error {
		k := makeCounterKey(key)
		current, _, err := readCounter(tx, k)
		if err != nil {
			return err
		}
		entry := badger.NewEntry(k, encodeCounter(current)).WithTTL(ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readCounter returns the counter's value and its expiry timestamp.
// Badger hides expired entries, so a stale bucket reads as zero.
func readCounter(tx *badger.Txn, key []byte) (int64, uint64, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	var value int64
	err = item.Value(func(val []byte) error {
		if len(val) == 8 {
			value = int64(binary.BigEndian.Uint64(val))
		}
		return nil
	})
	return value, item.ExpiresAt(), err
}

// encodeCounter encodes a counter value as fixed-width BigEndian.
func encodeCounter(value int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(value))
	return buf
}
