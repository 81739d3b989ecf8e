package badger

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

const (
	// maxSessionTurns caps the stored history length per session.
	maxSessionTurns = 20
	// sessionTTL expires idle sessions.
	sessionTTL = 24 * time.Hour
)

// SessionStore implements storage.SessionStore on BadgerDB. Each session
// is one record holding its turns, capped and TTL-expired.
type SessionStore struct {
	backend *Backend
	mu      sync.Mutex
}

var _ storage.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new SessionStore.
func NewSessionStore(backend *Backend) *SessionStore {
	return &SessionStore{backend: backend}
}

// Close is a no-op; the store holds no resources of its own.
func (s *SessionStore) Close() error {
	return nil
}

// AppendTurns appends turns to the session history, trimming the oldest
// entries beyond the cap and refreshing the expiry.
func (s *SessionStore) AppendTurns(ctx context.Context, sessionID string, turns ...core.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(sessionID)
		existing, err := readTurns(tx, key)
		if err != nil {
			return err
		}

		existing = append(existing, turns...)
		if len(existing) > maxSessionTurns {
			existing = existing[len(existing)-maxSessionTurns:]
		}

		entry := badger.NewEntry(key, storage.MarshalTurns(existing)).WithTTL(sessionTTL)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// History returns up to limit most recent turns in chronological order.
func (s *SessionStore) History(ctx context.Context, sessionID string, limit int) ([]core.Turn, error) {
	var turns []core.Turn
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		turns, err = readTurns(tx, makeSessionKey(sessionID))
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// readTurns reads a session's turns; a missing session is empty history.
func readTurns(tx *badger.Txn, key []byte) ([]core.Turn, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var turns []core.Turn
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		turns, unmarshalErr = storage.UnmarshalTurns(val)
		return unmarshalErr
	})
	return turns, err
}
