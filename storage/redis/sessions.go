// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package redis

import (
	"context"
	"time"

	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix = "askbase:ses:"

	// maxSessionTurns caps the stored history length per session.
	maxSessionTurns = 20
	// sessionTTL expires idle sessions.
	sessionTTL = 24 * time.Hour
)

// SessionStore implements storage.SessionStore on a Redis list, one
// element per turn. RPUSH plus LTRIM keeps the list capped server-side.
type SessionStore struct {
	client *redis.Client
}

var _ storage.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore from a Redis URL.
func NewSessionStore(redisURL string) (*SessionStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &SessionStore{client: redis.NewClient(opt)}, nil
}

// NewSessionStoreWithClient wraps an existing client, which the caller
// remains responsible for closing.
func NewSessionStoreWithClient(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Close closes the underlying client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// AppendTurns appends turns to the session history, trimming the oldest
// entries beyond the cap and refreshing the expiry.
func (s *SessionStore) AppendTurns(ctx context.Context, sessionID string, turns ...core.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	key := sessionPrefix + sessionID
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		values = append(values, storage.MarshalTurn(turn))
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-maxSessionTurns), -1)
	pipe.Expire(ctx, key, sessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// History returns up to limit most recent turns in chronological order.
func (s *SessionStore) History(ctx context.Context, sessionID string, limit int) ([]core.Turn, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raw, err := s.client.LRange(ctx, sessionPrefix+sessionID, start, -1).Result()
	if err != nil {
		return nil, err
	}

	turns := make([]core.Turn, 0, len(raw))
	for _, blob := range raw {
		turn, err := storage.UnmarshalTurn([]byte(blob))
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
