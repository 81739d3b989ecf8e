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
	"errors"
	"time"

	"github.com/poiesic/askbase/storage"
	"github.com/redis/go-redis/v9"
)

const counterPrefix = "askbase:ctr:"

// CounterStore implements storage.CounterStore on Redis. INCR is atomic
// server-side, so counters are safe across processes.
type CounterStore struct {
	client *redis.Client
}

var _ storage.CounterStore = (*CounterStore)(nil)

// NewCounterStore creates a CounterStore from a Redis URL.
func NewCounterStore(redisURL string) (*CounterStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &CounterStore{client: redis.NewClient(opt)}, nil
}

// NewCounterStoreWithClient wraps an existing client, which the caller
// remains responsible for closing.
func NewCounterStoreWithClient(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// Close closes the underlying client.
func (s *CounterStore) Close() error {
	return s.client.Close()
}

// Increment atomically adds one to the counter and returns the new value.
func (s *CounterStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, counterPrefix+key).Result()
}

// Get returns the current counter value; missing counters read as zero.
func (s *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Get(ctx, counterPrefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return value, nil
}

// SetExpiry attaches a TTL to the counter's key.
func (s *CounterStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, counterPrefix+key, ttl).Err()
}
