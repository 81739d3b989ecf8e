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


package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
	// monthTTL outlives any calendar month, so stale month buckets
	// expire without a sweeper.
	monthTTL = 60 * 24 * time.Hour
)

// Reason names which limit rejected a request.
type Reason string

const (
	// ReasonNone means the request was admitted.
	ReasonNone Reason = ""
	// ReasonMinute means the per-minute rate was exceeded.
	ReasonMinute Reason = "requests_per_minute"
	// ReasonHour means the per-hour rate was exceeded.
	ReasonHour Reason = "requests_per_hour"
	// ReasonMonth means the monthly quota was exhausted.
	ReasonMonth Reason = "api_calls_per_month"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  Reason
	// RetryAfter hints when the rejected window rolls over. Zero for
	// monthly rejections, which have no short-term retry.
	RetryAfter time.Duration
}

// Ledger tracks per-tenant request counts against plan limits.
type Ledger struct {
	counters storage.CounterStore
	logger   *slog.Logger
	// now is replaceable for window-boundary tests.
	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithClock overrides the ledger's time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) error {
		if now != nil {
			l.now = now
		}
		return nil
	}
}

// NewLedger creates a quota ledger over the counter store.
func NewLedger(counters storage.CounterStore, opts ...Option) (*Ledger, error) {
	if counters == nil {
		return nil, ErrCounterStoreRequired
	}

	l := &Ledger{
		counters: counters,
		logger:   slog.Default(),
		now:      time.Now,
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Admit counts one request for the tenant and decides whether it may
// proceed under the plan limits. Counter store failures are logged and
// the request admitted, so quota bookkeeping can't take tenants down.
func (l *Ledger) Admit(ctx context.Context, tenantID core.ID, limits core.Limits) Decision {
	now := l.now().UTC()

	// Rolling windows: increment first, then compare. Over-limit
	// requests still count toward the window they hit.
	count, err := l.bump(ctx, minuteKey(tenantID, now), minuteWindow)
	if err != nil {
		l.logger.Error("minute counter unavailable, admitting", "tenant", tenantID, "err", err)
		return Decision{Allowed: true}
	}
	if limits.RequestsPerMinute > 0 && count > int64(limits.RequestsPerMinute) {
		return Decision{Allowed: false, Reason: ReasonMinute, RetryAfter: minuteWindow}
	}

	count, err = l.bump(ctx, hourKey(tenantID, now), hourWindow)
	if err != nil {
		l.logger.Error("hour counter unavailable, admitting", "tenant", tenantID, "err", err)
		return Decision{Allowed: true}
	}
	if limits.RequestsPerHour > 0 && count > int64(limits.RequestsPerHour) {
		return Decision{Allowed: false, Reason: ReasonHour, RetryAfter: hourWindow}
	}

	// Monthly quota: read before counting so a rejected request does
	// not consume monthly budget.
	mKey := monthKey(tenantID, now)
	used, err := l.counters.Get(ctx, mKey)
	if err != nil {
		l.logger.Error("month counter unavailable, admitting", "tenant", tenantID, "err", err)
		return Decision{Allowed: true}
	}
	if limits.APICallsPerMonth > 0 && used >= int64(limits.APICallsPerMonth) {
		return Decision{Allowed: false, Reason: ReasonMonth}
	}

	if _, err := l.bump(ctx, mKey, monthTTL); err != nil {
		l.logger.Error("month counter unavailable, admitting", "tenant", tenantID, "err", err)
	}

	return Decision{Allowed: true}
}

// bump increments a bucket, attaching its TTL when the bucket is new.
func (l *Ledger) bump(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.counters.Increment(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.counters.SetExpiry(ctx, key, ttl); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func minuteKey(tenantID core.ID, now time.Time) string {
	return fmt.Sprintf("quota:%d:min:%d", tenantID, now.Unix()/60)
}

func hourKey(tenantID core.ID, now time.Time) string {
	return fmt.Sprintf("quota:%d:hr:%d", tenantID, now.Unix()/3600)
}

func monthKey(tenantID core.ID, now time.Time) string {
	return fmt.Sprintf("quota:%d:mo:%04d%02d", tenantID, now.Year(), int(now.Month()))
}
