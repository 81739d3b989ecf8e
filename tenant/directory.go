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


package tenant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

const (
	keyCacheTTL     = time.Minute
	profileCacheTTL = 5 * time.Minute

	cacheNumCounters = 10_000
	cacheMaxCost     = 1_000
	cacheBufferItems = 64

	apiKeyBytes = 24
)

// Directory resolves and manages tenant accounts, caching reads so the
// per-request API-key lookup doesn't hit storage every time.
type Directory struct {
	tenants  storage.TenantRepository
	keyCache *ristretto.Cache[string, *core.Tenant]
	idCache  *ristretto.Cache[uint64, *core.Tenant]
	logger   *slog.Logger
}

// Option configures a Directory.
type Option func(*Directory) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDirectory creates a tenant directory over the repository.
func NewDirectory(tenants storage.TenantRepository, opts ...Option) (*Directory, error) {
	if tenants == nil {
		return nil, ErrTenantRepositoryRequired
	}

	keyCache, err := ristretto.NewCache(&ristretto.Config[string, *core.Tenant]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("creating key cache: %w", err)
	}

	idCache, err := ristretto.NewCache(&ristretto.Config[uint64, *core.Tenant]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		keyCache.Close()
		return nil, fmt.Errorf("creating profile cache: %w", err)
	}

	d := &Directory{
		tenants:  tenants,
		keyCache: keyCache,
		idCache:  idCache,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			d.Close()
			return nil, err
		}
	}

	return d, nil
}

// Close releases both caches. The underlying repository is owned by the
// caller and stays open.
func (d *Directory) Close() error {
	d.keyCache.Close()
	d.idCache.Close()
	return nil
}

// HashAPIKey hashes a raw API key for storage and lookup. Raw keys are
// never persisted or logged.
func HashAPIKey(rawKey string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(rawKey))
	return hex.EncodeToString(h.Sum(nil))
}

// Create provisions a tenant on the plan and issues its API key. The
// raw key is returned exactly once; only its hash is stored.
func (d *Directory) Create(ctx context.Context, name string, plan core.PlanTier) (*core.Tenant, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", ErrEmptyName
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("generating api key: %w", err)
	}

	created, err := d.tenants.AddTenant(ctx, &core.Tenant{
		Name:    strings.TrimSpace(name),
		KeyHash: HashAPIKey(rawKey),
		Plan:    plan,
		Limits:  core.LimitsForPlan(plan),
		Status:  core.TenantActive,
	})
	if err != nil {
		return nil, "", err
	}

	d.logger.Info("tenant created", "tenant", created.Id, "plan", plan.String())
	return created, rawKey, nil
}

// ResolveByAPIKey looks up the active tenant owning the raw API key.
// Returns storage.ErrNotFound for unknown keys and deleted tenants.
func (d *Directory) ResolveByAPIKey(ctx context.Context, rawKey string) (*core.Tenant, error) {
	keyHash := HashAPIKey(rawKey)

	if cached, found := d.keyCache.Get(keyHash); found {
		return cached, nil
	}

	tenant, err := d.tenants.GetTenantByKeyHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}
	if tenant.Status != core.TenantActive {
		return nil, storage.ErrNotFound
	}

	d.keyCache.SetWithTTL(keyHash, tenant, 1, keyCacheTTL)
	return tenant, nil
}

// ResolveByID looks up an active tenant by ID.
// Returns storage.ErrNotFound for absent and deleted tenants.
func (d *Directory) ResolveByID(ctx context.Context, id core.ID) (*core.Tenant, error) {
	if cached, found := d.idCache.Get(uint64(id)); found {
		return cached, nil
	}

	tenant, err := d.tenants.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.Status != core.TenantActive {
		return nil, storage.ErrNotFound
	}

	d.idCache.SetWithTTL(uint64(id), tenant, 1, profileCacheTTL)
	return tenant, nil
}

// UpdatePlan moves a tenant to a new plan, replacing its limits
// wholesale. The change is visible to the next resolution.
func (d *Directory) UpdatePlan(ctx context.Context, id core.ID, plan core.PlanTier) (*core.Tenant, error) {
	tenant, err := d.activeTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.Plan = plan
	tenant.Limits = core.LimitsForPlan(plan)

	updated, err := d.tenants.UpdateTenant(ctx, tenant)
	if err != nil {
		return nil, err
	}

	d.invalidate(updated)
	d.logger.Info("tenant plan updated", "tenant", id, "plan", plan.String())
	return updated, nil
}

// RotateKey issues a new API key, retiring the old one immediately.
// The raw key is returned exactly once.
func (d *Directory) RotateKey(ctx context.Context, id core.ID) (string, error) {
	tenant, err := d.activeTenant(ctx, id)
	if err != nil {
		return "", err
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}

	oldHash := tenant.KeyHash
	tenant.KeyHash = HashAPIKey(rawKey)

	updated, err := d.tenants.UpdateTenant(ctx, tenant)
	if err != nil {
		return "", err
	}

	d.keyCache.Del(oldHash)
	d.invalidate(updated)
	d.logger.Info("tenant key rotated", "tenant", id)
	return rawKey, nil
}

// Delete soft-deletes a tenant. Its data stays in storage but no
// resolution will return the account again.
func (d *Directory) Delete(ctx context.Context, id core.ID) error {
	tenant, err := d.activeTenant(ctx, id)
	if err != nil {
		return err
	}

	tenant.Status = core.TenantDeleted

	updated, err := d.tenants.UpdateTenant(ctx, tenant)
	if err != nil {
		return err
	}

	d.invalidate(updated)
	d.logger.Info("tenant deleted", "tenant", id)
	return nil
}

// activeTenant reads the live record from storage, bypassing caches so
// mutations never operate on stale profiles.
func (d *Directory) activeTenant(ctx context.Context, id core.ID) (*core.Tenant, error) {
	tenant, err := d.tenants.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.Status != core.TenantActive {
		return nil, ErrTenantDeleted
	}
	return tenant, nil
}

// invalidate drops the tenant's cache entries and waits for the drops
// to land, so callers observe the mutation immediately.
func (d *Directory) invalidate(tenant *core.Tenant) {
	d.keyCache.Del(tenant.KeyHash)
	d.idCache.Del(uint64(tenant.Id))
	d.keyCache.Wait()
	d.idCache.Wait()
}

// generateAPIKey produces a random URL-safe key.
func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ak_" + hex.EncodeToString(buf), nil
}
