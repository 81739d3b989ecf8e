package storage

import (
	"context"
	"time"

	"github.com/poiesic/askbase/core"
)

// SimilarityMatch is a chunk matched by a similarity or relevance query.
type SimilarityMatch struct {
	Chunk *core.Chunk
	Score float32
}

// TenantRepository provides operations for managing tenant records.
// Implementations must be thread-safe and support concurrent access.
type TenantRepository interface {
	// AddTenant adds a tenant to storage. For tenants with ID=0, generates
	// a new ID from sequence. Sets InsertedAt if not already set.
	AddTenant(ctx context.Context, tenant *core.Tenant) (*core.Tenant, error)

	// UpdateTenant updates an existing tenant, refreshing UpdatedAt.
	// Returns ErrNotFound if the tenant doesn't exist.
	UpdateTenant(ctx context.Context, tenant *core.Tenant) (*core.Tenant, error)

	// GetTenant retrieves a tenant by ID regardless of status.
	// Returns ErrNotFound if the tenant doesn't exist.
	GetTenant(ctx context.Context, id core.ID) (*core.Tenant, error)

	// GetTenantByKeyHash retrieves a tenant by its API key hash.
	// Returns ErrNotFound if no tenant carries the hash.
	GetTenantByKeyHash(ctx context.Context, keyHash string) (*core.Tenant, error)

	// Close releases resources held by the repository.
	Close() error
}

// SectionRepository provides tenant-scoped operations over sections and
// their chunks. Sections and chunks are always written and deleted
// together so that Section.ChunkCount matches the live chunk rows.
type SectionRepository interface {
	// PutSectionWithChunks persists a section and its chunks in a single
	// transaction, replacing any previous chunks of the section. The
	// section's ChunkCount is set to len(chunks) before the write. For
	// sections with ID=0, generates a new ID from sequence.
	PutSectionWithChunks(ctx context.Context, section *core.Section, chunks []*core.Chunk) (*core.Section, error)

	// DeleteSection removes a section and all of its chunks.
	// Returns ErrNotFound if the section doesn't exist for the tenant.
	DeleteSection(ctx context.Context, tenantID, sectionID core.ID) error

	// GetSection retrieves a section owned by the tenant.
	// Returns ErrNotFound if absent.
	GetSection(ctx context.Context, tenantID, sectionID core.ID) (*core.Section, error)

	// ListSections returns the tenant's sections in insertion order.
	ListSections(ctx context.Context, tenantID core.ID) ([]*core.Section, error)

	// CountSections returns the number of live sections the tenant owns.
	CountSections(ctx context.Context, tenantID core.ID) (int, error)

	// Close releases resources held by the repository.
	Close() error
}

// ChunkRepository provides tenant-scoped read access to chunks for the
// retrieval tiers.
type ChunkRepository interface {
	// FindSimilar returns the tenant's chunks most similar to the vector,
	// in descending cosine score, dropping scores below minScore and
	// truncating to limit. A non-empty typeFilter restricts matches to
	// chunks of that section type. Ties keep insertion order.
	FindSimilar(ctx context.Context, tenantID core.ID, vector []float32, typeFilter string, minScore float32, limit int) ([]SimilarityMatch, error)

	// ScanChunks calls fn for each of the tenant's chunks in insertion
	// order, optionally restricted by section type. Scanning stops at the
	// first error returned by fn.
	ScanChunks(ctx context.Context, tenantID core.ID, typeFilter string, fn func(*core.Chunk) error) error

	// Close releases resources held by the repository.
	Close() error
}

// TextSearcher is an optional text-relevance capability. A deployment
// may run without one; the retrieval engine then falls through to the
// keyword tier.
type TextSearcher interface {
	// TextSearch returns chunks ranked by text relevance to the query,
	// best first, truncated to limit. Scores are in [0, 1).
	TextSearch(ctx context.Context, tenantID core.ID, query string, typeFilter string, limit int) ([]SimilarityMatch, error)
}

// CounterStore provides atomic counters with expiry, used by the quota
// ledger. Each operation is individually atomic; no operation holds a
// lock across another.
type CounterStore interface {
	// Increment atomically adds one to the counter and returns the new value.
	// Missing counters start at zero.
	Increment(ctx context.Context, key string) (int64, error)

	// Get returns the current counter value. Missing counters read as zero.
	Get(ctx context.Context, key string) (int64, error)

	// SetExpiry attaches a time-to-live to the counter's key.
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error

	// Close releases resources held by the store.
	Close() error
}

// SessionStore keeps per-session conversation history with a capped
// length and an expiry. Sessions are scoped by session-id uniqueness,
// not by tenant.
type SessionStore interface {
	// AppendTurns appends turns to the session history, trimming the
	// oldest entries beyond the cap and refreshing the expiry.
	AppendTurns(ctx context.Context, sessionID string, turns ...core.Turn) error

	// History returns up to limit most recent turns in chronological order.
	History(ctx context.Context, sessionID string, limit int) ([]core.Turn, error)

	// Close releases resources held by the store.
	Close() error
}
