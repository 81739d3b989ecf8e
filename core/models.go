package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PlanTier identifies a tenant's subscription plan.
type PlanTier int

const (
	// PlanFree is the entry-level plan.
	PlanFree PlanTier = iota + 1
	// PlanStarter is the mid-range plan.
	PlanStarter
	// PlanPro is the top plan.
	PlanPro
)

// String returns the lowercase plan name.
func (p PlanTier) String() string {
	switch p {
	case PlanFree:
		return "free"
	case PlanStarter:
		return "starter"
	case PlanPro:
		return "pro"
	default:
		return "unknown"
	}
}

// ParsePlanTier maps a plan name to its PlanTier.
// Returns ErrInvalidPlanTier for unknown names.
func ParsePlanTier(name string) (PlanTier, error) {
	switch name {
	case "free":
		return PlanFree, nil
	case "starter":
		return PlanStarter, nil
	case "pro":
		return PlanPro, nil
	default:
		return 0, ErrInvalidPlanTier
	}
}

// Limits holds the usage quotas of a tenant.
// Limits are a pure function of the plan tier and are replaced
// wholesale on plan change.
type Limits struct {
	RequestsPerMinute   int
	RequestsPerHour     int
	APICallsPerMonth    int
	SectionsPerTenant   int
	MaxTokensPerRequest int
}

// LimitsForPlan returns the quota limits for a plan tier.
// Unknown tiers get the free limits.
func LimitsForPlan(tier PlanTier) Limits {
	switch tier {
	case PlanStarter:
		return Limits{
			RequestsPerMinute:   30,
			RequestsPerHour:     500,
			APICallsPerMonth:    10000,
			SectionsPerTenant:   50,
			MaxTokensPerRequest: 2048,
		}
	case PlanPro:
		return Limits{
			RequestsPerMinute:   120,
			RequestsPerHour:     3000,
			APICallsPerMonth:    100000,
			SectionsPerTenant:   500,
			MaxTokensPerRequest: 4096,
		}
	default:
		return Limits{
			RequestsPerMinute:   5,
			RequestsPerHour:     100,
			APICallsPerMonth:    1000,
			SectionsPerTenant:   10,
			MaxTokensPerRequest: 1024,
		}
	}
}

// TenantStatus tracks the lifecycle of a tenant account.
// Tenants are never hard-deleted.
type TenantStatus int

const (
	// TenantActive is a live account.
	TenantActive TenantStatus = iota + 1
	// TenantDeleted is a soft-deleted account.
	TenantDeleted
)

// Tenant is an isolated customer account, the unit of data
// ownership and quota enforcement.
type Tenant struct {
	Id         ID
	Name       string
	KeyHash    string // BLAKE2b-256 hex digest of the API key; raw keys are never stored
	Plan       PlanTier
	Limits     Limits
	Status     TenantStatus
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SectionStatus tracks whether a section is live.
type SectionStatus int

const (
	// SectionActive is a live section.
	SectionActive SectionStatus = iota + 1
	// SectionDeleted marks a removed section.
	SectionDeleted
)

// Section is a titled, typed block of source text supplied by a tenant.
type Section struct {
	Id         ID
	TenantId   ID
	Type       string
	Title      string
	Text       string
	ChunkCount int // Always equals the number of live chunks for this section
	Status     SectionStatus
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Chunk is a fixed-size overlapping slice of a section's text, carrying
// its own embedding vector. Chunks are immutable once created except by
// full regeneration of the owning section. Section title and type are
// denormalized so search results need no join.
type Chunk struct {
	Id           ID
	SectionId    ID
	TenantId     ID
	Ordinal      int // Position within the section
	Text         string
	Vector       []float32
	SectionTitle string
	SectionType  string
}

// Passage is a scored search result returned to the caller.
type Passage struct {
	SectionId ID
	Title     string
	Type      string
	Text      string
	Score     float32 // In [0, 1]
}

// TurnRole identifies the author of a session turn.
type TurnRole int

const (
	// TurnRoleUser is a turn written by the tenant's end user.
	TurnRoleUser TurnRole = iota + 1
	// TurnRoleAssistant is a generated answer.
	TurnRoleAssistant
)

// Turn is one entry of a session's conversation history.
type Turn struct {
	Role TurnRole
	Text string
}
