package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("hello world")
		id2 := IDFromContent("hello world")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		id1 := IDFromContent("hello world")
		id2 := IDFromContent("hello there")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content", func(t *testing.T) {
		id := IDFromContent("")
		assert.NotZero(t, id)
	})
}

func TestLimitsForPlan(t *testing.T) {
	free := LimitsForPlan(PlanFree)
	starter := LimitsForPlan(PlanStarter)
	pro := LimitsForPlan(PlanPro)

	assert.Less(t, free.RequestsPerMinute, starter.RequestsPerMinute)
	assert.Less(t, starter.RequestsPerMinute, pro.RequestsPerMinute)
	assert.Less(t, free.SectionsPerTenant, starter.SectionsPerTenant)
	assert.Less(t, starter.SectionsPerTenant, pro.SectionsPerTenant)

	t.Run("unknown tier falls back to free", func(t *testing.T) {
		assert.Equal(t, free, LimitsForPlan(PlanTier(99)))
	})

	t.Run("pure function", func(t *testing.T) {
		assert.Equal(t, LimitsForPlan(PlanPro), LimitsForPlan(PlanPro))
	})
}

func TestParsePlanTier(t *testing.T) {
	tier, err := ParsePlanTier("starter")
	require.NoError(t, err)
	assert.Equal(t, PlanStarter, tier)

	_, err = ParsePlanTier("platinum")
	assert.ErrorIs(t, err, ErrInvalidPlanTier)
}

func TestTenantRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	tenant := Tenant{
		Id:         42,
		Name:       "acme",
		KeyHash:    "deadbeef",
		Plan:       PlanStarter,
		Limits:     LimitsForPlan(PlanStarter),
		Status:     TenantActive,
		InsertedAt: now,
		UpdatedAt:  now,
	}

	buf := make([]byte, TenantMUS.Size(tenant))
	n := TenantMUS.Marshal(tenant, buf)
	require.Equal(t, len(buf), n)

	got, n, err := TenantMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, tenant, got)
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := Chunk{
		Id:           7,
		SectionId:    3,
		TenantId:     42,
		Ordinal:      2,
		Text:         "we offer free shipping on orders over $50",
		Vector:       []float32{0.25, -0.5, 0.75},
		SectionTitle: "Shipping policy",
		SectionType:  "faq",
	}

	buf := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, buf)

	got, _, err := ChunkMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestTurnsRoundTrip(t *testing.T) {
	turns := []Turn{
		{Role: TurnRoleUser, Text: "do you ship to Canada?"},
		{Role: TurnRoleAssistant, Text: "Yes, we ship worldwide."},
	}

	buf := make([]byte, TurnsMUS.Size(turns))
	TurnsMUS.Marshal(turns, buf)

	got, _, err := TurnsMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, turns, got)
}
