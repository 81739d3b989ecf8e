package askbase

import (
	"context"
	"testing"

	"github.com/poiesic/askbase/ai/mock"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/ingest"
	"github.com/poiesic/askbase/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *mock.MockProvider) {
	t.Helper()

	provider := mock.NewMockProvider()
	service, err := NewService("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })
	return service, provider
}

func createTenant(t *testing.T, service *Service, plan core.PlanTier) *core.Tenant {
	t.Helper()
	created, _, err := service.Directory().Create(context.Background(), "acme", plan)
	require.NoError(t, err)
	return created
}

func TestServiceIngestAndQuery(t *testing.T) {
	service, provider := newTestService(t)
	ctx := context.Background()
	tn := createTenant(t, service, core.PlanStarter)

	result, err := service.Ingest(ctx, tn.Id, []ingest.SectionInput{
		{Type: "faq", Title: "Shipping", Text: "We offer free shipping on orders over fifty dollars"},
		{Type: "faq", Title: "Returns", Text: "Returns are accepted within thirty days of purchase"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SectionsCreated)

	t.Run("answers from retrieved passages", func(t *testing.T) {
		answer, err := service.Query(ctx, tn.Id,
			"We offer free shipping on orders over fifty dollars", QueryOptions{})
		require.NoError(t, err)
		assert.NotEmpty(t, answer.Answer)
		assert.NotEmpty(t, answer.Passages)
		assert.Equal(t, search.TierVector, answer.Tier)
		assert.Equal(t, 1, provider.MockCompleter().CallCount())
	})

	t.Run("no passages means canned answer, no completion", func(t *testing.T) {
		before := provider.MockCompleter().CallCount()

		answer, err := service.Query(ctx, tn.Id, "zzzqqqxxx nonsense", QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, insufficientAnswer, answer.Answer)
		assert.Empty(t, answer.Passages)
		assert.Equal(t, before, provider.MockCompleter().CallCount())
	})
}

func TestServiceQuerySession(t *testing.T) {
	service, provider := newTestService(t)
	ctx := context.Background()
	tn := createTenant(t, service, core.PlanStarter)

	_, err := service.Ingest(ctx, tn.Id, []ingest.SectionInput{
		{Type: "faq", Title: "Shipping", Text: "We offer free shipping on orders over fifty dollars"},
	})
	require.NoError(t, err)

	var seenHistory []core.Turn
	provider.MockCompleter().CompleteFunc = func(ctx context.Context, systemPrompt string, history []core.Turn, userPrompt string, maxTokens int) (string, error) {
		seenHistory = history
		return "an answer", nil
	}

	question := "We offer free shipping on orders over fifty dollars"

	_, err = service.Query(ctx, tn.Id, question, QueryOptions{SessionID: "s1"})
	require.NoError(t, err)
	assert.Empty(t, seenHistory)

	// The second question carries the first exchange as history
	_, err = service.Query(ctx, tn.Id, question, QueryOptions{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, seenHistory, 2)
	assert.Equal(t, core.TurnRoleUser, seenHistory[0].Role)
	assert.Equal(t, question, seenHistory[0].Text)
	assert.Equal(t, core.TurnRoleAssistant, seenHistory[1].Role)
}

func TestServiceQueryRateLimited(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	tn := createTenant(t, service, core.PlanFree)

	question := "anything goes here"
	for i := 0; i < tn.Limits.RequestsPerMinute; i++ {
		_, err := service.Query(ctx, tn.Id, question, QueryOptions{})
		require.NoError(t, err)
	}

	_, err := service.Query(ctx, tn.Id, question, QueryOptions{})
	assert.ErrorIs(t, err, core.ErrRateLimited)
}

func TestServiceQueryTokenBudget(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	tn := createTenant(t, service, core.PlanFree)

	long := make([]byte, 0, tn.Limits.MaxTokensPerRequest*3)
	for i := 0; i <= tn.Limits.MaxTokensPerRequest; i++ {
		long = append(long, 'w', ' ')
	}

	_, err := service.Query(ctx, tn.Id, string(long), QueryOptions{})
	assert.ErrorIs(t, err, core.ErrRequestTooLarge)
}

func TestServiceAuthenticate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, rawKey, err := service.Directory().Create(ctx, "acme", core.PlanFree)
	require.NoError(t, err)

	resolved, err := service.Authenticate(ctx, rawKey)
	require.NoError(t, err)
	assert.Equal(t, created.Id, resolved.Id)

	_, err = service.Authenticate(ctx, "ak_wrong")
	assert.Error(t, err)
}

func TestServiceSectionLifecycle(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	tn := createTenant(t, service, core.PlanFree)

	result, err := service.Ingest(ctx, tn.Id, []ingest.SectionInput{
		{Type: "faq", Title: "Shipping", Text: "original shipping details live here"},
	})
	require.NoError(t, err)
	sectionID := result.PerSection[0].SectionId

	_, err = service.ReplaceSection(ctx, tn.Id, sectionID, ingest.SectionInput{
		Type: "faq", Title: "Shipping", Text: "updated shipping details live here",
	})
	require.NoError(t, err)

	sections, err := service.Sections().ListSections(ctx, tn.Id)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Contains(t, sections[0].Text, "updated")

	require.NoError(t, service.DeleteSection(ctx, tn.Id, sectionID))

	count, err := service.Sections().CountSections(ctx, tn.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
