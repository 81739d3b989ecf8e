package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/askbase/ai/mock"
	"github.com/poiesic/askbase/core"
	badgerstore "github.com/poiesic/askbase/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, embedder *mock.MockEmbedder) (*Pipeline, *badgerstore.MemoryStore) {
	t.Helper()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pipeline, err := NewPipeline(store.Sections, embedder, WithChunking(4, 1))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, store
}

func freeLimits() core.Limits {
	return core.LimitsForPlan(core.PlanFree)
}

func TestNewPipeline(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)

	t.Run("requires section repository", func(t *testing.T) {
		_, err := NewPipeline(nil, embedder)
		assert.ErrorIs(t, err, ErrSectionRepositoryRequired)
	})

	t.Run("requires embedder", func(t *testing.T) {
		store, err := badgerstore.NewMemoryStore()
		require.NoError(t, err)
		defer store.Close()

		_, err = NewPipeline(store.Sections, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
}

func TestIngest(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)
	pipeline, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	t.Run("empty batch rejected", func(t *testing.T) {
		_, err := pipeline.Ingest(ctx, 1, freeLimits(), nil)
		assert.ErrorIs(t, err, ErrNoInputs)
	})

	t.Run("persists sections with embedded chunks", func(t *testing.T) {
		result, err := pipeline.Ingest(ctx, 1, freeLimits(), []SectionInput{
			{Type: "faq", Title: "Shipping", Text: "we ship worldwide within five business days of purchase"},
			{Type: "faq", Title: "Returns", Text: "returns accepted within thirty days in original packaging"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.SectionsCreated)
		assert.Greater(t, result.ChunksCreated, 0)
		require.Len(t, result.PerSection, 2)

		for _, sr := range result.PerSection {
			assert.NoError(t, sr.Err)
			assert.NotZero(t, sr.SectionId)
			assert.Greater(t, sr.Chunks, 0)
		}

		count, err := store.Sections.CountSections(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		// Every persisted chunk carries an embedding
		err = store.Chunks.ScanChunks(ctx, 1, "", func(chunk *core.Chunk) error {
			assert.Len(t, chunk.Vector, 16)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("invalid section reported, rest of batch lands", func(t *testing.T) {
		before, err := store.Sections.CountSections(ctx, 1)
		require.NoError(t, err)

		result, err := pipeline.Ingest(ctx, 1, freeLimits(), []SectionInput{
			{Type: "faq", Title: "   ", Text: "some text"},
			{Type: "faq", Title: "Valid", Text: "perfectly valid section text here"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.SectionsCreated)
		assert.ErrorIs(t, result.PerSection[0].Err, core.ErrInvalidSection)
		assert.NoError(t, result.PerSection[1].Err)

		after, err := store.Sections.CountSections(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
	})
}

func TestIngestSectionQuota(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)
	pipeline, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	limits := freeLimits()
	require.Equal(t, 10, limits.SectionsPerTenant)

	inputs := make([]SectionInput, 9)
	for i := range inputs {
		inputs[i] = SectionInput{Type: "faq", Title: "Section", Text: "filler section body text"}
	}
	_, err := pipeline.Ingest(ctx, 1, limits, inputs)
	require.NoError(t, err)

	// 9 existing + 2 new exceeds the limit of 10: nothing persists
	_, err = pipeline.Ingest(ctx, 1, limits, []SectionInput{
		{Type: "faq", Title: "Ten", Text: "tenth section body"},
		{Type: "faq", Title: "Eleven", Text: "eleventh section body"},
	})
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)

	count, err := store.Sections.CountSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, count)

	// A batch that fits exactly still lands
	_, err = pipeline.Ingest(ctx, 1, limits, []SectionInput{
		{Type: "faq", Title: "Ten", Text: "tenth section body"},
	})
	require.NoError(t, err)
}

func TestIngestEmbeddingFailureAtomic(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)
	pipeline, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	result, err := pipeline.Ingest(ctx, 1, freeLimits(), []SectionInput{
		{Type: "faq", Title: "Doomed", Text: "this section cannot be embedded"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.SectionsCreated)
	assert.ErrorIs(t, result.PerSection[0].Err, core.ErrEmbeddingUnavailable)

	// No partial section is visible
	count, err := store.Sections.CountSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIngestDimensionEnforced(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)
	pipeline, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, 8) // wrong width
		}
		return vectors, nil
	}

	result, err := pipeline.Ingest(ctx, 1, freeLimits(), []SectionInput{
		{Type: "faq", Title: "Narrow", Text: "vectors here come back too narrow"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.SectionsCreated)
	assert.ErrorIs(t, result.PerSection[0].Err, core.ErrDimensionMismatch)

	count, err := store.Sections.CountSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReplaceSection(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)
	pipeline, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	result, err := pipeline.Ingest(ctx, 1, freeLimits(), []SectionInput{
		{Type: "faq", Title: "Shipping", Text: "old shipping text that will be replaced entirely"},
	})
	require.NoError(t, err)
	sectionID := result.PerSection[0].SectionId

	saved, err := pipeline.ReplaceSection(ctx, 1, sectionID, SectionInput{
		Type: "faq", Title: "Shipping", Text: "brand new shipping text",
	})
	require.NoError(t, err)
	assert.Equal(t, sectionID, saved.Id)

	// Old chunks are gone; only the replacement's remain
	var texts []string
	err = store.Chunks.ScanChunks(ctx, 1, "", func(chunk *core.Chunk) error {
		texts = append(texts, chunk.Text)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "brand new")

	t.Run("missing section", func(t *testing.T) {
		_, err := pipeline.ReplaceSection(ctx, 1, 999999, SectionInput{
			Type: "faq", Title: "Ghost", Text: "text",
		})
		assert.Error(t, err)
	})
}

func TestDeleteSection(t *testing.T) {
	embedder := mock.NewMockEmbedder(16)
	pipeline, store := newTestPipeline(t, embedder)
	ctx := context.Background()

	result, err := pipeline.Ingest(ctx, 1, freeLimits(), []SectionInput{
		{Type: "faq", Title: "Shipping", Text: "section that will be deleted shortly"},
	})
	require.NoError(t, err)
	sectionID := result.PerSection[0].SectionId

	require.NoError(t, pipeline.DeleteSection(ctx, 1, sectionID))

	count, err := store.Sections.CountSections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	chunks := 0
	err = store.Chunks.ScanChunks(ctx, 1, "", func(*core.Chunk) error {
		chunks++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, chunks)
}
