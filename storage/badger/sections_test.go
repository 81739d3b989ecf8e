package badger

import (
	"context"
	"testing"

	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSection(tenantID core.ID, title, text string) *core.Section {
	return &core.Section{
		TenantId: tenantID,
		Type:     "faq",
		Title:    title,
		Text:     text,
	}
}

func chunksFor(section *core.Section, texts ...string) []*core.Chunk {
	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			Text:         text,
			Vector:       []float32{1, 0, 0},
			SectionTitle: section.Title,
			SectionType:  section.Type,
		}
	}
	return chunks
}

func TestPutSectionWithChunks(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("create assigns id and chunk count", func(t *testing.T) {
		section := newSection(1, "Shipping", "We ship worldwide")
		section, err := store.Sections.PutSectionWithChunks(ctx, section, chunksFor(section, "We ship", "ship worldwide"))
		require.NoError(t, err)
		assert.NotZero(t, section.Id)
		assert.Equal(t, 2, section.ChunkCount)
		assert.Equal(t, core.SectionActive, section.Status)

		got, err := store.Sections.GetSection(ctx, 1, section.Id)
		require.NoError(t, err)
		assert.Equal(t, "Shipping", got.Title)
		assert.Equal(t, 2, got.ChunkCount)
	})

	t.Run("chunk count matches live chunk rows", func(t *testing.T) {
		section := newSection(2, "Returns", "30 day returns")
		section, err := store.Sections.PutSectionWithChunks(ctx, section, chunksFor(section, "30 day", "day returns", "returns"))
		require.NoError(t, err)

		live := 0
		err = store.Chunks.ScanChunks(ctx, 2, "", func(*core.Chunk) error {
			live++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, section.ChunkCount, live)
	})

	t.Run("replacement regenerates chunks en masse", func(t *testing.T) {
		section := newSection(3, "Pricing", "old text")
		section, err := store.Sections.PutSectionWithChunks(ctx, section, chunksFor(section, "old a", "old b", "old c"))
		require.NoError(t, err)

		section.Text = "new text"
		section, err = store.Sections.PutSectionWithChunks(ctx, section, chunksFor(section, "new a"))
		require.NoError(t, err)
		assert.Equal(t, 1, section.ChunkCount)

		var texts []string
		err = store.Chunks.ScanChunks(ctx, 3, "", func(c *core.Chunk) error {
			texts = append(texts, c.Text)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"new a"}, texts)
	})
}

func TestDeleteSection(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	section := newSection(1, "Shipping", "text")
	section, err = store.Sections.PutSectionWithChunks(ctx, section, chunksFor(section, "a", "b"))
	require.NoError(t, err)

	require.NoError(t, store.Sections.DeleteSection(ctx, 1, section.Id))

	_, err = store.Sections.GetSection(ctx, 1, section.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Chunks deleted en masse with the section
	count := 0
	require.NoError(t, store.Chunks.ScanChunks(ctx, 1, "", func(*core.Chunk) error {
		count++
		return nil
	}))
	assert.Zero(t, count)

	t.Run("absent section", func(t *testing.T) {
		err := store.Sections.DeleteSection(ctx, 1, 9999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestListAndCountSections(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	titles := []string{"First", "Second", "Third"}
	for _, title := range titles {
		section := newSection(7, title, "body")
		_, err := store.Sections.PutSectionWithChunks(ctx, section, chunksFor(section, "body"))
		require.NoError(t, err)
	}

	sections, err := store.Sections.ListSections(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	// Insertion order preserved
	for i, section := range sections {
		assert.Equal(t, titles[i], section.Title)
	}

	count, err := store.Sections.CountSections(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	t.Run("empty tenant", func(t *testing.T) {
		count, err := store.Sections.CountSections(ctx, 8)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestTenantIsolation(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	mine := newSection(1, "Mine", "tenant one text")
	mine, err = store.Sections.PutSectionWithChunks(ctx, mine, chunksFor(mine, "tenant one text"))
	require.NoError(t, err)

	theirs := newSection(2, "Theirs", "tenant two text")
	_, err = store.Sections.PutSectionWithChunks(ctx, theirs, chunksFor(theirs, "tenant two text"))
	require.NoError(t, err)

	// Reads are filtered by tenant
	_, err = store.Sections.GetSection(ctx, 2, mine.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	sections, err := store.Sections.ListSections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Mine", sections[0].Title)

	// Chunk scans never cross tenants
	var seen []string
	require.NoError(t, store.Chunks.ScanChunks(ctx, 2, "", func(c *core.Chunk) error {
		seen = append(seen, c.Text)
		return nil
	}))
	assert.Equal(t, []string{"tenant two text"}, seen)
}
