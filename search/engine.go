package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

// Tier identifies which retrieval tier produced a result set.
type Tier string

const (
	// TierVector is similarity search over chunk embeddings.
	TierVector Tier = "vector"
	// TierText is text-relevance search, when the backend provides one.
	TierText Tier = "text"
	// TierKeyword is verbatim keyword matching.
	TierKeyword Tier = "keyword"
	// TierNone means no tier produced results.
	TierNone Tier = "none"
)

const (
	// defaultLimit bounds results when the caller doesn't.
	defaultLimit = 5
	// defaultMinScore is the vector-tier similarity floor.
	defaultMinScore = 0.3
	// candidateMultiplier over-fetches vector candidates so that
	// post-filtering still fills the limit.
	candidateMultiplier = 3
)

// Options tune a single search call.
type Options struct {
	// Limit caps the number of passages returned. Zero means defaultLimit.
	Limit int
	// MinScore is the vector-tier similarity floor. Zero means defaultMinScore.
	MinScore float32
	// TypeFilter restricts matches to sections of one type when non-empty.
	TypeFilter string
}

// Engine runs tiered retrieval over a tenant's chunks.
type Engine struct {
	chunks   storage.ChunkRepository
	text     storage.TextSearcher
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithTextSearcher enables the text-relevance tier. Without one the
// engine falls straight from vector to keyword matching.
func WithTextSearcher(searcher storage.TextSearcher) Option {
	return func(e *Engine) error {
		e.text = searcher
		return nil
	}
}

// NewEngine creates a retrieval engine.
func NewEngine(chunks storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		chunks:   chunks,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search retrieves passages for the query, trying the vector, text and
// keyword tiers in order until one produces results. An empty overall
// result is not an error.
func (e *Engine) Search(ctx context.Context, tenantID core.ID, query string, opts Options) ([]core.Passage, Tier, error) {
	if strings.TrimSpace(query) == "" {
		return nil, TierNone, ErrEmptyQuery
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}

	passages, err := e.vectorTier(ctx, tenantID, query, opts.TypeFilter, minScore, limit)
	if err != nil {
		// Degrade to the text tiers rather than failing the query
		e.logger.Warn("vector tier unavailable", "tenant", tenantID, "err", err)
	} else if len(passages) > 0 {
		return passages, TierVector, nil
	}

	if e.text != nil {
		passages, err = e.textTier(ctx, tenantID, query, opts.TypeFilter, limit)
		if err != nil {
			e.logger.Warn("text tier unavailable", "tenant", tenantID, "err", err)
		} else if len(passages) > 0 {
			return passages, TierText, nil
		}
	}

	passages, err = e.keywordTier(ctx, tenantID, query, opts.TypeFilter, limit)
	if err != nil {
		return nil, TierNone, err
	}
	if len(passages) > 0 {
		return passages, TierKeyword, nil
	}

	return nil, TierNone, nil
}

// vectorTier embeds the query and ranks chunks by cosine similarity.
func (e *Engine) vectorTier(ctx context.Context, tenantID core.ID, query, typeFilter string, minScore float32, limit int) ([]core.Passage, error) {
	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := e.chunks.FindSimilar(ctx, tenantID, vector, typeFilter, minScore, limit*candidateMultiplier)
	if err != nil {
		return nil, err
	}

	return toPassages(matches, limit), nil
}

// textTier ranks chunks by text relevance through the backend searcher.
func (e *Engine) textTier(ctx context.Context, tenantID core.ID, query, typeFilter string, limit int) ([]core.Passage, error) {
	matches, err := e.text.TextSearch(ctx, tenantID, query, typeFilter, limit)
	if err != nil {
		return nil, err
	}
	return toPassages(matches, limit), nil
}

// toPassages converts ranked matches into passages, deduplicating by
// section so one section's chunks don't crowd out the rest.
func toPassages(matches []storage.SimilarityMatch, limit int) []core.Passage {
	seen := make(map[core.ID]bool, len(matches))
	passages := make([]core.Passage, 0, min(len(matches), limit))

	for _, match := range matches {
		if seen[match.Chunk.SectionId] {
			continue
		}
		seen[match.Chunk.SectionId] = true

		passages = append(passages, core.Passage{
			SectionId: match.Chunk.SectionId,
			Title:     match.Chunk.SectionTitle,
			Type:      match.Chunk.SectionType,
			Text:      match.Chunk.Text,
			Score:     match.Score,
		})
		if len(passages) == limit {
			break
		}
	}
	return passages
}
