package search

import (
	"context"
	"slices"
	"strings"

	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

const (
	// keywordOccurrenceWeight is the per-occurrence score increment.
	keywordOccurrenceWeight = 0.15
	// keywordScoreFloor drops matches that barely register.
	keywordScoreFloor = 0.1
	// minKeywordLength skips short words that match everything.
	minKeywordLength = 3
)

// keywordTier matches chunks that contain every query keyword, scoring
// by occurrence count. It is the last resort when neither embeddings
// nor the text searcher produced anything.
func (e *Engine) keywordTier(ctx context.Context, tenantID core.ID, query, typeFilter string, limit int) ([]core.Passage, error) {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return nil, nil
	}

	var matches []storage.SimilarityMatch
	err := e.chunks.ScanChunks(ctx, tenantID, typeFilter, func(chunk *core.Chunk) error {
		haystack := strings.ToLower(chunk.Text + " " + chunk.SectionTitle)

		occurrences := 0
		for _, keyword := range keywords {
			count := strings.Count(haystack, keyword)
			if count == 0 {
				// Conjunctive: every keyword must appear
				return nil
			}
			occurrences += count
		}

		score := float32(keywordOccurrenceWeight) * float32(occurrences)
		if score > 1.0 {
			score = 1.0
		}
		if score <= keywordScoreFloor {
			return nil
		}

		matches = append(matches, storage.SimilarityMatch{Chunk: chunk, Score: score})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable: insertion order breaks score ties
	slices.SortStableFunc(matches, func(a, b storage.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	return toPassages(matches, limit), nil
}

// extractKeywords lowercases the query and keeps distinct words long
// enough to be selective.
func extractKeywords(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(words))
	keywords := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.Trim(word, ".,!?;:'\"-()[]{}")
		if len(cleaned) < minKeywordLength || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		keywords = append(keywords, cleaned)
	}
	return keywords
}
