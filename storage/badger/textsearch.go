package badger

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

var _ storage.TextSearcher = (*ChunkRepository)(nil)

// TextSearch ranks the tenant's chunks by TF-IDF relevance to the query.
// Scores are mapped into [0, 1) with s/(s+1) so callers can treat them
// like similarity scores. Chunks matching no query term are excluded.
func (r *ChunkRepository) TextSearch(ctx context.Context, tenantID core.ID, query string, typeFilter string, limit int) ([]storage.SimilarityMatch, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		chunk *core.Chunk
		tf    map[string]int
		total int
	}

	var docs []scored
	docFreq := make(map[string]int, len(terms))

	err := r.ScanChunks(ctx, tenantID, typeFilter, func(chunk *core.Chunk) error {
		tokens := strings.Fields(strings.ToLower(chunk.Text + " " + chunk.SectionTitle))
		tf := make(map[string]int)
		for _, tok := range tokens {
			tok = strings.Trim(tok, ".,!?;:'\"-()[]{}")
			for _, term := range terms {
				if tok == term {
					tf[term]++
				}
			}
		}
		if len(tf) == 0 {
			return nil
		}
		for term := range tf {
			docFreq[term]++
		}
		docs = append(docs, scored{chunk: chunk, tf: tf, total: len(tokens)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	results := make([]storage.SimilarityMatch, 0, len(docs))
	for _, doc := range docs {
		var score float64
		for term, count := range doc.tf {
			tf := float64(count) / float64(doc.total)
			idf := math.Log(1 + float64(len(docs))/float64(1+docFreq[term]))
			score += tf * idf
		}
		// Map the unbounded relevance score into [0, 1)
		normalized := float32(score / (score + 1))
		results = append(results, storage.SimilarityMatch{Chunk: doc.chunk, Score: normalized})
	}

	slices.SortStableFunc(results, func(a, b storage.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// searchTerms lowercases the query and keeps distinct words longer than
// two characters.
func searchTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(fields))
	var terms []string
	for _, field := range fields {
		field = strings.Trim(field, ".,!?;:'\"-()[]{}")
		if len(field) <= 2 || seen[field] {
			continue
		}
		seen[field] = true
		terms = append(terms, field)
	}
	return terms
}
