// Package chunker splits raw text into overlapping fixed-size token windows
// suitable for embedding and retrieval indexing.
package chunker

import (
	"fmt"
	"strings"

	"github.com/poiesic/askbase/core"
)

const (
	// DefaultWindowSize is the number of tokens per chunk.
	DefaultWindowSize = 200
	// DefaultOverlap is the number of tokens shared between adjacent chunks.
	DefaultOverlap = 50
)

// Chunk splits text on whitespace into tokens and emits sliding windows of
// windowSize tokens, advancing by windowSize-overlap tokens each step.
// Empty windows are dropped. Returns core.ErrEmptyContent when the input
// yields no chunks, which callers must treat as an ingestion rejection.
//
// Chunk is a pure function and safe for concurrent use.
func Chunk(text string, windowSize, overlap int) ([]string, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("overlap must be in [0, windowSize), got %d", overlap)
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, core.ErrEmptyContent
	}

	step := windowSize - overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + windowSize
		if end > len(tokens) {
			end = len(tokens)
		}
		span := strings.TrimSpace(strings.Join(tokens[start:end], " "))
		if span != "" {
			chunks = append(chunks, span)
		}
		if end == len(tokens) {
			break
		}
	}

	if len(chunks) == 0 {
		return nil, core.ErrEmptyContent
	}
	return chunks, nil
}
