// Package hashed provides a deterministic stand-in embedding strategy that
// derives vectors from a stable hash of the input text. It is the default
// when no embedding model is configured and the standard test double:
// identical text always produces identical vectors.
package hashed

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/askbase/ai"
)

// Embedder implements ai.Embedder with hash-derived vectors.
type Embedder struct {
	dimension int
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a deterministic embedder producing vectors of the
// given dimension. A non-positive dimension falls back to ai.DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = ai.DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// EmbedText derives a unit vector from a BLAKE2b hash of the text.
func (e *Embedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return deterministicVector(text, e.dimension), nil
}

// EmbedTexts derives vectors for each text, order-preserving.
func (e *Embedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, e.dimension)
	}
	return vectors, nil
}

// Dimension returns the configured vector length.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// deterministicVector expands a BLAKE2b seed through an LCG and normalizes
// the result to unit length so dot products behave as cosine similarity.
func deterministicVector(text string, dim int) []float32 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	seed := binary.LittleEndian.Uint64(h.Sum(nil))

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407 // LCG constants
		// Map the top bits into [-1, 1)
		vector[i] = float32(int32(seed>>32)) / float32(math.MaxInt32)
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
