package ai

import (
	"context"

	"github.com/poiesic/askbase/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in a batch.
	// The returned slice contains embeddings in the same order as the
	// input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the length of the vectors this embedder produces.
	Dimension() int
}

// Completer turns retrieved passages into a prose answer.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete generates a text completion from a system prompt, prior
	// conversation turns, and the user prompt.
	Complete(ctx context.Context, systemPrompt string, history []core.Turn, userPrompt string, maxTokens int) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the answer completion service.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	Close() error
}
