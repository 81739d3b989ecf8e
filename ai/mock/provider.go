package mock

import (
	"context"
	"strings"

	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/core"
)

// MockCompleter is a test double for ai.Completer.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, systemPrompt string, history []core.Turn, userPrompt string, maxTokens int) (string, error)

	callCount int
}

// NewMockCompleter creates a completer that echoes a canned answer.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns an injected result or a canned echo of the prompt.
func (m *MockCompleter) Complete(ctx context.Context, systemPrompt string, history []core.Turn, userPrompt string, maxTokens int) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, history, userPrompt, maxTokens)
	}

	return "answer: " + strings.TrimSpace(userPrompt), nil
}

// CallCount returns the number of Complete invocations.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// MockProvider aggregates mock AI services for tests.
type MockProvider struct {
	embedder  *MockEmbedder
	completer *MockCompleter
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with deterministic mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(16),
		completer: NewMockCompleter(),
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the mock completer.
func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// MockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) MockEmbedder() *MockEmbedder {
	return p.embedder
}

// MockCompleter returns the concrete mock for test assertions.
func (p *MockProvider) MockCompleter() *MockCompleter {
	return p.completer
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
