// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai provides ai.Provider backed by OpenAI-compatible services.
package openai

import (
	"log/slog"

	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/ai/hashed"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// When no embedding model is configured, the deterministic hash-based
// embedder is used instead of the network-backed one.
type Provider struct {
	config    *ai.Config
	embedder  ai.Embedder
	completer *Completer
	logger    *slog.Logger
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a new AI provider from the configuration.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var embedder ai.Embedder
	if config.EmbeddingModel == "" {
		embedder = hashed.NewEmbedder(config.Dimension)
	} else {
		inner, err := newEmbedder(config)
		if err != nil {
			return nil, err
		}
		embedder = ai.NewRetryEmbedder(inner, config.MaxRetries, config.RetryBaseDelay)
	}

	completer, err := newCompleter(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		completer: completer,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the answer completion service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
