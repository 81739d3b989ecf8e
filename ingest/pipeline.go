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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/chunker"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/storage"
)

// SectionInput is one section submitted for ingestion.
type SectionInput struct {
	Type  string
	Title string
	Text  string
}

// SectionResult reports the outcome of one section in a batch.
type SectionResult struct {
	Title     string
	SectionId core.ID
	Chunks    int
	Err       error
}

// Result summarizes an ingestion batch.
type Result struct {
	SectionsCreated int
	ChunksCreated   int
	PerSection      []SectionResult
}

// Pipeline chunks, embeds and persists sections for a tenant.
type Pipeline struct {
	sections   storage.SectionRepository
	embedder   ai.Embedder
	pool       *ants.Pool
	windowSize int
	overlap    int
	dimension  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunking overrides the chunk window and overlap.
func WithChunking(windowSize, overlap int) Option {
	return func(p *Pipeline) error {
		p.windowSize = windowSize
		p.overlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline. The embedder's dimension
// is enforced on every vector before persistence.
func NewPipeline(
	sections storage.SectionRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if sections == nil {
		return nil, ErrSectionRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		sections:   sections,
		embedder:   embedder,
		pool:       pool,
		windowSize: chunker.DefaultWindowSize,
		overlap:    chunker.DefaultOverlap,
		dimension:  embedder.Dimension(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release shuts down the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Ingest processes a batch of sections for the tenant. The batch is
// rejected whole with core.ErrQuotaExceeded when it would push the
// tenant past its section limit; nothing is persisted in that case.
// Individual section failures are reported per section and do not fail
// the rest of the batch.
func (p *Pipeline) Ingest(ctx context.Context, tenantID core.ID, limits core.Limits, inputs []SectionInput) (*Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	// Section quota check happens before any work
	existing, err := p.sections.CountSections(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if limits.SectionsPerTenant > 0 && existing+len(inputs) > limits.SectionsPerTenant {
		return nil, fmt.Errorf("%w: %d sections plus %d new exceeds limit %d",
			core.ErrQuotaExceeded, existing, len(inputs), limits.SectionsPerTenant)
	}

	result := &Result{PerSection: make([]SectionResult, len(inputs))}

	// Chunk and embed concurrently; persist only after a section's
	// chunks all carry embeddings
	var wg sync.WaitGroup
	prepared := make([]*preparedSection, len(inputs))

	for i, input := range inputs {
		i, input := i, input
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			prepared[i] = p.prepare(ctx, tenantID, input)
		})
		if submitErr != nil {
			wg.Done()
			prepared[i] = &preparedSection{err: submitErr}
		}
	}
	wg.Wait()

	for i, prep := range prepared {
		result.PerSection[i].Title = inputs[i].Title

		if prep.err != nil {
			result.PerSection[i].Err = prep.err
			p.logger.Warn("section rejected",
				"tenant", tenantID, "title", inputs[i].Title, "err", prep.err)
			continue
		}

		saved, err := p.sections.PutSectionWithChunks(ctx, prep.section, prep.chunks)
		if err != nil {
			result.PerSection[i].Err = err
			p.logger.Error("section persist failed",
				"tenant", tenantID, "title", inputs[i].Title, "err", err)
			continue
		}

		result.PerSection[i].SectionId = saved.Id
		result.PerSection[i].Chunks = len(prep.chunks)
		result.SectionsCreated++
		result.ChunksCreated += len(prep.chunks)
	}

	p.logger.Info("batch ingested", "tenant", tenantID,
		"sections", result.SectionsCreated, "chunks", result.ChunksCreated)
	return result, nil
}

// ReplaceSection re-ingests one section under an existing ID, swapping
// its chunks en masse.
func (p *Pipeline) ReplaceSection(ctx context.Context, tenantID, sectionID core.ID, input SectionInput) (*core.Section, error) {
	// The section must exist before we spend embedding calls on it
	if _, err := p.sections.GetSection(ctx, tenantID, sectionID); err != nil {
		return nil, err
	}

	prep := p.prepare(ctx, tenantID, input)
	if prep.err != nil {
		return nil, prep.err
	}

	prep.section.Id = sectionID
	saved, err := p.sections.PutSectionWithChunks(ctx, prep.section, prep.chunks)
	if err != nil {
		return nil, err
	}

	p.logger.Info("section replaced", "tenant", tenantID,
		"section", sectionID, "chunks", len(prep.chunks))
	return saved, nil
}

// DeleteSection removes a section and all of its chunks.
func (p *Pipeline) DeleteSection(ctx context.Context, tenantID, sectionID core.ID) error {
	if err := p.sections.DeleteSection(ctx, tenantID, sectionID); err != nil {
		return err
	}
	p.logger.Info("section deleted", "tenant", tenantID, "section", sectionID)
	return nil
}

// preparedSection is a fully embedded section awaiting persistence.
type preparedSection struct {
	section *core.Section
	chunks  []*core.Chunk
	err     error
}

// prepare validates, chunks and embeds one section.
func (p *Pipeline) prepare(ctx context.Context, tenantID core.ID, input SectionInput) *preparedSection {
	section := &core.Section{
		TenantId: tenantID,
		Type:     input.Type,
		Title:    input.Title,
		Text:     input.Text,
	}

	if err := core.ValidateSection(section); err != nil {
		return &preparedSection{err: err}
	}

	texts, err := chunker.Chunk(input.Text, p.windowSize, p.overlap)
	if err != nil {
		return &preparedSection{err: err}
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return &preparedSection{err: fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, err)}
	}
	if len(vectors) != len(texts) {
		return &preparedSection{err: fmt.Errorf("%w: %d texts, %d vectors",
			core.ErrEmbeddingUnavailable, len(texts), len(vectors))}
	}

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		if err := core.ValidateVector(vectors[i], p.dimension); err != nil {
			return &preparedSection{err: err}
		}
		chunks[i] = &core.Chunk{
			Text:         text,
			Vector:       vectors[i],
			SectionTitle: input.Title,
			SectionType:  input.Type,
		}
	}

	return &preparedSection{section: section, chunks: chunks}
}
