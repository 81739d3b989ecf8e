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


package askbase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/ai/openai"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/ingest"
	"github.com/poiesic/askbase/quota"
	"github.com/poiesic/askbase/search"
	"github.com/poiesic/askbase/storage"
	"github.com/poiesic/askbase/storage/badger"
	"github.com/poiesic/askbase/storage/redis"
	"github.com/poiesic/askbase/tenant"
)

const (
	// historyTurns is how much session history rides along in a completion.
	historyTurns = 6

	systemPrompt = "You are a support assistant. Answer the question using only " +
		"the provided passages. If the passages do not contain the answer, say so."

	// insufficientAnswer is returned without a completion call when
	// retrieval found nothing.
	insufficientAnswer = "I don't have enough information in the knowledge base to answer that."
)

// Service is the top-level facade: tenant management, ingestion, quota
// admission and question answering over one storage backend.
type Service struct {
	backend   *badger.Backend
	tenants   storage.TenantRepository
	sections  storage.SectionRepository
	chunks    *badger.ChunkRepository
	counters  storage.CounterStore
	sessions  storage.SessionStore
	provider  ai.Provider
	directory *tenant.Directory
	ledger    *quota.Ledger
	engine    *search.Engine
	pipeline  *ingest.Pipeline
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
	redisURL string
	logger   *slog.Logger
}

// WithAIConfig overrides the embedding and completion configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a pre-built AI provider, bypassing the OpenAI
// configuration entirely.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all state in memory. Intended for tests.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithRedis moves counters and session history to a Redis server, so
// several processes can share quota state.
func WithRedis(redisURL string) ServiceOption {
	return func(o *serviceOptions) {
		o.redisURL = redisURL
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewService opens the storage backend at filePath and wires the full
// stack over it.
func NewService(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	tenants, err := badger.NewTenantRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sections, err := badger.NewSectionRepository(backend)
	if err != nil {
		tenants.Close()
		backend.Close()
		return nil, err
	}

	chunks := badger.NewChunkRepository(backend)

	var counters storage.CounterStore
	var sessions storage.SessionStore
	if options.redisURL != "" {
		redisCounters, err := redis.NewCounterStore(options.redisURL)
		if err != nil {
			closeAll(sections, tenants)
			backend.Close()
			return nil, err
		}
		redisSessions, err := redis.NewSessionStore(options.redisURL)
		if err != nil {
			closeAll(redisCounters, sections, tenants)
			backend.Close()
			return nil, err
		}
		counters, sessions = redisCounters, redisSessions
	} else {
		counters = badger.NewCounterStore(backend)
		sessions = badger.NewSessionStore(backend)
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			closeAll(counters, sessions, sections, tenants)
			backend.Close()
			return nil, err
		}
	}

	directory, err := tenant.NewDirectory(tenants, tenant.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		closeAll(counters, sessions, sections, tenants)
		backend.Close()
		return nil, err
	}

	ledger, err := quota.NewLedger(counters, quota.WithLogger(options.logger))
	if err != nil {
		directory.Close()
		provider.Close()
		closeAll(counters, sessions, sections, tenants)
		backend.Close()
		return nil, err
	}

	engine, err := search.NewEngine(chunks, provider.Embedder(),
		search.WithTextSearcher(chunks),
		search.WithLogger(options.logger))
	if err != nil {
		directory.Close()
		provider.Close()
		closeAll(counters, sessions, sections, tenants)
		backend.Close()
		return nil, err
	}

	pipeline, err := ingest.NewPipeline(sections, provider.Embedder(),
		ingest.WithLogger(options.logger))
	if err != nil {
		directory.Close()
		provider.Close()
		closeAll(counters, sessions, sections, tenants)
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:   backend,
		tenants:   tenants,
		sections:  sections,
		chunks:    chunks,
		counters:  counters,
		sessions:  sessions,
		provider:  provider,
		directory: directory,
		ledger:    ledger,
		engine:    engine,
		pipeline:  pipeline,
		logger:    options.logger,
	}, nil
}

// Close releases every component in reverse construction order.
func (s *Service) Close() error {
	s.pipeline.Release()
	s.directory.Close()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.sessions.Close(); err != nil {
		s.logger.Error("error closing session store", "err", err)
	}
	if err := s.counters.Close(); err != nil {
		s.logger.Error("error closing counter store", "err", err)
	}
	if err := s.sections.Close(); err != nil {
		s.logger.Error("error closing section repository", "err", err)
		return err
	}
	if err := s.tenants.Close(); err != nil {
		s.logger.Error("error closing tenant repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Directory exposes tenant management.
func (s *Service) Directory() *tenant.Directory {
	return s.directory
}

// Sections exposes read access to the tenant's sections.
func (s *Service) Sections() storage.SectionRepository {
	return s.sections
}

// Authenticate resolves the tenant owning a raw API key.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (*core.Tenant, error) {
	return s.directory.ResolveByAPIKey(ctx, rawKey)
}

// Ingest runs an ingestion batch for the tenant under its plan limits.
func (s *Service) Ingest(ctx context.Context, tenantID core.ID, inputs []ingest.SectionInput) (*ingest.Result, error) {
	tn, err := s.directory.ResolveByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Ingest(ctx, tenantID, tn.Limits, inputs)
}

// ReplaceSection re-ingests one section in place.
func (s *Service) ReplaceSection(ctx context.Context, tenantID, sectionID core.ID, input ingest.SectionInput) (*core.Section, error) {
	if _, err := s.directory.ResolveByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.pipeline.ReplaceSection(ctx, tenantID, sectionID, input)
}

// DeleteSection removes a section and its chunks.
func (s *Service) DeleteSection(ctx context.Context, tenantID, sectionID core.ID) error {
	if _, err := s.directory.ResolveByID(ctx, tenantID); err != nil {
		return err
	}
	return s.pipeline.DeleteSection(ctx, tenantID, sectionID)
}

// QueryOptions tune a single question.
type QueryOptions struct {
	// SessionID threads conversation history through answers when set.
	SessionID string
	// Limit caps retrieved passages.
	Limit int
	// MinScore is the vector-tier similarity floor.
	MinScore float32
	// TypeFilter restricts retrieval to one section type.
	TypeFilter string
}

// QueryResult is an answered question.
type QueryResult struct {
	Answer   string
	Passages []core.Passage
	Tier     search.Tier
}

// Query answers a question against the tenant's knowledge base. The
// request is counted against the tenant's quota before any work; a
// denial surfaces as core.ErrRateLimited or core.ErrQuotaExceeded.
func (s *Service) Query(ctx context.Context, tenantID core.ID, question string, opts QueryOptions) (*QueryResult, error) {
	tn, err := s.directory.ResolveByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	decision := s.ledger.Admit(ctx, tenantID, tn.Limits)
	if !decision.Allowed {
		if decision.Reason == quota.ReasonMonth {
			return nil, fmt.Errorf("%w: %s", core.ErrQuotaExceeded, decision.Reason)
		}
		return nil, fmt.Errorf("%w: %s, retry after %s",
			core.ErrRateLimited, decision.Reason, decision.RetryAfter)
	}

	if tn.Limits.MaxTokensPerRequest > 0 && core.TokenCount(question) > tn.Limits.MaxTokensPerRequest {
		return nil, fmt.Errorf("%w: %d tokens over limit %d",
			core.ErrRequestTooLarge, core.TokenCount(question), tn.Limits.MaxTokensPerRequest)
	}

	passages, tier, err := s.engine.Search(ctx, tenantID, question, search.Options{
		Limit:      opts.Limit,
		MinScore:   opts.MinScore,
		TypeFilter: opts.TypeFilter,
	})
	if err != nil {
		return nil, err
	}

	if len(passages) == 0 {
		// Degraded, not an error: no completion call without evidence
		s.recordTurns(ctx, opts.SessionID, question, insufficientAnswer)
		return &QueryResult{Answer: insufficientAnswer, Tier: tier}, nil
	}

	history, err := s.history(ctx, opts.SessionID)
	if err != nil {
		s.logger.Warn("session history unavailable", "session", opts.SessionID, "err", err)
		history = nil
	}

	answer, err := s.provider.Completer().Complete(ctx,
		composePrompt(passages), history, question, tn.Limits.MaxTokensPerRequest)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	s.recordTurns(ctx, opts.SessionID, question, answer)
	return &QueryResult{Answer: answer, Passages: passages, Tier: tier}, nil
}

// history loads recent turns for the session, if any.
func (s *Service) history(ctx context.Context, sessionID string) ([]core.Turn, error) {
	if sessionID == "" {
		return nil, nil
	}
	return s.sessions.History(ctx, sessionID, historyTurns)
}

// recordTurns appends the exchange to the session. Failures are logged;
// answering beats bookkeeping.
func (s *Service) recordTurns(ctx context.Context, sessionID, question, answer string) {
	if sessionID == "" {
		return
	}
	err := s.sessions.AppendTurns(ctx, sessionID,
		core.Turn{Role: core.TurnRoleUser, Text: question},
		core.Turn{Role: core.TurnRoleAssistant, Text: answer},
	)
	if err != nil {
		s.logger.Warn("session append failed", "session", sessionID, "err", err)
	}
}

// composePrompt folds the retrieved passages into the system prompt.
func composePrompt(passages []core.Passage) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nPassages:\n")
	for i, passage := range passages {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, passage.Title, passage.Text)
	}
	return b.String()
}

// closeAll closes stores, logging nothing; used on construction failure.
func closeAll(closers ...interface{ Close() error }) {
	for _, c := range closers {
		if c != nil {
			c.Close()
		}
	}
}
