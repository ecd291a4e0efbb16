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

package itinera

import (
	"context"
	"log/slog"

	"github.com/poiesic/itinera/ai"
	"github.com/poiesic/itinera/ai/openai"
	"github.com/poiesic/itinera/enrich"
	"github.com/poiesic/itinera/ingestion"
	"github.com/poiesic/itinera/search"
	"github.com/poiesic/itinera/storage"
	"github.com/poiesic/itinera/storage/badger"
	"github.com/poiesic/itinera/workflow"
)

// Assistant wires storage, retrieval, enrichment and the conversation
// workflow into one travel-planning service.
type Assistant struct {
	backend   *badger.Backend
	documents storage.DocumentRepository
	sessions  storage.SessionRepository
	provider  ai.Provider
	engine    *search.Engine
	fanout    *enrich.Fanout
	manager   *workflow.Manager
	logger    *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	scorer     ai.RelevanceScorer
	inMemory   bool
	enrichment bool
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
// Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider instead of constructing the
// OpenAI-compatible one. Intended for tests and custom backends.
func WithProvider(provider ai.Provider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithCrossReranker replaces the default lexical rerank strategy with one
// that asks a relevance model to judge the candidates. Scoring failures fall
// back to the lexical strategy per search.
func WithCrossReranker(scorer ai.RelevanceScorer) AssistantOption {
	return func(o *assistantOptions) {
		o.scorer = scorer
	}
}

// WithInMemory keeps all storage in memory; nothing survives Close.
func WithInMemory() AssistantOption {
	return func(o *assistantOptions) {
		o.inMemory = true
	}
}

// WithoutEnrichment disables the external enrichment providers (weather,
// live prices, currency, safety). Useful offline and in tests.
func WithoutEnrichment() AssistantOption {
	return func(o *assistantOptions) {
		o.enrichment = false
	}
}

// NewAssistant creates a travel-planning assistant backed by a BadgerDB
// index at filePath.
func NewAssistant(filePath string, opts ...AssistantOption) (*Assistant, error) {
	// Apply options
	options := &assistantOptions{
		aiConfig:   ai.DefaultConfig(), // Default if not provided
		enrichment: true,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create session repository
	sessions, err := badger.NewSessionRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			sessions.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	a := &Assistant{
		backend:   backend,
		documents: documents,
		sessions:  sessions,
		provider:  provider,
		logger:    slog.Default(),
	}

	var engineOpts []search.Option
	if options.scorer != nil {
		engineOpts = append(engineOpts, search.WithReranker(search.NewCrossReranker(options.scorer)))
	}

	a.engine, err = search.NewEngine(documents, provider.Embedder(), engineOpts...)
	if err != nil {
		a.closeStorage()
		return nil, err
	}

	var orchOpts []workflow.OrchestratorOption
	if options.enrichment {
		a.fanout, err = enrich.NewFanout(
			enrich.NewOpenMeteoWeather(),
			enrich.NewHeuristicPrices(),
			enrich.NewExchangeRateCurrency(),
			enrich.NewRestCountriesSafety(),
			enrich.NewLocalActivities(),
		)
		if err != nil {
			a.closeStorage()
			return nil, err
		}
		orchOpts = append(orchOpts, workflow.WithFanout(a.fanout))
	}

	orchestrator, err := workflow.NewOrchestrator(a.engine, provider, orchOpts...)
	if err != nil {
		a.releaseFanout()
		a.closeStorage()
		return nil, err
	}

	a.manager, err = workflow.NewManager(orchestrator, sessions)
	if err != nil {
		a.releaseFanout()
		a.closeStorage()
		return nil, err
	}

	return a, nil
}

// Chat runs one conversation turn. An empty sessionID starts a new session;
// the returned result carries the id to use for follow-ups.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string) (*workflow.TurnResult, error) {
	return a.manager.HandleMessage(ctx, sessionID, message)
}

// EndSession persists and forgets a live session.
func (a *Assistant) EndSession(ctx context.Context, sessionID string) error {
	return a.manager.EndSession(ctx, sessionID)
}

// DocumentRepository exposes the review index for seeding and maintenance.
func (a *Assistant) DocumentRepository() storage.DocumentRepository {
	return a.documents
}

// SessionRepository exposes the durable session store.
func (a *Assistant) SessionRepository() storage.SessionRepository {
	return a.sessions
}

// NewIngestionPipeline creates a pipeline that loads review documents into
// this assistant's index, embedding them with the assistant's provider.
func (a *Assistant) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.documents, a.provider.Embedder(), opts...)
}

// Close persists live sessions and releases all resources.
func (a *Assistant) Close() error {
	if err := a.manager.Close(context.Background()); err != nil {
		a.logger.Error("error persisting live sessions", "err", err)
	}

	a.releaseFanout()

	// Close AI provider before storage; generation may still reference it
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	return a.closeStorage()
}

func (a *Assistant) releaseFanout() {
	if a.fanout != nil {
		a.fanout.Release()
	}
}

func (a *Assistant) closeStorage() error {
	if err := a.sessions.Close(); err != nil {
		a.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := a.documents.Close(); err != nil {
		a.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
