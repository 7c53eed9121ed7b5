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

package statute

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/statute/ai"
	"github.com/poiesic/statute/ai/googleai"
	"github.com/poiesic/statute/ai/openai"
	"github.com/poiesic/statute/answer"
	"github.com/poiesic/statute/config"
	"github.com/poiesic/statute/ingestion"
	"github.com/poiesic/statute/reembed"
	"github.com/poiesic/statute/search"
	"github.com/poiesic/statute/storage"
	"github.com/poiesic/statute/storage/badger"
	"github.com/poiesic/statute/storage/postgres"
)

// KnowledgeBase owns the process-wide store and AI provider handles and
// builds the pipelines that use them.
type KnowledgeBase struct {
	config   *config.Config
	repo     storage.ArticleRepository
	provider ai.AIProvider
	base     *slog.Logger // handed to components, which add their own component attribute
	logger   *slog.Logger
}

// Option configures a KnowledgeBase.
type Option func(*openOptions)

type openOptions struct {
	repo     storage.ArticleRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithRepository uses repo instead of opening the configured store.
// The knowledge base takes ownership and closes it.
func WithRepository(repo storage.ArticleRepository) Option {
	return func(o *openOptions) {
		o.repo = repo
	}
}

// WithProvider uses provider instead of building the configured one.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *openOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) {
		o.logger = logger
	}
}

// Open validates cfg and connects the store and the AI provider.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*KnowledgeBase, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// Injected collaborators skip the parts of validation they replace.
	if options.repo == nil || options.provider == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	repo := options.repo
	if repo == nil {
		var err error
		repo, err = OpenRepository(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(ctx, cfg.AI.ProviderConfig())
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	return &KnowledgeBase{
		config:   cfg,
		repo:     repo,
		provider: provider,
		base:     options.logger,
		logger:   options.logger.With("component", "knowledge-base"),
	}, nil
}

// OpenRepository opens the store selected by cfg.Kind.
func OpenRepository(ctx context.Context, cfg config.StoreConfig) (storage.ArticleRepository, error) {
	switch cfg.Kind {
	case config.StoreBadger, "":
		repo, err := badger.NewRepository(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return repo, nil
	case config.StorePostgres:
		repo, err := postgres.NewRepository(ctx, cfg.DSN, cfg.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	cfg.Normalize()
	switch cfg.Provider {
	case ai.ProviderGoogleAI:
		return googleai.NewProvider(ctx, cfg)
	default:
		return openai.NewProvider(cfg)
	}
}

// Close releases the provider and the store.
func (kb *KnowledgeBase) Close() error {
	if err := kb.provider.Close(); err != nil {
		kb.logger.Error("error closing AI provider", "err", err)
	}
	if err := kb.repo.Close(); err != nil {
		kb.logger.Error("error closing article store", "err", err)
		return err
	}
	return nil
}

// Config returns the configuration the knowledge base was opened with.
func (kb *KnowledgeBase) Config() *config.Config {
	return kb.config
}

// Repository returns the article store.
func (kb *KnowledgeBase) Repository() storage.ArticleRepository {
	return kb.repo
}

// Provider returns the AI provider.
func (kb *KnowledgeBase) Provider() ai.AIProvider {
	return kb.provider
}

// NewIngestionPipeline builds a pipeline tuned by the ingestion config.
// opts are applied after the configured values.
func (kb *KnowledgeBase) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	c := kb.config.Ingestion
	base := []ingestion.Option{
		ingestion.WithPoolSize(c.Workers),
		ingestion.WithBatchSize(c.BatchSize),
		ingestion.WithRetry(c.MaxRetries, c.RetryDelay),
		ingestion.WithLogger(kb.base),
	}
	return ingestion.NewPipeline(kb.repo, kb.provider.Embedder(), append(base, opts...)...)
}

// NewSearcher builds a searcher tuned by the search config.
func (kb *KnowledgeBase) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	c := kb.config.Search
	base := []search.Option{
		search.WithTopK(c.TopK),
		search.WithCandidatePool(c.CandidatePool),
		search.WithLogger(kb.base),
	}
	return search.NewSearcher(kb.repo, kb.provider.Embedder(), append(base, opts...)...)
}

// NewAnswerer builds the question answering façade over a configured searcher.
func (kb *KnowledgeBase) NewAnswerer(opts ...answer.Option) (*answer.Answerer, error) {
	searcher, err := kb.NewSearcher()
	if err != nil {
		return nil, err
	}
	return kb.AnswererFor(searcher, opts...)
}

// AnswererFor builds an answerer over resolver with the configured law name,
// token accounting and the provider's generator.
func (kb *KnowledgeBase) AnswererFor(resolver answer.Resolver, opts ...answer.Option) (*answer.Answerer, error) {
	base := []answer.Option{
		answer.WithLawName(kb.config.Answer.LawName),
		answer.WithLogger(kb.base),
	}
	if model := kb.config.Answer.TokenModel; model != "" {
		counter, err := answer.NewTiktokenCounter(model)
		if err != nil {
			kb.logger.Warn("prompt token accounting disabled", "model", model, "err", err)
		} else {
			base = append(base, answer.WithTokenCounter(counter))
		}
	}
	return answer.NewAnswerer(resolver, kb.provider.Generator(), append(base, opts...)...)
}

// NewReembedder builds a reembedder using the ingestion batching settings.
func (kb *KnowledgeBase) NewReembedder(reportInterval int, progress io.Writer) (*reembed.Reembedder, error) {
	c := kb.config.Ingestion
	return reembed.NewReembedder(kb.repo, kb.provider.Embedder(), &reembed.Config{
		BatchSize:      c.BatchSize,
		ReportInterval: reportInterval,
		MaxRetries:     c.MaxRetries,
		RetryDelay:     c.RetryDelay,
	}, progress)
}
