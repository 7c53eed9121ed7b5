package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/statute/ai"
	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/embedding"
	"github.com/poiesic/statute/storage"
)

const (
	// DefaultTopK is the number of articles returned by semantic retrieval.
	DefaultTopK = 3
	// DefaultCandidatePool is the approximate-search candidate pool size.
	DefaultCandidatePool = 150
)

// Searcher resolves questions against an article repository.
type Searcher struct {
	repository    storage.ArticleRepository
	embedder      ai.Embedder
	topK          int
	candidatePool int
	monitor       SearchMonitor
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithTopK sets how many articles semantic retrieval returns.
// Default is 3.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k < 1 {
			return fmt.Errorf("top-k must be positive, got %d", k)
		}
		s.topK = k
		return nil
	}
}

// WithCandidatePool sets the candidate pool handed to the store's
// approximate similarity search. Default is 150.
func WithCandidatePool(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("candidate pool must be positive, got %d", n)
		}
		s.candidatePool = n
		return nil
	}
}

// WithMonitor installs a monitor that observes every resolution.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.ArticleRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		repository:    repository,
		embedder:      embedder,
		topK:          DefaultTopK,
		candidatePool: DefaultCandidatePool,
		monitor:       &noopMonitor{},
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Resolve returns the articles that ground an answer to question.
// A cited label that matches a stored header wins outright; every other
// question goes to semantic retrieval. Failures resolve to Empty.
func (s *Searcher) Resolve(ctx context.Context, question string) *Resolution {
	s.monitor.Start(question)

	resolution := s.resolve(ctx, question)
	s.monitor.Finish(resolution)
	s.logger.Debug("question resolved", "kind", resolution.Kind, "label", resolution.Label, "articles", len(resolution.Articles))

	return resolution
}

func (s *Searcher) resolve(ctx context.Context, question string) *Resolution {
	label, cited := Citation(question)
	s.monitor.AfterCitation(label)

	if cited {
		article, err := s.Lookup(ctx, label)
		if err == nil {
			s.monitor.ExactHit(label, article)
			return &Resolution{
				Kind:     ExactHit,
				Label:    label,
				Articles: []*core.Article{article},
			}
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("exact lookup failed", "label", label, "err", err)
		}
		s.monitor.ExactMiss(label)
	}

	results, err := s.Similar(ctx, question)
	if err != nil {
		s.logger.Error("semantic retrieval failed", "err", err)
		return &Resolution{Kind: Empty}
	}
	s.monitor.AfterSemanticSearch(results)
	if len(results) == 0 {
		return &Resolution{Kind: Empty}
	}

	resolution := &Resolution{
		Kind:     SemanticHits,
		Articles: make([]*core.Article, len(results)),
		Scores:   make([]float32, len(results)),
	}
	for i, r := range results {
		resolution.Articles[i] = r.Article
		resolution.Scores[i] = r.Score
	}
	return resolution
}

// Lookup returns the first stored article whose header carries label.
// Returns storage.ErrNotFound when no header matches.
func (s *Searcher) Lookup(ctx context.Context, label string) (*core.Article, error) {
	return s.repository.FindArticleByPattern(ctx, ExactPattern(label))
}

// Similar embeds question in query mode and returns the top-k most similar articles.
func (s *Searcher) Similar(ctx context.Context, question string) ([]*core.SearchResult, error) {
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := s.repository.FindSimilar(ctx, embedding.Normalize(vector), s.candidatePool, s.topK)
	if err != nil {
		return nil, fmt.Errorf("find similar articles: %w", err)
	}
	return results, nil
}
