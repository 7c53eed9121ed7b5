package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/statute/ai"
	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/embedding"
	"github.com/poiesic/statute/extract"
	"github.com/poiesic/statute/segment"
	"github.com/poiesic/statute/storage"
)

// Pipeline orchestrates the ingestion of legal documents into the article store.
type Pipeline struct {
	repo       storage.ArticleRepository
	embedder   ai.Embedder
	batcher    *embedding.Batcher
	pool       *ants.Pool
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	logger     *slog.Logger
}

// Result describes one ingested document.
type Result struct {
	DocumentID string
	Articles   int // Articles stored
	Replaced   int // Articles deleted from the previous ingestion
	Duration   time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many documents are ingested concurrently.
// Default is 1 (sequential).
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

// WithBatchSize sets the number of articles per embedding call.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay for each embedding batch.
// Default is 3 attempts starting at 1s.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxRetries < 1 {
			return fmt.Errorf("max retries must be positive, got %d", maxRetries)
		}
		p.maxRetries = maxRetries
		p.retryDelay = delay
		return nil
	}
}

// WithProgress writes one line per finished document to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		if w == nil {
			w = io.Discard
		}
		p.progress = w
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

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repo storage.ArticleRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Pipeline{
		repo:       repo,
		embedder:   embedder,
		batchSize:  embedding.DefaultBatchSize,
		maxRetries: embedding.DefaultMaxRetries,
		retryDelay: embedding.DefaultRetryDelay,
		progress:   io.Discard,
		logger:     slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.pool == nil {
		if err := WithPoolSize(1)(p); err != nil {
			return nil, err
		}
	}

	batcher, err := embedding.NewBatcher(embedder, p.batchSize, p.maxRetries, p.retryDelay)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.batcher = batcher
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// IngestFile extracts, segments, embeds and stores one file.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	src, err := extract.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return p.IngestSource(ctx, src)
}

// IngestSource ingests the document served by src.
func (p *Pipeline) IngestSource(ctx context.Context, src extract.PageSource) (*Result, error) {
	doc, err := extract.Extract(ctx, src)
	if err != nil {
		return nil, err
	}
	return p.IngestDocument(ctx, doc)
}

// IngestDocument replaces the stored articles of doc with freshly segmented
// and embedded ones. Everything that can fail before the store is touched
// runs before the delete.
func (p *Pipeline) IngestDocument(ctx context.Context, doc *extract.Document) (*Result, error) {
	start := time.Now()
	logger := p.logger.With("document", doc.ID)

	sections := segment.Segment(doc.Text)
	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.ID, ErrNoArticles)
	}
	logger.Debug("segmented document", "articles", len(sections), "characters", len(doc.Text))

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}
	vectors, err := p.batcher.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.ID, err)
	}

	articles := make([]*core.Article, len(sections))
	for i, s := range sections {
		articles[i] = &core.Article{
			DocumentID: doc.ID,
			Label:      s.Label,
			Position:   i,
			Text:       s.Text,
			Vector:     vectors[i],
		}
	}

	replaced, err := p.repo.DeleteDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: delete previous articles: %w", doc.ID, err)
	}

	for chunk := range slices.Chunk(articles, p.batchSize) {
		if _, err := p.repo.AddArticles(ctx, chunk...); err != nil {
			return nil, fmt.Errorf("%s: store articles: %w", doc.ID, err)
		}
	}

	result := &Result{
		DocumentID: doc.ID,
		Articles:   len(articles),
		Replaced:   replaced,
		Duration:   time.Since(start),
	}
	logger.Info("document ingested", "articles", result.Articles, "replaced", result.Replaced, "duration", result.Duration)
	fmt.Fprintf(p.progress, "%s: %d articles stored (%d replaced) in %v\n",
		result.DocumentID, result.Articles, result.Replaced, result.Duration.Round(time.Millisecond))

	return result, nil
}

// IngestPaths ingests each file on the worker pool. Results come back in
// input order for the documents that succeeded; failures are joined.
func (p *Pipeline) IngestPaths(ctx context.Context, paths []string) ([]*Result, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]*Result, len(paths))
		errs    []error
	)

	for i, path := range paths {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			result, err := p.IngestFile(ctx, path)
			if err != nil {
				p.logger.Error("document ingestion failed", "path", path, "err", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				mu.Unlock()
				return
			}
			results[i] = result
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	ok := make([]*Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			ok = append(ok, r)
		}
	}
	return ok, errors.Join(errs...)
}

// IngestDirectory ingests every supported file directly under dir, in name order.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) ([]*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !extract.Supported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		p.logger.Warn("no supported documents found", "dir", dir)
		return nil, nil
	}

	return p.IngestPaths(ctx, paths)
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
