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

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/statute/ai"
	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/embedding"
	"github.com/poiesic/statute/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of articles embedded per provider call
	BatchSize int

	// ReportInterval is how often to report progress (number of articles)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      embedding.DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     embedding.DefaultMaxRetries,
		RetryDelay:     embedding.DefaultRetryDelay,
	}
}

// Reembedder orchestrates the reembedding of all stored articles.
type Reembedder struct {
	repo     storage.ArticleRepository
	config   *Config
	progress io.Writer
	batcher  *embedding.Batcher
	iterator *ArticleIterator
	logger   *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ArticleRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	batcher, err := embedding.NewBatcher(embedder, config.BatchSize, config.MaxRetries, config.RetryDelay)
	if err != nil {
		return nil, err
	}

	return &Reembedder{
		repo:     repo,
		config:   config,
		progress: progress,
		batcher:  batcher,
		iterator: NewArticleIterator(repo, batcher.BatchSize()),
		logger:   slog.Default().With("component", "reembedder"),
	}, nil
}

// Run re-embeds every stored article with the configured embedder and writes
// the new vectors back in place. Progress is reported to the configured writer.
// It returns the number of articles processed.
func (r *Reembedder) Run(ctx context.Context) (int, error) {
	documents, err := r.repo.ListDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}

	total := 0
	for _, d := range documents {
		total += d.Articles
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No articles found in database (0 articles)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d articles in %d documents (batch size: %d)\n",
		total, len(documents), r.batcher.BatchSize())

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(articles []*core.Article) error {
		texts := make([]string, len(articles))
		for i, a := range articles {
			texts[i] = a.Text
		}

		vectors, err := r.batcher.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", articles[0].DocumentID, err)
		}
		for i := range articles {
			articles[i].Vector = vectors[i]
		}

		if _, err := r.repo.AddArticles(ctx, articles...); err != nil {
			return fmt.Errorf("failed to update articles: %w", err)
		}

		processed += len(articles)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding aborted", "processed", processed, "err", err)
		return processed, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d articles in %v\n",
		processed, elapsed.Round(time.Millisecond))

	return processed, nil
}
