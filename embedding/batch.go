package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/statute/ai"
)

const (
	// DefaultBatchSize is the number of texts sent per provider call.
	DefaultBatchSize = 100
	// DefaultMaxRetries is the number of attempts per batch.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the base backoff delay.
	DefaultRetryDelay = time.Second
)

// Batcher embeds texts in document mode, in sequential fixed-size batches,
// retrying each batch and normalizing every vector.
type Batcher struct {
	embedder  ai.Embedder
	batchSize int
	backoff   Backoff
	logger    *slog.Logger
}

// NewBatcher creates a Batcher. Non-positive sizes and attempts fall back to defaults.
func NewBatcher(embedder ai.Embedder, batchSize, maxRetries int, retryDelay time.Duration) (*Batcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Batcher{
		embedder:  embedder,
		batchSize: batchSize,
		backoff:   Backoff{Attempts: maxRetries, Delay: retryDelay},
		logger:    slog.Default().With("component", "embedding-batcher"),
	}, nil
}

// BatchSize returns the number of texts per provider call.
func (b *Batcher) BatchSize() int {
	return b.batchSize
}

// Embed returns one unit vector per text, in input order.
func (b *Batcher) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		batch := texts[start:end]

		var embeddings [][]float32
		err := b.backoff.Retry(ctx, func() error {
			var err error
			embeddings, err = b.embedder.EmbedDocuments(ctx, batch)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d after %d attempts: %w", start, end, b.backoff.Attempts, err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, len(batch), len(embeddings))
		}

		for _, e := range embeddings {
			vectors = append(vectors, Normalize(e))
		}
		b.logger.Debug("embedded batch", "from", start, "to", end, "total", len(texts))
	}

	return vectors, nil
}
