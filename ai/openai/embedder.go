package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/statute/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder       embeddings.Embedder
	documentPrefix string
	queryPrefix    string
	logger         *slog.Logger
}

// token returns the API key, falling back to a placeholder accepted by
// local OpenAI-compatible services that don't require authentication.
func token(config *ai.Config) string {
	if config.APIKey != "" {
		return config.APIKey
	}
	return "none"
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(token(config)),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:       embedder,
		documentPrefix: config.DocumentPrefix,
		queryPrefix:    config.QueryPrefix,
		logger:         slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedDocuments generates document-mode embeddings for a batch of texts.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating document embeddings", "count", len(texts))

	embeddings, err := e.embedder.EmbedDocuments(ctx, withPrefix(e.documentPrefix, texts))
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	return embeddings, nil
}

// EmbedQuery generates a query-mode embedding for a single question.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating query embedding", "length", len(text))

	embedding, err := e.embedder.EmbedQuery(ctx, e.queryPrefix+text)
	if err != nil {
		e.logger.Error("failed to generate query embedding", "err", err)
		return nil, err
	}

	return embedding, nil
}

func withPrefix(prefix string, texts []string) []string {
	if prefix == "" {
		return texts
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = prefix + t
	}
	return out
}
