package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Document and query embeddings are produced by distinct calls because many
// retrieval models encode the two sides of a search differently.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedDocuments generates document-mode embeddings for a batch of texts.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates a query-mode embedding for a single search question.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text completions for a single prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends the prompt to the model and returns its text response.
	// Returns an error if the provider call fails.
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
