package reembed

import "errors"

var (
	// ErrRepositoryRequired is returned when no article repository is provided.
	ErrRepositoryRequired = errors.New("article repository required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
