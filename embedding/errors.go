package embedding

import "errors"

var (
	// ErrInvalidAttempts is returned when a Backoff allows no attempts.
	ErrInvalidAttempts = errors.New("attempts must be greater than 0")

	// ErrEmbedderRequired is returned when a Batcher is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCountMismatch is returned when a provider answers a batch with the wrong number of vectors.
	ErrCountMismatch = errors.New("embedding count mismatch")
)
