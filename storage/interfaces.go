package storage

import (
	"context"

	"github.com/poiesic/statute/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds articles similar to the given unit-length vector.
	// candidates bounds the approximate-search candidate pool where the backend
	// uses one; exhaustive backends ignore it. Returns up to limit results
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, candidates, limit int) ([]*core.SearchResult, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// ArticleRepository provides operations for managing article records.
// Articles are partitioned by document ID; within a document a label is unique.
type ArticleRepository interface {
	Repository

	// AddArticles upserts one or more articles.
	// Articles with ID=0 get core.ArticleID(DocumentID, Label).
	// Sets InsertedAt timestamp if not already set.
	// Returns the articles with IDs and timestamps populated.
	AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// DeleteDocument removes every article of a document.
	// Returns the number of articles removed; zero is not an error.
	DeleteDocument(ctx context.Context, documentID string) (int, error)

	// FindArticleByPattern returns the first article whose text matches pattern,
	// ordered by document ID then position. The match is case-insensitive.
	// pattern must stay within the syntax shared by RE2 and PostgreSQL regular
	// expressions and must not carry its own flags.
	// Returns ErrNotFound if nothing matches.
	FindArticleByPattern(ctx context.Context, pattern string) (*core.Article, error)

	// GetDocumentArticles returns the articles of one document in position order.
	// Returns an empty slice for unknown documents.
	GetDocumentArticles(ctx context.Context, documentID string) ([]*core.Article, error)

	// ListDocuments returns a summary of every stored document, ordered by ID.
	ListDocuments(ctx context.Context) ([]core.DocumentSummary, error)
}
