package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/storage"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS articles (
	document_id TEXT NOT NULL,
	label       TEXT NOT NULL,
	id          BIGINT NOT NULL,
	position    INT NOT NULL,
	content     TEXT NOT NULL,
	embedding   vector(%d),
	inserted_at TIMESTAMP WITH TIME ZONE NOT NULL,
	PRIMARY KEY (document_id, label)
);

CREATE INDEX IF NOT EXISTS idx_articles_embedding ON articles USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_articles_position ON articles (document_id, position);
`

// Repository implements storage.ArticleRepository on PostgreSQL with pgvector.
type Repository struct {
	pool       *pgxpool.Pool
	dimensions int
	logger     *slog.Logger
}

var _ storage.ArticleRepository = (*Repository)(nil)

// NewRepository connects to dsn, creates the schema if needed and returns the repository.
// dimensions fixes the embedding width of the articles table.
func NewRepository(ctx context.Context, dsn string, dimensions int) (storage.ArticleRepository, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("postgres: dimensions must be positive, got %d", dimensions)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf(schema, dimensions)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}

	return &Repository{
		pool:       pool,
		dimensions: dimensions,
		logger:     slog.Default().With("component", "postgres-repository"),
	}, nil
}

// Close closes the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	r.logger.Debug("connection pool closed")
	return nil
}

// AddArticles upserts articles on (document_id, label).
func (r *Repository) AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	for _, article := range articles {
		if err := core.ValidateArticle(article); err != nil {
			return nil, err
		}
		if len(article.Vector) != r.dimensions {
			return nil, fmt.Errorf("%w: expected %d, got %d", storage.ErrDimensionMismatch, r.dimensions, len(article.Vector))
		}
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO articles (document_id, label, id, position, content, embedding, inserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (document_id, label) DO UPDATE SET
			position = EXCLUDED.position,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding
		RETURNING inserted_at
	`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, article := range articles {
			if article.Id == 0 {
				article.Id = core.ArticleID(article.DocumentID, article.Label)
			}
			if article.InsertedAt.IsZero() {
				article.InsertedAt = now
			}
			var inserted time.Time
			err := tx.QueryRow(ctx, query,
				article.DocumentID,
				article.Label,
				int64(article.Id),
				article.Position,
				article.Text,
				pgvector.NewVector(article.Vector),
				article.InsertedAt,
			).Scan(&inserted)
			if err != nil {
				return err
			}
			article.InsertedAt = inserted.UTC()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// DeleteDocument removes every article of a document.
func (r *Repository) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, core.ErrEmptyDocumentID
	}
	tag, err := r.pool.Exec(ctx, "DELETE FROM articles WHERE document_id = $1", documentID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

const articleColumns = `document_id, label, id, position, content, embedding, inserted_at`

// FindArticleByPattern returns the first article matching pattern with the
// case-insensitive ~* operator. Under a C LC_CTYPE ~* folds ASCII only, so
// patterns spell out both cases of accented letters.
func (r *Repository) FindArticleByPattern(ctx context.Context, pattern string) (*core.Article, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE content ~* $1
		ORDER BY document_id COLLATE "C", position
		LIMIT 1
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, err)
		}
		return nil, storage.ErrNotFound
	}
	return scanArticle(rows)
}

// FindSimilar runs an HNSW cosine search; candidates sets hnsw.ef_search for the query.
func (r *Repository) FindSimilar(ctx context.Context, vector []float32, candidates, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) != r.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", storage.ErrDimensionMismatch, r.dimensions, len(vector))
	}
	candidates = max(candidates, limit)

	var results []*core.SearchResult
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT set_config('hnsw.ef_search', $1, true)", strconv.Itoa(candidates)); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT `+articleColumns+`, 1 - (embedding <=> $1) AS score
			FROM articles
			WHERE embedding IS NOT NULL
			ORDER BY embedding <=> $1
			LIMIT $2
		`, pgvector.NewVector(vector), limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				article   core.Article
				id        int64
				embedding pgvector.Vector
				score     float64
			)
			if err := rows.Scan(&article.DocumentID, &article.Label, &id, &article.Position,
				&article.Text, &embedding, &article.InsertedAt, &score); err != nil {
				return err
			}
			article.Id = core.ID(id)
			article.Vector = embedding.Slice()
			article.InsertedAt = article.InsertedAt.UTC()
			results = append(results, &core.SearchResult{Article: &article, Score: float32(score)})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetDocumentArticles returns a document's articles in position order.
func (r *Repository) GetDocumentArticles(ctx context.Context, documentID string) ([]*core.Article, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE document_id = $1
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*core.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// ListDocuments summarizes every stored document.
func (r *Repository) ListDocuments(ctx context.Context) ([]core.DocumentSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT document_id, count(*), min(inserted_at)
		FROM articles
		GROUP BY document_id
		ORDER BY document_id COLLATE "C"
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []core.DocumentSummary{}
	for rows.Next() {
		var (
			summary core.DocumentSummary
			count   int64
		)
		if err := rows.Scan(&summary.DocumentID, &count, &summary.InsertedAt); err != nil {
			return nil, err
		}
		summary.Articles = int(count)
		summary.InsertedAt = summary.InsertedAt.UTC()
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func scanArticle(rows pgx.Rows) (*core.Article, error) {
	var (
		article   core.Article
		id        int64
		embedding pgvector.Vector
	)
	if err := rows.Scan(&article.DocumentID, &article.Label, &id, &article.Position,
		&article.Text, &embedding, &article.InsertedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	article.Id = core.ID(id)
	article.Vector = embedding.Slice()
	article.InsertedAt = article.InsertedAt.UTC()
	return &article, nil
}
