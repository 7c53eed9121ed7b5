package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository connects to the database named by STATUTE_TEST_PG_DSN.
// The articles table is emptied before and after the test.
func testRepository(t *testing.T) storage.ArticleRepository {
	t.Helper()
	dsn := os.Getenv("STATUTE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("STATUTE_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	repo, err := NewRepository(ctx, dsn, 3)
	require.NoError(t, err)

	clean := func() {
		_, err := repo.(*Repository).pool.Exec(ctx, "TRUNCATE articles")
		require.NoError(t, err)
	}
	clean()
	t.Cleanup(func() {
		clean()
		repo.Close()
	})
	return repo
}

func article(documentID, label string, position int, text string, vector []float32) *core.Article {
	return &core.Article{DocumentID: documentID, Label: label, Position: position, Text: text, Vector: vector}
}

func TestNewRepositoryRejectsDimensions(t *testing.T) {
	_, err := NewRepository(context.Background(), "postgres://unused", 0)
	assert.ErrorContains(t, err, "dimensions")
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	_, err := repo.AddArticles(ctx,
		article("ley", "18", 0, "Artículo 18. Conductores.", []float32{1, 0, 0}),
		article("ley", "183", 1, "ARTÍCULO 183. Sanciones.", []float32{0, 1, 0}),
	)
	require.NoError(t, err)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "18", articles[0].Label)

	found, err := repo.FindArticleByPattern(ctx, `^art[íiÍI]culo\s+183\s*(?:\.|-)`)
	require.NoError(t, err)
	assert.Equal(t, "183", found.Label)

	_, err = repo.FindArticleByPattern(ctx, `^art[íiÍI]culo\s+200\s*(?:\.|-)`)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	results, err := repo.FindSimilar(ctx, []float32{0, 1, 0}, 150, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "183", results[0].Article.Label)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].Articles)

	deleted, err := repo.DeleteDocument(ctx, "ley")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}

func TestRepositoryDimensionMismatch(t *testing.T) {
	repo := testRepository(t)

	_, err := repo.AddArticles(context.Background(), article("ley", "1", 0, "Artículo 1.", []float32{1, 0}))
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}
