package badger

import (
	"context"
	"testing"

	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticle(documentID, label string, position int, text string) *core.Article {
	return &core.Article{
		DocumentID: documentID,
		Label:      label,
		Position:   position,
		Text:       text,
		Vector:     []float32{1, 0},
	}
}

func TestAddArticles(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	added, err := repo.AddArticles(ctx,
		newArticle("ley", "1", 0, "Artículo 1. Objeto."),
		newArticle("ley", "2", 1, "Artículo 2. Definiciones."),
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, core.ArticleID("ley", "1"), added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "1", articles[0].Label)
	assert.Equal(t, "2", articles[1].Label)

	t.Run("rejects invalid articles", func(t *testing.T) {
		_, err := repo.AddArticles(ctx, &core.Article{DocumentID: "ley", Label: "3"})
		assert.ErrorIs(t, err, core.ErrInvalidArticle)
	})
}

func TestAddArticles_Upsert(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	_, err = repo.AddArticles(ctx, newArticle("ley", "9", 0, "Artículo 9. Primero."))
	require.NoError(t, err)
	_, err = repo.AddArticles(ctx, newArticle("ley", "9", 0, "Artículo 9. Segundo."))
	require.NoError(t, err)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Artículo 9. Segundo.", articles[0].Text)

	t.Run("label moved to a new position", func(t *testing.T) {
		_, err := repo.AddArticles(ctx, newArticle("ley", "9", 4, "Artículo 9. Tercero."))
		require.NoError(t, err)

		articles, err := repo.GetDocumentArticles(ctx, "ley")
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, 4, articles[0].Position)
	})

	t.Run("position taken by another label", func(t *testing.T) {
		_, err := repo.AddArticles(ctx, newArticle("ley", "10", 4, "Artículo 10. Otro."))
		require.NoError(t, err)

		articles, err := repo.GetDocumentArticles(ctx, "ley")
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "10", articles[0].Label)

		docs, err := repo.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, 1, docs[0].Articles)
	})
}

func TestDeleteDocument(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	_, err = repo.AddArticles(ctx,
		newArticle("ley", "1", 0, "Artículo 1. Uno."),
		newArticle("ley", "2", 1, "Artículo 2. Dos."),
		newArticle("reglamento", "1", 0, "Artículo 1. Reglamento."),
	)
	require.NoError(t, err)

	deleted, err := repo.DeleteDocument(ctx, "ley")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	assert.Empty(t, articles)

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "reglamento", docs[0].DocumentID)

	t.Run("unknown document", func(t *testing.T) {
		deleted, err := repo.DeleteDocument(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("empty document id", func(t *testing.T) {
		_, err := repo.DeleteDocument(ctx, "")
		assert.ErrorIs(t, err, core.ErrEmptyDocumentID)
	})
}

func TestDeleteDocument_PrefixIsolation(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	_, err = repo.AddArticles(ctx,
		newArticle("ley", "1", 0, "Artículo 1. Uno."),
		newArticle("ley2", "1", 0, "Artículo 1. Otra ley."),
	)
	require.NoError(t, err)

	deleted, err := repo.DeleteDocument(ctx, "ley")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	articles, err := repo.GetDocumentArticles(ctx, "ley2")
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestFindArticleByPattern(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	_, err = repo.AddArticles(ctx,
		newArticle("a-ley", "18", 0, "Artículo 18. Los conductores deberán..."),
		newArticle("a-ley", "183", 1, "ARTÍCULO 183. Las sanciones..."),
		newArticle("b-ley", "18", 0, "Artículo 18. Otro documento."),
	)
	require.NoError(t, err)

	t.Run("case-insensitive match", func(t *testing.T) {
		found, err := repo.FindArticleByPattern(ctx, `^art[íi]culo\s+183\s*(?:\.|-)`)
		require.NoError(t, err)
		assert.Equal(t, "183", found.Label)
	})

	t.Run("first match in document order", func(t *testing.T) {
		found, err := repo.FindArticleByPattern(ctx, `^art[íi]culo\s+18\s*(?:\.|-)`)
		require.NoError(t, err)
		assert.Equal(t, "a-ley", found.DocumentID)
		assert.Equal(t, "18", found.Label)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindArticleByPattern(ctx, `^art[íi]culo\s+200\s*(?:\.|-)`)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := repo.FindArticleByPattern(ctx, `(`)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestListDocuments(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	docs, err := repo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = repo.AddArticles(ctx,
		newArticle("reglamento", "1", 0, "Artículo 1. R."),
		newArticle("ley", "1", 0, "Artículo 1. L."),
		newArticle("ley", "2", 1, "Artículo 2. L."),
	)
	require.NoError(t, err)

	docs, err = repo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ley", docs[0].DocumentID)
	assert.Equal(t, 2, docs[0].Articles)
	assert.Equal(t, "reglamento", docs[1].DocumentID)
	assert.Equal(t, 1, docs[1].Articles)
}

func TestNewRepository_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	_, err = repo.AddArticles(ctx, newArticle("ley", "1", 0, "Artículo 1. Persistente."))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewRepository(dir)
	require.NoError(t, err)
	defer repo.Close()

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Artículo 1. Persistente.", articles[0].Text)
}
