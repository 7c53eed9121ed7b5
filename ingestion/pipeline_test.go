package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/statute/ai/mock"
	"github.com/poiesic/statute/extract"
	"github.com/poiesic/statute/storage"
	"github.com/poiesic/statute/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lawText = "LEY DE MOVILIDAD\nPreámbulo.\n" +
	"Artículo 1. Objeto de la ley.\nRegula la movilidad.\n1\f" +
	"Artículo 5 bis- Disposición especial.\n2\f" +
	"Artículo 183. Sanciones.\nSe aplicarán multas.\n3"

func setup(t *testing.T, opts ...Option) (*Pipeline, storage.ArticleRepository, *mock.MockEmbedder) {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	embedder := mock.NewMockEmbedder()
	p, err := NewPipeline(repo, embedder, append([]Option{WithRetry(1, time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return p, repo, embedder
}

func TestNewPipeline_Required(t *testing.T) {
	_, err := NewPipeline(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	_, err = NewPipeline(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(repo, mock.NewMockEmbedder(), WithBatchSize(0))
	assert.Error(t, err)

	_, err = NewPipeline(repo, mock.NewMockEmbedder(), WithRetry(0, time.Second))
	assert.Error(t, err)
}

func TestIngestSource(t *testing.T) {
	p, repo, embedder := setup(t)
	ctx := context.Background()

	result, err := p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.NoError(t, err)
	assert.Equal(t, "ley", result.DocumentID)
	assert.Equal(t, 3, result.Articles)
	assert.Zero(t, result.Replaced)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "1", articles[0].Label)
	assert.Equal(t, "Artículo 1. Objeto de la ley. Regula la movilidad.", articles[0].Text)
	assert.Equal(t, "5 bis", articles[1].Label)
	assert.Equal(t, "183", articles[2].Label)
	assert.Equal(t, "Artículo 183. Sanciones. Se aplicarán multas.", articles[2].Text)
	assert.Zero(t, embedder.QueryCount(), "ingestion embeds in document mode only")
}

func TestIngestSource_Reingestion(t *testing.T) {
	p, repo, _ := setup(t)
	ctx := context.Background()

	_, err := p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.NoError(t, err)
	first, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)

	result, err := p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Replaced)

	second, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestIngestSource_RemovesStaleArticles(t *testing.T) {
	p, repo, _ := setup(t)
	ctx := context.Background()

	_, err := p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.NoError(t, err)
	_, err = p.IngestSource(ctx, extract.NewTextSource("ley", "Artículo 1. Única versión."))
	require.NoError(t, err)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Artículo 1. Única versión.", articles[0].Text)
}

func TestIngestSource_DuplicateLabel(t *testing.T) {
	p, repo, _ := setup(t)
	ctx := context.Background()

	_, err := p.IngestSource(ctx, extract.NewTextSource("ley", "Artículo 9. Primera.\nArtículo 9. Segunda."))
	require.NoError(t, err)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Artículo 9. Segunda.", articles[0].Text)
}

func TestIngestSource_NoArticles(t *testing.T) {
	p, repo, _ := setup(t)
	ctx := context.Background()

	_, err := p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.NoError(t, err)

	_, err = p.IngestSource(ctx, extract.NewTextSource("ley", "Sin encabezados"))
	assert.ErrorIs(t, err, ErrNoArticles)

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	assert.Len(t, articles, 3, "previous partition must survive")
}

func TestIngestSource_EmbeddingFailureKeepsPartition(t *testing.T) {
	p, repo, embedder := setup(t)
	ctx := context.Background()

	_, err := p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.NoError(t, err)

	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}
	_, err = p.IngestSource(ctx, extract.NewTextSource("ley", lawText))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	articles, err := repo.GetDocumentArticles(ctx, "ley")
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestIngestSource_Batching(t *testing.T) {
	p, _, embedder := setup(t, WithBatchSize(100))

	var sizes []int
	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		sizes = append(sizes, len(texts))
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}

	var b strings.Builder
	for i := 1; i <= 230; i++ {
		fmt.Fprintf(&b, "Artículo %d. Texto.\n", i)
	}

	result, err := p.IngestSource(context.Background(), extract.NewTextSource("larga", b.String()))
	require.NoError(t, err)
	assert.Equal(t, 230, result.Articles)
	assert.Equal(t, []int{100, 100, 30}, sizes)
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ley.txt"), []byte(lawText), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reglamento.txt"), []byte("Artículo 1. Reglamento."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vacio.txt"), []byte("nada"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.md"), []byte("Artículo 1. Ignorado."), 0644))

	var progress strings.Builder
	p, repo, _ := setup(t, WithPoolSize(2), WithProgress(&syncWriter{w: &progress}))

	results, err := p.IngestDirectory(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoArticles)
	assert.Contains(t, err.Error(), "vacio.txt")

	require.Len(t, results, 2)
	assert.Equal(t, "ley", results[0].DocumentID)
	assert.Equal(t, "reglamento", results[1].DocumentID)

	docs, err := repo.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Contains(t, progress.String(), "ley: 3 articles stored")
}

func TestIngestDirectory_Missing(t *testing.T) {
	p, _, _ := setup(t)
	_, err := p.IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestPaths_Concurrent(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a", "b", "c", "d"} {
		path := filepath.Join(dir, name+".txt")
		require.NoError(t, os.WriteFile(path, []byte("Artículo 1. "+name), 0644))
		paths = append(paths, path)
	}

	p, _, embedder := setup(t, WithPoolSize(4))
	var inFlight, peak atomic.Int32
	embedder.EmbedDocumentsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return [][]float32{{1, 0}}, nil
	}

	results, err := p.IngestPaths(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "a", results[0].DocumentID)
	assert.Equal(t, "d", results[3].DocumentID)
	assert.Greater(t, peak.Load(), int32(1))
}
