package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/poiesic/statute/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmbedder struct {
	documents []string
	query     string
}

func (r *recordingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	r.documents = texts
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func (r *recordingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	r.query = text
	return []float32{1}, nil
}

func TestEmbedderModePrefixes(t *testing.T) {
	inner := &recordingEmbedder{}
	e := &Embedder{
		embedder:       inner,
		documentPrefix: "search_document: ",
		queryPrefix:    "search_query: ",
		logger:         slog.Default(),
	}

	vectors, err := e.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, []string{"search_document: a", "search_document: b"}, inner.documents)

	_, err = e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "search_query: q", inner.query)
}

func TestEmbedderNoPrefix(t *testing.T) {
	inner := &recordingEmbedder{}
	e := &Embedder{embedder: inner, logger: slog.Default()}

	texts := []string{"Artículo 1.- Texto"}
	_, err := e.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, texts, inner.documents)
}

func TestNewProvider(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
		assert.Error(t, err)
	})

	t.Run("valid config", func(t *testing.T) {
		p, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
		require.NoError(t, err)
		assert.NotNil(t, p.Embedder())
		assert.NotNil(t, p.Generator())
		assert.NoError(t, p.Close())
	})
}

// embeddingServer answers OpenAI-style embedding calls and records every input list.
func embeddingServer(t *testing.T) (*httptest.Server, func() [][]string) {
	t.Helper()
	var mu sync.Mutex
	var inputs [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		inputs = append(inputs, req.Input)
		mu.Unlock()

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, len(req.Input))
		for i := range req.Input {
			data[i] = item{Object: "embedding", Index: i, Embedding: []float32{1, 0}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "embeddinggemma"})
	}))
	t.Cleanup(srv.Close)
	return srv, func() [][]string {
		mu.Lock()
		defer mu.Unlock()
		return inputs
	}
}

func TestEmbedderDefaultConfigSeparatesModes(t *testing.T) {
	srv, inputs := embeddingServer(t)
	cfg := ai.DefaultConfig()
	cfg.EmbeddingHost = srv.URL + "/v1"

	e, err := NewEmbedder(cfg)
	require.NoError(t, err)

	text := "Artículo 183. Multas."
	_, err = e.EmbedDocuments(context.Background(), []string{text})
	require.NoError(t, err)
	_, err = e.EmbedQuery(context.Background(), text)
	require.NoError(t, err)

	got := inputs()
	require.Len(t, got, 2)
	require.Len(t, got[0], 1)
	require.Len(t, got[1], 1)
	assert.NotEqual(t, got[0][0], got[1][0])
	assert.Equal(t, "title: none | text: "+text, got[0][0])
	assert.Equal(t, "task: search result | query: "+text, got[1][0])
}
