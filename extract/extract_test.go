package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct {
	textSource
	failAt int
}

func (s *failingSource) PageText(i int) (string, error) {
	if i == s.failAt {
		return "", errors.New("corrupt page")
	}
	return s.textSource.PageText(i)
}

func TestStripFooter(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		page     int
		expected string
	}{
		{"footer equals ordinal", "Artículo 1. Objeto.\n1", 1, "Artículo 1. Objeto."},
		{"footer with padding", "Texto\n   3  \n\n", 3, "Texto"},
		{"footer is another number", "Texto\n4", 3, "Texto\n4"},
		{"footer is not last line", "2\nTexto", 2, "2\nTexto"},
		{"number inside text", "Artículo 2. Texto 2", 2, "Artículo 2. Texto 2"},
		{"page with only the footer", "5", 5, ""},
		{"empty page", "", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFooter(tt.text, tt.page))
		})
	}
}

func TestExtract(t *testing.T) {
	src := NewTextSource("ley", "Preámbulo\nArtículo 1. Objeto.\n1\fcontinúa el artículo\n2\fArtículo 2. Otro\n7")

	doc, err := Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "ley", doc.ID)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "Preámbulo\nArtículo 1. Objeto.\ncontinúa el artículo\nArtículo 2. Otro\n7", doc.Text)
}

func TestExtract_PageError(t *testing.T) {
	src := &failingSource{
		textSource: textSource{id: "ley", pages: []string{"a", "b"}},
		failAt:     2,
	}

	_, err := Extract(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, NewTextSource("ley", "a"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "ley_movilidad", DocumentID("/data/leyes/ley_movilidad.pdf"))
	assert.Equal(t, "reglamento", DocumentID("reglamento.txt"))
	assert.Equal(t, "sin_extension", DocumentID("dir/sin_extension"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	t.Run("text file", func(t *testing.T) {
		path := filepath.Join(dir, "ley.txt")
		require.NoError(t, os.WriteFile(path, []byte("uno\ftwo"), 0644))

		src, err := Open(path)
		require.NoError(t, err)
		defer src.Close()

		assert.Equal(t, "ley", src.ID())
		assert.Equal(t, 2, src.NumPages())

		_, err = src.PageText(3)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "ley.docx"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.False(t, Supported("ley.docx"))
		assert.True(t, Supported("LEY.PDF"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "missing.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid pdf", func(t *testing.T) {
		path := filepath.Join(dir, "roto.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

		_, err := Open(path)
		assert.Error(t, err)
	})
}
