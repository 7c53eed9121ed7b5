package extract

import (
	"fmt"
	"os"
	"strings"
)

// pageBreak separates pages in plain-text exports.
const pageBreak = "\f"

// textSource serves a plain-text file whose pages are separated by form feeds.
type textSource struct {
	id    string
	pages []string
}

// OpenText reads a .txt file as a page source. A file without form feeds is a single page.
func OpenText(path string) (PageSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewTextSource(DocumentID(path), string(data)), nil
}

// NewTextSource builds a page source over in-memory text.
func NewTextSource(id, text string) PageSource {
	return &textSource{
		id:    id,
		pages: strings.Split(text, pageBreak),
	}
}

func (s *textSource) ID() string {
	return s.id
}

func (s *textSource) NumPages() int {
	return len(s.pages)
}

func (s *textSource) PageText(i int) (string, error) {
	if i < 1 || i > len(s.pages) {
		return "", fmt.Errorf("%w: %d", ErrPageOutOfRange, i)
	}
	return s.pages[i-1], nil
}

func (s *textSource) Close() error {
	return nil
}
