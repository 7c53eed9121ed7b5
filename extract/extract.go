package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// PageSource yields the ordered page texts of one source document.
type PageSource interface {
	// ID returns the document identifier used as the storage partition key.
	ID() string
	// NumPages returns the number of pages.
	NumPages() int
	// PageText returns the raw text of page i, counting from 1.
	PageText(i int) (string, error)
	// Close releases the underlying file.
	Close() error
}

// Document is the cleaned text of a source document. It is never persisted.
type Document struct {
	ID    string
	Pages []string
	Text  string
}

// Extract reads every page of src, strips page-number footers and joins the
// cleaned pages with newlines.
func Extract(ctx context.Context, src PageSource) (*Document, error) {
	n := src.NumPages()
	doc := &Document{
		ID:    src.ID(),
		Pages: make([]string, 0, n),
	}

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := src.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("extract %s page %d: %w", doc.ID, i, err)
		}
		doc.Pages = append(doc.Pages, StripFooter(text, i))
	}

	doc.Text = strings.Join(doc.Pages, "\n")
	return doc, nil
}

// StripFooter removes the last line of a page when, trimmed, it is exactly the
// page's 1-based ordinal. Any other page text is returned unchanged.
func StripFooter(text string, page int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[len(lines)-1]) != strconv.Itoa(page) {
		return text
	}
	return strings.Join(lines[:len(lines)-1], "\n")
}

// DocumentID derives the partition key from a file path: the base name
// without its extension.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open returns the page source matching the file extension.
func Open(path string) (PageSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return OpenPDF(path)
	case ".txt":
		return OpenText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Supported reports whether Open understands the file extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}
