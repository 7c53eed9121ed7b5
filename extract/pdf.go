package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfSource reads page text from a PDF file.
type pdfSource struct {
	id     string
	file   *os.File
	reader *pdf.Reader
}

// OpenPDF opens a PDF file as a page source. The caller must Close it.
func OpenPDF(path string) (PageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	return &pdfSource{
		id:     DocumentID(path),
		file:   f,
		reader: reader,
	}, nil
}

func (s *pdfSource) ID() string {
	return s.id
}

func (s *pdfSource) NumPages() int {
	return s.reader.NumPage()
}

// PageText rebuilds the page line by line from its text rows.
func (s *pdfSource) PageText(i int) (string, error) {
	if i < 1 || i > s.reader.NumPage() {
		return "", fmt.Errorf("%w: %d", ErrPageOutOfRange, i)
	}
	page := s.reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for n, row := range rows {
		if n > 0 {
			b.WriteByte('\n')
		}
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
	}
	return b.String(), nil
}

func (s *pdfSource) Close() error {
	return s.file.Close()
}
