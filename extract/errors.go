package extract

import "errors"

var (
	// ErrUnsupportedFormat indicates a file extension with no page source.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrPageOutOfRange indicates a page ordinal outside 1..NumPages.
	ErrPageOutOfRange = errors.New("page out of range")
)
