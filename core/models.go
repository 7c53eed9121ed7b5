package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Article IDs are content-derived so re-ingesting a document reproduces them.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ArticleID returns the ID of the article with the given label inside a document.
func ArticleID(documentID, label string) ID {
	return IDFromContent("(" + documentID + "," + label + ")")
}

// Article is one addressable unit of a legal text, delimited by its header line.
type Article struct {
	Id         ID
	DocumentID string    // Partition key, derived from the source file name
	Label      string    // Article identifier as written in the header, e.g. "183 bis"
	Position   int       // First-insertion order of the label within the document
	Text       string    // Normalized article text, starting with the header line
	Vector     []float32 // Document-mode embedding (populated during ingestion)
	InsertedAt time.Time
}

// SearchResult is an article returned by vector similarity search.
type SearchResult struct {
	Article *Article
	Score   float32
}

// DocumentSummary describes one stored document partition.
type DocumentSummary struct {
	DocumentID string
	Articles   int
	InsertedAt time.Time
}
