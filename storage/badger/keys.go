package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	articlePrefix  = "art:"
	labelPrefix    = "lbl:"
	documentPrefix = "doc:"
)

// keySeparator ends the document ID inside composite keys. It sorts below
// every printable byte, so prefix iteration visits documents in ID order.
const keySeparator = 0x00

// makeDocumentArticlesPrefix generates the prefix shared by all articles of a document.
// Format: prefix:documentID\x00
func makeDocumentArticlesPrefix(documentID string) []byte {
	buf := make([]byte, 0, len(articlePrefix)+len(documentID)+1)
	buf = append(buf, articlePrefix...)
	buf = append(buf, documentID...)
	return append(buf, keySeparator)
}

// makeArticleKey generates a key for an article.
// Format: prefix:documentID\x00position
func makeArticleKey(documentID string, position int) []byte {
	buf := makeDocumentArticlesPrefix(documentID)
	// BigEndian so lexicographic order matches position order
	return binary.BigEndian.AppendUint64(buf, uint64(position))
}

// makeDocumentLabelsPrefix generates the prefix of a document's label index.
func makeDocumentLabelsPrefix(documentID string) []byte {
	buf := make([]byte, 0, len(labelPrefix)+len(documentID)+1)
	buf = append(buf, labelPrefix...)
	buf = append(buf, documentID...)
	return append(buf, keySeparator)
}

// makeLabelKey generates the label index key pointing at an article key.
// Format: prefix:documentID\x00label
func makeLabelKey(documentID, label string) []byte {
	return append(makeDocumentLabelsPrefix(documentID), label...)
}

// makeDocumentKey generates the key of a document summary.
func makeDocumentKey(documentID string) []byte {
	return []byte(documentPrefix + documentID)
}
