package search

import (
	"regexp"
	"strings"

	"github.com/poiesic/statute/segment"
)

// citationPattern finds an article citation anywhere in a question.
var citationPattern = regexp.MustCompile(`(?i)art[íi]culo\s+(\d+\s*[\p{L}\p{N}_-]*)`)

// Citation returns the normalized label of the first article cited in question.
// The label is used as captured: "artículo 200 bis" never falls back to "200".
func Citation(question string) (string, bool) {
	m := citationPattern.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	return segment.NormalizeLabel(m[1]), true
}

// ExactPattern builds the store pattern matching an article whose text opens
// with the header for label. Internal spaces match any whitespace run and the
// label must be followed by a header terminator, so "18" never matches
// "Artículo 183." and "200" never matches "Artículo 200 bis.".
// Both cases of the accented vowel are listed because PostgreSQL's ~* only
// folds non-ASCII letters under a UTF-8 LC_CTYPE.
func ExactPattern(label string) string {
	parts := strings.Fields(label)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return `^art[íiÍI]culo\s+` + strings.Join(parts, `\s+`) + `\s*(?:\.|-)`
}
