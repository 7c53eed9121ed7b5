package search

import (
	"strings"

	"github.com/poiesic/statute/core"
)

// Kind tags how a question was resolved.
type Kind int

const (
	// Empty means neither stage produced any article.
	Empty Kind = iota
	// ExactHit means a cited label matched a stored article header.
	ExactHit
	// SemanticHits means the articles came from vector similarity.
	SemanticHits
)

func (k Kind) String() string {
	switch k {
	case ExactHit:
		return "exact"
	case SemanticHits:
		return "semantic"
	default:
		return "empty"
	}
}

// contextSeparator joins article texts in the assembled context.
const contextSeparator = "\n\n"

// Resolution is the outcome of resolving one question.
type Resolution struct {
	Kind Kind
	// Label is the cited label that produced an ExactHit.
	Label    string
	Articles []*core.Article
	// Scores holds the similarity of each article for SemanticHits.
	Scores []float32
}

// Context returns the article texts joined by blank lines, or "" when empty.
func (r *Resolution) Context() string {
	if r == nil || len(r.Articles) == 0 {
		return ""
	}
	texts := make([]string, len(r.Articles))
	for i, a := range r.Articles {
		texts[i] = a.Text
	}
	return strings.Join(texts, contextSeparator)
}

// IsEmpty reports whether the resolution carries no context.
func (r *Resolution) IsEmpty() bool {
	return r == nil || r.Kind == Empty || len(r.Articles) == 0
}
