package main

import (
	"fmt"
	"io"

	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/search"
)

// traceMonitor prints each resolution step.
type traceMonitor struct {
	w io.Writer
}

var _ search.SearchMonitor = (*traceMonitor)(nil)

func (m *traceMonitor) Start(question string) {
	fmt.Fprintf(m.w, "question: %q\n", question)
}

func (m *traceMonitor) AfterCitation(label string) {
	if label == "" {
		fmt.Fprintln(m.w, "citation: none")
		return
	}
	fmt.Fprintf(m.w, "citation: %s\n", label)
}

func (m *traceMonitor) ExactMiss(label string) {
	fmt.Fprintf(m.w, "exact lookup %q: no match\n", label)
}

func (m *traceMonitor) ExactHit(label string, article *core.Article) {
	fmt.Fprintf(m.w, "exact lookup %q: %s/%s\n", label, article.DocumentID, article.Label)
}

func (m *traceMonitor) AfterSemanticSearch(results []*core.SearchResult) {
	fmt.Fprintf(m.w, "semantic search: %d hit(s)\n", len(results))
	for i, r := range results {
		fmt.Fprintf(m.w, "  %d: %s/%s [%0.3f]\n", i+1, r.Article.DocumentID, r.Article.Label, r.Score)
	}
}

func (m *traceMonitor) Finish(resolution *search.Resolution) {
	fmt.Fprintf(m.w, "resolution: %s\n\n", resolution.Kind)
}
