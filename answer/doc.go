// Package answer turns a resolved context into a grounded answer.
//
// An Answerer resolves the question with a search.Searcher, returns the
// fixed NotFound answer without calling the generator when the context is
// empty, and otherwise sends a single prompt that restricts the generator to
// the retrieved articles. Generation failures map to the fixed Failure
// answer, so Ask always returns a string.
package answer
