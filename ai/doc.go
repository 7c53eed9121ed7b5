// Package ai provides abstractions for the AI services used by statute.
//
// This package defines interfaces for text embeddings and answer generation.
// The retrieval and answering code depends on these abstractions rather than
// on concrete provider SDKs.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates document-mode and query-mode vector embeddings
//   - Generator: Produces a completion for a single prompt
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs (OpenAI, Ollama, vLLM) through langchaingo
//   - ai/googleai: Gemini through langchaingo
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, googleai.NewProvider, ...) return
// INTERFACE types to enforce abstraction:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockGenerator)
// return CONCRETE types to enable test assertions and behavior injection via
// the mock's public fields and methods (CallCount, EmbedQueryFunc, Reset, etc.).
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedDocuments(ctx, texts)
//	answer, err := provider.Generator().Generate(ctx, prompt)
package ai
