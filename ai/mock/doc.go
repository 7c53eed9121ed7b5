// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Generator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedQuery(ctx, "test")
//
//	// Custom behavior injection
//	gen := mock.NewMockGenerator()
//	gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return "", errors.New("provider down")
//	}
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockGenerator: Returns a fixed Response string
//   - MockProvider: Aggregates mock embedder and generator
package mock
