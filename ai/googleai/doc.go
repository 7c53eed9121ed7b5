// Package googleai provides AI service implementations backed by Google's Gemini API.
//
// It mirrors the openai package: a Provider exposing an ai.Embedder and an
// ai.Generator. Generation goes through langchaingo's googleai client;
// embeddings use the genai client directly so document and query requests
// carry the retrieval_document and retrieval_query task types.
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderGoogleAI),
//	    ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    ai.WithEmbeddingModel("text-embedding-004"),
//	    ai.WithGeneratorModel("gemini-2.5-flash"),
//	)
//	provider, err := googleai.NewProvider(ctx, config)
package googleai
