package googleai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/poiesic/statute/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/api/option"
)

// Provider implements ai.AIProvider on top of the Gemini API.
type Provider struct {
	embeddings *genai.Client
	embedder   *Embedder
	generator  *Generator
	logger     *slog.Logger
}

// NewProvider creates a Gemini-backed provider. The context bounds client construction only.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderGoogleAI {
		return nil, fmt.Errorf("googleai provider: unexpected provider kind %q", config.Provider)
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, fmt.Errorf("googleai provider: %w", err)
	}

	embeddings, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("googleai provider: %w", err)
	}

	return &Provider{
		embeddings: embeddings,
		embedder:   newEmbedder(embeddings, config),
		generator: &Generator{
			client: client,
			logger: slog.Default().With("component", "googleai-generator"),
		},
		logger: slog.Default().With("component", "googleai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the answer generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close releases resources held by the provider.
func (p *Provider) Close() error {
	p.logger.Debug("closing googleai provider")
	return p.embeddings.Close()
}

// Embedder implements ai.Embedder with Gemini embedding models.
// Documents and queries go through separate models tagged with the
// retrieval_document and retrieval_query task types.
type Embedder struct {
	documents      *genai.EmbeddingModel
	queries        *genai.EmbeddingModel
	documentPrefix string
	queryPrefix    string
	logger         *slog.Logger
}

func newEmbedder(client *genai.Client, config *ai.Config) *Embedder {
	documents := client.EmbeddingModel(config.EmbeddingModel)
	documents.TaskType = genai.TaskTypeRetrievalDocument
	queries := client.EmbeddingModel(config.EmbeddingModel)
	queries.TaskType = genai.TaskTypeRetrievalQuery
	return &Embedder{
		documents:      documents,
		queries:        queries,
		documentPrefix: config.DocumentPrefix,
		queryPrefix:    config.QueryPrefix,
		logger:         slog.Default().With("component", "googleai-embedder"),
	}
}

// EmbedDocuments generates document-mode embeddings for a batch of texts.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating document embeddings", "count", len(texts))
	batch := e.documents.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(e.documentPrefix + t))
	}
	resp, err := e.documents.BatchEmbedContents(ctx, batch)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("googleai embedder: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("googleai embedder: missing embedding %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedQuery generates a query-mode embedding for a single question.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.queries.EmbedContent(ctx, genai.Text(e.queryPrefix+text))
	if err != nil {
		e.logger.Error("failed to generate query embedding", "err", err)
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("googleai embedder: empty query embedding")
	}
	return resp.Embedding.Values, nil
}

// Generator implements ai.Generator with Gemini chat models.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// Generate sends a single-turn prompt and returns the model's completion.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(0))
	if err != nil {
		g.logger.Error("completion failed", "err", err)
		return "", err
	}
	return completion, nil
}
