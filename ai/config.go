package ai

import (
	"errors"
	"strings"
)

// Provider kinds understood by Config.
const (
	// ProviderOpenAI targets OpenAI-compatible APIs (OpenAI, Ollama, LocalAI, vLLM).
	ProviderOpenAI = "openai"
	// ProviderGoogleAI targets the Gemini API.
	ProviderGoogleAI = "googleai"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the backing implementation: "openai" or "googleai".
	// Default: "openai"
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	// Ignored by the googleai provider.
	EmbeddingHost string

	// GeneratorHost is the base URL for the answer generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	// Ignored by the googleai provider.
	GeneratorHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-004"
	EmbeddingModel string

	// GeneratorModel is the model identifier to use for answer generation.
	// Example: "qwen2.5:7b", "gemini-2.5-flash"
	GeneratorModel string

	// APIKey authenticates against hosted providers.
	// Local OpenAI-compatible servers accept any token, so it may stay empty there.
	APIKey string

	// DocumentPrefix is prepended to every text embedded in document mode.
	// Example: "search_document: " for nomic-embed-text
	DocumentPrefix string

	// QueryPrefix is prepended to every text embedded in query mode.
	// Example: "search_query: " for nomic-embed-text
	QueryPrefix string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the provider kind.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier and resets the
// mode prefixes to the ones ModePrefixes knows for it.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
		c.DocumentPrefix, c.QueryPrefix = ModePrefixes(model)
	}
}

// WithGeneratorModel sets the generation model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithModePrefixes sets the document and query embedding prefixes.
func WithModePrefixes(document, query string) ConfigOption {
	return func(c *Config) {
		c.DocumentPrefix = document
		c.QueryPrefix = query
	}
}

// modePrefixes lists the task prompts of embedding models that encode the
// retrieval side in the input text. Keys are model names without a tag.
var modePrefixes = map[string][2]string{
	"embeddinggemma":    {"title: none | text: ", "task: search result | query: "},
	"nomic-embed-text":  {"search_document: ", "search_query: "},
	"mxbai-embed-large": {"", "Represent this sentence for searching relevant passages: "},
}

// ModePrefixes returns the document and query prefixes for a known embedding
// model, or empty strings. An Ollama tag such as ":latest" is ignored.
func ModePrefixes(model string) (document, query string) {
	name, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(model)), ":")
	p := modePrefixes[name]
	return p[0], p[1]
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and generation use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	documentPrefix, queryPrefix := ModePrefixes("embeddinggemma")
	return &Config{
		Provider:       ProviderOpenAI,
		EmbeddingHost:  defaultHost,
		GeneratorHost:  defaultHost,
		EmbeddingModel: "embeddinggemma",
		GeneratorModel: "qwen2.5:7b",
		DocumentPrefix: documentPrefix,
		QueryPrefix:    queryPrefix,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderGoogleAI),
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    WithEmbeddingModel("text-embedding-004"),
//	    WithGeneratorModel("gemini-2.5-flash"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// For the openai provider it adds the /v1 suffix to hosts if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc), and
// fills unset mode prefixes from ModePrefixes. The googleai provider
// separates the modes with task types instead.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Provider != ProviderOpenAI {
		return
	}
	if c.DocumentPrefix == "" && c.QueryPrefix == "" {
		c.DocumentPrefix, c.QueryPrefix = ModePrefixes(c.EmbeddingModel)
	}
	c.EmbeddingHost = withV1Suffix(c.EmbeddingHost)
	c.GeneratorHost = withV1Suffix(c.GeneratorHost)
}

func withV1Suffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.GeneratorHost == "" {
			return errors.New("ai config: GeneratorHost is required")
		}
	case ProviderGoogleAI:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for the googleai provider")
		}
	default:
		return errors.New("ai config: Provider must be one of openai, googleai")
	}

	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	return nil
}
