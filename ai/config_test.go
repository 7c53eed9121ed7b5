package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:7b", cfg.GeneratorModel)
	assert.Equal(t, "title: none | text: ", cfg.DocumentPrefix)
	assert.Equal(t, "task: search result | query: ", cfg.QueryPrefix)
	assert.NotEqual(t, cfg.DocumentPrefix, cfg.QueryPrefix)
}

func TestModePrefixes(t *testing.T) {
	tests := []struct {
		model    string
		document string
		query    string
	}{
		{"embeddinggemma", "title: none | text: ", "task: search result | query: "},
		{"embeddinggemma:latest", "title: none | text: ", "task: search result | query: "},
		{"nomic-embed-text", "search_document: ", "search_query: "},
		{"mxbai-embed-large", "", "Represent this sentence for searching relevant passages: "},
		{"text-embedding-004", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			document, query := ModePrefixes(tt.model)
			assert.Equal(t, tt.document, document)
			assert.Equal(t, tt.query, query)
		})
	}
}

func TestNormalizeFillsModePrefixes(t *testing.T) {
	cfg := NewConfig(WithModePrefixes("", ""))
	cfg.Normalize()
	assert.Equal(t, "title: none | text: ", cfg.DocumentPrefix)

	gemini := NewConfig(WithProvider(ProviderGoogleAI), WithModePrefixes("", ""))
	gemini.Normalize()
	assert.Empty(t, gemini.DocumentPrefix)
	assert.Empty(t, gemini.QueryPrefix)

	unknown := NewConfig(WithEmbeddingModel("text-embedding-3-small"))
	unknown.Normalize()
	assert.Empty(t, unknown.DocumentPrefix)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GeneratorHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGeneratorHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.GeneratorHost)
	})

	t.Run("with provider and key", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderGoogleAI),
			WithAPIKey("secret"),
			WithEmbeddingModel("text-embedding-004"),
			WithGeneratorModel("gemini-2.5-flash"),
		)

		assert.Equal(t, ProviderGoogleAI, cfg.Provider)
		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
		assert.Equal(t, "gemini-2.5-flash", cfg.GeneratorModel)
	})

	t.Run("with mode prefixes", func(t *testing.T) {
		cfg := NewConfig(WithModePrefixes("search_document: ", "search_query: "))

		assert.Equal(t, "search_document: ", cfg.DocumentPrefix)
		assert.Equal(t, "search_query: ", cfg.QueryPrefix)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already has v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.input, GeneratorHost: tt.input}
			cfg.Normalize()

			assert.Equal(t, ProviderOpenAI, cfg.Provider)
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, tt.expected, cfg.GeneratorHost)
		})
	}

	t.Run("googleai hosts untouched", func(t *testing.T) {
		cfg := &Config{Provider: "GoogleAI", EmbeddingHost: "http://x"}
		cfg.Normalize()

		assert.Equal(t, ProviderGoogleAI, cfg.Provider)
		assert.Equal(t, "http://x", cfg.EmbeddingHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("missing generator host", func(t *testing.T) {
		cfg := NewConfig(WithGeneratorHost(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GeneratorHost")
	})

	t.Run("missing models", func(t *testing.T) {
		err := NewConfig(WithEmbeddingModel("")).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")

		err = NewConfig(WithGeneratorModel("")).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GeneratorModel")
	})

	t.Run("googleai requires key", func(t *testing.T) {
		err := NewConfig(WithProvider(ProviderGoogleAI)).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey")

		err = NewConfig(WithProvider(ProviderGoogleAI), WithAPIKey("k")).Validate()
		assert.NoError(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		err := NewConfig(WithProvider("bedrock")).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Provider")
	})

	t.Run("normalizes during validation", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}
