// Package config loads the application configuration from an optional YAML
// file and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/statute/ai"
	"gopkg.in/yaml.v3"
)

const (
	StoreBadger   = "badger"
	StorePostgres = "postgres"

	// DefaultAPIKeyEnv is read when no API key is configured.
	DefaultAPIKeyEnv = "STATUTE_API_KEY"
)

// StoreConfig selects and configures the article store.
type StoreConfig struct {
	Kind string `yaml:"kind"`
	// Path is the BadgerDB directory.
	Path string `yaml:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn"`
	// Dimensions is the embedding width of the pgvector column.
	Dimensions int `yaml:"dimensions"`
}

// AIConfig selects and configures the embedding and generation provider.
type AIConfig struct {
	Provider       string `yaml:"provider"`
	EmbeddingHost  string `yaml:"embedding_host"`
	GeneratorHost  string `yaml:"generator_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	GeneratorModel string `yaml:"generator_model"`
	APIKey         string `yaml:"api_key"`
	APIKeyEnv      string `yaml:"api_key_env"`
	DocumentPrefix string `yaml:"document_prefix"`
	QueryPrefix    string `yaml:"query_prefix"`
}

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Workers    int           `yaml:"workers"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	TopK          int `yaml:"top_k"`
	CandidatePool int `yaml:"candidate_pool"`
}

// AnswerConfig tunes answer synthesis.
type AnswerConfig struct {
	LawName string `yaml:"law_name"`
	// TokenModel enables prompt token accounting with the named model's encoding.
	TokenModel string `yaml:"token_model"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Config is the root application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	AI        AIConfig        `yaml:"ai"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Search    SearchConfig    `yaml:"search"`
	Answer    AnswerConfig    `yaml:"answer"`
	Server    ServerConfig    `yaml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Store: StoreConfig{
			Kind:       StoreBadger,
			Path:       "statute.db",
			Dimensions: 768,
		},
		AI: AIConfig{
			Provider:       aiDefaults.Provider,
			EmbeddingHost:  aiDefaults.EmbeddingHost,
			GeneratorHost:  aiDefaults.GeneratorHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			GeneratorModel: aiDefaults.GeneratorModel,
			APIKeyEnv:      DefaultAPIKeyEnv,
		},
		Ingestion: IngestionConfig{
			BatchSize:  100,
			MaxRetries: 3,
			RetryDelay: time.Second,
			Workers:    1,
		},
		Search: SearchConfig{
			TopK:          3,
			CandidatePool: 150,
		},
		Answer: AnswerConfig{
			LawName: "Ley de Movilidad de Jalisco",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolveAPIKey returns the configured key, falling back to the environment
// variable named by APIKeyEnv.
func (c AIConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// ProviderConfig returns the ai.Config described by c.
func (c AIConfig) ProviderConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.Provider),
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithGeneratorHost(c.GeneratorHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithGeneratorModel(c.GeneratorModel),
		ai.WithAPIKey(c.ResolveAPIKey()),
		ai.WithModePrefixes(c.DocumentPrefix, c.QueryPrefix),
	)
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	c.Store.Kind = strings.ToLower(strings.TrimSpace(c.Store.Kind))
	switch c.Store.Kind {
	case StoreBadger:
		if c.Store.Path == "" {
			return errors.New("config: store.path is required for the badger store")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return errors.New("config: store.dsn is required for the postgres store")
		}
		if c.Store.Dimensions <= 0 {
			return errors.New("config: store.dimensions must be positive for the postgres store")
		}
	default:
		return fmt.Errorf("config: store.kind must be one of %s, %s, got %q", StoreBadger, StorePostgres, c.Store.Kind)
	}

	if c.Ingestion.BatchSize <= 0 {
		return errors.New("config: ingestion.batch_size must be positive")
	}
	if c.Ingestion.MaxRetries <= 0 {
		return errors.New("config: ingestion.max_retries must be positive")
	}
	if c.Ingestion.Workers <= 0 {
		return errors.New("config: ingestion.workers must be positive")
	}
	if c.Search.TopK <= 0 {
		return errors.New("config: search.top_k must be positive")
	}
	if c.Search.CandidatePool < c.Search.TopK {
		return errors.New("config: search.candidate_pool must be at least search.top_k")
	}

	return c.AI.ProviderConfig().Validate()
}
