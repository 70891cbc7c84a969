package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for semsearch.
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"`    // "hash", "mock", "openai", "ollama"
	Model             string  `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL           string  `yaml:"base_url"`    // empty = provider default
	APIKeyEnv         string  `yaml:"api_key_env"` // Environment variable for API key
	Dimension         int     `yaml:"dimension"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unthrottled
	CacheSize         int     `yaml:"cache_size"`          // 0 = no embedding cache
}

// CompletionConfig holds text-completion configuration.
type CompletionConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Provider         string `yaml:"provider"` // "ollama"
	Model            string `yaml:"model"`
	BaseURL          string `yaml:"base_url"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
	MaxRetries       int    `yaml:"max_retries"`
	MaxDocumentChars int    `yaml:"max_document_chars"` // 0 = no limit
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK   int    `yaml:"top_k"`
	Metric string `yaml:"metric"` // "cosine" or "l2"
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:    "hash",
			Model:       "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			Dimension:   512,
			TimeoutSecs: 60,
			MaxRetries:  3,
			CacheSize:   256,
		},
		Completion: CompletionConfig{
			Enabled:     true,
			Provider:    "ollama",
			Model:       "llama2",
			BaseURL:     "http://localhost:11434",
			TimeoutSecs: 120,
			MaxRetries:  3,
		},
		Retrieve: RetrieveConfig{
			TopK:   1,
			Metric: "cosine",
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.json"},
			Excludes: []string{"**/node_modules/**", "**/vendor/**", "**/.git/**"},
			Workers:  4,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Embedding.Provider {
	case "hash", "mock", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider: unknown provider %q", c.Embedding.Provider))
	}
	if c.Embedding.Dimension < 0 {
		errs = append(errs, errors.New("embedding.dimension: must not be negative"))
	}
	if c.Embedding.CacheSize < 0 {
		errs = append(errs, errors.New("embedding.cache_size: must not be negative"))
	}
	if c.Embedding.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("embedding.requests_per_second: must not be negative"))
	}

	if c.Completion.Enabled && c.Completion.Provider != "ollama" {
		errs = append(errs, fmt.Errorf("completion.provider: unknown provider %q", c.Completion.Provider))
	}
	if c.Completion.MaxDocumentChars < 0 {
		errs = append(errs, errors.New("completion.max_document_chars: must not be negative"))
	}

	switch strings.ToLower(c.Retrieve.Metric) {
	case "", "cosine", "l2", "euclidean", "inverse_l2":
	default:
		errs = append(errs, fmt.Errorf("retrieve.metric: unknown metric %q", c.Retrieve.Metric))
	}
	if c.Retrieve.TopK < 1 {
		errs = append(errs, errors.New("retrieve.top_k: must be at least 1"))
	}

	if c.Ingest.Workers < 1 {
		errs = append(errs, errors.New("ingest.workers: must be at least 1"))
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semsearch.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "semsearch.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".semsearch", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
