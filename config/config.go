package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"semsim/internal/domain"
	"semsim/internal/engine"
)

// Config holds all configuration for semsim.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Classify  ClassifyConfig  `yaml:"classify"`
	Project   ProjectConfig   `yaml:"project"`
	Cache     CacheConfig     `yaml:"cache"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`    // "openai", "deepseek", "jina", "ollama", "compatible", "hashing", "mock"
	Model       string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv   string `yaml:"api_key_env"` // Environment variable holding the API key
	BaseURL     string `yaml:"base_url"`
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	Concurrency int    `yaml:"concurrency"`
	MaxRetries  int    `yaml:"max_retries"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ClassifyConfig holds nearest-anchor classification settings.
// Anchors is a list so the declared label order survives loading; ties are
// broken by it.
type ClassifyConfig struct {
	BatchMode       string                `yaml:"batch_mode"` // "fail-fast" or "per-item"
	Aggregate       string                `yaml:"aggregate"`  // "mean" or "max"
	Anchors         []domain.LabeledTexts `yaml:"anchors"`
	EntityAnchors   []domain.LabeledTexts `yaml:"entity_anchors"`
	EntityThreshold float64               `yaml:"entity_threshold"`
}

// ProjectConfig holds drift projection settings.
type ProjectConfig struct {
	Dimensions int      `yaml:"dimensions"`
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
	MaxBytes   int64    `yaml:"max_bytes"`
}

// CacheConfig holds in-memory embedding cache settings.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxSize    int  `yaml:"max_size"`
	TTLMinutes int  `yaml:"ttl_minutes"`
}

// HistoryConfig controls recording runs to the history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:    "hashing",
			Model:       "hashing",
			APIKeyEnv:   "OPENAI_API_KEY",
			Dimension:   384,
			BatchSize:   100,
			Concurrency: 4,
			MaxRetries:  3,
			TimeoutSecs: 60,
		},
		Classify: ClassifyConfig{
			BatchMode: "fail-fast",
			Aggregate: "mean",
			Anchors: []domain.LabeledTexts{
				{Label: "Supportive", Texts: []string{
					"I fully support this proposal.",
					"This is a great step forward and I welcome it.",
				}},
				{Label: "Opposed", Texts: []string{
					"I strongly oppose this decision.",
					"This is a terrible idea and should be rejected.",
				}},
			},
			EntityAnchors: []domain.LabeledTexts{
				{Label: "PERSON", Texts: []string{"Ada Lovelace", "Barack Obama", "Marie Curie"}},
				{Label: "ORGANIZATION", Texts: []string{"United Nations", "Google", "Parliament"}},
				{Label: "LOCATION", Texts: []string{"London", "Mount Everest", "South America"}},
			},
			EntityThreshold: 0.3,
		},
		Project: ProjectConfig{
			Dimensions: 2,
			Includes:   []string{"**/*.txt", "**/*.md"},
			Excludes:   []string{"**/.git/**", "**/node_modules/**", "**/.semsim/**"},
			MaxBytes:   1 << 20,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxSize:    1000,
			TTLMinutes: 30,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semsim.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "semsim.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".semsim", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// LoadAnchors reads an ordered anchor list from a YAML file of the form
//
//	- label: Supportive
//	  examples: ["...", "..."]
func LoadAnchors(path string) ([]domain.LabeledTexts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var anchors []domain.LabeledTexts
	if err := yaml.Unmarshal(data, &anchors); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := domain.ValidateDefinitions(anchors); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return anchors, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	if _, err := engine.ParseBatchMode(c.Classify.BatchMode); err != nil {
		errs = append(errs, fmt.Errorf("classify.batch_mode: %w", err))
	}
	if _, err := engine.ParseAggregator(c.Classify.Aggregate); err != nil {
		errs = append(errs, fmt.Errorf("classify.aggregate: %w", err))
	}
	if c.Project.Dimensions < 1 {
		errs = append(errs, fmt.Errorf("project.dimensions must be at least 1, got %d", c.Project.Dimensions))
	}
	if c.Embedding.BatchSize < 0 || c.Embedding.Concurrency < 0 {
		errs = append(errs, errors.New("embedding.batch_size and embedding.concurrency must not be negative"))
	}
	if len(c.Classify.Anchors) > 0 {
		if err := domain.ValidateDefinitions(c.Classify.Anchors); err != nil {
			errs = append(errs, fmt.Errorf("classify.anchors: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadDotEnv loads dir/.env into the process environment when it exists.
// Variables already set are left alone.
func LoadDotEnv(dir string) error {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Timeout returns the provider request timeout.
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// HistoryDBPath returns the path to the run history database.
func HistoryDBPath(dir string) string {
	return filepath.Join(dir, ".semsim", "history.db")
}

// EnsureStateDir ensures the .semsim directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".semsim"), 0755)
}
