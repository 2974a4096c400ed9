package embedding

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"semsim/config"
	"semsim/internal/port"
)

// Options configures an embedding provider. The API key is resolved by the
// caller and passed in; providers never read process-wide state.
type Options struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Dimension  int
	BatchSize  int
	MaxRetries int
	Timeout    time.Duration
}

var defaultBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"jina":     "https://api.jina.ai/v1",
	"ollama":   "http://localhost:11434/v1",
}

// RequiresAPIKey reports whether provider needs a key to authenticate.
func RequiresAPIKey(provider string) bool {
	switch provider {
	case "openai", "deepseek", "jina":
		return true
	default:
		return false
	}
}

// OptionsFromConfig resolves the provider settings, reading the API key from
// the environment variable named by c.APIKeyEnv. Callers load any .env file
// first (see config.LoadDotEnv).
func OptionsFromConfig(c config.EmbeddingConfig) (Options, error) {
	opts := Options{
		Provider:   c.Provider,
		Model:      c.Model,
		BaseURL:    c.BaseURL,
		Dimension:  c.Dimension,
		BatchSize:  c.BatchSize,
		MaxRetries: c.MaxRetries,
		Timeout:    c.Timeout(),
	}
	if c.APIKeyEnv != "" {
		opts.APIKey = os.Getenv(c.APIKeyEnv)
	}
	if RequiresAPIKey(c.Provider) && opts.APIKey == "" {
		return opts, fmt.Errorf("provider %s needs an API key: set %s (a .env file in the root directory works too)", c.Provider, c.APIKeyEnv)
	}
	return opts, nil
}

// New creates the embedder named by opts.Provider.
func New(opts Options, logger zerolog.Logger) (port.Embedder, error) {
	switch opts.Provider {
	case "openai", "deepseek", "jina", "ollama", "compatible":
		if RequiresAPIKey(opts.Provider) && opts.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", opts.Provider)
		}
		if opts.BaseURL == "" {
			opts.BaseURL = defaultBaseURLs[opts.Provider]
		}
		return NewOpenAIEmbedder(opts, logger)
	case "hashing":
		return NewHashingEmbedder(opts.Dimension), nil
	case "mock":
		return NewMockEmbedder(opts.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", opts.Provider)
	}
}
