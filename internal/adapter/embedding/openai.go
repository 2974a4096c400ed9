package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"semsim/internal/domain"
)

// OpenAIEmbedder talks to any endpoint implementing the OpenAI embeddings API.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	baseURL    string
	dimension  atomic.Int64
	maxBatch   int
	maxRetries int
	client     *http.Client
	logger     zerolog.Logger
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Usage embeddingUsage  `json:"usage"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// APIError is returned when the provider answers with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"jina-embeddings-v3":     1024,
	"jina-embeddings-v4":     2048,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// NewOpenAIEmbedder creates an embedder for an OpenAI-compatible endpoint.
// The API key is taken from opts; an empty key is only accepted for local
// endpoints such as Ollama.
func NewOpenAIEmbedder(opts Options, logger zerolog.Logger) (*OpenAIEmbedder, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opts.Model == "" {
		return nil, errors.New("model is required")
	}

	dimension := opts.Dimension
	if dimension <= 0 {
		dimension = knownDimensions[opts.Model]
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxBatch := opts.BatchSize
	if maxBatch <= 0 {
		maxBatch = 100
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	e := &OpenAIEmbedder{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    opts.BaseURL,
		maxBatch:   maxBatch,
		maxRetries: retries,
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "embedder").Str("model", opts.Model).Logger(),
	}
	e.dimension.Store(int64(dimension))
	return e, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([]domain.Embedding, 0, len(texts))
	for i := 0; i < len(texts); i += e.maxBatch {
		end := i + e.maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := e.embedWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

func (e *OpenAIEmbedder) embedWithRetry(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	for attempt := 0; ; attempt++ {
		embeddings, wait, err := e.embedBatch(ctx, texts)
		if err == nil {
			return embeddings, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.retryable() || attempt >= e.maxRetries {
			return nil, err
		}
		if wait <= 0 {
			wait = retryDelay(attempt)
		}
		e.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("embedding request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([]domain.Embedding, time.Duration, error) {
	jsonData, err := json.Marshal(embeddingRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, retryAfter(resp.Header.Get("Retry-After")), &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return nil, 0, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}
	if embResp.Error != nil {
		return nil, 0, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	embeddings := make([]domain.Embedding, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, 0, fmt.Errorf("API returned out-of-range index %d for %d inputs", data.Index, len(texts))
		}
		embeddings[data.Index] = data.Embedding
	}
	for i, emb := range embeddings {
		if emb == nil {
			return nil, 0, fmt.Errorf("API returned no embedding for input %d", i)
		}
	}
	e.dimension.CompareAndSwap(0, int64(len(embeddings[0])))

	e.logger.Debug().
		Int("inputs", len(texts)).
		Int("tokens", embResp.Usage.TotalTokens).
		Dur("took", time.Since(start)).
		Msg("embedded batch")

	return embeddings, 0, nil
}

// Dimension returns the configured or known dimension of the model, or the
// length of the first vector received when neither is known.
func (e *OpenAIEmbedder) Dimension() int {
	return int(e.dimension.Load())
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second || d <= 0 {
		d = 5 * time.Second
	}
	return d
}
