package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bigdatawirtz/semanticsearch/internal/adapter/remote"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	dim     int
	timeout time.Duration
	retrier *remote.Retrier
}

// OpenAIConfig configures an OpenAIEmbedder. APIKey is resolved by the
// caller; the adapter reads no environment.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
	Retrier   *remote.Retrier
}

// NewOpenAIEmbedder creates an embedder for the configured endpoint.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder: API key is empty")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Retrier == nil {
		cfg.Retrier = remote.NewRetrier(0, 0)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		dim:     cfg.Dimension,
		timeout: cfg.Timeout,
		retrier: cfg.Retrier,
	}, nil
}

// Embed returns the embedding for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dim > 0 {
		req.Dimensions = e.dim
	}

	var vec []float32
	err := e.retrier.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := e.client.CreateEmbeddings(callCtx, req)
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errors.New("no embedding data returned from API")
		}
		raw := resp.Data[0].Embedding
		vec = make([]float32, len(raw))
		for i := range raw {
			vec[i] = float32(raw[i])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	return vec, nil
}

// ModelName returns the embedding model name.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if remote.ShouldRetryStatus(apiErr.HTTPStatusCode) {
			return remote.Retryable(err, 0)
		}
		return err
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if remote.ShouldRetryStatus(reqErr.HTTPStatusCode) {
			return remote.Retryable(err, 0)
		}
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Transport failures and per-call timeouts.
	return remote.Retryable(err, 0)
}
