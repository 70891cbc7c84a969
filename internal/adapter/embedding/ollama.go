package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bigdatawirtz/semanticsearch/internal/adapter/remote"
)

// DefaultOllamaURL is the local Ollama endpoint.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaEmbedder calls Ollama's native /api/embeddings endpoint.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
	retrier *remote.Retrier
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// NewOllamaEmbedder creates an embedder for model at baseURL.
func NewOllamaEmbedder(model, baseURL string, timeout time.Duration, retrier *remote.Retrier) (*OllamaEmbedder, error) {
	if model == "" {
		return nil, errors.New("ollama embedder: model is empty")
	}
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if retrier == nil {
		retrier = remote.NewRetrier(0, 0)
	}
	return &OllamaEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		retrier: retrier,
	}, nil
}

// Embed returns the embedding for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	jsonData, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var vec []float32
	err = e.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return remote.Retryable(fmt.Errorf("request failed: %w", err), 0)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return remote.Retryable(fmt.Errorf("failed to read response: %w", err), 0)
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if remote.ShouldRetryStatus(resp.StatusCode) {
				return remote.Retryable(statusErr, remote.RetryAfter(resp.Header))
			}
			return statusErr
		}

		var out ollamaEmbedResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		if out.Error != "" {
			return fmt.Errorf("API error: %s", out.Error)
		}
		if len(out.Embedding) == 0 {
			return errors.New("empty embedding")
		}
		vec = out.Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	return vec, nil
}

// ModelName returns the embedding model name.
func (e *OllamaEmbedder) ModelName() string {
	return e.model
}
