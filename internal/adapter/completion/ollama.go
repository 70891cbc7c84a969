// Package completion talks to text-completion services.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bigdatawirtz/semanticsearch/internal/adapter/remote"
	"github.com/bigdatawirtz/semanticsearch/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama2"
)

// OllamaClient calls Ollama's /api/generate endpoint with streaming off.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
	retrier *remote.Retrier
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient creates a completion client. Empty values fall back to
// the local defaults.
func NewOllamaClient(model, baseURL string, timeout time.Duration, retrier *remote.Retrier) *OllamaClient {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if retrier == nil {
		retrier = remote.NewRetrier(0, 0)
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		retrier: retrier,
	}
}

// Complete sends prompt and returns the generated text. Any non-success
// status yields a *domain.CompletionError carrying the raw body.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var answer string
	err = c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
		if err != nil {
			return &domain.CompletionError{Cause: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			cerr := &domain.CompletionError{Cause: err}
			if ctx.Err() != nil {
				return cerr
			}
			return remote.Retryable(cerr, 0)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return remote.Retryable(&domain.CompletionError{StatusCode: resp.StatusCode, Cause: err}, 0)
		}

		if resp.StatusCode != http.StatusOK {
			cerr := &domain.CompletionError{StatusCode: resp.StatusCode, Body: string(body)}
			if remote.ShouldRetryStatus(resp.StatusCode) {
				return remote.Retryable(cerr, remote.RetryAfter(resp.Header))
			}
			return cerr
		}

		var out generateResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return &domain.CompletionError{Body: string(body), Cause: fmt.Errorf("failed to parse response: %w", err)}
		}
		answer = out.Response
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// ModelName returns the completion model name.
func (c *OllamaClient) ModelName() string {
	return c.model
}
