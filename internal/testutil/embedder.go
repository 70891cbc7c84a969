package testutil

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"unicode"
)

// KeywordEmbedder counts occurrences of a fixed vocabulary. Identical text
// always yields an identical vector.
type KeywordEmbedder struct {
	vocab map[string]int
	dim   int
	calls atomic.Int64

	// FailOn makes Embed fail for any text containing this substring.
	FailOn string
}

// NewKeywordEmbedder creates an embedder whose dimension is len(vocab).
func NewKeywordEmbedder(vocab ...string) *KeywordEmbedder {
	m := make(map[string]int, len(vocab))
	for i, w := range vocab {
		m[strings.ToLower(w)] = i
	}
	return &KeywordEmbedder{vocab: m, dim: len(vocab)}
}

// ErrInjected is returned by doubles configured to fail.
var ErrInjected = errors.New("injected embedder failure")

// Embed returns the keyword count vector for text.
func (e *KeywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.FailOn != "" && strings.Contains(text, e.FailOn) {
		return nil, ErrInjected
	}
	vec := make([]float32, e.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if idx, ok := e.vocab[w]; ok {
			vec[idx]++
		}
	}
	return vec, nil
}

// ModelName returns "keyword".
func (e *KeywordEmbedder) ModelName() string { return "keyword" }

// Calls returns how many times Embed was invoked.
func (e *KeywordEmbedder) Calls() int { return int(e.calls.Load()) }

// FailingEmbedder always fails with Err.
type FailingEmbedder struct {
	Err error
}

// Embed returns Err, or ErrInjected when Err is nil.
func (e FailingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return nil, ErrInjected
}

// ModelName returns "failing".
func (e FailingEmbedder) ModelName() string { return "failing" }

// StubCompleter returns a fixed answer or error and records the last prompt.
type StubCompleter struct {
	Answer     string
	Err        error
	LastPrompt string
	Calls      int
}

// Complete records prompt and returns the configured answer.
func (c *StubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.Calls++
	c.LastPrompt = prompt
	if c.Err != nil {
		return "", c.Err
	}
	return c.Answer, nil
}

// ModelName returns "stub".
func (c *StubCompleter) ModelName() string { return "stub" }
