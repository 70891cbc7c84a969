package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent is returned when a document is empty after trimming.
	ErrEmptyContent = errors.New("empty content")

	// ErrMalformedContent is returned when a document fails the JSON gate.
	ErrMalformedContent = errors.New("malformed content")

	// ErrEmbedding is returned when the embedder cannot produce a vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmptyQuery is returned when a question is empty after trimming.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNoResults is returned when a query runs against an empty store.
	ErrNoResults = errors.New("no documents found")

	// ErrCompletionService is returned when the text-completion service
	// answers with a non-success status or an unusable body.
	ErrCompletionService = errors.New("completion service error")

	// ErrIngestFailed marks an unanticipated per-item ingestion failure.
	ErrIngestFailed = errors.New("ingest failed")
)

// EmptyContentError reports an empty input by source name.
type EmptyContentError struct {
	Source string
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("%s is empty", e.Source)
}

func (e *EmptyContentError) Unwrap() error { return ErrEmptyContent }

// MalformedContentError carries the parser diagnostic for an input that is
// not valid JSON.
type MalformedContentError struct {
	Source string
	Cause  error
}

func (e *MalformedContentError) Error() string {
	return fmt.Sprintf("%s: Invalid JSON format - %v", e.Source, e.Cause)
}

func (e *MalformedContentError) Unwrap() []error { return []error{ErrMalformedContent, e.Cause} }

// EmbeddingError wraps the embedder's own failure.
type EmbeddingError struct {
	Cause error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Cause)
}

func (e *EmbeddingError) Unwrap() []error { return []error{ErrEmbedding, e.Cause} }

// ErrDimensionMismatch indicates a vector whose length differs from the
// dimension fixed by the first stored record.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// CompletionError keeps the raw service response so callers can show it.
// StatusCode is zero when the request never got a response.
type CompletionError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *CompletionError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("completion service returned status %d: %s", e.StatusCode, e.Body)
	case e.Cause != nil:
		return fmt.Sprintf("completion service: %v", e.Cause)
	default:
		return fmt.Sprintf("completion service: %s", e.Body)
	}
}

func (e *CompletionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrCompletionService}
	}
	return []error{ErrCompletionService, e.Cause}
}

// IngestError folds an unexpected failure for one input into the batch
// report with a generic message.
type IngestError struct {
	Source string
	Cause  error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("%s: failed (%v)", e.Source, e.Cause)
}

func (e *IngestError) Unwrap() []error { return []error{ErrIngestFailed, e.Cause} }
