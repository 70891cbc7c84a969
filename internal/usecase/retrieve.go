package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
	"github.com/bigdatawirtz/semanticsearch/internal/port"
)

// RetrieveUseCase handles search and retrieval operations.
type RetrieveUseCase struct {
	store port.DocumentStore
}

// NewRetrieveUseCase creates a new retrieve use case.
func NewRetrieveUseCase(store port.DocumentStore) *RetrieveUseCase {
	return &RetrieveUseCase{store: store}
}

// RetrieveBest returns the single most similar document for question.
func (u *RetrieveUseCase) RetrieveBest(ctx context.Context, question string) (*domain.Result, error) {
	results, err := u.Retrieve(ctx, question, 1)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// Retrieve returns up to k documents ranked by similarity to question.
// k <= 0 means 1. An empty store yields ErrNoResults.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, question string, k int) ([]domain.Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if k <= 0 {
		k = 1
	}

	matches, err := u.store.Query(ctx, question, k)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrNoResults
	}

	results := make([]domain.Result, len(matches))
	for i, m := range matches {
		results[i] = domain.NewResult(m)
	}
	return results, nil
}

// FormatResult renders r for display.
func FormatResult(r *domain.Result) string {
	return fmt.Sprintf("📄 **Best matching document** (from: %s)\n\n```\n%s\n```", r.Filename, r.Text)
}
