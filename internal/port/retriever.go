package port

import (
	"context"

	"github.com/bigdatawirtz/semanticsearch/internal/domain"
)

// DocumentStore holds embedded documents and answers nearest-neighbour
// queries against them.
type DocumentStore interface {
	// Insert embeds text, stores it with a copy of meta and returns the new ID.
	Insert(ctx context.Context, text string, meta domain.Metadata) (string, error)

	// InsertVector stores an already embedded document.
	InsertVector(text string, meta domain.Metadata, vector []float32) (string, error)

	// Query embeds text and returns up to k documents, most similar first.
	Query(ctx context.Context, text string, k int) ([]domain.Match, error)

	// Get returns a copy of the document with the given ID.
	Get(id string) (domain.Document, bool)

	// Count returns the number of stored documents.
	Count() int
}
