package port

import "context"

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	// Embed returns the vector for text. Implementations are expected to be
	// deterministic for identical input and to keep one output dimension.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}
