package embedding

import "context"

// MockEmbedder derives a vector from the leading runes of the text. It is
// deterministic and needs no network.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder. dimension <= 0 means 64.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockEmbedder{dimension: dimension}
}

// Embed returns the rune-derived vector for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	i := 0
	for _, r := range text {
		if i >= e.dimension {
			break
		}
		vec[i] = float32(r) / 1000.0
		i++
	}
	return vec, nil
}

// Dimension returns the vector length.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns "mock".
func (e *MockEmbedder) ModelName() string {
	return "mock"
}
