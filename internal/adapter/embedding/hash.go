package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/bigdatawirtz/semanticsearch/internal/adapter/analyzer"
)

// HashEmbedder is an offline embedder using signed feature hashing over
// terms and bigrams. Output is L2-normalized.
type HashEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

// NewHashEmbedder creates a hashing embedder. dimension <= 0 means 512.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 512
	}
	return &HashEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(false),
	}
}

// Embed hashes the terms of text into a fixed-length vector. Text without
// any terms yields the zero vector.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	tokens := e.tokenizer.Tokenize(text)
	for _, tok := range tokens {
		e.add(vec, tok, 1)
	}
	for _, bg := range analyzer.Bigrams(tokens) {
		e.add(vec, bg, 0.5)
	}
	normalize(vec)
	return vec, nil
}

// Dimension returns the vector length.
func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns "hash".
func (e *HashEmbedder) ModelName() string {
	return "hash"
}

func (e *HashEmbedder) add(vec []float32, term string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
