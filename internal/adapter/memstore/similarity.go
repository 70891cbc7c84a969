package memstore

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects how a store compares vectors. It is fixed for the lifetime
// of a store so every comparison uses the same scale.
type Metric int

const (
	// Cosine scores by cosine similarity in [-1, 1].
	Cosine Metric = iota
	// InverseL2 scores by 1/(1+d) where d is the Euclidean distance.
	InverseL2
)

// ParseMetric maps a config value to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "", "cosine":
		return Cosine, nil
	case "l2", "euclidean", "inverse_l2":
		return InverseL2, nil
	default:
		return Cosine, fmt.Errorf("unknown similarity metric: %s", s)
	}
}

func (m Metric) String() string {
	switch m {
	case Cosine:
		return "cosine"
	case InverseL2:
		return "l2"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

func (m Metric) score(a, b []float32) float64 {
	var s float64
	switch m {
	case InverseL2:
		s = 1 / (1 + l2Distance(a, b))
	default:
		s = cosineSimilarity(a, b)
	}
	if math.IsNaN(s) {
		return 0
	}
	return s
}

// cosineSimilarity returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
