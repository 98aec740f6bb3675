package postgres

import (
	"fmt"
	"math"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

// score computes the similarity of two equal-dimension vectors under the
// configured algorithm. Higher is better for cosine; for L2 the raw
// distance is returned and ordering is handled by the caller.
func score(algorithm domain.SimilarityAlgorithm, a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	switch algorithm {
	case domain.CosineSimilarity:
		return cosine(a, b), nil
	case domain.L2Distance:
		return l2(a, b), nil
	default:
		return 0, fmt.Errorf("unknown comparison algorithm %q", algorithm)
	}
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
