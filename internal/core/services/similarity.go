package services

import (
	"fmt"
	"math"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

// CosineSimilarity computes cosine similarity between two vectors.
// Accumulation is done in float64 so the result does not depend on
// argument order.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, domain.ErrEmptyEmbedding
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("%w: zero-norm vector", domain.ErrEmptyEmbedding)
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// RoundPercent converts a similarity in [-1, 1] to a percentage rounded to
// two decimal places.
func RoundPercent(similarity float64) float64 {
	return math.Round(similarity*100*100) / 100
}

// UsableEmbedding reports whether v can be scored against vectors of length
// dim. A dim of zero accepts any non-empty length.
func UsableEmbedding(v []float32, dim int) bool {
	if len(v) == 0 || (dim > 0 && len(v) != dim) {
		return false
	}
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}

// Scorer decides the overlap score between two normalised texts.
type Scorer struct {
	threshold float64
}

// NewScorer creates a scorer reporting pairs whose percentage strictly
// exceeds threshold*100.
func NewScorer(threshold float64) Scorer {
	return Scorer{threshold: threshold}
}

// Score returns the overlap percentage for two courses. Byte-identical
// normalised texts short-circuit to domain.ExactMatchScore without looking
// at the vectors.
func (s Scorer) Score(textA string, vecA []float32, textB string, vecB []float32) (score float64, exact bool, err error) {
	if textA == textB {
		return domain.ExactMatchScore, true, nil
	}
	sim, err := CosineSimilarity(vecA, vecB)
	if err != nil {
		return 0, false, err
	}
	return RoundPercent(sim), false, nil
}

// Reportable reports whether a score clears the threshold.
// Exact matches are always reportable.
func (s Scorer) Reportable(score float64, exact bool) bool {
	return exact || score > RoundPercent(s.threshold)
}

// Threshold returns the similarity cutoff in [0, 1].
func (s Scorer) Threshold() float64 {
	return s.threshold
}
