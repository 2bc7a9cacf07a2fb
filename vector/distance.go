package vector

import (
	"errors"
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// ErrZeroMagnitude reports a cosine similarity against an all-zero vector.
var ErrZeroMagnitude = errors.New("vector: cosine similarity with zero-magnitude vector")

// CosineSimilarity returns dot(a, b) / (|a| |b|) clamped to [-1, 1]. Vectors
// must share a non-zero dimension; a zero-magnitude operand yields
// ErrZeroMagnitude so callers choose their own convention.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on empty vectors")
	}
	na, nb := Magnitude(a), Magnitude(b)
	if na == 0 || nb == 0 {
		return 0, ErrZeroMagnitude
	}
	return Clamp(Dot(a, b) / (na * nb)), nil
}

// CheckFinite reports the first NaN or infinite component of v.
func CheckFinite(v []float32) error {
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("vector: non-finite component %v at %d", f, i)
		}
	}
	return nil
}

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float64 {
	if len(v) == 0 {
		return 0
	}
	return float64(search.Float32s(v).Magnitude())
}

// Dot returns the dot product of a and b accumulated in float64. Only the
// common prefix is used when lengths differ.
func Dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// Clamp bounds a similarity score to [-1, 1]; float32 rounding can push the
// score of nearly parallel vectors marginally outside the range.
func Clamp(score float64) float64 {
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}
