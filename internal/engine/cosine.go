// Package engine computes cosine similarity, nearest-anchor classification and
// principal component projection over embeddings. Every function is pure and
// synchronous; the package holds no state between calls.
package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"semsim/internal/domain"
)

// CosineSimilarity returns dot(a,b) / (|a|·|b|), clamped to [-1, 1].
func CosineSimilarity(a, b domain.Embedding) (float64, error) {
	return cosine(a, b, "a", "b")
}

// Validate checks that v can take part in a cosine comparison on its own.
// item identifies v in the returned error.
func Validate(v domain.Embedding, item string) error {
	if len(v) == 0 {
		return &domain.DegenerateInputError{Item: item, Reason: "empty vector"}
	}
	_, _, err := norm(v, item)
	return err
}

func cosine(a, b domain.Embedding, itemA, itemB string) (float64, error) {
	if len(a) != len(b) {
		return 0, &domain.DimensionMismatchError{Item: itemB, Want: len(a), Got: len(b)}
	}
	if len(a) == 0 {
		return 0, &domain.DegenerateInputError{Item: itemA, Reason: "empty vector"}
	}

	sa, normA, err := norm(a, itemA)
	if err != nil {
		return 0, err
	}
	sb, normB, err := norm(b, itemB)
	if err != nil {
		return 0, err
	}

	var dot float64
	for i := range a {
		dot += (a[i] / sa) * (b[i] / sb)
	}

	sim := dot / (normA * normB)
	switch {
	case sim > 1:
		sim = 1
	case sim < -1:
		sim = -1
	}
	return sim, nil
}

// norm returns the largest absolute component of v and the Euclidean norm
// of v divided by it, so neither squaring nor summing leaves float64 range
// for any finite input. Only an all-zero or non-finite v is degenerate.
func norm(v domain.Embedding, item string) (scale, n float64, err error) {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, 0, &domain.DegenerateInputError{
				Item:   item,
				Reason: fmt.Sprintf("non-finite component %v at position %d", x, i),
			}
		}
	}
	scale = floats.Norm(v, math.Inf(1))
	if scale == 0 {
		return 0, 0, &domain.DegenerateInputError{Item: item, Reason: "zero norm"}
	}
	var sum float64
	for _, x := range v {
		r := x / scale
		sum += r * r
	}
	return scale, math.Sqrt(sum), nil
}
