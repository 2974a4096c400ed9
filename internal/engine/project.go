package engine

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"semsim/internal/domain"
)

// DefaultProjectDimensions is the target dimension used for drift plots.
const DefaultProjectDimensions = 2

// Project maps embeddings onto their top k principal components.
//
// The embeddings are mean-centred and factorised with a thin SVD; the right
// singular vectors are the eigenvectors of the covariance matrix ordered by
// decreasing variance. The sign of each axis is arbitrary: Project flips it so
// the largest-magnitude loading is positive, which keeps output stable for
// identical input, but callers must only rely on relative configuration.
// Within a repeated eigenvalue the axes are likewise only defined up to rotation.
func Project(embeddings []domain.Embedding, k int) (domain.Projection, error) {
	n := len(embeddings)
	if n < 2 {
		return domain.Projection{}, &domain.InsufficientSamplesError{Samples: n, Target: k, Dimensions: dimOf(embeddings)}
	}

	d := len(embeddings[0])
	for i, e := range embeddings {
		if len(e) != d {
			return domain.Projection{}, &domain.DimensionMismatchError{Item: fmt.Sprintf("sample %d", i), Want: d, Got: len(e)}
		}
		for j, x := range e {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return domain.Projection{}, &domain.DegenerateInputError{
					Item:   fmt.Sprintf("sample %d", i),
					Reason: fmt.Sprintf("non-finite component %v at position %d", x, j),
				}
			}
		}
	}
	if k < 1 || k > d || k > n-1 {
		return domain.Projection{}, &domain.InsufficientSamplesError{Samples: n, Dimensions: d, Target: k}
	}

	centered := center(embeddings, d)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return domain.Projection{}, errors.New("singular value decomposition did not converge")
	}

	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)

	axes := mat.DenseCopyOf(v.Slice(0, d, 0, k))
	orientAxes(axes)

	var projected mat.Dense
	projected.Mul(centered, axes)

	points := make([]domain.Point, n)
	for i := range points {
		p := make(domain.Point, k)
		for j := 0; j < k; j++ {
			p[j] = projected.At(i, j)
		}
		points[i] = p
	}

	return domain.Projection{
		Points:            points,
		ExplainedVariance: explained(values, k),
	}, nil
}

// center returns the n×d matrix of embeddings minus their column means.
func center(embeddings []domain.Embedding, d int) *mat.Dense {
	n := len(embeddings)
	mean := make([]float64, d)
	for _, e := range embeddings {
		for j, x := range e {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	data := make([]float64, 0, n*d)
	for _, e := range embeddings {
		for j, x := range e {
			data = append(data, x-mean[j])
		}
	}
	return mat.NewDense(n, d, data)
}

// orientAxes flips each column so its largest-magnitude entry is positive.
func orientAxes(axes *mat.Dense) {
	rows, cols := axes.Dims()
	for j := 0; j < cols; j++ {
		pivot := 0.0
		for i := 0; i < rows; i++ {
			if x := axes.At(i, j); math.Abs(x) > math.Abs(pivot) {
				pivot = x
			}
		}
		if pivot < 0 {
			for i := 0; i < rows; i++ {
				axes.Set(i, j, -axes.At(i, j))
			}
		}
	}
}

// explained returns the share of total variance on each of the first k axes.
func explained(singular []float64, k int) []float64 {
	var total float64
	for _, s := range singular {
		total += s * s
	}
	out := make([]float64, k)
	if total == 0 {
		return out
	}
	for i := 0; i < k && i < len(singular); i++ {
		out[i] = singular[i] * singular[i] / total
	}
	return out
}

func dimOf(embeddings []domain.Embedding) int {
	if len(embeddings) == 0 {
		return 0
	}
	return len(embeddings[0])
}
