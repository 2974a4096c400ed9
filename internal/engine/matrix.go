package engine

import (
	"fmt"

	"semsim/internal/domain"
)

// SimilarityMatrix returns R with R[i][j] = CosineSimilarity(rows[i], cols[j]).
// Passing the same slice as rows and cols yields a square symmetric matrix with
// a unit diagonal; the full matrix is computed either way. The first failing
// pair aborts the call and no partial matrix is returned.
func SimilarityMatrix(rows, cols []domain.Embedding) (domain.SimilarityMatrix, error) {
	self := sameSlice(rows, cols)

	out := make(domain.SimilarityMatrix, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(cols))
		for j, c := range cols {
			colItem := fmt.Sprintf("col %d", j)
			if self {
				colItem = fmt.Sprintf("row %d", j)
			}
			sim, err := cosine(r, c, fmt.Sprintf("row %d", i), colItem)
			if err != nil {
				return nil, err
			}
			out[i][j] = sim
		}
	}
	return out, nil
}

// sameSlice reports whether a and b are the same sequence by identity.
func sameSlice(a, b []domain.Embedding) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
