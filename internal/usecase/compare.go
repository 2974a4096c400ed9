package usecase

import (
	"context"
	"fmt"

	"semsim/internal/domain"
	"semsim/internal/engine"
	"semsim/internal/port"
)

// CompareUseCase computes pairwise similarities between texts.
type CompareUseCase struct {
	embedder port.Embedder
	opts     Options
}

// NewCompareUseCase creates a new compare use case.
func NewCompareUseCase(embedder port.Embedder, opts Options) *CompareUseCase {
	return &CompareUseCase{embedder: embedder, opts: opts}
}

// Comparison is a similarity matrix with the texts along each axis.
type Comparison struct {
	Rows   []string                `json:"rows"`
	Cols   []string                `json:"cols"`
	Matrix domain.SimilarityMatrix `json:"matrix"`
	Self   bool                    `json:"self"`
}

// Compare scores texts against references. With no references the texts are
// compared with each other and the matrix is square and symmetric.
func (u *CompareUseCase) Compare(ctx context.Context, texts, references []string) (*Comparison, error) {
	self := len(references) == 0
	all := texts
	if !self {
		all = append(append(make([]string, 0, len(texts)+len(references)), texts...), references...)
	}

	vecs, err := EmbedTexts(ctx, u.embedder, all, u.opts)
	if err != nil {
		return nil, err
	}
	for i, v := range vecs {
		item := fmt.Sprintf("text %d", i)
		if err := engine.Validate(v, item); err != nil {
			return nil, attachText(err, item, all[i])
		}
	}

	rows, cols := vecs, vecs
	colTexts := texts
	if !self {
		rows, cols = vecs[:len(texts)], vecs[len(texts):]
		colTexts = references
	}

	m, err := engine.SimilarityMatrix(rows, cols)
	if err != nil {
		return nil, err
	}

	return &Comparison{Rows: texts, Cols: colTexts, Matrix: m, Self: self}, nil
}

// MostSimilar returns, for each row, the index of the most similar column.
// In the self case the diagonal is skipped. Rows with no candidate get -1.
func (c *Comparison) MostSimilar() []int {
	out := make([]int, len(c.Matrix))
	for i, row := range c.Matrix {
		out[i] = -1
		for j, v := range row {
			if c.Self && i == j {
				continue
			}
			if out[i] < 0 || v > row[out[i]] {
				out[i] = j
			}
		}
	}
	return out
}
