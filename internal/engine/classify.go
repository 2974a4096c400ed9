package engine

import (
	"errors"
	"fmt"
	"iter"

	"semsim/internal/domain"
)

const queryItem = "query"

// Classify scores query against every label of anchors and picks the label
// with the highest aggregate score. Exact ties go to the label declared first.
func (e *Engine) Classify(query domain.Embedding, anchors *domain.AnchorSet) (domain.ClassificationResult, error) {
	if anchors.Len() == 0 {
		return domain.ClassificationResult{}, &domain.EmptyAnchorSetError{}
	}
	if err := Validate(query, queryItem); err != nil {
		return domain.ClassificationResult{}, err
	}

	labels := anchors.Labels()
	scores := make([]domain.LabelScore, 0, len(labels))
	best := -1

	for _, label := range labels {
		examples := anchors.Examples(label)
		sims := make([]float64, len(examples))
		for i, ex := range examples {
			sim, err := cosine(query, ex, queryItem, fmt.Sprintf("anchor %q example %d", label, i))
			if err != nil {
				return domain.ClassificationResult{}, err
			}
			sims[i] = sim
		}

		score := e.aggregator.Aggregate(sims)
		scores = append(scores, domain.LabelScore{Label: label, Score: score})
		if best < 0 || score > scores[best].Score {
			best = len(scores) - 1
		}
	}

	return domain.ClassificationResult{
		Label:  scores[best].Label,
		Scores: scores,
	}, nil
}

// ClassifyBatch returns a lazy sequence with one item per query in input
// order. Each range over the sequence recomputes from scratch. In FailFast
// mode the sequence ends after the first failing item; in PerItem mode every
// position is yielded.
func (e *Engine) ClassifyBatch(queries []domain.Embedding, anchors *domain.AnchorSet) iter.Seq[domain.BatchItem] {
	return func(yield func(domain.BatchItem) bool) {
		for i, q := range queries {
			res, err := e.Classify(q, anchors)
			item := domain.BatchItem{Index: i, Result: res}
			if err != nil {
				item = domain.BatchItem{Index: i, Err: fmt.Errorf("query %d: %w", i, err)}
			}
			if !yield(item) {
				return
			}
			if err != nil && e.mode == FailFast {
				return
			}
		}
	}
}

// CollectBatch drains ClassifyBatch. In FailFast mode the first error is
// returned with no items; in PerItem mode every item is returned and the
// error is nil.
func (e *Engine) CollectBatch(queries []domain.Embedding, anchors *domain.AnchorSet) ([]domain.BatchItem, error) {
	items := make([]domain.BatchItem, 0, len(queries))
	for item := range e.ClassifyBatch(queries, anchors) {
		if item.Err != nil && e.mode == FailFast {
			return nil, item.Err
		}
		items = append(items, item)
	}
	return items, nil
}

// IsInputError reports whether err belongs to the engine's error taxonomy
// rather than coming from an embedding provider.
func IsInputError(err error) bool {
	var (
		dim   *domain.DimensionMismatchError
		deg   *domain.DegenerateInputError
		empty *domain.EmptyAnchorSetError
		cfg   *domain.ConfigurationError
		ins   *domain.InsufficientSamplesError
	)
	return errors.As(err, &dim) || errors.As(err, &deg) || errors.As(err, &empty) ||
		errors.As(err, &cfg) || errors.As(err, &ins)
}
