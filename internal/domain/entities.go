package domain

import "time"

// Embedding is a fixed-length vector produced by an embedding provider.
type Embedding []float64

// Clone returns a copy that does not share the backing array.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Scale returns a copy of e multiplied by k.
func (e Embedding) Scale(k float64) Embedding {
	out := make(Embedding, len(e))
	for i, v := range e {
		out[i] = v * k
	}
	return out
}

// SimilarityMatrix holds R[i][j] = cosine(rows[i], cols[j]).
type SimilarityMatrix [][]float64

// Rows returns the number of rows.
func (m SimilarityMatrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns.
func (m SimilarityMatrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// LabelScore is the aggregate similarity of a query to one label's anchors.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassificationResult is the outcome of a nearest-anchor classification.
// Scores lists every label in the anchor set's declared order.
type ClassificationResult struct {
	Label  string       `json:"label"`
	Scores []LabelScore `json:"scores"`
}

// Score returns the aggregate score of label.
func (r ClassificationResult) Score(label string) (float64, bool) {
	for _, s := range r.Scores {
		if s.Label == label {
			return s.Score, true
		}
	}
	return 0, false
}

// ScoreMap returns the label to score mapping.
func (r ClassificationResult) ScoreMap() map[string]float64 {
	m := make(map[string]float64, len(r.Scores))
	for _, s := range r.Scores {
		m[s.Label] = s.Score
	}
	return m
}

// Margin is the gap between the winning score and the runner-up.
// It is zero when only one label competes.
func (r ClassificationResult) Margin() float64 {
	if len(r.Scores) < 2 {
		return 0
	}
	best, _ := r.Score(r.Label)
	second := -2.0
	for _, s := range r.Scores {
		if s.Label != r.Label && s.Score > second {
			second = s.Score
		}
	}
	return best - second
}

// BatchItem is one position of a batch classification.
// Exactly one of Result and Err is meaningful.
type BatchItem struct {
	Index  int
	Result ClassificationResult
	Err    error
}

// OK reports whether the item holds a result.
func (b BatchItem) OK() bool {
	return b.Err == nil
}

// Point is a position in the projected space.
type Point []float64

// Projection is the output of principal component projection.
// Points are in input order. ExplainedVariance holds the fraction of total
// variance captured by each axis.
type Projection struct {
	Points            []Point   `json:"points"`
	ExplainedVariance []float64 `json:"explained_variance"`
}

// Dimensions returns the number of axes of the projection.
func (p Projection) Dimensions() int {
	if len(p.Points) == 0 {
		return 0
	}
	return len(p.Points[0])
}

// LabeledTexts is the static configuration an AnchorSet is built from.
type LabeledTexts struct {
	Label string   `yaml:"label" json:"label"`
	Texts []string `yaml:"examples" json:"examples"`
}

// Sample is a text read from a drift source.
type Sample struct {
	Source string
	Path   string
	Text   string
}

// RunKind identifies what produced a recorded run.
type RunKind string

const (
	RunClassify RunKind = "classify"
	RunCompare  RunKind = "compare"
	RunDrift    RunKind = "drift"
	RunTask     RunKind = "task"
)

// Run is a recorded invocation. Payload is the JSON encoded output.
type Run struct {
	ID        string    `json:"id"`
	Kind      RunKind   `json:"kind"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary"`
	Payload   []byte    `json:"payload,omitempty"`
}
