package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnchorSet_KeepsDeclaredOrder(t *testing.T) {
	set, err := NewAnchorSet([]Anchor{
		{Label: "Opposed", Examples: []Embedding{{0, 1}}},
		{Label: "Supportive", Examples: []Embedding{{1, 0}, {1, 1}}},
		{Label: "Neutral", Examples: []Embedding{{1, -1}}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Opposed", "Supportive", "Neutral"}, set.Labels())
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 2, set.Dimension())
	assert.Len(t, set.Examples("Supportive"), 2)
}

func TestNewAnchorSet_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		anchors []Anchor
		check   func(t *testing.T, err error)
	}{
		{
			name:    "no labels",
			anchors: nil,
			check: func(t *testing.T, err error) {
				var e *EmptyAnchorSetError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "label without examples",
			anchors: []Anchor{{Label: "a", Examples: []Embedding{{1}}}, {Label: "b"}},
			check: func(t *testing.T, err error) {
				var e *ConfigurationError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "b", e.Label)
			},
		},
		{
			name:    "duplicate label",
			anchors: []Anchor{{Label: "a", Examples: []Embedding{{1}}}, {Label: "a", Examples: []Embedding{{2}}}},
			check: func(t *testing.T, err error) {
				var e *ConfigurationError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "empty label",
			anchors: []Anchor{{Label: "", Examples: []Embedding{{1}}}},
			check: func(t *testing.T, err error) {
				var e *ConfigurationError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name:    "mixed dimensions",
			anchors: []Anchor{{Label: "a", Examples: []Embedding{{1, 2}}}, {Label: "b", Examples: []Embedding{{1, 2, 3}}}},
			check: func(t *testing.T, err error) {
				var e *DimensionMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, `anchor "b" example 0`, e.Item)
				assert.Equal(t, 2, e.Want)
				assert.Equal(t, 3, e.Got)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set, err := NewAnchorSet(tc.anchors)
			assert.Nil(t, set)
			tc.check(t, err)
		})
	}
}

func TestAnchorSet_IsolatedFromInputs(t *testing.T) {
	ex := Embedding{1, 2}
	set, err := NewAnchorSet([]Anchor{{Label: "a", Examples: []Embedding{ex}}})
	require.NoError(t, err)

	ex[0] = 99
	assert.Equal(t, 1.0, set.Examples("a")[0][0])

	anchors := set.Anchors()
	anchors[0].Examples[0][1] = 99
	assert.Equal(t, 2.0, set.Examples("a")[0][1])
}

func TestAnchorSet_WithReturnsNewSet(t *testing.T) {
	base, err := NewAnchorSet([]Anchor{{Label: "a", Examples: []Embedding{{1, 0}}}})
	require.NoError(t, err)

	grown, err := base.With("a", Embedding{0.9, 0.1})
	require.NoError(t, err)
	added, err := grown.With("b", Embedding{0, 1})
	require.NoError(t, err)

	assert.Len(t, base.Examples("a"), 1)
	assert.Len(t, grown.Examples("a"), 2)
	assert.Equal(t, []string{"a"}, grown.Labels())
	assert.Equal(t, []string{"a", "b"}, added.Labels())

	_, err = base.With("c", Embedding{1, 2, 3})
	var dimErr *DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}

func TestAnchorSet_NilIsEmpty(t *testing.T) {
	var set *AnchorSet
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Labels())
	assert.Nil(t, set.Examples("x"))
}

func TestValidateDefinitions(t *testing.T) {
	var emptyErr *EmptyAnchorSetError
	assert.ErrorAs(t, ValidateDefinitions(nil), &emptyErr)

	var cfgErr *ConfigurationError
	err := ValidateDefinitions([]LabeledTexts{{Label: "ok", Texts: []string{"x"}}, {Label: "empty"}})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "empty", cfgErr.Label)

	assert.NoError(t, ValidateDefinitions([]LabeledTexts{{Label: "ok", Texts: []string{"x"}}}))
}

func TestClassificationResult_Margin(t *testing.T) {
	res := ClassificationResult{
		Label: "b",
		Scores: []LabelScore{
			{Label: "a", Score: 0.2},
			{Label: "b", Score: 0.9},
			{Label: "c", Score: 0.5},
		},
	}
	assert.InDelta(t, 0.4, res.Margin(), 1e-9)

	_, ok := res.Score("missing")
	assert.False(t, ok)
}

func TestDegenerateInputError_Message(t *testing.T) {
	err := &DegenerateInputError{Item: "query", Reason: "zero norm", Text: "   "}
	assert.Equal(t, "degenerate input at query: zero norm", err.Error())

	err.Text = "hello"
	assert.Contains(t, err.Error(), `(text "hello")`)
}

func TestMarshalTaskResult(t *testing.T) {
	data, err := MarshalTaskResult(SpanAnswerResult{Answer: "Paris", Start: 10, End: 15, Score: 0.8})
	require.NoError(t, err)

	var decoded struct {
		Kind   TaskKind         `json:"kind"`
		Result SpanAnswerResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TaskSpanAnswer, decoded.Kind)
	assert.Equal(t, "Paris", decoded.Result.Answer)
}
