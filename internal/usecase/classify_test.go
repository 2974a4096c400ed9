package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"semsim/internal/domain"
	"semsim/internal/engine"
)

func sentimentEmbedder() *tableEmbedder {
	return newTableEmbedder(3, map[string]domain.Embedding{
		"I love it":        {1, 0, 0},
		"wonderful":        {0.9, 0.1, 0},
		"I hate it":        {0, 1, 0},
		"awful":            {0.1, 0.9, 0},
		"great job":        {0.8, 0.2, 0},
		"really bad":       {0.2, 0.8, 0},
		"the weather":      {0, 0, 1},
		"a different size": {1, 0},
	})
}

func sentimentDefs() []domain.LabeledTexts {
	return []domain.LabeledTexts{
		{Label: "Positive", Texts: []string{"I love it", "wonderful"}},
		{Label: "Negative", Texts: []string{"I hate it", "awful"}},
	}
}

func TestBuildAnchors(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{Concurrency: 2})

	set, err := uc.BuildAnchors(context.Background(), sentimentDefs())
	require.NoError(t, err)
	assert.Equal(t, []string{"Positive", "Negative"}, set.Labels())
	assert.Equal(t, 3, set.Dimension())
	assert.Len(t, set.Examples("Negative"), 2)
}

func TestBuildAnchors_ValidatesBeforeEmbedding(t *testing.T) {
	emb := sentimentEmbedder()
	uc := NewClassifyUseCase(emb, engine.New(), Options{})

	defs := append(sentimentDefs(), domain.LabeledTexts{Label: "Positive", Texts: []string{"great job"}})
	_, err := uc.BuildAnchors(context.Background(), defs)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Positive", cfgErr.Label)
	assert.Equal(t, 0, emb.calls())

	_, err = uc.BuildAnchors(context.Background(), nil)
	var empty *domain.EmptyAnchorSetError
	assert.ErrorAs(t, err, &empty)
}

func TestBuildAnchors_DegenerateExample(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{})

	defs := []domain.LabeledTexts{
		{Label: "Positive", Texts: []string{"I love it", "unknown phrase"}},
	}
	_, err := uc.BuildAnchors(context.Background(), defs)

	var deg *domain.DegenerateInputError
	require.ErrorAs(t, err, &deg)
	assert.Equal(t, `anchor "Positive" example 1`, deg.Item)
	assert.Equal(t, "unknown phrase", deg.Text)
}

func TestBuildAnchors_MixedDimensions(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{})

	defs := []domain.LabeledTexts{
		{Label: "Positive", Texts: []string{"I love it"}},
		{Label: "Odd", Texts: []string{"a different size"}},
	}
	_, err := uc.BuildAnchors(context.Background(), defs)

	var dim *domain.DimensionMismatchError
	assert.ErrorAs(t, err, &dim)
}

func TestBuildAnchors_CancelledContext(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.BuildAnchors(ctx, sentimentDefs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{})
	set, err := uc.BuildAnchors(context.Background(), sentimentDefs())
	require.NoError(t, err)

	items, err := uc.Classify(context.Background(), set, []string{"great job", "really bad"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "great job", items[0].Text)
	assert.Equal(t, "Positive", items[0].Result.Label)
	assert.Equal(t, "Negative", items[1].Result.Label)
	assert.Equal(t, 1, items[1].Index)
}

func TestClassify_FailFast(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{})
	set, err := uc.BuildAnchors(context.Background(), sentimentDefs())
	require.NoError(t, err)

	_, err = uc.Classify(context.Background(), set, []string{"great job", "never seen", "really bad"})
	require.Error(t, err)

	var deg *domain.DegenerateInputError
	require.ErrorAs(t, err, &deg)
	assert.Equal(t, "never seen", deg.Text)
	assert.Contains(t, err.Error(), "query 1")
}

func TestClassify_PerItem(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(engine.WithBatchMode(engine.PerItem)), Options{})
	set, err := uc.BuildAnchors(context.Background(), sentimentDefs())
	require.NoError(t, err)

	items, err := uc.Classify(context.Background(), set, []string{"great job", "never seen", "really bad"})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, items[0].OK())
	assert.False(t, items[1].OK())
	assert.True(t, items[2].OK())
	assert.Equal(t, "Negative", items[2].Result.Label)
}

func TestClassify_EmptyAnchorSet(t *testing.T) {
	emb := sentimentEmbedder()
	uc := NewClassifyUseCase(emb, engine.New(), Options{})

	_, err := uc.Classify(context.Background(), nil, []string{"great job"})
	var empty *domain.EmptyAnchorSetError
	assert.ErrorAs(t, err, &empty)
	assert.Equal(t, 0, emb.calls())
}

func TestClassifyOne(t *testing.T) {
	uc := NewClassifyUseCase(sentimentEmbedder(), engine.New(), Options{})
	set, err := uc.BuildAnchors(context.Background(), sentimentDefs())
	require.NoError(t, err)

	res, err := uc.ClassifyOne(context.Background(), set, "I love it")
	require.NoError(t, err)
	assert.Equal(t, "Positive", res.Label)
	assert.Greater(t, res.Margin(), 0.0)

	_, err = uc.ClassifyOne(context.Background(), set, "the weather")
	require.NoError(t, err, "an orthogonal query is still classifiable")
}
