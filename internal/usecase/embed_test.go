package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"semsim/internal/adapter/embedding"
	"semsim/internal/domain"
)

// tableEmbedder embeds known texts to fixed vectors and anything else to the
// zero vector.
type tableEmbedder struct {
	vectors map[string]domain.Embedding
	dim     int

	mu   sync.Mutex
	seen [][]string
}

func newTableEmbedder(dim int, vectors map[string]domain.Embedding) *tableEmbedder {
	return &tableEmbedder{vectors: vectors, dim: dim}
}

func (e *tableEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.seen = append(e.seen, append([]string(nil), texts...))
	e.mu.Unlock()

	out := make([]domain.Embedding, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v.Clone()
			continue
		}
		out[i] = make(domain.Embedding, e.dim)
	}
	return out, nil
}

func (e *tableEmbedder) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.seen)
}

func (e *tableEmbedder) Dimension() int    { return e.dim }
func (e *tableEmbedder) ModelName() string { return "table" }

type shortEmbedder struct{ tableEmbedder }

func (e *shortEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	return []domain.Embedding{{1, 0}}, nil
}

type brokenEmbedder struct{ tableEmbedder }

var errProvider = errors.New("provider unavailable")

func (e *brokenEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	return nil, errProvider
}

func TestEmbedTexts_Batches(t *testing.T) {
	mock := embedding.NewMockEmbedder(4)
	texts := []string{"a", "b", "c", "d", "e"}

	var progress [][2]int
	opts := Options{BatchSize: 2, Progress: func(done, total int) {
		progress = append(progress, [2]int{done, total})
	}}

	vecs, err := EmbedTexts(context.Background(), mock, texts, opts)
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, 3, mock.Calls())
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress)

	single, err := mock.Embed(context.Background(), []string{"d"})
	require.NoError(t, err)
	assert.Equal(t, single[0], vecs[3], "batching must preserve order")
}

func TestEmbedTexts_Empty(t *testing.T) {
	mock := embedding.NewMockEmbedder(4)
	vecs, err := EmbedTexts(context.Background(), mock, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Equal(t, 0, mock.Calls())
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	_, err := EmbedTexts(context.Background(), &shortEmbedder{}, []string{"a", "b"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 1 vectors for 2 texts")
}

func TestEmbedTexts_ProviderErrorPropagates(t *testing.T) {
	_, err := EmbedTexts(context.Background(), &brokenEmbedder{}, []string{"a"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errProvider)
}

func TestAttachText(t *testing.T) {
	err := error(&domain.DegenerateInputError{Item: "query", Reason: "zero norm"})

	attachText(err, "text 3", "ignored")
	var deg *domain.DegenerateInputError
	require.ErrorAs(t, err, &deg)
	assert.Empty(t, deg.Text)

	attachText(err, "query", "hello")
	assert.Equal(t, "hello", deg.Text)

	attachText(err, "query", "other")
	assert.Equal(t, "hello", deg.Text, "existing text is kept")
}
