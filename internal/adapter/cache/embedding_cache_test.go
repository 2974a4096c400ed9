package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsim/internal/adapter/embedding"
	"semsim/internal/domain"
)

func TestEmbeddingCache_LRUEviction(t *testing.T) {
	c := NewEmbeddingCache(2, time.Minute)

	c.Put("m", "a", domain.Embedding{1})
	c.Put("m", "b", domain.Embedding{2})
	_, hit := c.Get("m", "a")
	require.True(t, hit)

	c.Put("m", "c", domain.Embedding{3})
	assert.Equal(t, 2, c.Size())

	_, hit = c.Get("m", "b")
	assert.False(t, hit, "least recently used entry should be evicted")
	_, hit = c.Get("m", "a")
	assert.True(t, hit)
}

func TestEmbeddingCache_TTL(t *testing.T) {
	c := NewEmbeddingCache(10, time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("m", "a", domain.Embedding{1})
	now = now.Add(2 * time.Minute)

	_, hit := c.Get("m", "a")
	assert.False(t, hit)
	assert.Equal(t, 0, c.Size())
}

func TestEmbeddingCache_KeyedByModel(t *testing.T) {
	c := NewEmbeddingCache(10, time.Minute)
	c.Put("m1", "a", domain.Embedding{1})

	_, hit := c.Get("m2", "a")
	assert.False(t, hit)

	v, hit := c.Get("m1", "a")
	require.True(t, hit)
	v[0] = 42
	again, _ := c.Get("m1", "a")
	assert.Equal(t, 1.0, again[0])

	hits, misses := c.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)

	c.Invalidate()
	assert.Equal(t, 0, c.Size())
}

func TestCachedEmbedder_OnlyEmbedsMisses(t *testing.T) {
	mock := embedding.NewMockEmbedder(4)
	cached := NewCachedEmbedder(mock, NewEmbeddingCache(10, time.Minute))

	first, err := cached.Embed(context.Background(), []string{"x", "y", "x"})
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, first[0], first[2])
	assert.Equal(t, 1, mock.Calls())

	second, err := cached.Embed(context.Background(), []string{"y", "x"})
	require.NoError(t, err)
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[1])
	assert.Equal(t, 1, mock.Calls(), "fully cached batch must not reach the provider")

	_, err = cached.Embed(context.Background(), []string{"x", "z"})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls())

	assert.Equal(t, 4, cached.Dimension())
	assert.Equal(t, "mock", cached.ModelName())
}

type failingEmbedder struct{ err error }

func (f failingEmbedder) Embed(context.Context, []string) ([]domain.Embedding, error) {
	return nil, f.err
}
func (f failingEmbedder) Dimension() int    { return 3 }
func (f failingEmbedder) ModelName() string { return "failing" }

func TestCachedEmbedder_PropagatesProviderErrors(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	cached := NewCachedEmbedder(failingEmbedder{err: providerErr}, NewEmbeddingCache(10, time.Minute))

	_, err := cached.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, providerErr)
}
