package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync/atomic"

	"semsim/internal/domain"
)

// MockEmbedder returns a pseudo-random vector seeded by the text, so equal
// texts embed identically. Blank text embeds to the zero vector, as several
// hosted models do.
type MockEmbedder struct {
	dimension int
	calls     atomic.Int64
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 8
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	e.calls.Add(1)
	embeddings := make([]domain.Embedding, len(texts))
	for i, text := range texts {
		embeddings[i] = make(domain.Embedding, e.dimension)
		if strings.TrimSpace(text) == "" {
			continue
		}

		h := fnv.New64a()
		h.Write([]byte(text))
		r := rand.New(rand.NewSource(int64(h.Sum64())))
		for j := range embeddings[i] {
			embeddings[i][j] = r.Float64()*2 - 1
		}
	}
	return embeddings, nil
}

// Calls returns how many times Embed has been invoked.
func (e *MockEmbedder) Calls() int {
	return int(e.calls.Load())
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
