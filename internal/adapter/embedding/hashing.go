package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"semsim/internal/adapter/analyzer"
	"semsim/internal/domain"
)

// DefaultHashingDimension matches the small sentence-transformer models.
const DefaultHashingDimension = 384

// HashingEmbedder is an offline embedder that hashes folded unigrams and
// bigrams into a fixed number of signed buckets and L2-normalises the result.
// Text without any terms embeds to the zero vector.
type HashingEmbedder struct {
	dimension int
	tokenizer *analyzer.Tokenizer
}

func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingEmbedder{
		dimension: dimension,
		tokenizer: analyzer.NewTokenizer(true),
	}
}

func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	out := make([]domain.Embedding, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *HashingEmbedder) embedOne(text string) domain.Embedding {
	vec := make(domain.Embedding, e.dimension)
	tokens := e.tokenizer.Tokenize(text)

	for i, tok := range tokens {
		e.add(vec, tok, 1.0)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	n := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

func (e *HashingEmbedder) add(vec domain.Embedding, feature string, weight float64) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return "hashing"
}
