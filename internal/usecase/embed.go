package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"semsim/internal/domain"
	"semsim/internal/port"
)

// DefaultBatchSize is the number of texts sent to the provider per call.
const DefaultBatchSize = 64

// ProgressFunc is called after each batch with the number of texts embedded
// so far. It may be called from several goroutines.
type ProgressFunc func(done, total int)

// Options holds the settings shared by the use cases.
type Options struct {
	BatchSize   int
	Concurrency int
	Progress    ProgressFunc
	Logger      zerolog.Logger
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return 1
	}
	return o.Concurrency
}

// EmbedTexts embeds texts in batches, returning one vector per text in input
// order. Provider errors are returned wrapped, never replaced by defaults.
func EmbedTexts(ctx context.Context, embedder port.Embedder, texts []string, opts Options) ([]domain.Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	size := opts.batchSize()
	out := make([]domain.Embedding, 0, len(texts))

	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))

		vecs, err := embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed texts %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", embedder.ModelName(), len(vecs), end-start)
		}
		out = append(out, vecs...)

		if opts.Progress != nil {
			opts.Progress(end, len(texts))
		}
	}

	opts.Logger.Debug().
		Str("model", embedder.ModelName()).
		Int("texts", len(texts)).
		Msg("embedded texts")

	return out, nil
}

// attachText fills in the source text of a DegenerateInputError reported
// for item.
func attachText(err error, item, text string) error {
	var deg *domain.DegenerateInputError
	if errors.As(err, &deg) && deg.Item == item && deg.Text == "" {
		deg.Text = text
	}
	return err
}
