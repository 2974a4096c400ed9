package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"semsim/internal/domain"
	"semsim/internal/engine"
	"semsim/internal/port"
)

// ClassifyUseCase turns labelled example texts into an AnchorSet and
// classifies free text against it.
type ClassifyUseCase struct {
	embedder port.Embedder
	engine   *engine.Engine
	opts     Options
}

// NewClassifyUseCase creates a new classify use case.
func NewClassifyUseCase(embedder port.Embedder, eng *engine.Engine, opts Options) *ClassifyUseCase {
	return &ClassifyUseCase{
		embedder: embedder,
		engine:   eng,
		opts:     opts,
	}
}

// ClassifiedText is one classified input with its source text.
type ClassifiedText struct {
	Text string
	domain.BatchItem
}

// BuildAnchors embeds every label's examples and builds the AnchorSet.
// Definitions are checked before any provider call. Labels are embedded
// concurrently, bounded by Options.Concurrency.
func (u *ClassifyUseCase) BuildAnchors(ctx context.Context, defs []domain.LabeledTexts) (*domain.AnchorSet, error) {
	if err := domain.ValidateDefinitions(defs); err != nil {
		return nil, err
	}

	total := 0
	for _, d := range defs {
		total += len(d.Texts)
	}
	var done atomic.Int64

	vectors := make([][]domain.Embedding, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.concurrency())

	for i, def := range defs {
		g.Go(func() error {
			opts := u.opts
			opts.Progress = nil
			vecs, err := EmbedTexts(gctx, u.embedder, def.Texts, opts)
			if err != nil {
				return fmt.Errorf("anchor %q: %w", def.Label, err)
			}
			for j, v := range vecs {
				item := fmt.Sprintf("anchor %q example %d", def.Label, j)
				if err := engine.Validate(v, item); err != nil {
					return attachText(err, item, def.Texts[j])
				}
			}
			vectors[i] = vecs
			if u.opts.Progress != nil {
				u.opts.Progress(int(done.Add(int64(len(vecs)))), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	anchors := make([]domain.Anchor, len(defs))
	for i, def := range defs {
		anchors[i] = domain.Anchor{Label: def.Label, Examples: vectors[i]}
	}
	set, err := domain.NewAnchorSet(anchors)
	if err != nil {
		return nil, err
	}

	u.opts.Logger.Debug().
		Int("labels", set.Len()).
		Int("dimension", set.Dimension()).
		Msg("built anchor set")

	return set, nil
}

// Classify embeds texts and classifies each against anchors. In fail-fast
// mode the first failing text aborts the call; in per-item mode every text
// gets an item carrying either a result or its own error.
func (u *ClassifyUseCase) Classify(ctx context.Context, anchors *domain.AnchorSet, texts []string) ([]ClassifiedText, error) {
	if anchors.Len() == 0 {
		return nil, &domain.EmptyAnchorSetError{}
	}

	vecs, err := EmbedTexts(ctx, u.embedder, texts, u.opts)
	if err != nil {
		return nil, err
	}

	out := make([]ClassifiedText, 0, len(texts))
	for item := range u.engine.ClassifyBatch(vecs, anchors) {
		if item.Err != nil {
			item.Err = attachText(item.Err, "query", texts[item.Index])
			if u.engine.Mode() == engine.FailFast {
				return nil, item.Err
			}
			u.opts.Logger.Warn().Err(item.Err).Int("index", item.Index).Msg("classification failed")
		}
		out = append(out, ClassifiedText{Text: texts[item.Index], BatchItem: item})
	}

	return out, nil
}

// ClassifyOne classifies a single text.
func (u *ClassifyUseCase) ClassifyOne(ctx context.Context, anchors *domain.AnchorSet, text string) (domain.ClassificationResult, error) {
	if anchors.Len() == 0 {
		return domain.ClassificationResult{}, &domain.EmptyAnchorSetError{}
	}
	vecs, err := EmbedTexts(ctx, u.embedder, []string{text}, u.opts)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	res, err := u.engine.Classify(vecs[0], anchors)
	if err != nil {
		return domain.ClassificationResult{}, attachText(err, "query", text)
	}
	return res, nil
}
