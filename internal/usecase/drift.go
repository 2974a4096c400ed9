package usecase

import (
	"context"
	"fmt"
	"strings"

	"semsim/internal/domain"
	"semsim/internal/engine"
	"semsim/internal/port"
)

// DriftUseCase projects text samples from several sources into a shared
// low-dimensional space so shifts between the sources become visible.
type DriftUseCase struct {
	embedder port.Embedder
	walker   port.FileWalker
	reader   port.FileReader
	opts     Options
}

// NewDriftUseCase creates a new drift use case.
func NewDriftUseCase(embedder port.Embedder, walker port.FileWalker, reader port.FileReader, opts Options) *DriftUseCase {
	return &DriftUseCase{
		embedder: embedder,
		walker:   walker,
		reader:   reader,
		opts:     opts,
	}
}

// DriftPoint is one projected sample.
type DriftPoint struct {
	Source string       `json:"source"`
	Path   string       `json:"path"`
	Coords domain.Point `json:"coords"`
}

// SourceSummary describes one source in the projected space.
// BaselineSimilarity is the cosine similarity between the mean embedding of
// this source and that of the first source.
type SourceSummary struct {
	Source             string       `json:"source"`
	Samples            int          `json:"samples"`
	Centroid           domain.Point `json:"centroid"`
	BaselineSimilarity float64      `json:"baseline_similarity"`
}

// DriftReport is the result of a drift projection.
type DriftReport struct {
	Points            []DriftPoint    `json:"points"`
	Sources           []SourceSummary `json:"sources"`
	ExplainedVariance []float64       `json:"explained_variance"`
}

// ReadSamples reads every text file under each source directory. Unreadable
// and blank files are skipped with a warning.
func (u *DriftUseCase) ReadSamples(sources []string) ([]domain.Sample, error) {
	var samples []domain.Sample
	for _, src := range sources {
		files, err := u.walker.Walk(src)
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", src, err)
		}
		for _, f := range files {
			text, err := u.reader.ReadFile(f.Path)
			if err != nil {
				u.opts.Logger.Warn().Err(err).Str("path", f.Path).Msg("skipping sample")
				continue
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			samples = append(samples, domain.Sample{Source: src, Path: f.Rel, Text: text})
		}
	}
	return samples, nil
}

// Project reads the samples under sources and projects them onto k axes.
func (u *DriftUseCase) Project(ctx context.Context, sources []string, k int) (*DriftReport, error) {
	samples, err := u.ReadSamples(sources)
	if err != nil {
		return nil, err
	}
	return u.ProjectSamples(ctx, samples, k)
}

// ProjectSamples embeds samples and projects them onto k axes, or onto
// engine.DefaultProjectDimensions when k is not positive. Sources are
// reported in order of first appearance.
func (u *DriftUseCase) ProjectSamples(ctx context.Context, samples []domain.Sample, k int) (*DriftReport, error) {
	if k <= 0 {
		k = engine.DefaultProjectDimensions
	}
	texts := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
	}

	vecs, err := EmbedTexts(ctx, u.embedder, texts, u.opts)
	if err != nil {
		return nil, err
	}

	proj, err := engine.Project(vecs, k)
	if err != nil {
		return nil, attachSampleText(err, samples)
	}

	report := &DriftReport{
		Points:            make([]DriftPoint, len(samples)),
		ExplainedVariance: proj.ExplainedVariance,
	}

	index := make(map[string]int)
	var means []domain.Embedding
	for i, s := range samples {
		report.Points[i] = DriftPoint{Source: s.Source, Path: s.Path, Coords: proj.Points[i]}

		si, ok := index[s.Source]
		if !ok {
			si = len(report.Sources)
			index[s.Source] = si
			report.Sources = append(report.Sources, SourceSummary{
				Source:   s.Source,
				Centroid: make(domain.Point, len(proj.Points[i])),
			})
			means = append(means, make(domain.Embedding, len(vecs[i])))
		}

		sum := &report.Sources[si]
		sum.Samples++
		for d, c := range proj.Points[i] {
			sum.Centroid[d] += c
		}
		for d, c := range vecs[i] {
			means[si][d] += c
		}
	}

	for i := range report.Sources {
		sum := &report.Sources[i]
		n := float64(sum.Samples)
		for d := range sum.Centroid {
			sum.Centroid[d] /= n
		}
		sim, err := engine.CosineSimilarity(means[0].Scale(1/float64(report.Sources[0].Samples)), means[i].Scale(1/n))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sum.Source, err)
		}
		sum.BaselineSimilarity = sim
	}

	u.opts.Logger.Debug().
		Int("samples", len(samples)).
		Int("sources", len(report.Sources)).
		Msg("projected samples")

	return report, nil
}

func attachSampleText(err error, samples []domain.Sample) error {
	for i, s := range samples {
		err = attachText(err, fmt.Sprintf("sample %d", i), s.Text)
	}
	return err
}
