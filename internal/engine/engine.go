package engine

import (
	"fmt"
	"strings"
)

// BatchMode selects how ClassifyBatch reacts to a failing query.
type BatchMode string

const (
	// FailFast stops the batch at the first failing query and surfaces its error.
	FailFast BatchMode = "fail-fast"
	// PerItem reports a result or an error for every position.
	PerItem BatchMode = "per-item"
)

// ParseBatchMode converts a configuration value into a BatchMode.
// The empty string selects FailFast.
func ParseBatchMode(s string) (BatchMode, error) {
	switch BatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailFast:
		return FailFast, nil
	case PerItem:
		return PerItem, nil
	default:
		return "", fmt.Errorf("unknown batch mode %q (want %q or %q)", s, FailFast, PerItem)
	}
}

// Aggregator reduces the similarities between a query and one label's
// examples to that label's score.
type Aggregator interface {
	Aggregate(sims []float64) float64
	Name() string
}

// MeanAggregator weights every example equally.
type MeanAggregator struct{}

func (MeanAggregator) Aggregate(sims []float64) float64 {
	var sum float64
	for _, s := range sims {
		sum += s
	}
	return sum / float64(len(sims))
}

func (MeanAggregator) Name() string { return "mean" }

// MaxAggregator scores a label by its closest example.
type MaxAggregator struct{}

func (MaxAggregator) Aggregate(sims []float64) float64 {
	best := sims[0]
	for _, s := range sims[1:] {
		if s > best {
			best = s
		}
	}
	return best
}

func (MaxAggregator) Name() string { return "max" }

// ParseAggregator converts a configuration value into an Aggregator.
// The empty string selects MeanAggregator.
func ParseAggregator(s string) (Aggregator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean":
		return MeanAggregator{}, nil
	case "max":
		return MaxAggregator{}, nil
	default:
		return nil, fmt.Errorf("unknown aggregator %q (want \"mean\" or \"max\")", s)
	}
}

// Engine classifies embeddings against anchor sets. The zero value is not
// usable; construct with New. An Engine is safe for concurrent use.
type Engine struct {
	mode       BatchMode
	aggregator Aggregator
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchMode sets the batch failure policy. Values other than FailFast
// and PerItem select FailFast.
func WithBatchMode(mode BatchMode) Option {
	return func(e *Engine) {
		if mode == PerItem {
			e.mode = PerItem
			return
		}
		e.mode = FailFast
	}
}

// WithAggregator sets how per-example similarities are combined.
func WithAggregator(a Aggregator) Option {
	return func(e *Engine) {
		if a != nil {
			e.aggregator = a
		}
	}
}

// New creates an Engine using fail-fast batches and mean aggregation unless
// overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		mode:       FailFast,
		aggregator: MeanAggregator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the configured batch mode.
func (e *Engine) Mode() BatchMode {
	return e.mode
}

// Aggregator returns the configured aggregator.
func (e *Engine) Aggregator() Aggregator {
	return e.aggregator
}
