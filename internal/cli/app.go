package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"semsim/config"
	"semsim/internal/adapter/cache"
	"semsim/internal/adapter/embedding"
	"semsim/internal/adapter/store"
	"semsim/internal/domain"
	"semsim/internal/engine"
	"semsim/internal/port"
	"semsim/internal/usecase"
)

// newEmbedder builds the configured provider, wrapped in the in-memory
// cache when enabled.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	opts, err := embedding.OptionsFromConfig(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	emb, err := embedding.New(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if cfg.Cache.Enabled {
		emb = cache.NewCachedEmbedder(emb, cache.NewEmbeddingCache(cfg.Cache.MaxSize, cfg.Cache.TTL()))
	}
	return emb, nil
}

// newEngine builds the engine, letting non-empty flag values override the
// configured batch mode and aggregation.
func newEngine(cfg *config.Config, batchMode, aggregate string) (*engine.Engine, error) {
	if batchMode == "" {
		batchMode = cfg.Classify.BatchMode
	}
	if aggregate == "" {
		aggregate = cfg.Classify.Aggregate
	}

	mode, err := engine.ParseBatchMode(batchMode)
	if err != nil {
		return nil, err
	}
	agg, err := engine.ParseAggregator(aggregate)
	if err != nil {
		return nil, err
	}
	return engine.New(engine.WithBatchMode(mode), engine.WithAggregator(agg)), nil
}

// openHistory opens the run history when enabled. The returned function
// closes it.
func openHistory(cfg *config.Config) (*usecase.HistoryUseCase, func(), error) {
	if !cfg.History.Enabled {
		return usecase.NewHistoryUseCase(nil, logger), func() {}, nil
	}
	if err := config.EnsureStateDir(rootDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create .semsim directory: %w", err)
	}
	st, err := store.NewBoltStore(config.HistoryDBPath(rootDir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return usecase.NewHistoryUseCase(st, logger), func() { st.Close() }, nil
}

// record stores a run, logging instead of failing when the store errors.
func record(h *usecase.HistoryUseCase, kind domain.RunKind, model, summary string, payload any) {
	if id := h.TryRecord(kind, model, summary, payload); id != "" {
		logger.Debug().Str("id", id).Msg("run recorded")
	}
}

// useCaseOptions returns the shared use case options with a progress bar
// described by desc. quiet disables the bar.
func useCaseOptions(cfg *config.Config, desc string, quiet bool) usecase.Options {
	opts := usecase.Options{
		BatchSize:   cfg.Embedding.BatchSize,
		Concurrency: cfg.Embedding.Concurrency,
		Logger:      logger,
	}
	if !quiet {
		opts.Progress = newProgress(desc)
	}
	return opts
}

// newProgress returns a progress callback drawing a bar on stderr. A new
// bar starts whenever the total changes, so one callback can serve the
// anchor and the query passes of a run.
func newProgress(desc string) usecase.ProgressFunc {
	var (
		mu    sync.Mutex
		bar   *progressbar.ProgressBar
		limit int
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil || total != limit {
			limit = total
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+desc+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	}
}
