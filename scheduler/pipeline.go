package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gpustats/config"
	"gpustats/metrics"
	"gpustats/models"
	"gpustats/scraper"
)

// FetcherOpener creates a fetcher for a backend name ("browser" or "http")
type FetcherOpener func(kind string) (scraper.Fetcher, error)

// Pipeline runs a selection of configured sources in order against one store
type Pipeline struct {
	cfg     *config.Config
	store   Store
	open    FetcherOpener
	pacer   Waiter
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewPipeline creates a pipeline
func NewPipeline(cfg *config.Config, store Store, open FetcherOpener, pacer Waiter, logger *slog.Logger, recorder *metrics.Recorder) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, store: store, open: open, pacer: pacer, logger: logger, metrics: recorder}
}

// Run executes the named sources, or every enabled source when names is empty.
// Fetchers are opened on first use and closed before Run returns.
func (p *Pipeline) Run(ctx context.Context, names []string) ([]models.RunSummary, error) {
	selected, err := p.cfg.SelectSources(names)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		p.logger.Warn("No sources selected")
		return nil, nil
	}

	fetchers := make(map[string]scraper.Fetcher)
	defer func() {
		for kind, f := range fetchers {
			if err := f.Close(); err != nil {
				p.logger.Warn("Failed to close fetcher", "fetcher", kind, "error", err)
			}
		}
	}()

	runner := NewRunner(p.store, p.pacer, p.logger, p.metrics)
	summaries := make([]models.RunSummary, 0, len(selected))

	for _, sc := range selected {
		fetcher, ok := fetchers[sc.Fetcher]
		if !ok {
			fetcher, err = p.open(sc.Fetcher)
			if err != nil {
				return summaries, fmt.Errorf("failed to open %s fetcher for %s: %w", sc.Fetcher, sc.Name, err)
			}
			fetchers[sc.Fetcher] = fetcher
		}

		src, err := scraper.NewSource(sc, fetcher, p.timeout())
		if err != nil {
			return summaries, err
		}

		summary, err := runner.Run(ctx, src)
		if summary != nil {
			summaries = append(summaries, *summary)
		}
		if err != nil {
			return summaries, fmt.Errorf("source %s: %w", sc.Name, err)
		}
	}
	return summaries, nil
}

func (p *Pipeline) timeout() time.Duration {
	if p.cfg.Fetch.Timeout > 0 {
		return p.cfg.Fetch.Timeout
	}
	return 30 * time.Second
}
