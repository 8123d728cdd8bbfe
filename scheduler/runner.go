package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gpustats/aggregate"
	"gpustats/matcher"
	"gpustats/metrics"
	"gpustats/models"
	"gpustats/scraper"
)

// Store is the part of the catalog a run reads and writes
type Store interface {
	EnsureAttribute(ctx context.Context, attr models.Attribute) error
	ResetAttribute(ctx context.Context, attr models.Attribute) error
	UpsertFields(ctx context.Context, name string, fields []models.Field) (bool, error)
	ProductNames(ctx context.Context) ([]string, error)
}

// Waiter delays between fetches
type Waiter interface {
	Wait(ctx context.Context) error
}

// Runner drives one source over the whole catalog, one product and one fetch at a time
type Runner struct {
	store   Store
	pacer   Waiter
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewRunner creates a runner. pacer and recorder may be nil.
func NewRunner(store Store, pacer Waiter, logger *slog.Logger, recorder *metrics.Recorder) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: store, pacer: pacer, logger: logger, metrics: recorder}
}

// Run refreshes every attribute of src. Schema and catalog errors are returned;
// fetch, match and per-row store errors are counted in the summary.
func (r *Runner) Run(ctx context.Context, src scraper.Source) (*models.RunSummary, error) {
	start := time.Now()
	summary := &models.RunSummary{Source: src.Name()}
	log := r.logger.With("source", src.Name())

	defer func() {
		summary.Duration = time.Since(start)
		r.metrics.RunFinished(src.Name(), summary.Duration)
	}()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	for _, attr := range src.Attributes() {
		if err := r.store.EnsureAttribute(ctx, attr); err != nil {
			return summary, err
		}
		if err := r.store.ResetAttribute(ctx, attr); err != nil {
			return summary, err
		}
	}

	names, err := r.store.ProductNames(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrCatalog, err)
	}
	summary.Products = len(names)
	log.Info("Starting source run", "products", len(names))

	switch s := src.(type) {
	case scraper.ListingSource:
		err = r.runListing(ctx, log, s, names, summary)
	case scraper.RankingSource:
		err = r.runRanking(ctx, log, s, names, summary)
	case scraper.SpecSheetSource:
		err = r.runSpecSheet(ctx, log, s, names, summary)
	default:
		return summary, fmt.Errorf("source %s has no run strategy", src.Name())
	}
	if err != nil {
		return summary, err
	}

	log.Info("Source run finished",
		"products", summary.Products,
		"updated", summary.Updated,
		"no_data", summary.NoData,
		"fetch_errors", summary.FetchErrors,
		"match_misses", summary.MatchMisses,
		"store_errors", summary.StoreErrors,
		"duration", time.Since(start).Round(time.Millisecond))
	return summary, nil
}

func (r *Runner) runListing(ctx context.Context, log *slog.Logger, src scraper.ListingSource, names []string, summary *models.RunSummary) error {
	attr := src.Attributes()[0]

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		candidates, err := src.Search(ctx, name)
		summary.Pages++
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			summary.FetchErrors++
			r.metrics.FetchError(src.Name())
			log.Warn("Fetch failed", "product", name, "error", err)
			if err := r.wait(ctx); err != nil {
				return err
			}
			continue
		}

		collection := src.Collect(name, candidates)
		for _, skip := range collection.Skips {
			r.metrics.Skip(src.Name(), string(skip.Reason))
			log.Debug("Skipped listing", "product", name, "label", skip.Label, "reason", skip.Reason)
		}
		for range collection.Observations {
			r.metrics.Observation(src.Name())
		}

		value := aggregate.Mean(collection.Values())
		r.write(ctx, log, src.Name(), name, []models.Field{{Attribute: attr, Value: value}}, summary)

		if err := r.wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runRanking(ctx context.Context, log *slog.Logger, src scraper.RankingSource, names []string, summary *models.RunSummary) error {
	attr := src.Attributes()[0]

	index, err := src.BuildIndex(ctx)
	summary.Pages++
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Every product stays NULL from the reset
		summary.FetchErrors++
		r.metrics.FetchError(src.Name())
		log.Error("Failed to build ranking index", "error", err)
		for range names {
			summary.NoData++
			r.metrics.NoData(src.Name())
		}
		return r.wait(ctx)
	}
	log.Info("Ranking index built", "entries", index.Len())
	if err := r.wait(ctx); err != nil {
		return err
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		score, label, ok := index.Lookup(name)
		if !ok {
			summary.MatchMisses++
			r.metrics.MatchMiss(src.Name())
			summary.NoData++
			r.metrics.NoData(src.Name())
			log.Info("No ranking entry", "product", name, "value", models.Absent().String())
			continue
		}
		log.Debug("Ranking entry matched", "product", name, "label", label)
		r.write(ctx, log, src.Name(), name, []models.Field{{Attribute: attr, Value: models.Number(score)}}, summary)
	}
	return nil
}

// specMatch is the closest spec page seen so far for one product
type specMatch struct {
	sheet    *scraper.SpecSheet
	distance int
}

func (r *Runner) runSpecSheet(ctx context.Context, log *slog.Logger, src scraper.SpecSheetSource, names []string, summary *models.RunSummary) error {
	links, err := src.Links(ctx)
	summary.Pages++
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.FetchErrors++
		r.metrics.FetchError(src.Name())
		log.Error("Failed to collect spec links", "error", err)
		for range names {
			summary.NoData++
			r.metrics.NoData(src.Name())
		}
		return r.wait(ctx)
	}
	if err := r.wait(ctx); err != nil {
		return err
	}

	// Several pages can resolve to one product (desktop and mobile variants).
	// The page whose label is closest to the catalog name wins; an exact
	// title always beats a containment match whatever the link order.
	best := make(map[string]specMatch)
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}

		sheet, err := src.Sheet(ctx, link)
		summary.Pages++
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			summary.FetchErrors++
			r.metrics.FetchError(src.Name())
			log.Warn("Fetch failed", "url", link, "error", err)
		} else if name, ok := matcher.Resolve(sheet.Label, names); !ok {
			summary.MatchMisses++
			r.metrics.MatchMiss(src.Name())
			log.Debug("Spec page matched no product", "label", sheet.Label, "url", link)
		} else {
			distance, _ := matcher.Distance(sheet.Label, name)
			if current, seen := best[name]; !seen || distance < current.distance {
				if seen {
					log.Debug("Closer spec page", "product", name, "url", link, "replaces", current.sheet.URL)
				}
				best[name] = specMatch{sheet: sheet, distance: distance}
			}
		}

		if err := r.wait(ctx); err != nil {
			return err
		}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		match, ok := best[name]
		if !ok {
			summary.NoData++
			r.metrics.NoData(src.Name())
			log.Info("Processed product", "product", name, "value", models.Absent().String())
			continue
		}
		r.write(ctx, log, src.Name(), name, match.sheet.Fields, summary)
	}
	return nil
}

// write stores fields for one product and updates the summary
func (r *Runner) write(ctx context.Context, log *slog.Logger, source, name string, fields []models.Field, summary *models.RunSummary) {
	present := 0
	for _, f := range fields {
		if f.Value.Valid {
			present++
		}
	}

	if present == 0 {
		summary.NoData++
		r.metrics.NoData(source)
		log.Info("Processed product", "product", name, "value", models.Absent().String())
		return
	}

	matched, err := r.store.UpsertFields(ctx, name, fields)
	switch {
	case err != nil:
		summary.StoreErrors++
		r.metrics.StoreError(source)
		log.Error("Failed to store value", "product", name, "error", err)
		return
	case !matched:
		summary.MatchMisses++
		r.metrics.MatchMiss(source)
		log.Warn("No catalog row for product", "product", name)
		return
	}

	summary.Updated++
	r.metrics.Update(source)
	for _, f := range fields {
		log.Info("Processed product", "product", name, "attribute", f.Attribute.Name, "value", f.Value.String())
	}
}

func (r *Runner) wait(ctx context.Context) error {
	if r.pacer == nil {
		return nil
	}
	if err := r.pacer.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("pacer: %w", err)
	}
	return nil
}
