package scraper

import (
	"fmt"
	"time"

	"gpustats/config"
)

// NewSource builds the adapter for cfg.Kind on top of fetcher
func NewSource(cfg config.SourceConfig, fetcher Fetcher, timeout time.Duration) (Source, error) {
	switch cfg.Kind {
	case config.KindListing:
		return NewListingAdapter(cfg, fetcher, timeout), nil
	case config.KindRanking:
		return NewRankingAdapter(cfg, fetcher, timeout), nil
	case config.KindSpecSheet:
		return NewSpecSheetAdapter(cfg, fetcher, timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q for %s", config.ErrInvalidSource, cfg.Kind, cfg.Name)
	}
}
