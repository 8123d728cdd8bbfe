package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gpustats/config"
	"gpustats/matcher"
	"gpustats/models"
)

// RankingAdapter reads a relative performance chart from one reference page
type RankingAdapter struct {
	cfg     config.SourceConfig
	fetcher Fetcher
	timeout time.Duration
}

// NewRankingAdapter creates a ranking source from its configuration
func NewRankingAdapter(cfg config.SourceConfig, fetcher Fetcher, timeout time.Duration) *RankingAdapter {
	return &RankingAdapter{cfg: cfg, fetcher: fetcher, timeout: timeout}
}

func (a *RankingAdapter) Name() string {
	return a.cfg.Name
}

func (a *RankingAdapter) Attributes() []models.Attribute {
	return a.cfg.Attributes()
}

// BuildIndex renders the reference page and maps every chart label to its score.
// Entries without a title or a parsable number are skipped.
func (a *RankingAdapter) BuildIndex(ctx context.Context) (*matcher.Index, error) {
	page, err := a.fetcher.Render(ctx, a.cfg.URL, RenderOptions{
		WaitSelector: a.cfg.WaitSelector,
		Timeout:      a.timeout,
		Scroll:       a.cfg.Scroll,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s reference page: %w", a.cfg.Name, err)
	}

	index := matcher.NewIndex()
	for _, entry := range page.FindAll(a.cfg.ItemSelector) {
		label, ok := firstText(entry, a.cfg.LabelSelector)
		if !ok || label == "" {
			continue
		}
		number, ok := firstText(entry, a.cfg.ValueSelector)
		if !ok {
			continue
		}
		score, ok := ParsePercent(strings.TrimSpace(number))
		if !ok {
			continue
		}
		index.Add(label, score)
	}

	if index.Len() == 0 {
		return nil, fmt.Errorf("%w on %s", ErrNoEntries, a.cfg.URL)
	}
	return index, nil
}
