package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gpustats/config"
	"gpustats/models"
)

// ListingAdapter searches a marketplace results page for a product
type ListingAdapter struct {
	cfg     config.SourceConfig
	fetcher Fetcher
	filter  *ListingFilter
	timeout time.Duration
}

// NewListingAdapter creates a listing source from its configuration
func NewListingAdapter(cfg config.SourceConfig, fetcher Fetcher, timeout time.Duration) *ListingAdapter {
	return &ListingAdapter{
		cfg:     cfg,
		fetcher: fetcher,
		filter:  NewListingFilter(cfg.Markers, cfg.NoiseTokens),
		timeout: timeout,
	}
}

func (a *ListingAdapter) Name() string {
	return a.cfg.Name
}

func (a *ListingAdapter) Attributes() []models.Attribute {
	return a.cfg.Attributes()
}

// SearchURL builds the results URL for product
func (a *ListingAdapter) SearchURL(product string) string {
	query := a.cfg.Query
	if query == "" {
		query = "{name}"
	}
	query = strings.ReplaceAll(query, "{name}", product)
	return strings.ReplaceAll(a.cfg.URL, "{query}", url.QueryEscape(query))
}

// Search renders the results page and extracts one raw candidate per result item
func (a *ListingAdapter) Search(ctx context.Context, product string) ([]models.RawCandidate, error) {
	page, err := a.fetcher.Render(ctx, a.SearchURL(product), RenderOptions{
		WaitSelector: a.cfg.WaitSelector,
		Timeout:      a.timeout,
		Scroll:       a.cfg.Scroll,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s for %q: %w", a.cfg.Name, product, err)
	}

	items := page.FindAll(a.cfg.ItemSelector)
	candidates := make([]models.RawCandidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, a.candidate(item))
	}
	return candidates, nil
}

func (a *ListingAdapter) candidate(item Element) models.RawCandidate {
	c := models.RawCandidate{Text: item.Text()}

	if a.cfg.LabelSelector != "" {
		c.Label, _ = firstText(item, a.cfg.LabelSelector)
	}

	values := item.FindAll(a.cfg.ValueSelector)
	if len(values) == 0 {
		return c
	}
	if a.cfg.ValueAttr != "" {
		c.ValueText, c.HasValue = values[0].Attr(a.cfg.ValueAttr)
		return c
	}
	c.ValueText, c.HasValue = strings.TrimSpace(values[0].Text()), true
	return c
}

// Collect applies this source's filter and cap
func (a *ListingAdapter) Collect(product string, candidates []models.RawCandidate) Collection {
	return Collect(product, candidates, CollectOptions{
		Filter:     a.filter,
		Cap:        a.cfg.Cap,
		MatchLabel: a.cfg.MatchOn == "label",
	})
}
