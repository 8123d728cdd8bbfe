package scraper

import (
	"context"

	"gpustats/matcher"
	"gpustats/models"
)

// Source is one configured external data source
type Source interface {
	Name() string
	// Attributes are the catalog columns the source writes
	Attributes() []models.Attribute
}

// ListingSource searches a marketplace once per catalog product
type ListingSource interface {
	Source
	// Search returns raw candidates in page order
	Search(ctx context.Context, product string) ([]models.RawCandidate, error)
	// Collect screens candidates and parses values until the source cap is reached
	Collect(product string, candidates []models.RawCandidate) Collection
}

// RankingSource builds a score index from one reference page per run
type RankingSource interface {
	Source
	BuildIndex(ctx context.Context) (*matcher.Index, error)
}

// SpecSheetSource walks per-product spec pages linked from an index page
type SpecSheetSource interface {
	Source
	Links(ctx context.Context) ([]string, error)
	Sheet(ctx context.Context, link string) (*SpecSheet, error)
}

// SpecSheet is the extracted content of one spec page
type SpecSheet struct {
	URL    string
	Title  string
	Label  string // cleaned title used for catalog matching
	Fields []models.Field
}

// Collection is the per-candidate outcome of one product's matching pass
type Collection struct {
	Observations []models.Observation
	Skips        []models.Skip
}

// Values returns the observation values in page order
func (c Collection) Values() []float64 {
	values := make([]float64, len(c.Observations))
	for i, o := range c.Observations {
		values[i] = o.Value
	}
	return values
}

// CollectOptions parameterizes Collect per source
type CollectOptions struct {
	Filter *ListingFilter
	// Cap stops collection once this many observations exist; <= 0 means unbounded.
	Cap int
	// MatchLabel screens the candidate label instead of its full text.
	MatchLabel bool
}

// Collect runs candidates through the listing filter and the value parser in
// page order. A missing title or price skips that candidate only.
func Collect(product string, candidates []models.RawCandidate, opts CollectOptions) Collection {
	var c Collection

	for i, cand := range candidates {
		if opts.Cap > 0 && len(c.Observations) >= opts.Cap {
			break
		}

		skip := func(reason models.SkipReason) {
			c.Skips = append(c.Skips, models.Skip{Index: i, Label: cand.Label, Reason: reason})
		}

		text := cand.Text
		if opts.MatchLabel {
			if cand.Label == "" {
				skip(models.SkipNoLabel)
				continue
			}
			text = cand.Label
		}

		if opts.Filter != nil {
			if reason := opts.Filter.Check(text, product); reason != "" {
				skip(reason)
				continue
			}
		}

		if !cand.HasValue {
			skip(models.SkipNoValue)
			continue
		}

		value, ok := ParseCurrency(cand.ValueText)
		if !ok {
			skip(models.SkipUnparsable)
			continue
		}

		c.Observations = append(c.Observations, models.Observation{Label: cand.Label, Value: value})
	}
	return c
}
