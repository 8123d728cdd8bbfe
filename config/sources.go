package config

import (
	"fmt"
	"strings"

	"gpustats/models"
)

// Source kinds
const (
	KindListing   = "listing"
	KindRanking   = "ranking"
	KindSpecSheet = "specsheet"
)

// Page fetcher backends
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// SourceConfig describes one external data source. Which fields apply depends on Kind.
type SourceConfig struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Kind    string `mapstructure:"kind" yaml:"kind"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Fetcher string `mapstructure:"fetcher" yaml:"fetcher"`

	// Attribute is the destination column for listing and ranking sources.
	Attribute string `mapstructure:"attribute" yaml:"attribute,omitempty"`

	// URL is a search template containing {query} for listing sources, the
	// reference page for ranking sources and the index page for spec sheets.
	URL   string `mapstructure:"url" yaml:"url"`
	Query string `mapstructure:"query" yaml:"query,omitempty"`

	ItemSelector  string `mapstructure:"item_selector" yaml:"item_selector"`
	LabelSelector string `mapstructure:"label_selector" yaml:"label_selector,omitempty"`
	ValueSelector string `mapstructure:"value_selector" yaml:"value_selector,omitempty"`
	ValueAttr     string `mapstructure:"value_attr" yaml:"value_attr,omitempty"`
	LinkSelector  string `mapstructure:"link_selector" yaml:"link_selector,omitempty"`
	WaitSelector  string `mapstructure:"wait_selector" yaml:"wait_selector,omitempty"`
	Scroll        bool   `mapstructure:"scroll" yaml:"scroll,omitempty"`

	// MatchOn selects what the listing filter screens: "text" or "label".
	MatchOn     string   `mapstructure:"match_on" yaml:"match_on,omitempty"`
	Cap         int      `mapstructure:"cap" yaml:"cap,omitempty"`
	Markers     []string `mapstructure:"markers" yaml:"markers,omitempty"`
	NoiseTokens []string `mapstructure:"noise_tokens" yaml:"noise_tokens,omitempty"`

	// Fields maps spec sheet labels to text attributes.
	Fields []FieldConfig `mapstructure:"fields" yaml:"fields,omitempty"`
}

// FieldConfig maps one labelled spec sheet entry to a text column
type FieldConfig struct {
	Label     string `mapstructure:"label" yaml:"label"`
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
}

// Attributes returns the columns this source writes
func (s SourceConfig) Attributes() []models.Attribute {
	switch s.Kind {
	case KindSpecSheet:
		attrs := make([]models.Attribute, 0, len(s.Fields))
		for _, f := range s.Fields {
			attrs = append(attrs, models.TextAttribute(f.Attribute))
		}
		return attrs
	default:
		return []models.Attribute{models.NumberAttribute(s.Attribute)}
	}
}

// Validate checks the fields required by the source kind
func (s SourceConfig) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSource)
	}
	if s.Fetcher != FetcherBrowser && s.Fetcher != FetcherHTTP {
		return fmt.Errorf("%w: %s: fetcher must be %q or %q", ErrInvalidSource, s.Name, FetcherBrowser, FetcherHTTP)
	}
	if s.URL == "" || s.ItemSelector == "" {
		return fmt.Errorf("%w: %s: url and item_selector are required", ErrInvalidSource, s.Name)
	}

	switch s.Kind {
	case KindListing:
		if !strings.Contains(s.URL, "{query}") {
			return fmt.Errorf("%w: %s: listing url must contain {query}", ErrInvalidSource, s.Name)
		}
		if s.ValueSelector == "" {
			return fmt.Errorf("%w: %s: value_selector is required", ErrInvalidSource, s.Name)
		}
		if s.MatchOn != "" && s.MatchOn != "text" && s.MatchOn != "label" {
			return fmt.Errorf("%w: %s: match_on must be text or label", ErrInvalidSource, s.Name)
		}
		if s.MatchOn == "label" && s.LabelSelector == "" {
			return fmt.Errorf("%w: %s: match_on label needs label_selector", ErrInvalidSource, s.Name)
		}
	case KindRanking:
		if s.LabelSelector == "" || s.ValueSelector == "" {
			return fmt.Errorf("%w: %s: label_selector and value_selector are required", ErrInvalidSource, s.Name)
		}
	case KindSpecSheet:
		if s.LinkSelector == "" || len(s.Fields) == 0 {
			return fmt.Errorf("%w: %s: link_selector and fields are required", ErrInvalidSource, s.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidSource, s.Name, s.Kind)
	}

	for _, attr := range s.Attributes() {
		if err := attr.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSource, s.Name, err)
		}
	}
	return nil
}

// DefaultSources returns the built-in source set
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:          "amazon",
			Kind:          KindListing,
			Enabled:       true,
			Fetcher:       FetcherBrowser,
			Attribute:     "amazon_new_avg",
			URL:           "https://www.amazon.com/s?k={query}",
			Query:         "{name} graphics card",
			ItemSelector:  "div.s-result-item[data-component-type='s-search-result']",
			LabelSelector: "h2",
			ValueSelector: ".a-price .a-offscreen",
			WaitSelector:  "div.s-result-item[data-component-type='s-search-result']",
			MatchOn:       "text",
			Cap:           5,
			Markers:       []string{"renewed", "refurbished", "sponsored"},
			NoiseTokens:   []string{"geforce", "radeon", "nvidia", "amd"},
		},
		{
			Name:          "ebay",
			Kind:          KindListing,
			Enabled:       true,
			Fetcher:       FetcherBrowser,
			Attribute:     "ebay_used_avg",
			URL:           "https://www.ebay.com/sch/i.html?_nkw={query}&_sacat=0&_from=R40&LH_BIN=1&LH_Sold=1&LH_Complete=1&LH_ItemCondition=3000",
			Query:         "{name}",
			ItemSelector:  "li.s-card, li.s-item",
			LabelSelector: ".s-card__title, .s-item__title",
			ValueSelector: ".s-card__price, .s-item__price",
			WaitSelector:  "li.s-card, li.s-item",
			MatchOn:       "label",
			Cap:           10,
			Markers:       []string{"parts only", "broken", "box only"},
			NoiseTokens:   []string{"geforce", "radeon", "nvidia", "amd", "intel", "arc", "rtx", "gtx"},
		},
		{
			Name:          "relative_performance",
			Kind:          KindRanking,
			Enabled:       true,
			Fetcher:       FetcherBrowser,
			Attribute:     "rel_performance",
			URL:           "https://www.techpowerup.com/gpu-specs/geforce-rtx-4060-mobile.c3946",
			ItemSelector:  ".gpudb-relative-performance-entry",
			LabelSelector: ".gpudb-relative-performance-entry__title",
			ValueSelector: ".gpudb-relative-performance-entry__number",
			WaitSelector:  ".gpudb-relative-performance-entry",
			Scroll:        true,
		},
		{
			Name:          "specs",
			Kind:          KindSpecSheet,
			Enabled:       false,
			Fetcher:       FetcherBrowser,
			URL:           "https://www.techpowerup.com/gpu-specs/",
			LinkSelector:  "table.processors td:first-child a",
			ItemSelector:  "dl",
			LabelSelector: "dt",
			ValueSelector: "dd",
			WaitSelector:  "table.processors",
			Fields: []FieldConfig{
				{Label: "TDP", Attribute: "tdp"},
				{Label: "Base Clock", Attribute: "base_clock"},
				{Label: "Driver Support", Attribute: "driver_support"},
				{Label: "Launch Price", Attribute: "launch_prices"},
			},
		},
	}
}
