package scraper

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gpustats/models"
)

// ListingFilter decides whether a scraped listing refers to the target product.
//
// A listing is rejected if it contains any disqualifying marker. Otherwise every
// critical token of the product name (its lower-cased words minus noise tokens)
// must appear as a substring of the listing. The substring test ignores word
// boundaries, so "3080" also matches inside "30800".
type ListingFilter struct {
	markers []string
	noise   map[string]struct{}
}

// NewListingFilter creates a filter for one source's marker and noise sets
func NewListingFilter(markers, noiseTokens []string) *ListingFilter {
	f := &ListingFilter{
		markers: make([]string, 0, len(markers)),
		noise:   make(map[string]struct{}, len(noiseTokens)),
	}
	for _, m := range markers {
		if m = lower(strings.TrimSpace(m)); m != "" {
			f.markers = append(f.markers, m)
		}
	}
	for _, n := range noiseTokens {
		f.noise[lower(strings.TrimSpace(n))] = struct{}{}
	}
	return f
}

// IsRelevant reports whether listingText passes every rule for productName
func (f *ListingFilter) IsRelevant(listingText, productName string) bool {
	return f.Check(listingText, productName) == ""
}

// Check returns the reason the listing is rejected, or "" when it is relevant
func (f *ListingFilter) Check(listingText, productName string) models.SkipReason {
	text := lower(listingText)

	for _, marker := range f.markers {
		if strings.Contains(text, marker) {
			return models.SkipMarker
		}
	}

	// Zero critical tokens passes vacuously.
	for _, token := range f.CriticalTokens(productName) {
		if !strings.Contains(text, token) {
			return models.SkipTokens
		}
	}
	return ""
}

// CriticalTokens returns the lower-cased words of productName that gate inclusion
func (f *ListingFilter) CriticalTokens(productName string) []string {
	words := strings.Fields(lower(productName))
	tokens := words[:0]
	for _, w := range words {
		if _, isNoise := f.noise[w]; !isNoise {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
