package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// ParseNumber strips every character that is not a digit or a decimal point
// and parses what remains. Empty or malformed remainders (e.g. "1.2.3") are
// reported as absent rather than guessed at.
func ParseNumber(text string) (float64, bool) {
	clean := nonNumeric.ReplaceAllString(text, "")
	if clean == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseCurrency converts a price string such as "$1,299.99" to 1299.99
func ParseCurrency(text string) (float64, bool) {
	return ParseNumber(text)
}

// ParsePercent converts "82%" to 82
func ParsePercent(text string) (float64, bool) {
	return ParseNumber(text)
}

var absentSpecs = map[string]bool{
	"":        true,
	"n/a":     true,
	"na":      true,
	"unknown": true,
	"-":       true,
	"—":       true,
}

// NormalizeSpec trims and collapses whitespace in a textual spec value.
// Placeholders such as "N/A" are treated as absent.
func NormalizeSpec(text string) (string, bool) {
	normalized := strings.Join(strings.Fields(text), " ")
	if absentSpecs[strings.ToLower(normalized)] {
		return "", false
	}
	return normalized, true
}

var vendorPrefixes = []string{"NVIDIA ", "AMD ", "Intel ", "ATI "}

// CleanTitle turns a spec page title like "NVIDIA GeForce RTX 4090 Specs | TechPowerUp GPU Database"
// into the catalog form "GeForce RTX 4090". Only the first matching vendor prefix is removed.
func CleanTitle(title string) string {
	name, _, _ := strings.Cut(title, "|")
	name = strings.TrimSpace(name)
	name = strings.TrimSpace(strings.TrimSuffix(name, " Specs"))

	for _, vendor := range vendorPrefixes {
		if strings.HasPrefix(name, vendor) {
			name = strings.TrimPrefix(name, vendor)
			break
		}
	}
	return strings.TrimSpace(name)
}
