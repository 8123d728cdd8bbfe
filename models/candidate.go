package models

// RawCandidate is one scraped listing before relevance filtering
type RawCandidate struct {
	Text      string // full display text of the listing
	Label     string // extracted title, empty when the element was missing
	ValueText string // raw price or attribute text
	HasValue  bool   // false when the value element was missing
}

// Observation is a candidate that passed the listing filter and whose value parsed
type Observation struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SkipReason classifies why a candidate did not become an observation
type SkipReason string

const (
	SkipMarker     SkipReason = "marker"
	SkipTokens     SkipReason = "tokens"
	SkipNoLabel    SkipReason = "no_label"
	SkipNoValue    SkipReason = "no_value"
	SkipUnparsable SkipReason = "unparsable"
)

// Skip records a rejected candidate and its position in page order
type Skip struct {
	Index  int        `json:"index"`
	Label  string     `json:"label"`
	Reason SkipReason `json:"reason"`
}
