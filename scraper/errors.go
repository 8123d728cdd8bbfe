package scraper

import "errors"

var (
	// ErrFetch is returned when a page could not be rendered or did not contain
	// the content the source waits for.
	ErrFetch = errors.New("fetch failed")

	// ErrBlocked is returned when the rendered page is a bot wall or CAPTCHA.
	ErrBlocked = errors.New("blocked by bot wall")

	// ErrNoEntries is returned when a reference page yields no usable entries.
	ErrNoEntries = errors.New("no entries found")
)
