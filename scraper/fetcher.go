package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gpustats/config"
)

// RenderOptions bounds how long a render may wait for dynamic content
type RenderOptions struct {
	// WaitSelector, when set, must match before the page is returned.
	WaitSelector string
	// Timeout bounds navigation plus the wait for WaitSelector.
	Timeout time.Duration
	// Scroll scrolls through the page to trigger lazy-loaded sections.
	Scroll bool
}

// Fetcher renders pages. Implementations own their session and release it on Close.
type Fetcher interface {
	Render(ctx context.Context, url string, opts RenderOptions) (Page, error)
	Close() error
}

// OpenFetcher creates the fetcher for kind ("browser" or "http")
func OpenFetcher(kind string, browser BrowserOptions, timeout time.Duration, logger *slog.Logger) (Fetcher, error) {
	switch kind {
	case config.FetcherBrowser, "":
		return NewBrowserFetcher(browser, logger)
	case config.FetcherHTTP:
		return NewHTTPFetcher(&http.Client{Timeout: timeout}, browser.UserAgent), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q", kind)
	}
}
