// Package scrapertest serves canned HTML through the scraper.Fetcher interface.
package scrapertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gpustats/scraper"
)

// Fetcher renders pages from an in-memory map of URL to HTML
type Fetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	requests []string
	closed   bool
}

// NewFetcher creates a fetcher serving pages
func NewFetcher(pages map[string]string) *Fetcher {
	if pages == nil {
		pages = make(map[string]string)
	}
	return &Fetcher{pages: pages, errs: make(map[string]error)}
}

// Set serves html at url
func (f *Fetcher) Set(url, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = html
}

// Fail makes every render of url return err
func (f *Fetcher) Fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

// Render returns the canned page. Unknown URLs and a missing wait selector fail with scraper.ErrFetch.
func (f *Fetcher) Render(ctx context.Context, url string, opts scraper.RenderOptions) (scraper.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.requests = append(f.requests, url)
	html, ok := f.pages[url]
	err := f.errs[url]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no page for %s", scraper.ErrFetch, url)
	}

	page, err := scraper.NewPage(url, strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	if opts.WaitSelector != "" && len(page.FindAll(opts.WaitSelector)) == 0 {
		return nil, fmt.Errorf("%w: %q not present on %s", scraper.ErrFetch, opts.WaitSelector, url)
	}
	return page, nil
}

// Requests returns the rendered URLs in order
func (f *Fetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called
func (f *Fetcher) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
