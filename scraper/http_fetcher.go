package scraper

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPFetcher fetches server-rendered pages without a browser
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	detector  *BotDetector
}

// NewHTTPFetcher creates a fetcher using client, or http.DefaultClient when nil
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
		detector:  NewBotDetector(),
	}
}

// Render downloads url and checks that opts.WaitSelector is present in the document
func (f *HTTPFetcher) Render(ctx context.Context, url string, opts RenderOptions) (Page, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	page, err := NewPage(url, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if err := f.detector.check(page); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrFetch, url, resp.StatusCode)
	}
	if opts.WaitSelector != "" && len(page.FindAll(opts.WaitSelector)) == 0 {
		return nil, fmt.Errorf("%w: %q not present on %s", ErrFetch, opts.WaitSelector, url)
	}
	return page, nil
}

// Close is a no-op; the HTTP client holds no session
func (f *HTTPFetcher) Close() error {
	return nil
}
