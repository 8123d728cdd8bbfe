package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// systemChromium is where the container image installs the browser
const systemChromium = "/usr/bin/chromium-browser"

// BrowserOptions configures the headless browser
type BrowserOptions struct {
	Bin       string
	Headless  bool
	NoSandbox bool
	UserAgent string
}

// BrowserFetcher renders pages in one headless Chromium session for the whole run
type BrowserFetcher struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	detector  *BotDetector
	userAgent string
	logger    *slog.Logger
}

// NewBrowserFetcher launches the browser and connects to it
func NewBrowserFetcher(opts BrowserOptions, logger *slog.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Leakless(false)

	switch {
	case opts.Bin != "":
		l = l.Bin(opts.Bin)
	default:
		// Use system Chromium in Docker, auto-detect locally
		if _, err := os.Stat(systemChromium); err == nil {
			l = l.Bin(systemChromium)
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	logger.Info("browser connected", "control_url", controlURL)

	return &BrowserFetcher{
		launcher:  l,
		browser:   browser,
		detector:  NewBotDetector(),
		userAgent: opts.UserAgent,
		logger:    logger,
	}, nil
}

// Render opens url in a fresh tab, waits for opts.WaitSelector and snapshots the DOM
func (f *BrowserFetcher) Render(ctx context.Context, url string, opts RenderOptions) (Page, error) {
	tab, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open tab: %v", ErrFetch, err)
	}
	defer func() { _ = tab.Close() }()

	if f.userAgent != "" {
		if err := tab.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return nil, fmt.Errorf("%w: failed to set user agent: %v", ErrFetch, err)
		}
	}

	p := tab.Context(ctx)
	if opts.Timeout > 0 {
		p = p.Timeout(opts.Timeout)
	}

	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: navigate %s: %v", ErrFetch, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrFetch, url, err)
	}

	if opts.Scroll {
		if err := scrollThrough(ctx, p); err != nil {
			f.logger.Warn("scrolling failed", "url", url, "error", err)
		}
	}

	if opts.WaitSelector != "" {
		if _, err := p.Element(opts.WaitSelector); err != nil {
			html, _ := p.HTML()
			if page, perr := NewPage(url, strings.NewReader(html)); perr == nil {
				if blocked := f.detector.check(page); blocked != nil {
					return nil, blocked
				}
			}
			return nil, fmt.Errorf("%w: waiting for %q on %s: %v", ErrFetch, opts.WaitSelector, url, err)
		}
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: read DOM of %s: %v", ErrFetch, url, err)
	}

	page, err := NewPage(url, strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if err := f.detector.check(page); err != nil {
		return nil, err
	}
	return page, nil
}

// scrollThrough scrolls in steps so lazy sections render, then settles at the bottom
func scrollThrough(ctx context.Context, p *rod.Page) error {
	res, err := p.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return err
	}
	height := res.Value.Int()

	for y := 0; y < height; y += 500 {
		if _, err := p.Eval(`(y) => window.scrollTo(0, y)`, y); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	if _, err := p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return err
	}
	return p.WaitStable(time.Second)
}

// Close closes the browser and stops the launched process
func (f *BrowserFetcher) Close() error {
	err := f.browser.Close()
	f.launcher.Kill()
	return err
}
