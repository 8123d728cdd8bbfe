package scraper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gpustats/config"
	"gpustats/models"
)

// SpecSheetAdapter collects spec page links from a database index and reads
// labelled spec entries (dt/dd pairs) from each page
type SpecSheetAdapter struct {
	cfg     config.SourceConfig
	fetcher Fetcher
	timeout time.Duration
}

// NewSpecSheetAdapter creates a spec sheet source from its configuration
func NewSpecSheetAdapter(cfg config.SourceConfig, fetcher Fetcher, timeout time.Duration) *SpecSheetAdapter {
	return &SpecSheetAdapter{cfg: cfg, fetcher: fetcher, timeout: timeout}
}

func (a *SpecSheetAdapter) Name() string {
	return a.cfg.Name
}

func (a *SpecSheetAdapter) Attributes() []models.Attribute {
	return a.cfg.Attributes()
}

// Links returns the unique absolute spec page URLs in sorted order
func (a *SpecSheetAdapter) Links(ctx context.Context) ([]string, error) {
	page, err := a.fetcher.Render(ctx, a.cfg.URL, RenderOptions{
		WaitSelector: a.cfg.WaitSelector,
		Timeout:      a.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s index: %w", a.cfg.Name, err)
	}

	seen := make(map[string]bool)
	var links []string
	for _, anchor := range page.FindAll(a.cfg.LinkSelector) {
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			continue
		}
		link, err := resolveLink(page.URL(), href)
		if err != nil || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	sort.Strings(links)

	if len(links) == 0 {
		return nil, fmt.Errorf("%w: no spec links on %s", ErrNoEntries, a.cfg.URL)
	}
	return links, nil
}

// Sheet renders one spec page. Fields that are missing or placeholders come back absent.
func (a *SpecSheetAdapter) Sheet(ctx context.Context, link string) (*SpecSheet, error) {
	page, err := a.fetcher.Render(ctx, link, RenderOptions{
		WaitSelector: a.cfg.ItemSelector,
		Timeout:      a.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("render spec page: %w", err)
	}

	entries := make(map[string]string)
	var order []string
	for _, item := range page.FindAll(a.cfg.ItemSelector) {
		label, ok := firstText(item, a.cfg.LabelSelector)
		if !ok || label == "" {
			continue
		}
		value, ok := firstText(item, a.cfg.ValueSelector)
		if !ok {
			continue
		}
		if _, dup := entries[label]; !dup {
			entries[label] = value
			order = append(order, label)
		}
	}

	sheet := &SpecSheet{
		URL:   link,
		Title: page.Title(),
		Label: CleanTitle(page.Title()),
	}
	for _, field := range a.cfg.Fields {
		value := models.Absent()
		for _, label := range order {
			if strings.Contains(label, field.Label) {
				if text, ok := NormalizeSpec(entries[label]); ok {
					value = models.Text(text)
				}
				break
			}
		}
		sheet.Fields = append(sheet.Fields, models.Field{
			Attribute: models.TextAttribute(field.Attribute),
			Value:     value,
		})
	}
	return sheet, nil
}
