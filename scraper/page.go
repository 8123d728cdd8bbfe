package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a rendered document
type Page interface {
	URL() string
	Title() string
	// Text is the visible body text, without script and style contents
	Text() string
	FindAll(selector string) []Element
}

// Element is one node selected from a Page
type Element interface {
	Text() string
	Attr(name string) (string, bool)
	FindAll(selector string) []Element
}

type htmlPage struct {
	url string
	doc *goquery.Document
}

// NewPage parses an HTML snapshot of pageURL
func NewPage(pageURL string, r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &htmlPage{url: pageURL, doc: doc}, nil
}

func (p *htmlPage) URL() string {
	return p.url
}

func (p *htmlPage) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

func (p *htmlPage) Text() string {
	body := p.doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	return body.Text()
}

func (p *htmlPage) FindAll(selector string) []Element {
	return wrap(p.doc.Find(selector))
}

type htmlElement struct {
	sel *goquery.Selection
}

func (e *htmlElement) Text() string {
	return e.sel.Text()
}

func (e *htmlElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *htmlElement) FindAll(selector string) []Element {
	return wrap(e.sel.Find(selector))
}

func wrap(sel *goquery.Selection) []Element {
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &htmlElement{sel: s})
	})
	return elements
}

// firstText returns the trimmed text of the first match of selector under el
func firstText(el Element, selector string) (string, bool) {
	found := el.FindAll(selector)
	if len(found) == 0 {
		return "", false
	}
	return strings.TrimSpace(found[0].Text()), true
}

// resolveLink makes href absolute against the page URL
func resolveLink(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
