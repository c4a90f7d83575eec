// Package fetch resolves URLs to parsed document trees, applying rate
// limiting, retry with back-off, an advisory robots.txt check, and optional
// scripted browser rendering.
package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched, parsed document.
type Page struct {
	URL        string
	HTML       string
	Doc        *goquery.Document
	StatusCode int
	FetchedAt  time.Time
}

// Options control a single fetch.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string        // content-ready selector (scripted rendering only)
	SettleDelay     time.Duration // extra wait after load for deferred rendering
	Headers         map[string]string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 studioscout/1.0"

// DefaultOptions returns sensible fetch defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Fetcher abstracts page-fetching strategies. The rest of the pipeline does
// not care whether a page came from a plain HTTP client or a scripted
// browser, only that it receives a queryable document tree.
type Fetcher interface {
	// Fetch retrieves and parses page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (*Page, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns "static" or "dynamic".
	Type() string
}

// NewPageFromHTML builds a Page with a parsed goquery document from raw HTML.
func NewPageFromHTML(url, html string, status int) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Page{
		URL:        url,
		HTML:       html,
		Doc:        doc,
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}
