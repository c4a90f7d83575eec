package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// StaticFetcher fetches plain HTML over HTTP using Colly.
type StaticFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewStaticFetcher creates a new static fetcher.
func NewStaticFetcher(userAgent string, timeout time.Duration) *StaticFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout == 0 {
		timeout = DefaultOptions().Timeout
	}
	return &StaticFetcher{userAgent: userAgent, timeout: timeout}
}

// Fetch retrieves and parses page content.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (*Page, error) {
	c := colly.NewCollector(
		colly.UserAgent(coalesce(opts.UserAgent, f.userAgent)),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.timeout
	}
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		for k, v := range opts.Headers {
			r.Headers.Set(k, v)
		}
		if err := ctx.Err(); err != nil {
			r.Abort()
		}
	})

	var (
		html     string
		status   int
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		html = string(r.Body)
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", targetURL, fetchErr)
	}

	page, err := NewPageFromHTML(targetURL, html, status)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", targetURL, err)
	}
	return page, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
