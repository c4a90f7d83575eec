package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/studioscout/studioscout/internal/logger"
)

// selectorWaitTimeout bounds how long the dynamic fetcher waits for the
// content-ready selector before falling back to whatever has rendered.
const selectorWaitTimeout = 15 * time.Second

// DynamicFetcher renders JavaScript-driven pages with a headless browser.
// The browser allocator lives for the fetcher's lifetime; one fetcher is
// created per site run and torn down when the run completes.
type DynamicFetcher struct {
	userAgent string
	timeout   time.Duration
	allocCtx  context.Context
	cancel    context.CancelFunc
}

// NewDynamicFetcher creates a dynamic fetcher with a browser allocator.
func NewDynamicFetcher(userAgent string, timeout time.Duration) (*DynamicFetcher, error) {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout == 0 {
		timeout = DefaultOptions().Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &DynamicFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		allocCtx:  allocCtx,
		cancel:    cancel,
	}, nil
}

// Fetch navigates to the URL, waits for the content-ready selector (or the
// document body), allows a settle delay for deferred rendering, and returns
// the rendered DOM. A selector that never appears is a soft warning: the
// best-effort document is returned anyway.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (*Page, error) {
	logger.Debug("dynamic fetch starting", "url", targetURL)

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx)
	defer cancelBrowser()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	if err := chromedp.Run(timeoutCtx, chromedp.Navigate(targetURL)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", targetURL, err)
	}

	waitSelector := opts.WaitForSelector
	if waitSelector == "" {
		waitSelector = "body"
	}
	waitCtx, cancelWait := context.WithTimeout(timeoutCtx, selectorWaitTimeout)
	err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitSelector))
	cancelWait()
	if err != nil {
		// Content-ready selector never showed up; take what rendered.
		logger.Warn("wait for selector timed out, using rendered DOM as-is",
			"url", targetURL, "selector", waitSelector)
	}

	if opts.SettleDelay > 0 {
		if err := chromedp.Run(timeoutCtx, chromedp.Sleep(opts.SettleDelay)); err != nil {
			return nil, fmt.Errorf("settle wait %s: %w", targetURL, err)
		}
	}

	var html string
	if err := chromedp.Run(timeoutCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("read DOM %s: %w", targetURL, err)
	}

	// chromedp does not surface HTTP status codes without extra listeners.
	page, err := NewPageFromHTML(targetURL, html, 200)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", targetURL, err)
	}
	logger.Debug("dynamic fetch complete", "url", targetURL, "html_size", len(html))
	return page, nil
}

// Close tears down the browser allocator.
func (f *DynamicFetcher) Close() error {
	if f.cancel != nil {
		f.cancel()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
