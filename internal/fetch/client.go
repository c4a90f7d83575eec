package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/studioscout/studioscout/internal/logger"
)

// maxAttempts bounds transient-failure retries per page.
const maxAttempts = 3

// jitterBound is the upper bound of the random delay added on top of a
// site's minimum inter-request delay.
const jitterBound = 500 * time.Millisecond

// ErrUnavailable is returned when all fetch attempts for a page were
// exhausted. Callers treat it as "no content for this page", not as a
// fatal run error.
var ErrUnavailable = errors.New("page unavailable")

// Client wraps a Fetcher with the per-site politeness machinery: advisory
// robots check, rate limiting with jitter, and retry with exponential
// back-off. One Client is created per site run and closed with it.
type Client struct {
	fetcher Fetcher
	limiter *Limiter
	robots  *RobotsAdvisor
	opts    Options
}

// ClientConfig configures a per-site fetch client.
type ClientConfig struct {
	BaseURL         string
	RateLimit       time.Duration
	UserAgent       string
	Timeout         time.Duration
	ScriptedRender  bool
	WaitForSelector string
	SettleDelay     time.Duration
}

// NewClient builds a client for one site, choosing static or scripted
// fetching from the rendering flag.
func NewClient(cfg ClientConfig) (*Client, error) {
	opts := DefaultOptions()
	if cfg.UserAgent != "" {
		opts.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout != 0 {
		opts.Timeout = cfg.Timeout
	}
	opts.WaitForSelector = cfg.WaitForSelector
	opts.SettleDelay = cfg.SettleDelay

	var (
		fetcher Fetcher
		err     error
	)
	if cfg.ScriptedRender {
		fetcher, err = NewDynamicFetcher(opts.UserAgent, opts.Timeout)
		if err != nil {
			return nil, err
		}
	} else {
		fetcher = NewStaticFetcher(opts.UserAgent, opts.Timeout)
	}

	rateLimit := cfg.RateLimit
	if rateLimit == 0 {
		rateLimit = time.Second
	}

	// No base URL means no site to ask; skipping the advisor avoids a
	// doomed lookup for a relative "/robots.txt".
	var robots *RobotsAdvisor
	if cfg.BaseURL != "" {
		robots = NewRobotsAdvisor(cfg.BaseURL, opts.UserAgent)
	}

	return &Client{
		fetcher: fetcher,
		limiter: NewLimiter(rateLimit, jitterBound),
		robots:  robots,
		opts:    opts,
	}, nil
}

// NewClientWith builds a client around an existing Fetcher. Used by tests
// and by callers that manage the fetcher lifecycle themselves.
func NewClientWith(fetcher Fetcher, limiter *Limiter, robots *RobotsAdvisor, opts Options) *Client {
	if limiter == nil {
		limiter = NewLimiter(time.Second, jitterBound)
	}
	return &Client{fetcher: fetcher, limiter: limiter, robots: robots, opts: opts}
}

// Fetch resolves a URL to a parsed page. Transient failures are retried up
// to maxAttempts with 2^attempt seconds of back-off; exhaustion returns an
// error wrapping ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	if c.robots != nil {
		c.robots.Warn(url)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	defer c.limiter.Done()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			logger.Warn("fetch attempt failed, backing off",
				"url", url, "attempt", attempt, "backoff", backoff, "error", lastErr)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		page, err := c.fetcher.Fetch(ctx, url, c.opts)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	logger.Error("fetch failed after all attempts", "url", url, "attempts", maxAttempts, "error", lastErr)
	return nil, errors.Join(ErrUnavailable, lastErr)
}

// Type reports the underlying fetcher type.
func (c *Client) Type() string {
	return c.fetcher.Type()
}

// Close releases the underlying fetcher's resources.
func (c *Client) Close() error {
	return c.fetcher.Close()
}
