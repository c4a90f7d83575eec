package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/studioscout/studioscout/internal/logger"
)

// RobotsAdvisor checks URLs against a site's robots.txt. The policy is
// advisory: a disallow is logged as a warning, never enforced. The parsed
// file is cached for the advisor's lifetime, one advisor per site run.
type RobotsAdvisor struct {
	baseURL   string
	userAgent string
	fetched   bool
	data      *robotstxt.RobotsData
}

// NewRobotsAdvisor creates an advisor for one site.
func NewRobotsAdvisor(baseURL, userAgent string) *RobotsAdvisor {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &RobotsAdvisor{baseURL: baseURL, userAgent: userAgent}
}

// Allowed reports whether robots.txt permits fetching the URL. Any failure
// to obtain or parse robots.txt counts as allowed.
func (a *RobotsAdvisor) Allowed(target string) bool {
	if !a.fetched {
		a.fetched = true
		a.data = a.load()
	}
	if a.data == nil {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	return a.data.TestAgent(u.Path, a.userAgent)
}

// Warn logs an advisory warning when the URL is disallowed.
func (a *RobotsAdvisor) Warn(target string) {
	if !a.Allowed(target) {
		logger.Warn("robots.txt disallows URL, continuing anyway", "url", target)
	}
}

func (a *RobotsAdvisor) load() *robotstxt.RobotsData {
	robotsURL, err := url.JoinPath(a.baseURL, "/robots.txt")
	if err != nil {
		return nil
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(robotsURL)
	if err != nil {
		logger.Warn("could not fetch robots.txt", "url", robotsURL, "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		logger.Warn("could not parse robots.txt", "url", robotsURL,
			"error", fmt.Errorf("parse: %w", err))
		return nil
	}
	return data
}
