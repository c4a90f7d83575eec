package tools

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/studioscout/studioscout/internal/fetch"
	"github.com/studioscout/studioscout/internal/logger"
)

// PageFetcher is the slice of the fetch client the enrich pass needs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// EnrichOptions control one enrich pass.
type EnrichOptions struct {
	// DirectoryHost marks websites that are really directory profile pages
	// rather than a firm's own site. Those rows get the profile visited to
	// resolve the real homepage.
	DirectoryHost string
	// Delay is the courtesy pause between row visits.
	Delay time.Duration
}

var enrichEmailRe = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9._%+-]*@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// EnrichFile revisits the web to fill gaps in a previously exported CSV:
// rows missing an email get their website fetched and mined for one, and
// rows whose website points back into the directory get the profile page
// visited to resolve the firm's real homepage. The file is rewritten in
// place. Returns the number of fields filled.
func EnrichFile(ctx context.Context, path string, pages PageFetcher, opts EnrichOptions) (int, error) {
	t, err := loadTable(path)
	if err != nil {
		return 0, err
	}
	if !t.hasColumn("email") && !t.hasColumn("website") {
		return 0, nil
	}

	updated := 0
	for i, row := range t.rows {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		name := t.get(row, "name")
		email := t.get(row, "email")
		website := t.get(row, "website")

		needEmail := email == ""
		needWebsite := website == "" || isDirectoryURL(website, opts.DirectoryHost)
		if !needEmail && !needWebsite {
			continue
		}

		if i > 0 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return updated, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		switch {
		case isDirectoryURL(website, opts.DirectoryHost):
			homepage, foundEmail := resolveProfile(ctx, pages, website)
			if homepage != "" {
				row = t.set(row, "website", homepage)
				updated++
			}
			if foundEmail != "" && needEmail {
				row = t.set(row, "email", foundEmail)
				updated++
			}
		case needEmail && strings.HasPrefix(website, "http"):
			if foundEmail := mineEmail(ctx, pages, website); foundEmail != "" {
				row = t.set(row, "email", foundEmail)
				updated++
			}
		default:
			continue
		}
		t.rows[i] = row
		logger.Debug("enriched row", "name", name,
			"email", t.get(row, "email"), "website", t.get(row, "website"))
	}

	if updated > 0 {
		if err := t.save(path); err != nil {
			return updated, err
		}
	}
	logger.Info("enrich pass complete", "path", path, "fields_filled", updated)
	return updated, nil
}

// isDirectoryURL reports whether a website cell points back into the
// directory that produced the export.
func isDirectoryURL(website, directoryHost string) bool {
	if website == "" || directoryHost == "" {
		return false
	}
	u, err := url.Parse(website)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == strings.TrimPrefix(strings.ToLower(directoryHost), "www.")
}

// resolveProfile fetches a directory profile page and extracts the firm's
// outbound homepage link and any email on the page.
func resolveProfile(ctx context.Context, pages PageFetcher, profileURL string) (homepage, email string) {
	page, err := pages.Fetch(ctx, profileURL)
	if err != nil {
		logger.Debug("profile fetch failed", "url", profileURL, "error", err)
		return "", ""
	}

	profile, perr := url.Parse(profileURL)
	page.Doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		if perr == nil && strings.EqualFold(u.Host, profile.Host) {
			return true
		}
		if socialHost(u.Host) {
			return true
		}
		homepage = href
		return false
	})

	email = firstEmailToken(page.Doc.Text())
	return homepage, email
}

func mineEmail(ctx context.Context, pages PageFetcher, website string) string {
	page, err := pages.Fetch(ctx, website)
	if err != nil {
		logger.Debug("website fetch failed", "url", website, "error", err)
		return ""
	}
	return firstEmailToken(page.Doc.Text())
}

func firstEmailToken(text string) string {
	for _, candidate := range enrichEmailRe.FindAllString(text, -1) {
		lower := strings.ToLower(candidate)
		if strings.Contains(lower, "example.com") || strings.Contains(lower, "noreply") ||
			strings.Contains(lower, "no-reply") || strings.Contains(lower, "donotreply") {
			continue
		}
		return candidate
	}
	return ""
}

func socialHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	switch host {
	case "instagram.com", "facebook.com", "twitter.com", "x.com",
		"linkedin.com", "pinterest.com", "youtube.com":
		return true
	}
	return false
}
