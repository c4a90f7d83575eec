package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/studioscout/studioscout/internal/fetch"
	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/profile"
	"github.com/studioscout/studioscout/internal/record"
)

// PageFetcher is the slice of the fetch client the extractor needs for the
// secondary email-lookup request.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// maxNameLength rejects "names" that are really prose.
const maxNameLength = 400

var (
	ordinalPrefixRe = regexp.MustCompile(`^\d+\.?\s*`)
	// Trailing boilerplate like "| Architects in New York" appended to
	// scraped headings by article templates.
	boilerplateSuffixRe = regexp.MustCompile(`(?i)\s*\|\s*(?:top\s+)?(?:architects?|architecture(?:\s+firms?)?|interior\s+designers?|designers?)\s+in\s+.*$`)

	phoneLabelRe = regexp.MustCompile(`(?i)(?:phone|tel|call)[.:]?\s*(\+?\(?\d[\d\-.\s()]{6,}\d)`)
	emailTokenRe = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9._%+-]*@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// invalidNamePatterns marks navigation and error text masquerading as
	// listing names.
	invalidNamePatterns = []string{
		"no matches", "no results", "try again",
		"search", "filter", "loading", "error",
	}

	socialDomains = map[string]string{
		"instagram.com": "instagram",
		"facebook.com":  "facebook",
		"twitter.com":   "twitter",
		"x.com":         "twitter",
		"linkedin.com":  "linkedin",
		"pinterest.com": "pinterest",
		"youtube.com":   "youtube",
	}

	emailPlaceholderTokens = []string{"example.com", "noreply", "no-reply", "donotreply"}
)

// Extractor recovers a normalized Record from one listing sub-tree.
type Extractor struct {
	prof  *profile.Profile
	base  *url.URL
	pages PageFetcher
}

// NewExtractor creates an extractor for one site. The page fetcher may be
// nil, which disables the secondary email lookup.
func NewExtractor(prof *profile.Profile, pages PageFetcher) *Extractor {
	base, err := url.Parse(prof.BaseURL)
	if err != nil {
		base = nil
	}
	return &Extractor{prof: prof, base: base, pages: pages}
}

// Extract recovers a Record from a listing. A nil record (with nil error
// semantics: there is no error path) means the listing had no usable name;
// every other missing field is simply left empty.
func (e *Extractor) Extract(ctx context.Context, listing Listing) *record.Record {
	sel := listing.Selection
	if sel == nil || sel.Length() == 0 {
		return nil
	}

	name := e.cleanName(firstMatchText(sel, e.prof.Selectors.Name))
	if name == "" {
		return nil
	}

	r := record.New(name, listing.SourceURL)
	r.Website = e.resolveWebsite(sel)
	r.Phone = e.resolvePhone(sel)
	r.Email = e.resolveEmail(ctx, sel, r.Website)
	r.Address = firstMatchText(sel, e.prof.Selectors.Address)
	r.City = firstMatchText(sel, e.prof.Selectors.City)
	r.State = firstMatchText(sel, e.prof.Selectors.State)
	r.ZipCode = firstMatchText(sel, e.prof.Selectors.ZipCode)
	r.Specialty = firstMatchText(sel, e.prof.Selectors.Specialty)
	r.SocialMedia = e.collectSocialLinks(sel)

	return r.Normalize()
}

// cleanName strips ordinal prefixes and boilerplate suffixes, collapses
// whitespace, and rejects navigation text, too-short, and prose-length
// values by returning empty.
func (e *Extractor) cleanName(raw string) string {
	name := ordinalPrefixRe.ReplaceAllString(raw, "")
	name = boilerplateSuffixRe.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	if len(name) < 2 || len(name) > maxNameLength {
		return ""
	}
	lower := strings.ToLower(name)
	for _, pattern := range invalidNamePatterns {
		if strings.Contains(lower, pattern) {
			logger.Debug("skipping invalid listing name", "name", name)
			return ""
		}
	}
	return name
}

// resolveWebsite walks the fallback chain: configured selector href, link
// scan preferring "website"-ish anchor text, "Website:" text pattern, and
// finally image-wrapped external links.
func (e *Extractor) resolveWebsite(sel *goquery.Selection) string {
	website := firstMatchAttr(sel, e.prof.Selectors.Website, "href")
	if website == "" {
		website = e.scanLinks(sel)
	}
	if website == "" {
		website = e.websiteFromText(sel)
	}
	if website == "" {
		website = e.imageWrappedLink(sel)
	}
	return e.resolveAgainstBase(website)
}

// scanLinks looks at every link in the listing, excluding social-media
// domains and same-site internal links, preferring anchors whose text hints
// at an external website.
func (e *Extractor) scanLinks(sel *goquery.Selection) string {
	var preferred, fallback string
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return true
		}
		if e.isSocialLink(href) || e.isInternalLink(href) {
			return true
		}
		text := strings.ToLower(a.Text())
		if strings.Contains(text, "website") || strings.Contains(text, "visit") || strings.Contains(text, "www") {
			preferred = href
			return false
		}
		if fallback == "" {
			fallback = href
		}
		return true
	})
	if preferred != "" {
		return preferred
	}
	return fallback
}

// websiteFromText extracts a "Website: example.com" token from the listing
// text and normalizes its scheme.
func (e *Extractor) websiteFromText(sel *goquery.Selection) string {
	m := websiteLabelRe.FindStringSubmatch(sel.Text())
	if m == nil {
		return ""
	}
	token := strings.Trim(m[1], ".,;)")
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
		return token
	}
	if strings.HasPrefix(token, "www.") {
		return "http://" + token
	}
	if strings.Contains(token, ".") {
		return "http://www." + token
	}
	return ""
}

// imageWrappedLink finds images whose wrapping anchor points off-site;
// article pages often link a designer's photo to their website.
func (e *Extractor) imageWrappedLink(sel *goquery.Selection) string {
	var found string
	sel.Find("a[href] img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		href := img.Closest("a").AttrOr("href", "")
		if strings.HasPrefix(href, "http") && !e.isInternalLink(href) && !e.isSocialLink(href) {
			found = href
			return false
		}
		return true
	})
	return found
}

func (e *Extractor) resolvePhone(sel *goquery.Selection) string {
	phone := firstMatchText(sel, e.prof.Selectors.Phone)
	if phone != "" {
		return phone
	}
	if m := phoneLabelRe.FindStringSubmatch(sel.Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// resolveEmail tries the configured selectors (including mailto: hrefs),
// then the listing text, then — when enabled — fetches the resolved website
// and mines its text. The detail-page fetch is the dominant latency cost of
// extraction, so it is opt-in per profile.
func (e *Extractor) resolveEmail(ctx context.Context, sel *goquery.Selection, website string) string {
	if href := firstMatchAttr(sel, e.prof.Selectors.Email, "href"); strings.HasPrefix(href, "mailto:") {
		return strings.TrimPrefix(href, "mailto:")
	}
	if email := firstMatchText(sel, e.prof.Selectors.Email); email != "" {
		return email
	}
	if email := firstUsableEmail(sel.Text()); email != "" {
		return email
	}
	if e.prof.LookupEmails && website != "" && e.pages != nil {
		return e.emailFromDetailPage(ctx, website)
	}
	return ""
}

// emailFromDetailPage fetches a website and scans its text for the first
// qualifying email token.
func (e *Extractor) emailFromDetailPage(ctx context.Context, website string) string {
	page, err := e.pages.Fetch(ctx, website)
	if err != nil {
		logger.Debug("email lookup fetch failed", "url", website, "error", err)
		return ""
	}
	return firstUsableEmail(page.Doc.Text())
}

// firstUsableEmail returns the first email-shaped token that is not a
// placeholder or noreply-style address.
func firstUsableEmail(text string) string {
	for _, candidate := range emailTokenRe.FindAllString(text, -1) {
		lower := strings.ToLower(candidate)
		usable := true
		for _, token := range emailPlaceholderTokens {
			if strings.Contains(lower, token) {
				usable = false
				break
			}
		}
		if usable {
			return candidate
		}
	}
	return ""
}

// collectSocialLinks maps social platforms to profile URLs found in the
// listing.
func (e *Extractor) collectSocialLinks(sel *goquery.Selection) map[string]string {
	var social map[string]string
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		platform := socialPlatform(href)
		if platform == "" {
			return
		}
		if social == nil {
			social = make(map[string]string)
		}
		if _, ok := social[platform]; !ok {
			social[platform] = href
		}
	})
	return social
}

func (e *Extractor) isSocialLink(href string) bool {
	return socialPlatform(href) != ""
}

func socialPlatform(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return socialDomains[host]
}

func (e *Extractor) isInternalLink(href string) bool {
	if strings.HasPrefix(href, "/") {
		return true
	}
	if e.base == nil {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, e.base.Host)
}

// resolveAgainstBase makes relative website URLs absolute.
func (e *Extractor) resolveAgainstBase(website string) string {
	if website == "" || strings.HasPrefix(website, "http") {
		return website
	}
	if e.base == nil {
		return website
	}
	ref, err := url.Parse(website)
	if err != nil {
		return website
	}
	return e.base.ResolveReference(ref).String()
}

// firstMatchText evaluates an ordered selector list and returns the first
// non-empty text match. A selector that fails or matches nothing is
// skipped. When the listing root itself is the selected element (a heading
// used directly as a listing), its own text is returned.
func firstMatchText(sel *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		if found := sel.Find(selector); found.Length() > 0 {
			if text := strings.TrimSpace(found.First().Text()); text != "" {
				return text
			}
			continue
		}
		if sel.Is(selector) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// firstMatchAttr evaluates an ordered selector list and returns the first
// non-empty attribute value.
func firstMatchAttr(sel *goquery.Selection, selectors []string, attr string) string {
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		if found := sel.Find(selector); found.Length() > 0 {
			if v := strings.TrimSpace(found.First().AttrOr(attr, "")); v != "" {
				return v
			}
			continue
		}
		if sel.Is(selector) {
			if v := strings.TrimSpace(sel.AttrOr(attr, "")); v != "" {
				return v
			}
		}
	}
	return ""
}
