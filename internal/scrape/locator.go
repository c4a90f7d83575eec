// Package scrape implements the listing-extraction core: locating repeated
// listing elements in a document, recovering a contact record from each,
// and driving pagination across a site's pages.
package scrape

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/profile"
)

// Listing is a document sub-tree believed to represent one contact record.
// Listings are transient: produced and consumed within one page's pass.
type Listing struct {
	Selection *goquery.Selection
	SourceURL string
	// Synthetic marks listings carved out of raw text rather than markup.
	Synthetic bool
}

const (
	headingTags = "h1, h2, h3, h4, h5, h6"

	// maxSyntheticNodes caps how many sibling nodes a synthetic container
	// absorbs after a numbered heading.
	maxSyntheticNodes = 10

	// maxAncestorHeadings is the most heading descendants a block ancestor
	// may contain and still count as one listing's container.
	maxAncestorHeadings = 3

	// textWindowSize bounds the preceding-text window carved out per
	// text-mined listing.
	textWindowSize = 400

	// shallowThreshold is the candidate count at or below which the
	// structural/heading result is suspected to be shallow and text mining
	// gets a chance to beat it.
	shallowThreshold = 2
)

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+\.|\d+\.\s+[A-Z]`)
	websiteLabelRe    = regexp.MustCompile(`(?i)website:?\s*(\S+)`)
)

// Locate finds the listing sub-trees of a document using a layered fallback:
// structural selectors, then numbered-heading anchors, then text-pattern
// mining. Exactly one layer's result is returned; markup precision wins and
// text heuristics are a last resort, except when a shallow structural result
// is beaten by a strictly larger mined candidate set.
func Locate(doc *goquery.Document, prof *profile.Profile, sourceURL string) []Listing {
	listings := structuralListings(doc, prof, sourceURL)
	if len(listings) == 0 {
		listings = numberedHeadingListings(doc, sourceURL)
	}

	if len(listings) <= shallowThreshold {
		mined := textMinedListings(doc, sourceURL)
		if len(mined) > len(listings) {
			logger.Debug("text mining beat structural layers",
				"structural", len(listings), "mined", len(mined))
			listings = mined
		}
	}

	return listings
}

// structuralListings tries each configured listing selector in order; the
// first selector returning at least one match wins.
func structuralListings(doc *goquery.Document, prof *profile.Profile, sourceURL string) []Listing {
	for _, selector := range prof.Selectors.Listing {
		matches := doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}
		logger.Debug("found listings", "selector", selector, "count", matches.Length())
		listings := make([]Listing, 0, matches.Length())
		matches.Each(func(_ int, s *goquery.Selection) {
			listings = append(listings, Listing{Selection: s, SourceURL: sourceURL})
		})
		return listings
	}
	return nil
}

// numberedHeadingListings scans heading elements for "N. Name" anchors and
// builds a listing sub-tree around each one.
func numberedHeadingListings(doc *goquery.Document, sourceURL string) []Listing {
	var listings []Listing
	doc.Find(headingTags).Each(func(_ int, heading *goquery.Selection) {
		text := strings.TrimSpace(heading.Text())
		if !numberedHeadingRe.MatchString(text) {
			return
		}
		listings = append(listings, Listing{
			Selection: headingContainer(heading),
			SourceURL: sourceURL,
		})
	})
	if len(listings) > 0 {
		logger.Debug("using numbered headings as listings", "count", len(listings))
	}
	return listings
}

// headingContainer picks the sub-tree for a numbered-heading anchor: the
// nearest block ancestor when it is narrow enough, otherwise a synthetic
// container of the heading plus its following siblings up to the next
// heading.
func headingContainer(heading *goquery.Selection) *goquery.Selection {
	parent := heading.Closest("article, div, section, p")
	if parent.Length() > 0 && !parent.Is("body, html") {
		if parent.Find(headingTags).Length() <= maxAncestorHeadings {
			return parent
		}
	}

	var sb strings.Builder
	if outer, err := goquery.OuterHtml(heading); err == nil {
		sb.WriteString(outer)
	}
	nodes := 1
	for sibling := heading.Next(); sibling.Length() > 0 && nodes < maxSyntheticNodes; sibling = sibling.Next() {
		if sibling.Is(headingTags) {
			break
		}
		if outer, err := goquery.OuterHtml(sibling); err == nil {
			sb.WriteString(outer)
		}
		nodes++
	}
	return syntheticSelection(sb.String())
}

// textMinedListings scans raw page text for "Website:" labels and carves a
// bounded window of preceding text out per match as a synthetic listing.
func textMinedListings(doc *goquery.Document, sourceURL string) []Listing {
	text := doc.Text()
	matches := websiteLabelRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	listings := make([]Listing, 0, len(matches))
	prevEnd := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		windowStart := start - textWindowSize
		if windowStart < prevEnd {
			windowStart = prevEnd
		}
		if windowStart < 0 {
			windowStart = 0
		}
		window := text[windowStart:start]
		label := text[start:end]

		var sb strings.Builder
		sb.WriteString("<div>")
		for _, line := range strings.Split(window, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(line))
		}
		fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(label))
		sb.WriteString("</div>")

		listings = append(listings, Listing{
			Selection: syntheticSelection(sb.String()),
			SourceURL: sourceURL,
			Synthetic: true,
		})
		prevEnd = end
	}
	return listings
}

// syntheticSelection wraps an HTML fragment in a standalone document and
// returns its root container.
func syntheticSelection(fragment string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div class=\"__synthetic\">" + fragment + "</div>"))
	if err != nil {
		// Fall back to an empty selection; callers reject empty listings.
		empty, _ := goquery.NewDocumentFromReader(strings.NewReader("<div></div>"))
		return empty.Find("div").First()
	}
	return doc.Find("div.__synthetic").First()
}
