package scrape

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/studioscout/studioscout/internal/fetch"
	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/profile"
	"github.com/studioscout/studioscout/internal/record"
)

// PageBatch is the set of records produced from one fetched page.
type PageBatch struct {
	Page    int
	URL     string
	Records []*record.Record
}

// Fetcher is the page-level contract the driver needs from the fetch layer.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Driver walks a site's pages according to its pagination strategy,
// collecting records until a termination condition or the result cap.
type Driver struct {
	prof      *profile.Profile
	client    Fetcher
	extractor *Extractor

	// Query feeds search-style URL templates.
	Query string
	// MaxResults caps the running total across pages; zero means no cap.
	MaxResults int
}

// NewDriver creates a pagination driver for one site run.
func NewDriver(prof *profile.Profile, client Fetcher, extractor *Extractor) *Driver {
	return &Driver{prof: prof, client: client, extractor: extractor}
}

// Run executes the site's strategy and returns per-page batches in fetch
// order. The flattened record sequence preserves first-seen order.
func (d *Driver) Run(ctx context.Context) ([]PageBatch, error) {
	switch d.prof.Strategy() {
	case profile.StrategySearchIncrement:
		return d.runSearchIncrement(ctx)
	case profile.StrategyExplicitList:
		return d.runExplicitList(ctx)
	case profile.StrategyNumericRange:
		return d.runNumericRange(ctx)
	default:
		return d.runSinglePage(ctx)
	}
}

// Records flattens batches into one record sequence.
func Records(batches []PageBatch) []*record.Record {
	var out []*record.Record
	for _, b := range batches {
		out = append(out, b.Records...)
	}
	return out
}

func (d *Driver) runSinglePage(ctx context.Context) ([]PageBatch, error) {
	page, err := d.client.Fetch(ctx, d.prof.ListURL)
	if err != nil {
		logger.Warn("list page unavailable", "url", d.prof.ListURL, "error", err)
		return nil, nil
	}
	records := d.extractPage(ctx, page)
	records, _ = d.capRecords(records, 0)
	return []PageBatch{{Page: 1, URL: d.prof.ListURL, Records: records}}, nil
}

// runSearchIncrement starts at page 1 of a search URL and appends page=N
// until a page is unavailable, yields no listings, or offers no next-page
// affordance.
func (d *Driver) runSearchIncrement(ctx context.Context) ([]PageBatch, error) {
	query := d.Query
	if query == "" {
		query = profile.DefaultQueries[0]
	}
	searchURL := strings.ReplaceAll(d.prof.SearchURLTemplate, "{query}", url.QueryEscape(query))

	var batches []PageBatch
	total := 0
	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		pageURL := buildPageURL(searchURL, pageNum)
		page, err := d.client.Fetch(ctx, pageURL)
		if err != nil {
			logger.Info("page unavailable, stopping pagination", "url", pageURL, "error", err)
			break
		}

		records := d.extractPage(ctx, page)
		if len(records) == 0 {
			logger.Info("no listings found, stopping pagination", "page", pageNum)
			break
		}

		var capped bool
		records, capped = d.capRecords(records, total)
		total += len(records)
		batches = append(batches, PageBatch{Page: pageNum, URL: pageURL, Records: records})
		if capped {
			logger.Info("reached max results", "max", d.MaxResults)
			break
		}

		if !d.hasNextPage(page) {
			logger.Debug("no next-page affordance, stopping", "page", pageNum)
			break
		}
	}
	return batches, nil
}

// runExplicitList iterates a pre-enumerated URL sequence exactly once each,
// honoring the inter-page courtesy delay. Unavailable pages are skipped.
func (d *Driver) runExplicitList(ctx context.Context) ([]PageBatch, error) {
	delay := d.prof.Pagination.DelayBetweenPages.Std()

	var batches []PageBatch
	total := 0
	for i, pageURL := range d.prof.ListURLs {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		if i > 0 && delay > 0 {
			if err := pause(ctx, delay); err != nil {
				return batches, err
			}
		}

		page, err := d.client.Fetch(ctx, pageURL)
		if err != nil {
			logger.Warn("page unavailable, skipping", "url", pageURL, "error", err)
			continue
		}

		records := d.extractPage(ctx, page)
		records = d.dropIfBlockPage(records, i+1)
		if len(records) == 0 {
			continue
		}

		var capped bool
		records, capped = d.capRecords(records, total)
		total += len(records)
		batches = append(batches, PageBatch{Page: i + 1, URL: pageURL, Records: records})
		if capped {
			logger.Info("reached max results", "max", d.MaxResults)
			break
		}
	}
	return batches, nil
}

// runNumericRange iterates the configured integer page range through the
// URL pattern, discarding pages the block-page heuristic flags.
func (d *Driver) runNumericRange(ctx context.Context) ([]PageBatch, error) {
	p := d.prof.Pagination
	delay := p.DelayBetweenPages.Std()

	var batches []PageBatch
	total := 0
	for pageNum := p.StartPage; pageNum <= p.EndPage; pageNum++ {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		if pageNum > p.StartPage && delay > 0 {
			if err := pause(ctx, delay); err != nil {
				return batches, err
			}
		}

		pageURL := d.numericPageURL(pageNum)
		page, err := d.client.Fetch(ctx, pageURL)
		if err != nil {
			logger.Warn("page unavailable, skipping", "url", pageURL, "error", err)
			continue
		}

		records := d.extractPage(ctx, page)
		records = d.dropIfBlockPage(records, pageNum)
		if len(records) == 0 {
			continue
		}

		var capped bool
		records, capped = d.capRecords(records, total)
		total += len(records)
		batches = append(batches, PageBatch{Page: pageNum, URL: pageURL, Records: records})
		if capped {
			logger.Info("reached max results", "max", d.MaxResults)
			break
		}
	}
	return batches, nil
}

// numericPageURL builds the URL for one page of a numeric range. The first
// page may be the bare list URL; later pages substitute into the pattern.
func (d *Driver) numericPageURL(pageNum int) string {
	p := d.prof.Pagination
	if pageNum == p.StartPage && p.FirstPageNoSuffix {
		return d.prof.ListURL
	}
	pageURL := strings.ReplaceAll(p.URLPattern, "{base_url}", d.prof.ListURL)
	return strings.ReplaceAll(pageURL, "{page}", strconv.Itoa(pageNum))
}

func (d *Driver) extractPage(ctx context.Context, page *fetch.Page) []*record.Record {
	listings := Locate(page.Doc, d.prof, page.URL)
	records := make([]*record.Record, 0, len(listings))
	for _, listing := range listings {
		if ctx.Err() != nil {
			break
		}
		if r := d.extractor.Extract(ctx, listing); r != nil {
			records = append(records, r)
		}
	}
	logger.Debug("extracted page", "url", page.URL,
		"listings", len(listings), "records", len(records))
	return records
}

// blockPageRecordCount is the exact record count the known challenge pages
// produce when misread as content.
const blockPageRecordCount = 3

// dropIfBlockPage applies the block-page heuristic on pages after the
// first: a page whose extracted set has exactly three entries, at least two
// of which carry known challenge phrases, is discarded as an anti-bot page
// rather than content.
func (d *Driver) dropIfBlockPage(records []*record.Record, pageNum int) []*record.Record {
	if pageNum <= 1 || len(records) != blockPageRecordCount {
		return records
	}
	phrases := d.prof.BlockPagePhrases()
	hits := 0
	for _, r := range records {
		lower := strings.ToLower(r.Name)
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				hits++
				break
			}
		}
	}
	if hits >= 2 {
		logger.Warn("block page detected, discarding its records",
			"page", pageNum, "phrase_hits", hits)
		return nil
	}
	return records
}

// capRecords truncates a page's records so the running total never exceeds
// MaxResults. Returns the possibly truncated slice and whether the cap was
// reached.
func (d *Driver) capRecords(records []*record.Record, total int) ([]*record.Record, bool) {
	if d.MaxResults <= 0 {
		return records, false
	}
	remaining := d.MaxResults - total
	if remaining <= 0 {
		return nil, true
	}
	if len(records) >= remaining {
		return records[:remaining], true
	}
	return records, false
}

// hasNextPage checks the current page for any configured next-page
// affordance selector.
func (d *Driver) hasNextPage(page *fetch.Page) bool {
	for _, selector := range d.prof.Selectors.NextPage {
		if page.Doc.Find(selector).Length() > 0 {
			return true
		}
	}
	return false
}

// buildPageURL appends the page parameter for incrementing search URLs.
// Page 1 is the bare search URL.
func buildPageURL(base string, pageNum int) string {
	if pageNum == 1 {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&page=" + strconv.Itoa(pageNum)
	}
	return base + "?page=" + strconv.Itoa(pageNum)
}

// pause is a context-aware courtesy delay between pages.
func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
