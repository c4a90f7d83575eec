package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/studioscout/studioscout/internal/fetch"
	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/profile"
	"github.com/studioscout/studioscout/internal/record"
)

// settleDelay gives scripted pages a moment for deferred rendering after
// the content-ready selector appears.
const settleDelay = 2 * time.Second

// Result is the outcome of one site's run.
type Result struct {
	Profile *profile.Profile
	Batches []PageBatch
	Records []*record.Record
}

// Options tune one site run.
type Options struct {
	Query      string
	MaxResults int
	// URLOverride replaces the profile's configured URL source with a
	// single explicit page for this run.
	URLOverride string
}

// Site runs the full pagination loop for a single profile: it owns the
// fetch client (and any scripted browser session behind it) for the
// duration of the run and tears it down when the run completes.
func Site(ctx context.Context, prof *profile.Profile, opts Options) (*Result, error) {
	runProfile := prof
	if opts.URLOverride != "" {
		clone := *prof
		clone.SearchURLTemplate = ""
		clone.ListURLs = nil
		clone.Pagination = profile.Pagination{}
		clone.ListURL = opts.URLOverride
		runProfile = &clone
	}

	waitSelector := ""
	if runProfile.RequiresJS && len(runProfile.Selectors.Listing) > 0 {
		// Wait for the first listing selector as the content-ready signal.
		waitSelector = runProfile.Selectors.Listing[0]
	}

	client, err := fetch.NewClient(fetch.ClientConfig{
		BaseURL:         runProfile.BaseURL,
		RateLimit:       runProfile.RateLimit.Std(),
		ScriptedRender:  runProfile.RequiresJS,
		WaitForSelector: waitSelector,
		SettleDelay:     settleDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", runProfile.Name, err)
	}
	defer func() { _ = client.Close() }()

	logger.Info("scraping site", "site", runProfile.Name,
		"strategy", string(runProfile.Strategy()), "fetcher", client.Type())

	driver := NewDriver(runProfile, client, NewExtractor(runProfile, client))
	driver.Query = opts.Query
	driver.MaxResults = opts.MaxResults

	batches, err := driver.Run(ctx)
	records := record.Dedupe(Records(batches))
	if err != nil {
		// Interrupted runs still hand back what they collected.
		return &Result{Profile: prof, Batches: batches, Records: records}, err
	}

	logger.Info("site complete", "site", runProfile.Name,
		"pages", len(batches), "records", len(records))
	return &Result{Profile: prof, Batches: batches, Records: records}, nil
}
