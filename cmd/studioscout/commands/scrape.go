package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/output"
	"github.com/studioscout/studioscout/internal/profile"
	"github.com/studioscout/studioscout/internal/record"
	"github.com/studioscout/studioscout/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape configured sites and export contact records to CSV",
	Long: `Scrape one or more sites and export the extracted contact records.

Each site is driven by its profile: URL source, listing selectors,
pagination strategy, and rate limit. Without --sites every built-in
profile runs. A failing site never aborts the others.

Examples:
  # All built-in sites into the default output file
  studioscout scrape

  # Selected sites with a search query
  studioscout scrape --sites yelp,houzz --query "interior designer"

  # Custom profiles from a YAML file
  studioscout scrape --profiles sites.yaml --sites mysite

  # Re-run and keep earlier rows
  studioscout scrape --sites houzz -o houzz.csv --append`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Site selection
	flags.StringSliceP("sites", "s", nil, "site profile name(s) to scrape (default: all built-in)")
	flags.String("profiles", "", "YAML file with additional site profiles")
	flags.String("url", "", "scrape a single explicit page instead of the profile's URL source (requires exactly one site)")

	// Run settings
	flags.StringP("query", "Q", "", "search query for query-driven sites (default: "+profile.DefaultQueries[0]+")")
	flags.IntP("max-results", "n", 0, "max records per site (0=unlimited)")

	// Output settings
	flags.StringP("output", "o", "output/results.csv", "combined output CSV file")
	flags.BoolP("append", "a", false, "merge new records into an existing output file instead of overwriting")
	flags.Bool("per-page", false, "additionally write one CSV per fetched page")
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	profiles, err := resolveProfiles(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}
	if len(profiles) == 0 {
		return cmd.Help()
	}

	urlOverride, _ := cmd.Flags().GetString("url")
	if urlOverride != "" && len(profiles) != 1 {
		return fmt.Errorf("--url needs exactly one site, got %d", len(profiles))
	}

	query, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	outputPath, _ := cmd.Flags().GetString("output")
	appendMode, _ := cmd.Flags().GetBool("append")
	perPage, _ := cmd.Flags().GetBool("per-page")

	var combined []*record.Record
	failures := 0
	for _, prof := range profiles {
		if ctx.Err() != nil {
			break
		}
		logInfo("Scraping %s...", prof.Name)

		result, err := scrape.Site(ctx, prof, scrape.Options{
			Query:       query,
			MaxResults:  maxResults,
			URLOverride: urlOverride,
		})
		if err != nil && result == nil {
			logger.Error("site failed", "site", prof.Name, "error", err)
			failures++
			continue
		}
		if err != nil {
			logger.Warn("site interrupted, keeping partial results",
				"site", prof.Name, "records", len(result.Records), "error", err)
		}

		if contributesToCombined(prof) {
			combined = append(combined, result.Records...)
		}
		logInfo("  %s: %d records", prof.Name, len(result.Records))

		if err := writeSiteOutputs(prof, result, appendMode, perPage); err != nil {
			logger.Error("export failed", "site", prof.Name, "error", err)
			failures++
		}
	}

	if len(combined) > 0 {
		if err := output.WriteFile(outputPath, combined, appendMode); err != nil {
			logError("writing %s: %v", outputPath, err)
			return err
		}
		logInfo("Wrote %d records to %s", len(record.Dedupe(combined)), outputPath)
	}

	if err := ctx.Err(); err != nil {
		logInfo("Interrupted; partial results were exported.")
		return err
	}
	if failures == len(profiles) && failures > 0 {
		return fmt.Errorf("all %d sites failed", failures)
	}
	return nil
}

// resolveProfiles collects the run's profiles from --sites, --profiles, and
// the built-in set. Unknown site names are warnings, not errors, so a typo
// in one name does not kill a multi-site run.
func resolveProfiles(cmd *cobra.Command) ([]*profile.Profile, error) {
	custom := map[string]*profile.Profile{}
	if path, _ := cmd.Flags().GetString("profiles"); path != "" {
		loaded, err := profile.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading profiles from %s: %w", path, err)
		}
		custom = loaded
	}

	names, _ := cmd.Flags().GetStringSlice("sites")
	if len(names) == 0 {
		names = profile.BuiltinNames()
		for name := range custom {
			names = append(names, name)
		}
	}

	var profiles []*profile.Profile
	for _, name := range names {
		prof, ok := custom[name]
		if !ok {
			prof, ok = profile.Builtin(name)
		}
		if !ok {
			logger.Warn("unknown site, skipping", "site", name,
				"known", profile.BuiltinNames())
			continue
		}
		if err := prof.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		profiles = append(profiles, prof)
	}
	return profiles, nil
}

// writeSiteOutputs exports one site's records: its per-site file when the
// profile names one, plus optional per-page files.
// contributesToCombined reports whether a site's records belong in the
// shared output file. A site with its own output path keeps its records
// exclusively in that file.
func contributesToCombined(prof *profile.Profile) bool {
	return prof.OutputFile == ""
}

func writeSiteOutputs(prof *profile.Profile, result *scrape.Result, appendMode, perPage bool) error {
	if prof.OutputFile != "" {
		if err := output.WriteFile(prof.OutputFile, result.Records, appendMode); err != nil {
			return err
		}
	}
	if perPage {
		base := prof.OutputFile
		if base == "" {
			base = "output/" + prof.Name + "_results.csv"
		}
		for _, batch := range result.Batches {
			path := output.PageFilePath(base, batch.Page)
			pageAppend := appendMode
			if _, err := os.Stat(path); err == nil {
				// Re-runs merge into existing per-page files.
				pageAppend = true
			}
			if err := output.WriteFile(path, batch.Records, pageAppend); err != nil {
				return err
			}
		}
	}
	return nil
}
