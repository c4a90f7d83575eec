package commands

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studioscout/studioscout/internal/fetch"
	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/profile"
	"github.com/studioscout/studioscout/internal/tools"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Revisit the web to fill missing emails and websites in an export",
	Long: `Enrich a previous export by fetching pages again.

Rows missing an email get their website visited and mined for one. Rows
whose website points back into the source directory (set --directory-host)
get the profile page visited to resolve the firm's real homepage. The
file is rewritten in place.

Examples:
  studioscout enrich -f output/rethinkingthefuture_results.csv \
      --site rethinkingthefuture --delay 2s

  studioscout enrich -f output/custom.csv \
      --directory-host www.somedirectory.example`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	flags := enrichCmd.Flags()
	flags.StringP("file", "f", "", "CSV file to enrich (required)")
	flags.String("site", "", "site profile whose base URL identifies directory-profile links")
	flags.String("directory-host", "", "host whose URLs are directory profiles rather than firm sites")
	flags.Duration("delay", 2*time.Second, "delay between page visits")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	_ = enrichCmd.MarkFlagRequired("file")
	enrichCmd.MarkFlagsMutuallyExclusive("site", "directory-host")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path, _ := cmd.Flags().GetString("file")
	host, _ := cmd.Flags().GetString("directory-host")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if site, _ := cmd.Flags().GetString("site"); site != "" {
		prof, ok := profile.Builtin(site)
		if !ok {
			return fmt.Errorf("unknown site %q (known: %v)", site, profile.BuiltinNames())
		}
		u, err := url.Parse(prof.BaseURL)
		if err != nil {
			return fmt.Errorf("profile %s base URL: %w", site, err)
		}
		host = u.Host
	}

	client, err := fetch.NewClient(fetch.ClientConfig{
		Timeout: timeout,
	})
	if err != nil {
		logError("creating fetch client: %v", err)
		return err
	}
	defer func() { _ = client.Close() }()

	updated, err := tools.EnrichFile(ctx, path, client, tools.EnrichOptions{
		DirectoryHost: host,
		Delay:         delay,
	})
	if err != nil {
		logError("enriching %s: %v", path, err)
		return err
	}
	logInfo("Filled %d field(s) in %s", updated, path)
	return nil
}
