package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/tools"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate rows from exported CSV files by name",
	Long: `Deduplicate exports in place, keeping the first occurrence of each
case-insensitive name.

Examples:
  # One file
  studioscout dedupe -f output/houzz_results.csv

  # Every CSV in a directory
  studioscout dedupe -d output`,
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
	flags := dedupeCmd.Flags()
	flags.StringP("file", "f", "", "single CSV file to deduplicate")
	flags.StringP("dir", "d", "", "directory of CSV files to deduplicate")
	dedupeCmd.MarkFlagsOneRequired("file", "dir")
	dedupeCmd.MarkFlagsMutuallyExclusive("file", "dir")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		before, after, err := tools.DedupeFile(path)
		if err != nil {
			logError("deduplicating %s: %v", path, err)
			return err
		}
		logInfo("%s: %d -> %d rows (-%d duplicates)", path, before, after, before-after)
		return nil
	}

	dir, _ := cmd.Flags().GetString("dir")
	removed, err := tools.DedupeDir(dir)
	if err != nil {
		logError("deduplicating %s: %v", dir, err)
		return err
	}
	if removed == 0 {
		logInfo("No duplicates found in %s", dir)
	} else {
		logInfo("Removed %d duplicate row(s) from %s", removed, dir)
	}
	return nil
}
