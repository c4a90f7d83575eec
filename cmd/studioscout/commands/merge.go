package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/tools"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Combine per-site exports into one master CSV with a source column",
	Long: `Merge every CSV in a directory into one master file.

Each row gains a source column derived from its filename
(rethinkingthefuture_results.csv contributes source "rethinkingthefuture").
By default rows whose name was already seen are dropped, first occurrence
winning; rows without a name are always kept.

Example:
  studioscout merge -d output -o output/master_results.csv`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	flags := mergeCmd.Flags()
	flags.StringP("dir", "d", "output", "directory containing per-site CSV exports")
	flags.StringP("output", "o", "output/master_results.csv", "master output path")
	flags.Bool("no-dedup", false, "keep duplicate names instead of dropping them")
	flags.StringSlice("exclude", nil, "source label(s) to skip")
}

func runMerge(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	dir, _ := cmd.Flags().GetString("dir")
	masterPath, _ := cmd.Flags().GetString("output")
	noDedup, _ := cmd.Flags().GetBool("no-dedup")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	total, written, err := tools.MergeDir(dir, masterPath, tools.MergeOptions{
		Dedupe:  !noDedup,
		Exclude: exclude,
	})
	if err != nil {
		logError("merging %s: %v", dir, err)
		return err
	}
	logInfo("Merged %d rows -> %d rows -> %s", total, written, masterPath)
	return nil
}
