package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studioscout/studioscout/internal/logger"
	"github.com/studioscout/studioscout/internal/tools"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Split merged phone/zip/email cells in an exported CSV",
	Long: `Repair malformed contact cells in a previous export.

Some directory pages run a phone number or postal code straight into the
email address, producing cells like "212.477.0287info@cookfox.com". This
pass splits such cells back into their phone, zip_code, and email
columns, in place. Existing phone and zip values are never overwritten.

Example:
  studioscout repair -f output/rethinkingthefuture_results.csv`,
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.Flags().StringP("file", "f", "", "CSV file to repair (required)")
	_ = repairCmd.MarkFlagRequired("file")
}

func runRepair(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	path, _ := cmd.Flags().GetString("file")
	changed, err := tools.RepairFile(path)
	if err != nil {
		logError("repairing %s: %v", path, err)
		return err
	}
	logInfo("Repaired %d row(s) in %s", changed, path)
	return nil
}
