// Package commands implements the CLI commands for studioscout.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "studioscout",
	Short: "Collect business contact records from design and architecture directories",
	Long: `Studioscout scrapes public directory and listicle pages for design
and architecture firms, extracts contact records (name, website, phone,
email, social links), and exports them as CSV.

Sites are described by profiles: built-in ones for known directories,
or your own from a YAML file.

Examples:
  # Scrape the built-in sites
  studioscout scrape

  # One site, capped, into a custom file
  studioscout scrape --sites houzz --max-results 50 -o houzz.csv

  # A single ad-hoc page using an existing profile's selectors
  studioscout scrape --sites rethinkingthefuture \
      --url "https://www.re-thinkingthefuture.com/top-architecture-firms/"

  # Offline passes over previous exports
  studioscout repair -f output/rethinkingthefuture_results.csv
  studioscout merge -d output -o output/master_results.csv`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.studioscout.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".studioscout")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("STUDIOSCOUT")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
