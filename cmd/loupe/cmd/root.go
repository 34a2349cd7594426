// Package cmd implements the CLI commands for the loupe server.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loupe",
	Short: "Monitor eBay for jewelry, gemstone, and watch deals",
	Long: "A background service that polls eBay listings against saved search tasks,\n" +
		"classifies them with per-category rule chains (scrap-value math for jewelry,\n" +
		"deal/risk scoring for gemstones), and posts matches to Slack.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
