// Package cmd implements the loupectl CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/loupelabs/loupe/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "loupectl",
		Short: "CLI client for the loupe deal hunter",
		Long: "loupectl is a command-line client for the loupe ops API.\n" +
			"It lets you inspect search tasks and matches, check worker health,\n" +
			"and trigger poll cycles from the terminal.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.loupectl.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "ops API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(matchesCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(credentialsCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".loupectl")
	}

	viper.SetEnvPrefix("LOUPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
