package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func credentialsCmd() *cobra.Command {
	credsRoot := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Inspect marketplace credentials",
	}

	credsRoot.AddCommand(credentialsListCmd())

	return credsRoot
}

func credentialsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the credential pool (secrets redacted)",
		Example: `  loupectl credentials list
  loupectl creds list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			pool, err := c.ListCredentials(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(pool)
			}
			if len(pool.Keys) == 0 {
				fmt.Println("No credentials configured.")
				return nil
			}
			return printCredentialsTable(pool)
		},
	}
}
