package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	workerRoot := &cobra.Command{
		Use:   "worker",
		Short: "Inspect and control the poll worker",
	}

	workerRoot.AddCommand(
		workerHealthCmd(),
		workerTriggerCmd(),
	)

	return workerRoot
}

func workerHealthCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show recent poll cycle summaries",
		Example: `  loupectl worker health
  loupectl worker health --limit 5 --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			cycles, err := c.WorkerHealth(context.Background(), limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cycles)
			}
			if len(cycles) == 0 {
				fmt.Println("No cycles recorded yet.")
				return nil
			}
			return printHealthTable(cycles)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum cycles to return")
	return cmd
}

func workerTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "trigger",
		Short:   "Request an immediate poll cycle",
		Example: `  loupectl worker trigger`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			queued, err := c.TriggerCycle(context.Background())
			if err != nil {
				return err
			}
			if queued {
				fmt.Println("Poll cycle queued.")
			} else {
				fmt.Println("A trigger is already pending.")
			}
			return nil
		},
	}
}
