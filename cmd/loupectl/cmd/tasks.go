package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func tasksCmd() *cobra.Command {
	tasksRoot := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect search tasks",
	}

	tasksRoot.AddCommand(
		tasksListCmd(),
		tasksGetCmd(),
	)

	return tasksRoot
}

func tasksListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List search tasks",
		Example: `  loupectl tasks list
  loupectl tasks list --limit 10 --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			tasks, err := c.ListTasks(context.Background(), limit, offset)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(tasks)
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}
			return printTaskTable(tasks)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum tasks to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}

func tasksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <task_id>",
		Short: "Show one search task",
		Args:  cobra.ExactArgs(1),
		Example: `  loupectl tasks get 3f6c01aa
  loupectl tasks get 3f6c01aa --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			task, err := c.GetTask(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(task)
			}
			return printTaskDetail(task)
		},
	}
}
