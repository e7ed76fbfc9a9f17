package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task",
	Long: `Fetch a task from the backend, falling back to the local cache.

Examples:
  tasksync task show 42`,
	Aliases: []string{"get"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := taskService()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		t, err := svc.FetchTask(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}
		printTask(cmd.OutOrStdout(), t)
		return nil
	},
}
