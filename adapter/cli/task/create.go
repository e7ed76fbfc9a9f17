package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	description string
	dueDate     string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new task with a title and optional properties.

When the backend cannot be reached the task is kept locally with a
temporary negative ID and pushed by "task sync".

Examples:
  tasksync task create "Buy milk"
  tasksync task create "Write docs" --description "API reference" --due 2026-07-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := taskService()
		if err != nil {
			return err
		}

		var desc, due *string
		if cmd.Flags().Changed("description") {
			desc = &description
		}
		if cmd.Flags().Changed("due") {
			due = &dueDate
		}

		created, err := svc.CreateTask(cmd.Context(), args[0], desc, due)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		out := cmd.OutOrStdout()
		if created.IsLocal() {
			fmt.Fprintf(out, "Task stored offline: %d\n", created.ID())
		} else {
			fmt.Fprintf(out, "Task created: %d\n", created.ID())
		}
		fmt.Fprintf(out, "  title: %s\n", created.Title())
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&description, "description", "", "task description")
	createCmd.Flags().StringVar(&dueDate, "due", "", "due date, sent as given")
}
