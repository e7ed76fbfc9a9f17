package task

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
)

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
	updateDue         string
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Send a partial update; only the flags you pass are changed.

Updates need the backend. On failure the local copy is left as it was.

Examples:
  tasksync task update 42 --title "Buy oat milk"
  tasksync task update 42 --status completed --due 2026-07-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := taskService()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var patch domain.Patch
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title = &updateTitle
		}
		if flags.Changed("description") {
			patch.Description = &updateDescription
		}
		if flags.Changed("status") {
			s, err := parseStatusFlag(updateStatus)
			if err != nil {
				return err
			}
			patch.Status = &s
		}
		if flags.Changed("due") {
			patch.DueDate = &updateDue
		}
		if patch.IsEmpty() {
			return errors.New("nothing to update: pass at least one of --title, --description, --status, --due")
		}

		updated, err := svc.UpdateTask(cmd.Context(), id, patch)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		out := cmd.OutOrStdout()
		if updated == nil {
			fmt.Fprintf(out, "Task updated: %d (not cached locally)\n", id)
			return nil
		}
		fmt.Fprintf(out, "Task updated: %d\n", id)
		printTask(out, updated)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "new status (pending, completed)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new due date")
}
