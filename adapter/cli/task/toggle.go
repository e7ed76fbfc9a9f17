package task

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle [task-id]",
	Short: "Flip a task between pending and completed",
	Long: `Flip the status of a cached task.

Examples:
  tasksync task toggle 42
  tasksync task done 42`,
	Aliases: []string{"done", "complete"},
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

		t, err := svc.ToggleStatus(cmd.Context(), id)
		if errors.Is(err, domain.ErrTaskNotFound) {
			return fmt.Errorf("task %d is not cached; run \"task sync\" first", id)
		}
		if err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", id, t.Status())
		return nil
	},
}
