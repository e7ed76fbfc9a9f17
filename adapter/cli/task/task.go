package task

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/tasksync/adapter/cli"
	"github.com/felixgeelhaar/tasksync/internal/productivity/application/services"
	domain "github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create, list, update, complete, delete and synchronize your tasks.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(toggleCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(syncCmd)
}

func taskService() (*services.TaskService, error) {
	app := cli.GetApp()
	if app == nil || app.TaskService == nil {
		return nil, cli.ErrNotInitialized
	}
	return app.TaskService, nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q: %w", raw, err)
	}
	return id, nil
}

func getStatusIcon(s domain.Status) string {
	if s == domain.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

func printTaskLine(out io.Writer, t *domain.Task) {
	marker := ""
	if !t.IsSynced() {
		marker = " (offline)"
	}
	due := ""
	if t.DueDate() != nil {
		due = "  due " + *t.DueDate()
	}
	fmt.Fprintf(out, "%s %5d  %s%s%s\n", getStatusIcon(t.Status()), t.ID(), t.Title(), due, marker)
}

func printTask(out io.Writer, t *domain.Task) {
	fmt.Fprintf(out, "Task %d\n", t.ID())
	fmt.Fprintf(out, "  title:  %s\n", t.Title())
	if t.Description() != nil {
		fmt.Fprintf(out, "  description: %s\n", *t.Description())
	}
	fmt.Fprintf(out, "  status: %s\n", t.Status())
	if t.DueDate() != nil {
		fmt.Fprintf(out, "  due:    %s\n", *t.DueDate())
	}
	fmt.Fprintf(out, "  synced: %t\n", t.IsSynced())
}
