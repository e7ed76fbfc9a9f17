package task

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
)

var (
	status string
	watch  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached tasks",
	Long: `List the locally cached tasks, newest first.

Filter Options:
  --status   Filter by status (pending, completed)
  --watch    Keep running and reprint whenever the cache changes

Examples:
  tasksync task list
  tasksync task list --status completed
  tasksync task list --watch`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := taskService()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var filter *domain.Status
		if status != "" {
			s, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			filter = &s
		}

		if watch {
			var stream <-chan []*domain.Task
			if filter != nil {
				stream = svc.WatchTasksByStatus(ctx, *filter)
			} else {
				stream = svc.WatchTasks(ctx)
			}
			// The stream closes when the command is interrupted.
			for tasks := range stream {
				printTasks(out, tasks)
			}
			return nil
		}

		var tasks []*domain.Task
		if filter != nil {
			tasks, err = svc.CachedTasksByStatus(ctx, *filter)
		} else {
			tasks, err = svc.CachedTasks(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		printTasks(out, tasks)
		return nil
	},
}

func parseStatusFlag(raw string) (domain.Status, error) {
	switch s := domain.Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case domain.StatusPending, domain.StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("invalid --status %q (use pending or completed)", raw)
	}
}

func printTasks(out io.Writer, tasks []*domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return
	}
	fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, t := range tasks {
		printTaskLine(out, t)
	}
}

func init() {
	listCmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (pending, completed)")
	listCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reprint on every change")
}
