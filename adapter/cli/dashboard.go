package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/application"
)

var dashboardCached bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show task statistics",
	Long: `Fetch task statistics from the backend and cache them.

The dashboard has no offline fallback; use --cached to print the last
snapshot without contacting the backend.

Examples:
  tasksync dashboard
  tasksync dashboard --cached`,
	Aliases: []string{"dash"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.DashboardService == nil {
			return ErrNotInitialized
		}
		out := cmd.OutOrStdout()

		fetch := app.DashboardService.Fetch
		if dashboardCached {
			fetch = app.DashboardService.Cached
		}

		var failed error
		for res := range application.Run(cmd.Context(), fetch) {
			res.Match(
				func() { fmt.Fprintln(out, "Loading dashboard...") },
				func(s domain.Snapshot) { printSnapshot(out, s) },
				func(msg string) { failed = errors.New(msg) },
			)
		}
		return failed
	},
}

func printSnapshot(out io.Writer, s domain.Snapshot) {
	fmt.Fprintln(out, "Dashboard")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintf(out, "  total:     %d\n", s.TotalTasks)
	fmt.Fprintf(out, "  completed: %d\n", s.CompletedTasks)
	fmt.Fprintf(out, "  pending:   %d\n", s.PendingTasks)
	fmt.Fprintf(out, "  progress:  %.0f%%\n", s.CompletionPercent())
	fmt.Fprintf(out, "  cached at: %s\n", s.CachedAt.Local().Format("2006-01-02 15:04"))
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardCached, "cached", false, "print the cached snapshot only")
	rootCmd.AddCommand(dashboardCmd)
}
