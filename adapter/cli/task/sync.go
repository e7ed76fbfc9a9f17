package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/tasksync/adapter/cli"
	"github.com/felixgeelhaar/tasksync/internal/productivity/application/services"
)

var (
	syncLoop     bool
	syncInterval time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push offline tasks and refresh the cache",
	Long: `Push tasks created offline, then replace the cache with the server list.

Caution: the refresh replaces the whole cache, so an offline task that
failed to push is dropped.

Examples:
  tasksync task sync
  tasksync task sync --every
  tasksync task sync --every --interval 30s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := taskService()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		if !syncLoop {
			res, err := svc.SyncTasks(ctx)
			if err != nil {
				return fmt.Errorf("pushed %d task(s), then: %w", res.Pushed, err)
			}
			printSyncResult(out, res, nil)
			return nil
		}

		interval := syncInterval
		if interval <= 0 {
			interval = cli.GetApp().SyncInterval
		}
		fmt.Fprintf(out, "Syncing every %s (Ctrl-C to stop)\n", interval)
		err = svc.SyncEvery(ctx, interval, func(res services.SyncResult, err error) {
			printSyncResult(out, res, err)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printSyncResult(out io.Writer, res services.SyncResult, err error) {
	if err != nil {
		fmt.Fprintf(out, "Sync failed after pushing %d task(s): %v\n", res.Pushed, err)
		return
	}
	fmt.Fprintf(out, "Synced: pushed %d, failed %d, pulled %d (%s)\n",
		res.Pushed, res.Failed, res.Pulled, res.Duration.Round(time.Millisecond))
}

func init() {
	syncCmd.Flags().BoolVar(&syncLoop, "every", false, "keep syncing on an interval")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 0, "sync period for --every (default SYNC_INTERVAL)")
}
