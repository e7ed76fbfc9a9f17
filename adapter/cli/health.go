package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check CLI wiring health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Sessions == nil {
			return ErrNotInitialized
		}
		loggedIn, err := app.Sessions.IsLoggedIn(cmd.Context())
		if err != nil {
			return fmt.Errorf("session store: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ok")
		fmt.Fprintf(out, "  signed in: %t\n", loggedIn)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
