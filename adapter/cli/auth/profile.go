package auth

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	profileName  string
	profileEmail string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Long: `Fetch your profile from the backend, falling back to the cached copy.

Examples:
  tasksync auth profile
  tasksync auth profile update --name "Ada L." --email ada@lovelace.org`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := authService()
		if err != nil {
			return err
		}
		user, err := svc.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile %d\n", user.ID())
		fmt.Fprintf(out, "  name:  %s\n", user.Name())
		fmt.Fprintf(out, "  email: %s\n", user.Email())
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name and email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := authService()
		if err != nil {
			return err
		}
		msg, err := svc.UpdateProfile(cmd.Context(), profileName, profileEmail)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if msg == "" {
			msg = "Profile updated."
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored refresh token for a new access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := authService()
		if err != nil {
			return err
		}
		if _, err := svc.RefreshSession(cmd.Context()); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session refreshed.")
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVarP(&profileName, "name", "n", "", "new display name")
	profileUpdateCmd.Flags().StringVarP(&profileEmail, "email", "e", "", "new email")
	profileCmd.AddCommand(profileUpdateCmd)
}
