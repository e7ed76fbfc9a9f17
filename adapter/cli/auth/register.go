package auth

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account on the backend. Sign in afterwards with "auth login".

Examples:
  tasksync auth register --name Ada --email ada@example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := authService()
		if err != nil {
			return err
		}
		password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), registerPassword)
		if err != nil {
			return err
		}

		msg, err := svc.Register(cmd.Context(), registerName, registerEmail, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if msg == "" {
			msg = "Account created."
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "display name")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "password, at least 6 characters")
}
