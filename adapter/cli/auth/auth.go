package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/tasksync/adapter/cli"
	authApp "github.com/felixgeelhaar/tasksync/internal/identity/application/auth"
)

var Cmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out and manage your profile",
}

func init() {
	Cmd.AddCommand(loginCmd)
	Cmd.AddCommand(logoutCmd)
	Cmd.AddCommand(registerCmd)
	Cmd.AddCommand(profileCmd)
	Cmd.AddCommand(refreshCmd)
	Cmd.AddCommand(statusCmd)
}

func authService() (*authApp.Service, error) {
	app := cli.GetApp()
	if app == nil || app.AuthService == nil {
		return nil, cli.ErrNotInitialized
	}
	return app.AuthService, nil
}

// readPassword returns flagValue, or the first line of in when the flag is empty.
func readPassword(in io.Reader, out io.Writer, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(out, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show whether you are signed in",
	Aliases: []string{"whoami"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Sessions == nil {
			return cli.ErrNotInitialized
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		loggedIn, err := app.Sessions.IsLoggedIn(ctx)
		if err != nil {
			return err
		}
		if !loggedIn {
			fmt.Fprintln(out, "Not signed in.")
			return nil
		}
		info, err := app.Sessions.UserInfo(ctx)
		if err != nil {
			fmt.Fprintln(out, "Signed in.")
			return nil
		}
		fmt.Fprintf(out, "Signed in as %s <%s> (id %d)\n", info.Name, info.Email, info.ID)
		return nil
	},
}
