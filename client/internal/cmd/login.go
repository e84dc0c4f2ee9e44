package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pingpanel/pingpanel/pkg/cli"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password and save the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}

			ac, err := c.AuthConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("query auth config: %w", err)
			}
			if ac.Provider != "builtin" {
				return fmt.Errorf("server uses %s sign-in; pass its session token with --token or %s", ac.Provider, envToken)
			}

			p := &cli.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			username, _ := cmd.Flags().GetString("username")
			if username == "" {
				username = p.Ask("Username", "")
			}
			password := p.AskPassword("Password")
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			resp, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			creds, err := loadCredentials()
			if err != nil {
				return err
			}
			saved := credentials{Server: serverURL(cmd, creds), Token: resp.Token, Username: resp.User.Username}
			if err := saveCredentials(saved); err != nil {
				return err
			}
			p.Printf("Logged in as %s (%s plan)\n", resp.User.Username, resp.User.Plan)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "username (prompted when empty)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := os.Remove(credentialsPath())
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
