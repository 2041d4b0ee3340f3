package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func (a *App) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.gw.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.session.Login(token); err != nil {
				return err
			}
			user, ok := a.session.User()
			if !ok {
				return errors.New("login succeeded but the credential carried no identity")
			}
			a.printf("Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.printf("Logged out.\n")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			user, _ := a.session.User()
			a.printf("%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}
