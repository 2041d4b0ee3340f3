package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmckay/tripplanner/client/internal/domain"
	"github.com/tmckay/tripplanner/client/internal/session"
)

func (a *App) themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or set the display theme preference",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the stored theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, ok, err := a.store.Get(session.KeyTheme)
			if err != nil {
				return err
			}
			if !ok {
				theme = "light"
			}
			a.printf("%s\n", theme)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <light|dark>",
		Short: "Store a theme preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := args[0]
			if theme != "light" && theme != "dark" {
				return fmt.Errorf("%w: theme must be \"light\" or \"dark\"", domain.ErrValidation)
			}
			if err := a.store.Set(session.KeyTheme, theme); err != nil {
				return err
			}
			a.printf("Theme set to %s.\n", theme)
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}
