// Package cli implements the tripctl command tree. Each command collects
// input, calls into the session/gateway/planner/itinerary layers, and renders
// the result. No domain logic lives here.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmckay/tripplanner/client/internal/config"
	"github.com/tmckay/tripplanner/client/internal/domain"
	"github.com/tmckay/tripplanner/client/internal/gateway"
	"github.com/tmckay/tripplanner/client/internal/planner"
	"github.com/tmckay/tripplanner/client/internal/session"
)

// App holds the wired dependencies shared by all commands. Wiring happens in
// the root command's PersistentPreRunE so every subcommand sees an
// initialized session before it runs; gated commands never see a half-loaded
// credential.
type App struct {
	cfg     config.Config
	log     *slog.Logger
	store   *session.Store
	session *session.Session
	gw      *gateway.Client
	planner *planner.Client
	out     io.Writer
}

// New builds the root command. Output is written to out so tests can capture it.
func New(out io.Writer) *cobra.Command {
	app := &App{out: out}

	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Plan and manage trips from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	root.AddCommand(
		app.loginCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.tripsCmd(),
		app.destCmd(),
		app.activityCmd(),
		app.planCmd(),
		app.themeCmd(),
	)
	return root
}

// init loads config, configures logging, opens the settings store, and
// initializes the session. Runs once per invocation, before any subcommand.
func (a *App) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.log)

	store, err := session.OpenStore(cfg.DataDir)
	if err != nil {
		return err
	}
	a.store = store

	a.session = session.New(store)
	if err := a.session.Initialize(); err != nil {
		return err
	}

	a.gw = gateway.New(cfg.APIBaseURL, a.session, &http.Client{Timeout: cfg.HTTPTimeout})
	a.planner = planner.New(cfg.APIBaseURL, a.session, nil)
	return nil
}

func (a *App) close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// requireAuth refuses gated commands when no usable credential is present.
func (a *App) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("%w: not logged in; run 'tripctl login' first", domain.ErrUnauthorized)
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
