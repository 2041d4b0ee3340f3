package cli

import (
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tmckay/tripplanner/client/internal/domain"
)

func (a *App) tripsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "Manage trips",
	}
	cmd.AddCommand(a.tripsListCmd(), a.tripsCreateCmd(), a.tripsShowCmd(), a.tripsDeleteCmd())
	return cmd
}

func (a *App) tripsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your trips, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			trips, err := a.gw.ListTrips(cmd.Context())
			if err != nil {
				return err
			}
			if len(trips) == 0 {
				a.printf("You have no trips yet. Time to plan one!\n")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			defer w.Flush()
			for _, t := range trips {
				writeRow(w, t.ID, t.Name, pluralize(len(t.Destinations), "destination"))
			}
			return nil
		},
	}
}

func (a *App) tripsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new trip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			trip, err := a.gw.CreateTrip(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.printf("Created trip %q (%s)\n", trip.Name, trip.ID)
			return nil
		},
	}
}

func (a *App) tripsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <trip-id>",
		Short: "Show a trip with its destinations and activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			trip, err := a.gw.GetTrip(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.renderTrip(trip)
			return nil
		},
	}
}

func (a *App) tripsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trip-id>",
		Short: "Delete a trip and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if err := a.gw.DeleteTrip(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Trip deleted.\n")
			return nil
		},
	}
}

// renderTrip prints a trip with destinations in server order and activities
// indented beneath each.
func (a *App) renderTrip(trip domain.Trip) {
	a.printf("%s (%s)\n", trip.Name, trip.ID)
	if len(trip.Destinations) == 0 {
		a.printf("  No destinations added yet.\n")
		return
	}
	for _, dest := range trip.Destinations {
		a.printf("  %s (%s)\n", dest.Name, dest.ID)
		for _, act := range dest.Activities {
			a.printf("    - %s (%s)\n", act.Name, act.ID)
		}
	}
}

func writeRow(w *tabwriter.Writer, cols ...string) {
	for i, c := range cols {
		if i > 0 {
			w.Write([]byte{'\t'})
		}
		w.Write([]byte(c))
	}
	w.Write([]byte{'\n'})
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
