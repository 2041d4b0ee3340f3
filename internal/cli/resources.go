package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) destCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dest",
		Short: "Manage destinations within a trip",
	}

	var tripID string

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a destination to a trip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			dests, err := a.gw.AddDestination(cmd.Context(), tripID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			// The response is the authoritative full list; render it rather
			// than assuming where the new entry landed.
			a.printf("Destinations:\n")
			for _, d := range dests {
				a.printf("  %s (%s)\n", d.Name, d.ID)
			}
			return nil
		},
	}
	add.Flags().StringVar(&tripID, "trip", "", "trip id (required)")
	add.MarkFlagRequired("trip")

	rm := &cobra.Command{
		Use:   "rm <destination-id>",
		Short: "Remove a destination from a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			dests, err := a.gw.DeleteDestination(cmd.Context(), tripID, args[0])
			if err != nil {
				return err
			}
			a.printf("Destination removed. %d remaining.\n", len(dests))
			return nil
		},
	}
	rm.Flags().StringVar(&tripID, "trip", "", "trip id (required)")
	rm.MarkFlagRequired("trip")

	cmd.AddCommand(add, rm)
	return cmd
}

func (a *App) activityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage activities within a destination",
	}

	var tripID, destID string

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an activity to a destination",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			trip, err := a.gw.AddActivity(cmd.Context(), tripID, destID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.renderTrip(trip)
			return nil
		},
	}
	add.Flags().StringVar(&tripID, "trip", "", "trip id (required)")
	add.Flags().StringVar(&destID, "dest", "", "destination id (required)")
	add.MarkFlagRequired("trip")
	add.MarkFlagRequired("dest")

	rm := &cobra.Command{
		Use:   "rm <activity-id>",
		Short: "Remove an activity from a destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			trip, err := a.gw.DeleteActivity(cmd.Context(), tripID, destID, args[0])
			if err != nil {
				return err
			}
			a.renderTrip(trip)
			return nil
		},
	}
	rm.Flags().StringVar(&tripID, "trip", "", "trip id (required)")
	rm.Flags().StringVar(&destID, "dest", "", "destination id (required)")
	rm.MarkFlagRequired("trip")
	rm.MarkFlagRequired("dest")

	cmd.AddCommand(add, rm)
	return cmd
}
