package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmckay/tripplanner/client/internal/domain"
	"github.com/tmckay/tripplanner/client/internal/itinerary"
	"github.com/tmckay/tripplanner/client/internal/planner"
)

func (a *App) planCmd() *cobra.Command {
	var (
		destination string
		startDate   string
		endDate     string
		budget      string
		tripID      string
		newTrip     bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an AI itinerary, optionally saving it into a trip",
		Long: `Generate a candidate itinerary for a destination and date range.

By default the plan is only printed. Pass --trip <id> to persist it into an
existing trip, or --new-trip to persist it into a freshly created one named
after the destination.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if tripID != "" && newTrip {
				return fmt.Errorf("%w: --trip and --new-trip are mutually exclusive", domain.ErrValidation)
			}

			plan, err := a.planner.Suggest(cmd.Context(), planner.Request{
				Destination: destination,
				StartDate:   startDate,
				EndDate:     endDate,
				Budget:      budget,
			})
			if err != nil {
				return err
			}

			a.renderPlan(destination, plan)

			if tripID == "" && !newTrip {
				return nil
			}
			return a.savePlan(cmd.Context(), plan, destination, tripID)
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "where the trip goes (required)")
	cmd.Flags().StringVar(&startDate, "start", "", "start date, e.g. 2024-03-01 (required)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date, e.g. 2024-03-03 (required)")
	cmd.Flags().StringVar(&budget, "budget", domain.BudgetMidRange, "budget tier (budget, mid-range, luxury)")
	cmd.Flags().StringVar(&tripID, "trip", "", "save the plan into this existing trip")
	cmd.Flags().BoolVar(&newTrip, "new-trip", false, "save the plan into a new trip named after the destination")
	return cmd
}

// savePlan materializes the candidate itinerary. The credential is pinned at
// run start so a logout from another terminal cannot change the identity of
// in-flight work.
func (a *App) savePlan(ctx context.Context, plan domain.CandidateItinerary, destination, tripID string) error {
	token, ok := a.session.Token()
	if !ok {
		return fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}

	target := itinerary.Target{TripID: tripID, Destination: destination}
	if tripID != "" {
		name, err := a.lookupTripName(ctx, tripID)
		if err != nil {
			return err
		}
		target.TripName = name
	}

	m := itinerary.NewMaterializer(a.gw.WithToken(token), a.log)
	res, err := m.Materialize(ctx, plan, target)
	if err != nil {
		var stepErr *itinerary.StepError
		if errors.As(err, &stepErr) && stepErr.DaysPersisted > 0 {
			// Partial materialization: tell the user exactly what made it
			// in so they can clean up or retry by hand.
			a.printf("Saving failed partway: %d of %d day(s) were stored before the error.\n",
				stepErr.DaysPersisted, len(plan))
		}
		return err
	}

	a.printf("Itinerary saved to %q (%s): %d day(s), %d activit(ies).\n",
		res.TripName, res.TripID, res.DaysPersisted, res.ActivitiesPersisted)
	return nil
}

// lookupTripName resolves the display name for an existing target trip from
// the already-listed dashboard data; the trip itself is not re-fetched.
func (a *App) lookupTripName(ctx context.Context, tripID string) (string, error) {
	trips, err := a.gw.ListTrips(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range trips {
		if t.ID == tripID {
			return t.Name, nil
		}
	}
	return "", fmt.Errorf("%w: trip %s", domain.ErrNotFound, tripID)
}

func (a *App) renderPlan(destination string, plan domain.CandidateItinerary) {
	if len(plan) == 0 {
		a.printf("The planner returned an empty itinerary.\n")
		return
	}
	a.printf("Your custom itinerary for %s:\n\n", destination)
	for _, day := range plan {
		a.printf("%s: %s", day.Label, day.Date)
		if day.Theme != "" {
			a.printf(" [%s]", day.Theme)
		}
		a.printf("\n")
		for _, act := range day.Activities {
			a.printf("  - %s", act.Title)
			if act.PriceRange != "" {
				a.printf(" (%s)", act.PriceRange)
			}
			if act.BestTime != "" {
				a.printf(" [%s]", act.BestTime)
			}
			a.printf("\n")
			if act.Description != "" {
				a.printf("    %s\n", act.Description)
			}
		}
		a.printf("\n")
	}
}
