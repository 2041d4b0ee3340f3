// Package itinerary converts AI-generated candidate itineraries into
// persisted trip resources.
//
// The remote store only exposes flat, one-resource-at-a-time create
// endpoints, and its list responses are ordered most-recently-created-first.
// The engine here owns everything that makes that safe: day ordering, parent
// id threading, fail-fast on partial failure, and reconciling local state
// with the server's full-state responses.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/tmckay/tripplanner/client/internal/domain"
)

// Gateway is the subset of the resource gateway the engine drives. Defined
// here, in the consumer package, so engine tests can inject a mock.
type Gateway interface {
	CreateTrip(ctx context.Context, name string) (domain.Trip, error)
	AddDestination(ctx context.Context, tripID, name string) ([]domain.Destination, error)
	AddActivity(ctx context.Context, tripID, destID, name string) (domain.Trip, error)
}

// Target selects where the itinerary is persisted. A non-empty TripID targets
// an existing trip (TripName is its already-known display name; it is not
// re-fetched). An empty TripID means create a new trip, named from Destination.
type Target struct {
	TripID      string
	TripName    string
	Destination string
}

// Step identifies how far a materialization run got before failing.
type Step int

const (
	StepResolveTrip Step = iota
	StepCreateDestination
	StepCreateActivity
)

// String returns a human-readable step name for diagnostics.
func (s Step) String() string {
	switch s {
	case StepResolveTrip:
		return "resolve trip"
	case StepCreateDestination:
		return "create destination"
	case StepCreateActivity:
		return "create activity"
	default:
		return "unknown step"
	}
}

// StepError reports exactly where a run failed so a user can clean up the
// partially materialized trip by hand. Day and Activity are 1-based positions
// in the original (not reversed) itinerary; both are zero when the failure
// happened before any day was processed. DaysPersisted counts days whose
// destination and all activities were fully stored before the failure.
type StepError struct {
	Step          Step
	Day           int
	DayLabel      string
	Activity      int
	DaysPersisted int
	Err           error
}

// Error implements error.
func (e *StepError) Error() string {
	switch e.Step {
	case StepCreateDestination:
		return fmt.Sprintf("materialize: %s for day %d (%q): %v", e.Step, e.Day, e.DayLabel, e.Err)
	case StepCreateActivity:
		return fmt.Sprintf("materialize: %s %d for day %d (%q): %v", e.Step, e.Activity, e.Day, e.DayLabel, e.Err)
	default:
		return fmt.Sprintf("materialize: %s: %v", e.Step, e.Err)
	}
}

// Unwrap exposes the underlying gateway error.
func (e *StepError) Unwrap() error { return e.Err }

// Result reports a successful run. Trip is the last full-trip response the
// server returned and is the caller's new source of truth; it is zero-valued
// when the itinerary contained no activities (only destination-list responses
// were observed in that case).
type Result struct {
	TripID              string
	TripName            string
	TripCreated         bool
	DaysPersisted       int
	ActivitiesPersisted int
	Trip                domain.Trip
}

// ErrRunInFlight is returned when Materialize is called while a previous run
// on the same Materializer has not finished.
var ErrRunInFlight = errors.New("a materialization run is already in progress")

// Materializer drives the gateway through the dependent call sequence that
// realizes a candidate itinerary as stored resources. The in-flight guard is
// authoritative: overlapping runs are rejected here, not left to callers to
// prevent.
type Materializer struct {
	gw       Gateway
	log      *slog.Logger
	inFlight atomic.Bool
}

// NewMaterializer constructs a Materializer. A nil logger falls back to
// slog.Default.
func NewMaterializer(gw Gateway, log *slog.Logger) *Materializer {
	if log == nil {
		log = slog.Default()
	}
	return &Materializer{gw: gw, log: log}
}

// Materialize persists the candidate itinerary into the target trip.
//
// Days are created in reverse: the store prepends new destinations, so
// creating day N first and day 1 last makes the stored list read day 1..N.
// This compensation is deliberate and load-bearing; the ordering tests assert
// final stored order, not creation order.
//
// Steps are strictly sequential. Each activity creation needs the destination
// id revealed only by the immediately preceding response, and destination
// creation order determines display order, so nothing here may run in
// parallel. ctx is checked before every step; cancellation aborts cleanly and
// leaves the same partial state a failure would.
//
// On failure the run stops immediately. Already-created destinations and
// activities are left in place (the store has no transactional batch API to
// roll back through); the returned *StepError says exactly how far the run got.
func (m *Materializer) Materialize(ctx context.Context, plan domain.CandidateItinerary, target Target) (Result, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrRunInFlight
	}
	defer m.inFlight.Store(false)

	res, err := m.run(ctx, plan, target)
	if err != nil {
		m.log.WarnContext(ctx, "materialization failed",
			"trip_id", res.TripID, "days_persisted", res.DaysPersisted, "error", err)
		return res, err
	}
	m.log.InfoContext(ctx, "materialization complete",
		"trip_id", res.TripID, "trip_name", res.TripName,
		"days", res.DaysPersisted, "activities", res.ActivitiesPersisted)
	return res, nil
}

func (m *Materializer) run(ctx context.Context, plan domain.CandidateItinerary, target Target) (Result, error) {
	res := Result{TripID: target.TripID, TripName: target.TripName}

	if err := ctx.Err(); err != nil {
		return res, &StepError{Step: StepResolveTrip, Err: err}
	}

	// Step 1: resolve the target trip. Failure here is fatal to the whole
	// run; no destination or activity calls are attempted.
	if target.TripID == "" {
		name, err := NewTripName(target.Destination)
		if err != nil {
			return res, &StepError{Step: StepResolveTrip, Err: err}
		}
		trip, err := m.gw.CreateTrip(ctx, name)
		if err != nil {
			return res, &StepError{Step: StepResolveTrip, Err: err}
		}
		res.TripID = trip.ID
		res.TripName = trip.Name
		res.TripCreated = true
	}

	// Step 2: reversal compensation (see the Materialize doc comment).
	days := make([]domain.DayPlan, len(plan))
	copy(days, plan)
	lo.Reverse(days)

	total := len(plan)
	for i, day := range days {
		dayNum := total - i // 1-based position in the original day order

		if err := ctx.Err(); err != nil {
			return res, &StepError{Step: StepCreateDestination, Day: dayNum, DayLabel: day.Label, DaysPersisted: res.DaysPersisted, Err: err}
		}

		dests, err := m.gw.AddDestination(ctx, res.TripID, destinationName(day, dayNum))
		if err != nil {
			return res, &StepError{Step: StepCreateDestination, Day: dayNum, DayLabel: day.Label, DaysPersisted: res.DaysPersisted, Err: err}
		}
		if len(dests) == 0 {
			return res, &StepError{Step: StepCreateDestination, Day: dayNum, DayLabel: day.Label, DaysPersisted: res.DaysPersisted,
				Err: errors.New("server returned an empty destination list")}
		}
		// The store prepends: the destination just created is the first
		// element of the returned list. Its id is the parent for this
		// day's activities and must never leak into another day.
		destID := dests[0].ID

		for j, act := range day.Activities {
			if err := ctx.Err(); err != nil {
				return res, &StepError{Step: StepCreateActivity, Day: dayNum, DayLabel: day.Label, Activity: j + 1, DaysPersisted: res.DaysPersisted, Err: err}
			}

			trip, err := m.gw.AddActivity(ctx, res.TripID, destID, activityName(act))
			if err != nil {
				return res, &StepError{Step: StepCreateActivity, Day: dayNum, DayLabel: day.Label, Activity: j + 1, DaysPersisted: res.DaysPersisted, Err: err}
			}
			// Intermediate snapshots are discarded; only the last response
			// survives as the caller's new source of truth.
			res.Trip = trip
			res.ActivitiesPersisted++
		}

		res.DaysPersisted++
		m.log.DebugContext(ctx, "day persisted", "day", dayNum, "destination_id", destID, "activities", len(day.Activities))
	}

	return res, nil
}

// NewTripName synthesizes the display name for an implicitly created trip
// from the itinerary's destination field.
func NewTripName(destination string) (string, error) {
	d := strings.TrimSpace(destination)
	if d == "" {
		return "", fmt.Errorf("%w: destination is required to name a new trip", domain.ErrValidation)
	}
	return "Trip to " + d, nil
}

// destinationName labels a stored destination after the day it represents,
// e.g. "Day 1: 2024-03-01". Falls back to the day's position when the plan
// carries neither label nor date.
func destinationName(day domain.DayPlan, dayNum int) string {
	label, date := strings.TrimSpace(day.Label), strings.TrimSpace(day.Date)
	switch {
	case label != "" && date != "":
		return label + ": " + date
	case label != "":
		return label
	case date != "":
		return date
	default:
		return fmt.Sprintf("Day %d", dayNum)
	}
}

// activityName combines a suggestion's title and price range into the stored
// activity name, e.g. "Beach ($)".
func activityName(act domain.ActivitySuggestion) string {
	title := strings.TrimSpace(act.Title)
	if title == "" {
		title = "Activity"
	}
	if pr := strings.TrimSpace(act.PriceRange); pr != "" {
		return title + " (" + pr + ")"
	}
	return title
}

