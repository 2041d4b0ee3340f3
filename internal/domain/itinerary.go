package domain

// CandidateItinerary is an AI-generated day/activity structure that has not
// been persisted yet. It is produced by the planner client, rendered for the
// user, and consumed by the materialization engine; it never hits the store
// in this shape.
type CandidateItinerary []DayPlan

// DayPlan is one day of a candidate itinerary. Date is an opaque ISO calendar
// string passed through from user input; the client does not parse it.
type DayPlan struct {
	Label      string               `json:"label"`
	Date       string               `json:"date"`
	Theme      string               `json:"theme,omitempty"`
	Activities []ActivitySuggestion `json:"activities"`
}

// ActivitySuggestion is a single suggested activity within a day plan.
type ActivitySuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PriceRange  string `json:"priceRange,omitempty"`
	BestTime    string `json:"bestTime,omitempty"`
}

// Budget tiers the suggestion endpoint is known to understand. The contract is
// an open string vocabulary: unrecognized values are passed through to the
// server unchanged, never rejected locally.
const (
	BudgetFriendly = "budget"
	BudgetMidRange = "mid-range"
	BudgetLuxury   = "luxury"
)
