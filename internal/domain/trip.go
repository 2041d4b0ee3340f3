// Package domain contains the core data types for the trip planner client.
// This package has zero external dependencies and is imported by every other
// internal package (session, gateway, planner, itinerary, cli).
package domain

// Trip is the top-level itinerary owned by a user.
// IDs are opaque strings assigned by the remote store; the client never
// generates or interprets them. The wire field is "_id".
type Trip struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Destinations []Destination `json:"destinations"`
}

// Destination is a day/stop grouping within a trip, holding activities.
// It exists only as a child of exactly one trip.
type Destination struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
}

// Activity is a leaf attraction/task entry under a destination.
type Activity struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// User is the identity decoded from the session credential.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
