// Package testutil provides an in-memory stand-in for the remote trip API.
//
// FakeAPI implements the full endpoint surface the client consumes, with the
// real store's ordering conventions: list-style responses are
// most-recently-created-first (new trips and destinations are prepended),
// while activities append within their destination. Tests that assert final
// ordering therefore exercise the same compensation logic production does.
package testutil

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tmckay/tripplanner/client/internal/domain"
	"github.com/tmckay/tripplanner/client/internal/session"
)

// Password accepted by the fake login endpoint for any email.
const Password = "opensesame"

// FakeAPI is a programmable in-memory trip API.
type FakeAPI struct {
	mu     sync.Mutex
	secret []byte
	trips  []*domain.Trip

	// calls records every handled request as "METHOD /path", in order.
	calls []string

	// FailWith, when non-nil, is consulted before handling each request;
	// a non-zero return short-circuits the request with that HTTP status.
	// Used to inject mid-run failures for partial-materialization tests.
	FailWith func(method, path string) int

	// Itinerary is returned by the suggestion endpoint. Defaults to a
	// two-day plan when nil.
	Itinerary domain.CandidateItinerary

	// LastSuggestRequest captures the body of the most recent suggestion
	// call so tests can assert pass-through of dates and budget tier.
	LastSuggestRequest map[string]string
}

// NewFakeAPI constructs an empty fake store.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{secret: []byte("fakeapi-secret")}
}

// Router returns the HTTP handler; mount it on an httptest.Server.
func (f *FakeAPI) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)

	r.Post("/api/auth/login", f.handleLogin)
	r.Post("/api/ai/suggest", f.handleSuggest)

	r.Group(func(r chi.Router) {
		r.Use(f.requireToken)
		r.Get("/api/trips", f.handleListTrips)
		r.Post("/api/trips", f.handleCreateTrip)
		r.Get("/api/trips/{tripID}", f.handleGetTrip)
		r.Delete("/api/trips/{tripID}", f.handleDeleteTrip)
		r.Post("/api/trips/{tripID}/destinations", f.handleAddDestination)
		r.Delete("/api/trips/{tripID}/destinations/{destID}", f.handleDeleteDestination)
		r.Post("/api/trips/{tripID}/destinations/{destID}/activities", f.handleAddActivity)
		r.Delete("/api/trips/{tripID}/destinations/{destID}/activities/{actID}", f.handleDeleteActivity)
	})

	return r
}

// TokenFor mints a signed credential for user, expiring at exp. Tokens from
// here pass the fake's auth middleware.
func (f *FakeAPI) TokenFor(user domain.User, exp time.Time) (string, error) {
	claims := session.Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
}

// Calls returns a copy of the request log.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many recorded calls start with prefix,
// e.g. CallCount("POST /api/trips/").
func (f *FakeAPI) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.CountBy(f.calls, func(c string) bool {
		return len(c) >= len(prefix) && c[:len(prefix)] == prefix
	})
}

// Trips returns a deep copy of the stored trips, most recent first.
func (f *FakeAPI) Trips() []domain.Trip {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Map(f.trips, func(t *domain.Trip, _ int) domain.Trip { return copyTrip(t) })
}

// SeedTrip inserts a trip directly into the store (prepended, like a create).
func (f *FakeAPI) SeedTrip(name string) domain.Trip {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &domain.Trip{ID: newID(), Name: name, Destinations: []domain.Destination{}}
	f.trips = append([]*domain.Trip{t}, f.trips...)
	return copyTrip(t)
}

// ---- middleware ------------------------------------------------------------

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		fail := f.FailWith
		f.mu.Unlock()

		if fail != nil {
			if status := fail(r.Method, r.URL.Path); status != 0 {
				writeJSON(w, status, map[string]string{"msg": "injected failure"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("x-auth-token")
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "No token, authorization denied"})
			return
		}
		_, err := jwt.ParseWithClaims(raw, &session.Claims{}, func(t *jwt.Token) (any, error) {
			return f.secret, nil
		})
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token is not valid"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- handlers --------------------------------------------------------------

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Please enter all fields"})
		return
	}
	if body.Password != Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid credentials"})
		return
	}

	token, err := f.TokenFor(domain.User{ID: newID(), Name: "Test User", Email: body.Email}, time.Now().Add(time.Hour))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"msg": "Server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (f *FakeAPI) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}

	f.mu.Lock()
	f.LastSuggestRequest = body
	plan := f.Itinerary
	f.mu.Unlock()

	if plan == nil {
		plan = domain.CandidateItinerary{
			{
				Label: "Day 1", Date: body["startDate"],
				Activities: []domain.ActivitySuggestion{
					{Title: "Morning walk", PriceRange: "$", BestTime: "morning"},
				},
			},
			{
				Label: "Day 2", Date: body["endDate"],
				Activities: []domain.ActivitySuggestion{
					{Title: "Museum visit", PriceRange: "$$", BestTime: "afternoon"},
				},
			},
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"itinerary": plan})
}

func (f *FakeAPI) handleListTrips(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	out := lo.Map(f.trips, func(t *domain.Trip, _ int) domain.Trip { return copyTrip(t) })
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Trip name is required"})
		return
	}

	f.mu.Lock()
	t := &domain.Trip{ID: newID(), Name: body.Name, Destinations: []domain.Destination{}}
	// New trips go to the front, matching the store's most-recent-first order.
	f.trips = append([]*domain.Trip{t}, f.trips...)
	out := copyTrip(t)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (f *FakeAPI) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.findTrip(chi.URLParam(r, "tripID"))
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Trip not found"})
		return
	}
	writeJSON(w, http.StatusOK, copyTrip(t))
}

func (f *FakeAPI) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := chi.URLParam(r, "tripID")
	if f.findTrip(id) == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Trip not found"})
		return
	}
	f.trips = lo.Reject(f.trips, func(t *domain.Trip, _ int) bool { return t.ID == id })
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Trip removed"})
}

func (f *FakeAPI) handleAddDestination(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Destination name is required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.findTrip(chi.URLParam(r, "tripID"))
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Trip not found"})
		return
	}

	dest := domain.Destination{ID: newID(), Name: body.Name, Activities: []domain.Activity{}}
	// Destinations are prepended; the client compensates when it needs
	// day-order reads.
	t.Destinations = append([]domain.Destination{dest}, t.Destinations...)
	writeJSON(w, http.StatusOK, copyTrip(t).Destinations)
}

func (f *FakeAPI) handleDeleteDestination(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.findTrip(chi.URLParam(r, "tripID"))
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Trip not found"})
		return
	}

	destID := chi.URLParam(r, "destID")
	before := len(t.Destinations)
	t.Destinations = lo.Reject(t.Destinations, func(d domain.Destination, _ int) bool { return d.ID == destID })
	if len(t.Destinations) == before {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Destination not found"})
		return
	}
	writeJSON(w, http.StatusOK, copyTrip(t).Destinations)
}

func (f *FakeAPI) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Activity name is required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.findTrip(chi.URLParam(r, "tripID"))
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Trip not found"})
		return
	}

	destID := chi.URLParam(r, "destID")
	i := lo.IndexOf(lo.Map(t.Destinations, func(d domain.Destination, _ int) string { return d.ID }), destID)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Destination not found"})
		return
	}

	// Activities append in creation order within their destination.
	t.Destinations[i].Activities = append(t.Destinations[i].Activities, domain.Activity{ID: newID(), Name: body.Name})
	writeJSON(w, http.StatusOK, copyTrip(t))
}

func (f *FakeAPI) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.findTrip(chi.URLParam(r, "tripID"))
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Trip not found"})
		return
	}

	destID := chi.URLParam(r, "destID")
	actID := chi.URLParam(r, "actID")
	for i := range t.Destinations {
		if t.Destinations[i].ID != destID {
			continue
		}
		t.Destinations[i].Activities = lo.Reject(t.Destinations[i].Activities,
			func(a domain.Activity, _ int) bool { return a.ID == actID })
		writeJSON(w, http.StatusOK, copyTrip(t))
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Destination not found"})
}

// ---- helpers ---------------------------------------------------------------

// findTrip must be called with f.mu held.
func (f *FakeAPI) findTrip(id string) *domain.Trip {
	for _, t := range f.trips {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func copyTrip(t *domain.Trip) domain.Trip {
	out := domain.Trip{ID: t.ID, Name: t.Name, Destinations: make([]domain.Destination, len(t.Destinations))}
	for i, d := range t.Destinations {
		cp := domain.Destination{ID: d.ID, Name: d.Name, Activities: make([]domain.Activity, len(d.Activities))}
		copy(cp.Activities, d.Activities)
		out.Destinations[i] = cp
	}
	return out
}

func newID() string {
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
