// Package gateway is the typed boundary between the client and the remote
// trip store. Each resource action is one method; every call is independent
// and atomic from the client's point of view. The gateway performs no retries
// and no rollback; callers own recovery policy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/tmckay/tripplanner/client/internal/domain"
)

// authHeader is the custom header carrying the bearer credential, matching
// the trip API's contract.
const authHeader = "x-auth-token"

// CredentialSource supplies the bearer credential for authenticated calls.
// *session.Session satisfies it.
type CredentialSource interface {
	Token() (string, bool)
}

// StaticCredential is a CredentialSource pinned to a fixed token. Used to
// snapshot the credential at the start of a materialization run so a logout
// mid-run cannot change the identity of in-flight work.
type StaticCredential string

// Token implements CredentialSource.
func (c StaticCredential) Token() (string, bool) {
	return string(c), c != ""
}

// Client issues typed requests against the trip API.
//
// Read endpoints (trip list, single trip) are served from a short-TTL cache;
// any mutation flushes it wholesale, since the server's mutation responses
// already supersede everything the client holds.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   CredentialSource
	reads   *cache.Cache
}

// readTTL bounds how stale a cached trip read may be.
const readTTL = 30 * time.Second

// New constructs a Client for the API at baseURL. A nil httpc gets a default
// client with a 15 second timeout.
func New(baseURL string, creds CredentialSource, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		creds:   creds,
		reads:   cache.New(readTTL, time.Minute),
	}
}

// WithToken returns a copy of the Client whose calls use the given fixed
// credential instead of the live session. The read cache is shared, so
// mutations through either client invalidate both.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.creds = StaticCredential(token)
	return &clone
}

// APIError is a non-success response from the trip API.
type APIError struct {
	Status  int
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto domain sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// ---- auth ------------------------------------------------------------------

// Login exchanges credentials for a bearer token. Unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if password == "" {
		return "", fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	var resp struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", payload, &resp, false); err != nil {
		return "", fmt.Errorf("gateway.Client.Login: %w", err)
	}
	return resp.Token, nil
}

// ---- trips -----------------------------------------------------------------

// ListTrips returns the current user's trips in the server's order
// (most recently created first).
func (c *Client) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	const key = "trips"
	if v, ok := c.reads.Get(key); ok {
		return v.([]domain.Trip), nil
	}

	var trips []domain.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trips", nil, &trips, true); err != nil {
		return nil, fmt.Errorf("gateway.Client.ListTrips: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	c.reads.Set(key, trips, cache.DefaultExpiration)
	return trips, nil
}

// CreateTrip creates a trip and returns the created record.
func (c *Client) CreateTrip(ctx context.Context, name string) (domain.Trip, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: trip name is required", domain.ErrValidation)
	}

	var trip domain.Trip
	if err := c.do(ctx, http.MethodPost, "/api/trips", map[string]string{"name": name}, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("gateway.Client.CreateTrip: %w", err)
	}
	c.reads.Flush()
	return trip, nil
}

// GetTrip fetches one trip with all nested destinations and activities.
func (c *Client) GetTrip(ctx context.Context, tripID string) (domain.Trip, error) {
	if tripID == "" {
		return domain.Trip{}, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}

	key := "trip:" + tripID
	if v, ok := c.reads.Get(key); ok {
		return v.(domain.Trip), nil
	}

	var trip domain.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trips/"+tripID, nil, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("gateway.Client.GetTrip: %w", err)
	}
	c.reads.Set(key, trip, cache.DefaultExpiration)
	return trip, nil
}

// DeleteTrip removes a trip and everything under it.
func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	if tripID == "" {
		return fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}

	if err := c.do(ctx, http.MethodDelete, "/api/trips/"+tripID, nil, nil, true); err != nil {
		return fmt.Errorf("gateway.Client.DeleteTrip: %w", err)
	}
	c.reads.Flush()
	return nil
}

// ---- destinations ----------------------------------------------------------

// AddDestination creates a destination under the trip. The server responds
// with the trip's full updated destination list, not a delta; callers must
// replace their local copy wholesale.
func (c *Client) AddDestination(ctx context.Context, tripID, name string) ([]domain.Destination, error) {
	if tripID == "" {
		return nil, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: destination name is required", domain.ErrValidation)
	}

	var dests []domain.Destination
	path := "/api/trips/" + tripID + "/destinations"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"name": name}, &dests, true); err != nil {
		return nil, fmt.Errorf("gateway.Client.AddDestination: %w", err)
	}
	c.reads.Flush()
	return dests, nil
}

// DeleteDestination removes a destination; the response is the trip's full
// updated destination list.
func (c *Client) DeleteDestination(ctx context.Context, tripID, destID string) ([]domain.Destination, error) {
	if tripID == "" {
		return nil, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if destID == "" {
		return nil, fmt.Errorf("%w: destination id is required", domain.ErrValidation)
	}

	var dests []domain.Destination
	path := "/api/trips/" + tripID + "/destinations/" + destID
	if err := c.do(ctx, http.MethodDelete, path, nil, &dests, true); err != nil {
		return nil, fmt.Errorf("gateway.Client.DeleteDestination: %w", err)
	}
	c.reads.Flush()
	return dests, nil
}

// ---- activities ------------------------------------------------------------

// AddActivity creates an activity under a destination. The server responds
// with the full updated trip (all destinations and activities).
func (c *Client) AddActivity(ctx context.Context, tripID, destID, name string) (domain.Trip, error) {
	if tripID == "" {
		return domain.Trip{}, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if destID == "" {
		return domain.Trip{}, fmt.Errorf("%w: destination id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: activity name is required", domain.ErrValidation)
	}

	var trip domain.Trip
	path := "/api/trips/" + tripID + "/destinations/" + destID + "/activities"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"name": name}, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("gateway.Client.AddActivity: %w", err)
	}
	c.reads.Flush()
	return trip, nil
}

// DeleteActivity removes an activity; the response is the full updated trip.
func (c *Client) DeleteActivity(ctx context.Context, tripID, destID, actID string) (domain.Trip, error) {
	if tripID == "" {
		return domain.Trip{}, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if destID == "" {
		return domain.Trip{}, fmt.Errorf("%w: destination id is required", domain.ErrValidation)
	}
	if actID == "" {
		return domain.Trip{}, fmt.Errorf("%w: activity id is required", domain.ErrValidation)
	}

	var trip domain.Trip
	path := "/api/trips/" + tripID + "/destinations/" + destID + "/activities/" + actID
	if err := c.do(ctx, http.MethodDelete, path, nil, &trip, true); err != nil {
		return domain.Trip{}, fmt.Errorf("gateway.Client.DeleteActivity: %w", err)
	}
	c.reads.Flush()
	return trip, nil
}

// ---- transport -------------------------------------------------------------

// do issues one request and decodes the response into out (skipped when out
// is nil). Authenticated calls without a credential fail locally with
// domain.ErrUnauthorized rather than burning a round trip on a guaranteed 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token, ok := c.creds.Token()
		if !ok {
			return fmt.Errorf("%w: no credential present", domain.ErrUnauthorized)
		}
		req.Header.Set(authHeader, token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body. The API
// uses both "msg" and "message" depending on the route.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 8<<10))
	if err != nil {
		return "request failed"
	}

	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Msg != "" {
			return payload.Msg
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return "request failed"
}
