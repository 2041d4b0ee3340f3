// Package planner requests AI-generated candidate itineraries from the trip
// API's suggestion endpoint. It is purely a request/response translator: one
// call in, one CandidateItinerary (or one error) out.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmckay/tripplanner/client/internal/domain"
	"github.com/tmckay/tripplanner/client/internal/gateway"
)

// Request carries the trip parameters for a suggestion call. StartDate and
// EndDate are opaque ISO calendar strings: the client does not validate
// chronological order or range length, that is the server's concern. Budget
// is an open vocabulary; unrecognized tiers are passed through unchanged.
type Request struct {
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Budget      string `json:"budget"`
}

// Client calls the suggestion endpoint.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   gateway.CredentialSource
}

// New constructs a planner Client. The suggestion call can take noticeably
// longer than resource calls, so a nil httpc gets a more generous timeout.
func New(baseURL string, creds gateway.CredentialSource, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc, creds: creds}
}

// Suggest requests a candidate itinerary for the given trip parameters.
// Missing destination or dates fail locally before any network call.
func (c *Client) Suggest(ctx context.Context, req Request) (domain.CandidateItinerary, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if req.StartDate == "" || req.EndDate == "" {
		return nil, fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("planner.Client.Suggest: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai/suggest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("planner.Client.Suggest: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token, ok := c.creds.Token(); ok {
		httpReq.Header.Set("x-auth-token", token)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("planner.Client.Suggest: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("planner.Client.Suggest: %w", suggestError(resp))
	}

	var payload struct {
		Itinerary domain.CandidateItinerary `json:"itinerary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("planner.Client.Suggest: decode response: %w", err)
	}
	if payload.Itinerary == nil {
		payload.Itinerary = domain.CandidateItinerary{}
	}
	return payload.Itinerary, nil
}

// suggestError turns a non-success response into a single failure value with
// the server's message when one is present.
func suggestError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	msg := "the planner failed to generate an itinerary"
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Msg != "":
			msg = payload.Msg
		}
	}
	return &gateway.APIError{Status: resp.StatusCode, Message: msg}
}
