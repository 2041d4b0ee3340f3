package gateway_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmckay/tripplanner/client/internal/domain"
	"github.com/tmckay/tripplanner/client/internal/gateway"
	"github.com/tmckay/tripplanner/client/testutil"
)

// ---- helpers ---------------------------------------------------------------

// newClient spins up a fake API and returns an authenticated gateway client
// pointed at it.
func newClient(t *testing.T) (*gateway.Client, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI()
	srv := httptest.NewServer(fake.Router())
	t.Cleanup(srv.Close)

	token, err := fake.TokenFor(domain.User{ID: "u1", Name: "Test User"}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	return gateway.New(srv.URL, gateway.StaticCredential(token), srv.Client()), fake
}

// ---- auth ------------------------------------------------------------------

func TestLogin_OK(t *testing.T) {
	client, _ := newClient(t)

	token, err := client.Login(context.Background(), "asha@example.com", testutil.Password)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLogin_BadCredentials(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.Login(context.Background(), "asha@example.com", "wrong")

	require.Error(t, err)
	// The server's human-readable message must survive to the caller.
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestLogin_MissingFieldsFailLocally(t *testing.T) {
	client, fake := newClient(t)

	_, err := client.Login(context.Background(), "", "pw")

	assert.ErrorIs(t, err, domain.ErrValidation)
	// Precondition failures must not generate network traffic.
	assert.Empty(t, fake.Calls())
}

func TestAuthenticatedCall_NoCredential(t *testing.T) {
	fake := testutil.NewFakeAPI()
	srv := httptest.NewServer(fake.Router())
	t.Cleanup(srv.Close)

	client := gateway.New(srv.URL, gateway.StaticCredential(""), srv.Client())

	_, err := client.ListTrips(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, fake.Calls())
}

func TestAuthenticatedCall_RejectedToken(t *testing.T) {
	fake := testutil.NewFakeAPI()
	srv := httptest.NewServer(fake.Router())
	t.Cleanup(srv.Close)

	client := gateway.New(srv.URL, gateway.StaticCredential("forged-token"), srv.Client())

	_, err := client.ListTrips(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ---- trips -----------------------------------------------------------------

func TestCreateTrip_AndList(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	first, err := client.CreateTrip(ctx, "Wayanad Adventure")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Wayanad Adventure", first.Name)

	second, err := client.CreateTrip(ctx, "Munnar Weekend")
	require.NoError(t, err)

	trips, err := client.ListTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	// Most recently created first: that is the store's contract.
	assert.Equal(t, second.ID, trips[0].ID)
	assert.Equal(t, first.ID, trips[1].ID)
}

func TestCreateTrip_EmptyName(t *testing.T) {
	client, fake := newClient(t)

	_, err := client.CreateTrip(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, fake.Calls())
}

func TestGetTrip_NotFound(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.GetTrip(context.Background(), "no-such-id")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTrip(t *testing.T) {
	client, fake := newClient(t)
	trip := fake.SeedTrip("Doomed Trip")

	require.NoError(t, client.DeleteTrip(context.Background(), trip.ID))

	trips, err := client.ListTrips(context.Background())
	require.NoError(t, err)
	assert.Empty(t, trips)
}

// ---- destinations and activities -------------------------------------------

func TestAddDestination_ReturnsFullList(t *testing.T) {
	client, fake := newClient(t)
	trip := fake.SeedTrip("Kerala Trip")
	ctx := context.Background()

	first, err := client.AddDestination(ctx, trip.ID, "Fort Kochi")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := client.AddDestination(ctx, trip.ID, "Alleppey")
	require.NoError(t, err)

	// The response is the full destination list, newest first, not a delta.
	require.Len(t, second, 2)
	assert.Equal(t, "Alleppey", second[0].Name)
	assert.Equal(t, "Fort Kochi", second[1].Name)
}

func TestAddDestination_MissingInputsFailLocally(t *testing.T) {
	client, fake := newClient(t)

	_, err := client.AddDestination(context.Background(), "", "Fort Kochi")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = client.AddDestination(context.Background(), "trip-1", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, fake.Calls())
}

func TestAddActivity_ReturnsFullTrip(t *testing.T) {
	client, fake := newClient(t)
	trip := fake.SeedTrip("Kerala Trip")
	ctx := context.Background()

	dests, err := client.AddDestination(ctx, trip.ID, "Fort Kochi")
	require.NoError(t, err)

	updated, err := client.AddActivity(ctx, trip.ID, dests[0].ID, "Chinese Fishing Nets")
	require.NoError(t, err)

	// The response is the entire trip, ready for wholesale state replacement.
	assert.Equal(t, trip.ID, updated.ID)
	require.Len(t, updated.Destinations, 1)
	require.Len(t, updated.Destinations[0].Activities, 1)
	assert.Equal(t, "Chinese Fishing Nets", updated.Destinations[0].Activities[0].Name)
}

func TestDeleteActivity(t *testing.T) {
	client, fake := newClient(t)
	trip := fake.SeedTrip("Kerala Trip")
	ctx := context.Background()

	dests, err := client.AddDestination(ctx, trip.ID, "Fort Kochi")
	require.NoError(t, err)
	withAct, err := client.AddActivity(ctx, trip.ID, dests[0].ID, "Beach")
	require.NoError(t, err)

	actID := withAct.Destinations[0].Activities[0].ID
	updated, err := client.DeleteActivity(ctx, trip.ID, dests[0].ID, actID)

	require.NoError(t, err)
	assert.Empty(t, updated.Destinations[0].Activities)
}

// ---- read cache ------------------------------------------------------------

func TestListTrips_CachedWithinTTL(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()

	_, err := client.ListTrips(ctx)
	require.NoError(t, err)
	_, err = client.ListTrips(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.CallCount("GET /api/trips"))
}

func TestListTrips_CacheFlushedByMutation(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()

	_, err := client.ListTrips(ctx)
	require.NoError(t, err)

	_, err = client.CreateTrip(ctx, "New Trip")
	require.NoError(t, err)

	trips, err := client.ListTrips(ctx)
	require.NoError(t, err)

	// The second list must reflect the mutation, which means it went back
	// to the server instead of serving the stale cached copy.
	assert.Equal(t, 2, fake.CallCount("GET /api/trips"))
	require.Len(t, trips, 1)
	assert.Equal(t, "New Trip", trips[0].Name)
}
