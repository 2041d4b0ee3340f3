package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmckay/tripplanner/client/internal/session"
)

func TestStore_SetGet(t *testing.T) {
	store, err := session.OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(session.KeyTheme, "dark"))

	got, ok, err := store.Get(session.KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", got)
}

func TestStore_GetMissing(t *testing.T) {
	store, err := session.OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetOverwrites(t *testing.T) {
	store, err := session.OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(session.KeyTheme, "light"))
	require.NoError(t, store.Set(session.KeyTheme, "dark"))

	got, ok, err := store.Get(session.KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", got)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	store, err := session.OpenStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(session.KeyAuthToken, "tok"))
	require.NoError(t, store.Delete(session.KeyAuthToken))
	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(session.KeyAuthToken))

	_, ok, err := store.Get(session.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestStore_SurvivesReopen verifies the store is actually durable: a value
// written by one Store is visible to a new Store opened on the same directory.
func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := session.OpenStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(session.KeyAuthToken, "persisted-token"))
	require.NoError(t, store.Close())

	reopened, err := session.OpenStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(session.KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted-token", got)
}
