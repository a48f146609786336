package client

import (
	"path/filepath"
	"testing"

	"ssemi/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("tok-abc", model.RolAdministrador, 7))
	assert.Equal(t, "tok-abc", store.Token())
	assert.Equal(t, model.RolAdministrador, store.Rol())
	assert.Equal(t, 7, store.UserID())
}

func TestSessionStoreEmptyWhenMissing(t *testing.T) {
	store := newTestStore(t)

	assert.Empty(t, store.Token())
	assert.Zero(t, store.Rol())
	assert.Zero(t, store.UserID())
}

func TestSessionStoreClear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("tok-abc", model.RolInstructor, 1))

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Token())

	// Clearing an already-empty store is fine.
	require.NoError(t, store.Clear())
}

func TestLandingPath(t *testing.T) {
	cases := []struct {
		rol  int
		path string
	}{
		{model.RolInstructor, "/instructor"},
		{model.RolAdministrador, "/admin"},
		{model.RolEvaluador, "/evaluador"},
		{0, "/dashboard"},
		{99, "/dashboard"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.path, LandingPath(tc.rol))
	}
}
