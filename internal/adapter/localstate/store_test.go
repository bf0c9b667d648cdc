package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_MissingFileIsZero(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "nested", "state.json"))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	on, err := s.DemoSession()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestStore_RoundTripKeepsOtherFields(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := New(path)

	require.NoError(t, s.SetSessionToken("tok"))
	require.NoError(t, s.SetDemoSession(true))

	reopened := New(path)
	st, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, State{DemoSession: true, SessionToken: "tok"}, st)

	require.NoError(t, reopened.SetSessionToken(""))
	token, err := reopened.SessionToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path).Load()
	assert.Error(t, err)
}
