//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_CreatesFileWithHostUUID(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state.json")

	s, err := NewOrExisting(path)
	require.NoError(t, err)
	require.NotEmpty(t, s.Data.HostUUID)

	// The file is written immediately with the generated UUID.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Equal(t, s.Data.HostUUID, raw["host_uuid"])
}

func TestStore_RememberLoginRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state.json")

	s, err := NewOrExisting(path)
	require.NoError(t, err)
	require.NoError(t, s.RememberLogin("alice", "sway"))

	s2, err := NewOrExisting(path)
	require.NoError(t, err)
	require.Equal(t, "alice", s2.Data.LastUser)
	require.Equal(t, "sway", s2.Data.LastSession)
	require.Equal(t, s.Data.HostUUID, s2.Data.HostUUID)
}

func TestStore_SelfHealsInvalidHostUUID(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "state.json")

	require.NoError(t, os.WriteFile(path,
		[]byte(`{"last_user":"bob","host_uuid":"not-a-uuid"}`), 0o600))

	s, err := NewOrExisting(path)
	require.NoError(t, err)
	require.Equal(t, "bob", s.Data.LastUser)
	require.NotEmpty(t, s.Data.HostUUID)
	require.NotEqual(t, "not-a-uuid", s.Data.HostUUID)

	s2, err := NewOrExisting(path)
	require.NoError(t, err)
	require.Equal(t, s.Data.HostUUID, s2.Data.HostUUID)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandTilde("~/cache/state.json")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "cache/state.json"), got)

	got, err = expandTilde("/var/cache/state.json")
	require.NoError(t, err)
	require.Equal(t, "/var/cache/state.json", got)
}
