package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDesktopFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseDesktopFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeDesktopFile(t, dir, "sway.desktop", `[Desktop Entry]
Name=Sway
Comment=An i3-compatible Wayland compositor
Exec=sway
DesktopNames=sway;wlroots
Type=Application
`)
	writeDesktopFile(t, dir, "hidden.desktop", `[Desktop Entry]
Name=Hidden
Exec=hidden
Hidden=true
`)
	writeDesktopFile(t, dir, "nodisplay.desktop", `[Desktop Entry]
Name=NoDisplay
Exec=nodisplay
NoDisplay=true
`)
	writeDesktopFile(t, dir, "noexec.desktop", `[Desktop Entry]
Name=Broken
`)

	s, ok := parseDesktopFile(filepath.Join(dir, "sway.desktop"), SessionWayland)
	require.True(t, ok)
	assert.Equal(t, "Sway", s.Name)
	assert.Equal(t, "sway", s.Slug)
	assert.Equal(t, "sway", s.Exec)
	assert.Equal(t, []string{"sway", "wlroots"}, s.DesktopNames)
	assert.Equal(t, SessionWayland, s.Type)

	_, ok = parseDesktopFile(filepath.Join(dir, "hidden.desktop"), SessionWayland)
	assert.False(t, ok)

	_, ok = parseDesktopFile(filepath.Join(dir, "nodisplay.desktop"), SessionWayland)
	assert.False(t, ok)

	_, ok = parseDesktopFile(filepath.Join(dir, "noexec.desktop"), SessionWayland)
	assert.False(t, ok)
}

func TestDiscoverSessions(t *testing.T) {
	dataDir := t.TempDir()
	wayland := filepath.Join(dataDir, "wayland-sessions")
	xsessions := filepath.Join(dataDir, "xsessions")
	require.NoError(t, os.MkdirAll(wayland, 0o755))
	require.NoError(t, os.MkdirAll(xsessions, 0o755))

	writeDesktopFile(t, wayland, "sway.desktop", "[Desktop Entry]\nName=Sway\nExec=sway\n")
	writeDesktopFile(t, xsessions, "i3.desktop", "[Desktop Entry]\nName=i3\nExec=i3\n")
	// Same slug in a second source dir must be de-duplicated.
	writeDesktopFile(t, xsessions, "sway.desktop", "[Desktop Entry]\nName=Sway (X11)\nExec=sway-x11\n")

	t.Setenv("XDG_DATA_DIRS", dataDir)

	sessions := DiscoverSessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "i3", sessions[0].Name)
	assert.Equal(t, SessionX11, sessions[0].Type)
	assert.Equal(t, "Sway", sessions[1].Name)
	assert.Equal(t, SessionWayland, sessions[1].Type)
}

func TestSessionBuildCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		exec string
		want []string
	}{
		{"plain", "sway", []string{"sway"}},
		{"with args", "gnome-session --session=gnome", []string{"gnome-session", "--session=gnome"}},
		{"double quoted", `env VAR="a b" startx`, []string{"env", "VAR=a b", "startx"}},
		{"single quoted", "sh -c 'exec sway'", []string{"sh", "-c", "exec sway"}},
		{"extra whitespace", "  sway   --debug  ", []string{"sway", "--debug"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := Session{Exec: tc.exec}
			assert.Equal(t, tc.want, s.BuildCmd())
		})
	}
}

func TestSessionBuildEnv(t *testing.T) {
	t.Parallel()

	s := Session{Type: SessionWayland, DesktopNames: []string{"sway", "wlroots"}}
	assert.Equal(t, []string{"XDG_SESSION_TYPE=wayland", "XDG_CURRENT_DESKTOP=sway:wlroots"}, s.BuildEnv())

	bare := Session{Type: SessionX11}
	assert.Equal(t, []string{"XDG_SESSION_TYPE=x11"}, bare.BuildEnv())
}
