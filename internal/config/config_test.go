package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "onboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "System Setup", cfg.General.Title)
	assert.Equal(t, 8, cfg.User.MinPasswordLength)
	assert.True(t, Deref(cfg.Locale.Enabled, false))
	assert.Equal(t, "reboot", cfg.Completion.Action)
	assert.Empty(t, cfg.Updates)
}

func TestLoad_FileValuesWinOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
general:
  title: "Acme Setup"
  dry_run: true
network:
  enabled: false
user:
  min_password_length: 12
  shell: /bin/zsh
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Setup", cfg.General.Title)
	assert.True(t, cfg.General.DryRun)
	// Explicit false must survive the defaults merge.
	assert.False(t, Deref(cfg.Network.Enabled, true))
	assert.Equal(t, 12, cfg.User.MinPasswordLength)
	assert.Equal(t, "/bin/zsh", cfg.User.Shell)
	// Untouched sections keep their defaults.
	assert.Equal(t, "Welcome to your new system", cfg.General.Subtitle)
	assert.Equal(t, []string{"wheel"}, cfg.User.Groups)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "general: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidCompletionAction(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
completion:
  action: explode
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_UpdateCategories(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
updates:
  - name: Browsers
    enabled_by_default: true
    packages:
      - title: Firefox
        commands:
          - name: Install Firefox
            command: ["pacman", "-S", "--noconfirm", "firefox"]
            sudo: true
      - title: Chromium
        enabled_by_default: false
        commands:
          - name: Install Chromium
            command: ["pacman", "-S", "--noconfirm", "chromium"]
            sudo: true
  - name: Base
    packages:
      - title: Core tools
        required: true
        commands:
          - name: Install core tools
            command: ["pacman", "-S", "--noconfirm", "base-devel"]
            sudo: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Updates, 2)

	browsers := cfg.Updates[0]
	assert.True(t, browsers.Packages[0].DefaultEnabled(browsers.EnabledByDefault))
	// Per-package override beats the category default.
	assert.False(t, browsers.Packages[1].DefaultEnabled(browsers.EnabledByDefault))

	base := cfg.Updates[1]
	// Required packages are always selected, even in a default-off category.
	assert.True(t, base.Packages[0].DefaultEnabled(base.EnabledByDefault))
	assert.True(t, base.Packages[0].Commands[0].Sudo)
}

func TestPackageItem_DefaultEnabled(t *testing.T) {
	t.Parallel()

	on := true
	off := false
	tests := []struct {
		name            string
		pkg             PackageItem
		categoryDefault bool
		want            bool
	}{
		{name: "inherits category on", pkg: PackageItem{}, categoryDefault: true, want: true},
		{name: "inherits category off", pkg: PackageItem{}, categoryDefault: false, want: false},
		{name: "override on", pkg: PackageItem{EnabledByDefault: &on}, categoryDefault: false, want: true},
		{name: "override off", pkg: PackageItem{EnabledByDefault: &off}, categoryDefault: true, want: false},
		{name: "required wins", pkg: PackageItem{Required: true, EnabledByDefault: &off}, categoryDefault: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.pkg.DefaultEnabled(tt.categoryDefault))
		})
	}
}
