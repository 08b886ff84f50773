// Package config loads the onboarding wizard's configuration document.
// A missing file falls back to built-in defaults; a malformed file is a
// fatal configuration error surfaced to the caller.
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vimgreet/vimgreet/internal/validate"
)

// DefaultPath is where the wizard looks for its document unless overridden
// on the command line.
const DefaultPath = "/etc/vimgreet/onboard.yaml"

// Config is the full onboarding document.
type Config struct {
	General     GeneralConfig     `yaml:"general"`
	Network     NetworkConfig     `yaml:"network"`
	User        UserConfig        `yaml:"user"`
	Locale      FeatureConfig     `yaml:"locale"`
	Keyboard    FeatureConfig     `yaml:"keyboard"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Completion  CompletionConfig  `yaml:"completion"`
	Updates     []UpdateCategory  `yaml:"updates"`
}

type GeneralConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	// DryRun simulates every operation without touching the live system.
	DryRun bool `yaml:"dry_run"`
}

type NetworkConfig struct {
	Enabled *bool    `yaml:"enabled"`
	Program string   `yaml:"program"`
	Args    []string `yaml:"args"`
	// SkipIfConnected completes the step automatically when connectivity is
	// already present.
	SkipIfConnected *bool `yaml:"skip_if_connected"`
}

type UserConfig struct {
	Groups            []string `yaml:"groups"`
	Shell             string   `yaml:"shell"`
	MinPasswordLength int      `yaml:"min_password_length" validate:"gte=1"`
}

// FeatureConfig covers the locale and keyboard picker steps.
type FeatureConfig struct {
	Enabled   *bool    `yaml:"enabled"`
	Default   string   `yaml:"default"`
	Available []string `yaml:"available"`
}

type PreferencesConfig struct {
	TimezoneEnabled *bool  `yaml:"timezone_enabled"`
	DefaultTimezone string `yaml:"default_timezone"`
	NTPEnabled      *bool  `yaml:"ntp_enabled"`
	KeyringEnabled  *bool  `yaml:"keyring_enabled"`
}

type CompletionConfig struct {
	Action               string `yaml:"action" validate:"omitempty,oneof=reboot poweroff exit"`
	RemoveInitialSession *bool  `yaml:"remove_initial_session"`
}

// UpdateCategory groups installable packages under one heading.
type UpdateCategory struct {
	Name             string        `yaml:"name" validate:"required"`
	Description      string        `yaml:"description"`
	EnabledByDefault bool          `yaml:"enabled_by_default"`
	Packages         []PackageItem `yaml:"packages" validate:"dive"`
}

// PackageItem is one selectable package with its install commands.
type PackageItem struct {
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description"`
	// EnabledByDefault overrides the category default when set.
	EnabledByDefault *bool `yaml:"enabled_by_default"`
	// Required packages can never be deselected.
	Required bool            `yaml:"required"`
	Commands []CommandConfig `yaml:"commands" validate:"dive"`
}

// CommandConfig is one named command run during the Update step.
type CommandConfig struct {
	Name    string   `yaml:"name" validate:"required"`
	Command []string `yaml:"command" validate:"required,min=1"`
	// Sudo commands receive the user's password on stdin, never on argv.
	Sudo bool `yaml:"sudo"`
}

// DefaultEnabled reports whether the package starts selected, considering the
// category default. Required packages are always selected.
func (p PackageItem) DefaultEnabled(categoryDefault bool) bool {
	if p.Required {
		return true
	}
	if p.EnabledByDefault != nil {
		return *p.EnabledByDefault
	}
	return categoryDefault
}

func boolPtr(v bool) *bool { return &v }

// Default returns the built-in configuration used when no document exists.
func Default() Config {
	return Config{
		General: GeneralConfig{
			Title:    "System Setup",
			Subtitle: "Welcome to your new system",
		},
		Network: NetworkConfig{
			Enabled:         boolPtr(true),
			Program:         "wifitui",
			SkipIfConnected: boolPtr(true),
		},
		User: UserConfig{
			Groups:            []string{"wheel"},
			Shell:             "/bin/bash",
			MinPasswordLength: 8,
		},
		Locale: FeatureConfig{
			Enabled: boolPtr(true),
			Default: "en_US.UTF-8",
		},
		Keyboard: FeatureConfig{
			Enabled: boolPtr(true),
			Default: "us",
		},
		Preferences: PreferencesConfig{
			TimezoneEnabled: boolPtr(true),
			DefaultTimezone: "UTC",
			NTPEnabled:      boolPtr(true),
			KeyringEnabled:  boolPtr(true),
		},
		Completion: CompletionConfig{
			Action:               "reboot",
			RemoveInitialSession: boolPtr(true),
		},
	}
}

// Load reads the document at path, merging it over the built-in defaults.
// A missing file yields the defaults; anything else that goes wrong is an
// error the caller should treat as fatal.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logrus.WithField("path", path).Info("config file not found, using defaults")
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	// File values win; defaults fill whatever the document leaves unset.
	if err := mergo.Merge(&cfg, Default(), mergo.WithoutDereference); err != nil {
		return Config{}, fmt.Errorf("merge config defaults: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logrus.WithField("path", path).Info("loaded config")
	return cfg, nil
}

// Deref reads an optional boolean, treating nil as fallback. Loaded configs
// have all pointers filled by the defaults merge; this guards hand-built ones.
func Deref(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
