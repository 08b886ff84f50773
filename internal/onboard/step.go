// Package onboard implements the first-boot setup wizard: a multi-step,
// vim-driven flow that creates the primary user, applies locale and keyboard
// settings, installs selected packages, and hands the machine to the login
// screen.
package onboard

import (
	"github.com/vimgreet/vimgreet/internal/config"
)

// StepID identifies a wizard step.
type StepID int

const (
	StepUser StepID = iota
	StepLocale
	StepKeyboard
	StepNetwork
	StepPreferences
	StepReview
	StepUpdate
	StepReboot
)

// ShortName is the sidebar label.
func (s StepID) ShortName() string {
	switch s {
	case StepUser:
		return "User"
	case StepLocale:
		return "Locale"
	case StepKeyboard:
		return "Keyboard"
	case StepNetwork:
		return "Network"
	case StepPreferences:
		return "Prefs"
	case StepReview:
		return "Review"
	case StepUpdate:
		return "Update"
	case StepReboot:
		return "Reboot"
	}
	return "?"
}

// StepResult is the lifecycle state of one step.
type StepResult int

const (
	ResultPending StepResult = iota
	ResultCompleted
	ResultSkipped
	ResultFailed
	// ResultLocked marks a step whose prerequisites have not completed yet.
	ResultLocked
)

// MenuItem is one entry in the wizard sidebar.
type MenuItem struct {
	ID        StepID
	Required  bool
	HasPicker bool
	HasForm   bool
}

// buildMenu assembles the step list from the configuration. User, Review and
// Reboot are always present; the rest appear when their feature is enabled.
func buildMenu(cfg config.Config) []MenuItem {
	items := []MenuItem{
		{ID: StepUser, Required: true, HasForm: true},
	}
	if config.Deref(cfg.Locale.Enabled, true) {
		items = append(items, MenuItem{ID: StepLocale, HasPicker: true})
	}
	if config.Deref(cfg.Keyboard.Enabled, true) {
		items = append(items, MenuItem{ID: StepKeyboard, HasPicker: true})
	}
	if config.Deref(cfg.Network.Enabled, true) {
		items = append(items, MenuItem{ID: StepNetwork})
	}
	if config.Deref(cfg.Preferences.TimezoneEnabled, true) {
		items = append(items, MenuItem{ID: StepPreferences, HasPicker: true})
	}
	items = append(items, MenuItem{ID: StepReview, Required: true})
	if len(cfg.Updates) > 0 {
		// HasForm covers the sudo password prompt.
		items = append(items, MenuItem{ID: StepUpdate, HasForm: true})
	}
	items = append(items, MenuItem{ID: StepReboot, Required: true})
	return items
}

// initialResults seeds every step Pending except the gated ones: Update waits
// for Review, Reboot waits for Update.
func initialResults(items []MenuItem) []StepResult {
	results := make([]StepResult, len(items))
	for i, item := range items {
		if item.ID == StepUpdate || item.ID == StepReboot {
			results[i] = ResultLocked
		}
	}
	return results
}

// TaskState is the lifecycle of one execution task shown in the content panel.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskRunning
	TaskSuccess
	TaskFailed
)

// Task is one unit of work displayed during Review or Update execution.
type Task struct {
	Name   string
	State  TaskState
	Output string
	// Progress is 0..100 for simulated runs, -1 when indeterminate.
	Progress int
}
