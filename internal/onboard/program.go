package onboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vimgreet/vimgreet/internal/config"
	"github.com/vimgreet/vimgreet/internal/system"
)

// Run presents the setup wizard and blocks until it exits. It reports
// whether the caller should continue into the login screen, which only
// happens after a completed simulated run.
func Run(cfg config.Config, runner system.Runner, dryRun bool) (bool, error) {
	model := New(cfg, runner, dryRun)

	// Logs keep flowing to whatever sink the caller configured; the terminal
	// is never one of them, so the TUI owns it undisturbed.
	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.TransitionToLogin(), nil
}
