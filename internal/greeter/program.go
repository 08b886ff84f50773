package greeter

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/ipc"
	"github.com/vimgreet/vimgreet/internal/state"
	"github.com/vimgreet/vimgreet/internal/system"
)

// Run presents the login screen and blocks until it exits. It reports
// whether a session was started, in which case the caller should exit zero
// so the broker hands the seat to the session. A non-nil store preselects
// the previous login and records the new one.
func Run(client ipc.Client, sessions []system.Session, users []system.User, st *state.Store, dryRun bool) (bool, error) {
	model := New(client, sessions, users, dryRun)
	if st != nil {
		model.ApplyLastLogin(st.Data.LastUser, st.Data.LastSession)
	}

	// Logs keep flowing to whatever sink the caller configured; the terminal
	// is never one of them, so the TUI owns it undisturbed.
	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	if !ok || !m.ExitSuccess() {
		return false, nil
	}

	if st != nil {
		slug := ""
		if s := m.selectedSessionOrNil(); s != nil {
			slug = s.Slug
		}
		if err := st.RememberLogin(m.username.Content(), slug); err != nil {
			logrus.WithError(err).Warn("failed to save login state")
		}
	}
	return true, nil
}
