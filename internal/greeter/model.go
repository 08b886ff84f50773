// Package greeter implements the login screen: a modal, vim-driven form that
// authenticates against the session broker and hands the seat over to the
// chosen desktop session.
package greeter

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/ipc"
	"github.com/vimgreet/vimgreet/internal/system"
	"github.com/vimgreet/vimgreet/internal/vim"
)

// focusField identifies which login input currently receives edits.
type focusField int

const (
	focusUsername focusField = iota
	focusPassword
)

// confirmAction is a pending destructive action awaiting y/n.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmReboot
	confirmPoweroff
)

// statusMessage is the dismissable message panel content.
type statusMessage struct {
	text    string
	isError bool
}

// Model is the root Bubble Tea model for the login screen.
type Model struct {
	client ipc.Client
	dryRun bool

	mode     vim.Mode
	focus    focusField
	username *vim.Buffer
	password *vim.Buffer
	command  *vim.Buffer

	sessions        []system.Session
	selectedSession int
	users           []system.User
	selectedUser    int

	message   *statusMessage
	working   bool
	pendingDD bool

	showSessionPicker bool
	showUserPicker    bool
	showHelp          bool
	confirm           confirmAction

	hostname string
	now      time.Time
	width    int
	height   int

	quitting    bool
	exitSuccess bool
}

// New constructs the login screen model. Sessions and users come from the
// caller so demo runs can substitute canned data.
func New(client ipc.Client, sessions []system.Session, users []system.User, dryRun bool) Model {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	logrus.WithFields(logrus.Fields{
		"sessions": len(sessions),
		"users":    len(users),
	}).Info("login screen initialized")

	return Model{
		client:   client,
		dryRun:   dryRun,
		mode:     vim.ModeInsert,
		focus:    focusUsername,
		username: vim.NewBuffer(),
		password: vim.NewMasked(),
		command:  vim.NewBuffer(),
		sessions: sessions,
		users:    users,
		hostname: hostname,
		now:      time.Now(),
	}
}

// ExitSuccess reports whether the program should exit zero so the broker can
// replace it with the started session.
func (m Model) ExitSuccess() bool { return m.exitSuccess }

// ApplyLastLogin preselects the previous login. With a remembered username
// the form opens on the password field.
func (m *Model) ApplyLastLogin(username, sessionSlug string) {
	if sessionSlug != "" {
		for i, s := range m.sessions {
			if s.Slug == sessionSlug {
				m.selectedSession = i
				break
			}
		}
	}
	if username != "" {
		m.username.Set(username)
		m.focus = focusPassword
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tickClock()
}

func (m Model) tickClock() tea.Cmd {
	return tea.Tick(time.Until(m.now.Truncate(time.Minute).Add(time.Minute)), func(time.Time) tea.Msg {
		return clockTickMsg{}
	})
}

func (m *Model) setError(text string) {
	m.message = &statusMessage{text: text, isError: true}
}

func (m *Model) setInfo(text string) {
	m.message = &statusMessage{text: text}
}

func (m *Model) currentInput() *vim.Buffer {
	if m.focus == focusPassword {
		return m.password
	}
	return m.username
}

func (m *Model) nextField() {
	if m.focus == focusUsername {
		m.focus = focusPassword
	} else {
		m.focus = focusUsername
	}
}

func (m *Model) selectedSessionOrNil() *system.Session {
	if m.selectedSession < 0 || m.selectedSession >= len(m.sessions) {
		return nil
	}
	return &m.sessions[m.selectedSession]
}
