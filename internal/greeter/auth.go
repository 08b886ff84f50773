package greeter

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/ipc"
	"github.com/vimgreet/vimgreet/internal/system"
)

// submitLogin validates the form and launches the authentication exchange in
// the background. Credentials are copied out of the input buffers here; the
// running exchange never aliases them.
func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.working {
		return m, nil
	}
	if m.username.IsEmpty() {
		m.setError("Username is required")
		return m, nil
	}

	session := m.selectedSessionOrNil()
	if session == nil {
		m.setError("No session selected")
		return m, nil
	}

	m.working = true
	m.message = nil

	username := m.username.Content()
	password := m.password.Content()

	return m, loginCmd(m.client, username, password, *session)
}

// loginCmd runs the full broker exchange and reports a single authResultMsg.
// The protocol is half duplex, so the whole conversation happens on this one
// goroutine.
func loginCmd(client ipc.Client, username, password string, session system.Session) tea.Cmd {
	return func() tea.Msg {
		logrus.WithField("username", username).Debug("creating session")

		reply, err := client.CreateSession(username)
		if err != nil {
			return authResultMsg{errText: err.Error()}
		}

		switch reply.Kind {
		case ipc.PromptSecret:
			return answerPasswordPrompt(client, password, session)

		case ipc.Success:
			// Passwordless account.
			logrus.Info("authentication successful (no password)")
			return startSession(client, session)

		case ipc.AuthError:
			logrus.WithField("username", username).Warn("session creation failed")
			return authResultMsg{errText: reply.Text}

		default:
			_ = client.CancelSession()
			return authResultMsg{errText: "Unexpected response from session broker"}
		}
	}
}

func answerPasswordPrompt(client ipc.Client, password string, session system.Session) tea.Msg {
	reply, err := client.PostAuthMessageResponse(&password)
	if err != nil {
		_ = client.CancelSession()
		return authResultMsg{errText: err.Error()}
	}

	switch reply.Kind {
	case ipc.Success:
		logrus.Info("authentication successful")
		return startSession(client, session)

	case ipc.AuthError:
		logrus.Warn("authentication failed")
		_ = client.CancelSession()
		return authResultMsg{errText: reply.Text}

	case ipc.PromptSecret, ipc.PromptVisible, ipc.Info:
		// A second factor or module message the form cannot answer inline.
		return authResultMsg{infoText: reply.Text}

	default:
		_ = client.CancelSession()
		return authResultMsg{errText: "Unexpected authentication response"}
	}
}

func startSession(client ipc.Client, session system.Session) tea.Msg {
	cmd := session.BuildCmd()
	env := session.BuildEnv()

	logrus.WithFields(logrus.Fields{"cmd": cmd, "env": env}).Info("starting session")

	if err := client.StartSession(cmd, env); err != nil {
		logrus.WithError(err).Error("session start failed")
		return authResultMsg{errText: err.Error()}
	}
	return authResultMsg{started: true}
}

func (m Model) rebootCmd() tea.Cmd {
	return func() tea.Msg {
		return powerResultMsg{err: system.Reboot(m.dryRun)}
	}
}

func (m Model) poweroffCmd() tea.Cmd {
	return func() tea.Msg {
		return powerResultMsg{err: system.Poweroff(m.dryRun)}
	}
}
