package greeter

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vimgreet/vimgreet/internal/vim"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		return m, nil

	case clockTickMsg:
		m.now = time.Now()
		return m, m.tickClock()

	case authResultMsg:
		return m.applyAuthResult(x)

	case powerResultMsg:
		if x.err != nil {
			m.working = false
			m.setError(x.err.Error())
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(x)
	}

	return m, nil
}

func (m Model) applyAuthResult(x authResultMsg) (tea.Model, tea.Cmd) {
	switch {
	case x.started:
		m.password.Wipe()
		m.quitting = true
		m.exitSuccess = true
		return m, tea.Quit
	case x.infoText != "":
		m.working = false
		m.setInfo(x.infoText)
	default:
		m.working = false
		m.password.Clear()
		m.setError(x.errText)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC && m.dryRun {
		m.quitting = true
		return m, tea.Quit
	}

	// An auth attempt is in flight. Esc abandons it; other keys still edit
	// the buffers, but submitLogin refuses a second concurrent attempt.
	if m.working && msg.Type == tea.KeyEsc {
		logrus.Debug("cancelling pending session")
		_ = m.client.CancelSession()
		m.password.Wipe()
		m.working = false
		m.setInfo("Login cancelled")
		return m, nil
	}

	// Any key dismisses the message panel.
	if !m.working && m.message != nil {
		m.message = nil
	}

	if m.confirm != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if m.showHelp {
		if k := msg.String(); k == "esc" || k == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSessionPicker || m.showUserPicker {
		return m.handlePickerKey(msg)
	}

	switch m.mode {
	case vim.ModeNormal:
		return m.handleNormalMode(msg)
	case vim.ModeInsert:
		return m.handleInsertMode(msg)
	case vim.ModeCommand:
		return m.handleCommandMode(msg)
	}
	return m, nil
}

func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// dd clears the focused field; any other key cancels the pending d.
	if key == "d" {
		if m.pendingDD {
			m.currentInput().Clear()
			m.pendingDD = false
		} else {
			m.pendingDD = true
		}
		return m, nil
	}
	m.pendingDD = false

	switch key {
	case "i":
		m.mode = m.mode.Transition(vim.ActionEnterInsert)
	case "a":
		m.mode = m.mode.Transition(vim.ActionEnterInsert)
		m.currentInput().MoveRight()
	case "A":
		m.mode = m.mode.Transition(vim.ActionEnterInsert)
		m.currentInput().MoveEnd()
	case "I":
		m.mode = m.mode.Transition(vim.ActionEnterInsert)
		m.currentInput().MoveStart()
	case ":":
		m.mode = m.mode.Transition(vim.ActionEnterCommand)
		m.command.Clear()

	case "h", "left":
		m.currentInput().MoveLeft()
	case "l", "right":
		m.currentInput().MoveRight()
	case "j", "down", "tab":
		m.nextField()
	case "k", "up", "shift+tab":
		m.nextField()
	case "0":
		m.currentInput().MoveStart()
	case "$":
		m.currentInput().MoveEnd()

	case "x":
		m.currentInput().DeleteForward()

	case "enter":
		return m.submitLogin()

	case "f2":
		m.showUserPicker = true
	case "f3":
		m.showSessionPicker = true
	case "f12":
		m.confirm = confirmPoweroff
	}
	return m, nil
}

func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = m.mode.Transition(vim.ActionEscape)
	case tea.KeyEnter:
		if m.focus == focusUsername && !m.username.IsEmpty() {
			m.focus = focusPassword
			m.mode = vim.ModeNormal
		} else if m.focus == focusPassword {
			m.mode = vim.ModeNormal
			return m.submitLogin()
		}
	case tea.KeyTab:
		m.nextField()
	case tea.KeyShiftTab:
		m.nextField()
	case tea.KeyBackspace:
		m.currentInput().DeleteBack()
	case tea.KeyDelete:
		m.currentInput().DeleteForward()
	case tea.KeyLeft:
		m.currentInput().MoveLeft()
	case tea.KeyRight:
		m.currentInput().MoveRight()
	case tea.KeyHome:
		m.currentInput().MoveStart()
	case tea.KeyEnd:
		m.currentInput().MoveEnd()
	case tea.KeyCtrlU:
		m.currentInput().Clear()
	case tea.KeyCtrlA:
		m.currentInput().MoveStart()
	case tea.KeyCtrlE:
		m.currentInput().MoveEnd()
	case tea.KeyCtrlW:
		m.currentInput().DeleteWordBack()
	case tea.KeyRunes, tea.KeySpace:
		for _, r := range keyRunes(msg) {
			m.currentInput().Insert(r)
		}
	}
	return m, nil
}

func (m Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = m.mode.Transition(vim.ActionEscape)
		m.command.Clear()
	case tea.KeyEnter:
		line := m.command.Content()
		m.mode = m.mode.Transition(vim.ActionExecute)
		m.command.Clear()
		return m.executeCommand(line)
	case tea.KeyBackspace:
		// Backspace on an empty command line leaves command mode.
		if m.command.IsEmpty() {
			m.mode = m.mode.Transition(vim.ActionEscape)
		} else {
			m.command.DeleteBack()
		}
	case tea.KeyRunes, tea.KeySpace:
		for _, r := range keyRunes(msg) {
			m.command.Insert(r)
		}
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	isSession := m.showSessionPicker

	switch msg.String() {
	case "esc", "q":
		m.showSessionPicker = false
		m.showUserPicker = false
	case "j", "down":
		if isSession {
			if m.selectedSession < len(m.sessions)-1 {
				m.selectedSession++
			}
		} else if m.selectedUser < len(m.users)-1 {
			m.selectedUser++
		}
	case "k", "up":
		if isSession {
			if m.selectedSession > 0 {
				m.selectedSession--
			}
		} else if m.selectedUser > 0 {
			m.selectedUser--
		}
	case "enter":
		if isSession {
			m.showSessionPicker = false
		} else {
			if m.selectedUser < len(m.users) {
				m.username.Set(m.users[m.selectedUser].Username)
			}
			m.showUserPicker = false
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirm
	switch msg.String() {
	case "y", "Y":
		m.confirm = confirmNone
		m.working = true
		if action == confirmReboot {
			return m, m.rebootCmd()
		}
		return m, m.poweroffCmd()
	case "n", "N", "esc":
		m.confirm = confirmNone
	}
	return m, nil
}

func (m Model) executeCommand(line string) (tea.Model, tea.Cmd) {
	cmd, err := vim.ParseCommand(line)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}

	switch cmd.Kind {
	case vim.CmdReboot:
		m.confirm = confirmReboot
	case vim.CmdPoweroff:
		m.confirm = confirmPoweroff

	case vim.CmdSession:
		if cmd.Arg == "" {
			m.showSessionPicker = true
			return m, nil
		}
		if idx := m.findSession(cmd.Arg); idx >= 0 {
			m.selectedSession = idx
		} else {
			m.setError("Session not found: " + cmd.Arg)
		}

	case vim.CmdUser:
		if cmd.Arg == "" {
			m.showUserPicker = true
			return m, nil
		}
		if idx := m.findUser(cmd.Arg); idx >= 0 {
			m.selectedUser = idx
			m.username.Set(m.users[idx].Username)
		} else {
			m.setError("User not found: " + cmd.Arg)
		}

	case vim.CmdLogin, vim.CmdQuit:
		return m.submitLogin()

	case vim.CmdCancel:
		logrus.Debug("cancelling pending session")
		_ = m.client.CancelSession()

	case vim.CmdHelp:
		m.showHelp = true
	}
	return m, nil
}

func (m Model) findSession(name string) int {
	needle := strings.ToLower(name)
	for i, s := range m.sessions {
		if strings.Contains(strings.ToLower(s.Name), needle) || strings.ToLower(s.Slug) == needle {
			return i
		}
	}
	return -1
}

func (m Model) findUser(name string) int {
	for i, u := range m.users {
		if strings.EqualFold(u.Username, name) {
			return i
		}
	}
	return -1
}

func keyRunes(msg tea.KeyMsg) []rune {
	if msg.Type == tea.KeySpace {
		return []rune{' '}
	}
	if msg.Alt {
		return nil
	}
	return msg.Runes
}
