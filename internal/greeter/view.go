package greeter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vimgreet/vimgreet/internal/system"
	"github.com/vimgreet/vimgreet/internal/vim"
)

const formWidth = 50

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.renderHeader()
	content := m.renderContent()
	message := m.renderMessagePanel()
	status := m.renderStatusBar()

	// The message panel keeps its height even when empty so the form does
	// not jump when messages appear.
	body := lipgloss.JoinVertical(lipgloss.Left, content, message)
	if m.width > 0 && m.height > 0 {
		innerHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
		if innerHeight < 1 {
			innerHeight = 1
		}
		body = lipgloss.Place(m.width, innerHeight, lipgloss.Center, lipgloss.Center, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderContent() string {
	switch {
	case m.confirm != confirmNone:
		return m.renderConfirmDialog()
	case m.showHelp:
		return renderHelp()
	case m.showSessionPicker:
		return m.renderSessionPicker()
	case m.showUserPicker:
		return m.renderUserPicker()
	default:
		return m.renderLoginForm()
	}
}

func (m Model) renderHeader() string {
	left := " " + styleBold.Foreground(colorPrimary).Render(m.hostname)
	right := styleMuted.Render(m.now.Format("Monday, January 02")) + "  " +
		styleBold.Foreground(colorPrimary).Render(m.now.Format("15:04")) + " "

	if m.width <= 0 {
		return left + "  " + right
	}
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (m Model) renderLoginForm() string {
	var b strings.Builder

	sessionName := "(no session)"
	if s := m.selectedSessionOrNil(); s != nil {
		sessionName = s.Name
	}
	b.WriteString(styleMuted.Render("Session: "))
	b.WriteString(styleSecondary.Render(sessionName))
	b.WriteString(styleMuted.Render(" (F3)"))
	b.WriteString("\n\n")

	b.WriteString(m.renderField("Username", m.username, m.focus == focusUsername, m.username.Content()))
	b.WriteString("\n\n")
	b.WriteString(m.renderField("Password", m.password, m.focus == focusPassword, m.password.Display('*')))

	if m.message == nil && !m.working {
		b.WriteString("\n\n")
		b.WriteString(styleMuted.Render("Press Enter to login, :help for commands"))
	}

	return styleFormBox.Width(formWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			stylePrimary.Render(" Login "),
			b.String(),
		),
	)
}

func (m Model) renderField(label string, buf *vim.Buffer, focused bool, display string) string {
	labelStyle := styleMuted
	if focused {
		labelStyle = stylePrimary
	}
	line := labelStyle.Render(label)
	if focused && m.mode == vim.ModeNormal {
		line += styleMuted.Render(" (i to edit)")
	}
	return line + "\n" + renderInputLine(display, buf.Cursor(), focused, m.mode == vim.ModeInsert)
}

// renderInputLine draws the input content with a bar cursor in insert mode
// and a block cursor in normal mode.
func renderInputLine(content string, cursor int, focused, insertMode bool) string {
	if !focused {
		return styleMuted.Render("  " + content)
	}

	prefix := stylePrimary.Render("> ")
	runes := []rune(content)

	if insertMode {
		if cursor > len(runes) {
			cursor = len(runes)
		}
		return prefix + string(runes[:cursor]) + stylePrimary.Render("│") + string(runes[cursor:])
	}

	if len(runes) == 0 {
		return prefix + styleCursor.Render(" ")
	}
	pos := cursor
	if pos > len(runes)-1 {
		pos = len(runes) - 1
	}
	return prefix + string(runes[:pos]) + styleCursor.Render(string(runes[pos])) + string(runes[pos+1:])
}

func (m Model) renderMessagePanel() string {
	var text string
	var box lipgloss.Style
	var title string

	switch {
	case m.message != nil && m.message.isError:
		text, title, box = m.message.text, " Error ", styleErrorBox
	case m.message != nil:
		text, title, box = m.message.text, " Info ", styleInfoBox
	case m.working:
		text, title, box = "Authenticating...", " Info ", styleInfoBox
	default:
		// Reserve the panel height.
		return "\n\n\n"
	}

	hint := ""
	if !m.working {
		hint = styleMuted.Render(" (press any key to dismiss)")
	}
	return box.Width(formWidth).Render(styleBold.Render(title) + "\n" + text + hint)
}

func (m Model) renderStatusBar() string {
	left := " " + styleModeBadge.Render(m.mode.String())
	if m.mode == vim.ModeCommand {
		left += " " + stylePrimary.Render(":") + m.command.Content() + stylePrimary.Render("│")
	}

	var right string
	if m.dryRun {
		right += styleError.Render("[DEMO] ")
	}
	if m.mode == vim.ModeNormal {
		right += styleSecondary.Render("F2") + styleMuted.Render(":users ") +
			styleSecondary.Render("F3") + styleMuted.Render(":sessions ") +
			styleSecondary.Render("F12") + styleMuted.Render(":power ")
	}

	if m.width <= 0 {
		return left + "  " + right
	}
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (m Model) renderSessionPicker() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Sessions (j/k to select, Enter to confirm) "))
	b.WriteString("\n")
	for i, s := range m.sessions {
		kind := "[W]"
		if s.Type == system.SessionX11 {
			kind = "[X]"
		}
		line := fmt.Sprintf("  %s %s", kind, s.Name)
		if i == m.selectedSession {
			line = styleCursor.Render(fmt.Sprintf("> %s %s", kind, s.Name))
		}
		b.WriteString(line + "\n")
	}
	if len(m.sessions) == 0 {
		b.WriteString(styleMuted.Render("  (no sessions found)\n"))
	}
	return stylePopupBox.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderUserPicker() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Users (j/k to select, Enter to confirm) "))
	b.WriteString("\n")
	for i, u := range m.users {
		label := u.Username
		if u.DisplayName != "" {
			label = fmt.Sprintf("%s (%s)", u.DisplayName, u.Username)
		}
		line := "  " + label
		if i == m.selectedUser {
			line = styleCursor.Render("> " + label)
		}
		b.WriteString(line + "\n")
	}
	if len(m.users) == 0 {
		b.WriteString(styleMuted.Render("  (no users found)\n"))
	}
	return stylePopupBox.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderConfirmDialog() string {
	title, question := "Reboot", "Are you sure you want to reboot?"
	if m.confirm == confirmPoweroff {
		title, question = "Shutdown", "Are you sure you want to shut down?"
	}

	body := question + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("  y") + " - Yes    " +
		styleError.Bold(true).Render("n") + " - No"

	return stylePopupBox.BorderForeground(colorPrimary).Render(
		stylePrimary.Bold(true).Render(" "+title+" ") + "\n\n" + body,
	)
}

func renderHelp() string {
	lines := []string{
		styleBold.Render("Normal Mode"),
		"  h/l      Move cursor left/right",
		"  j/k      Move between fields",
		"  i        Enter insert mode",
		"  a        Enter insert mode (after cursor)",
		"  :        Enter command mode",
		"  x        Delete character",
		"  dd       Clear field",
		"  Enter    Login",
		"",
		styleBold.Render("Insert Mode"),
		"  Escape   Return to normal mode",
		"  Enter    Submit / next field",
		"",
		styleBold.Render("Commands"),
		"  :session [name]   Select session",
		"  :user [name]      Select user",
		"  :reboot           Reboot system",
		"  :poweroff         Shutdown system",
		"  :help             Show this help",
		"  :q                Login / quit",
		"",
		styleMuted.Render("Press Escape to close"),
	}
	return stylePopupBox.BorderForeground(colorMuted).Render(
		stylePrimary.Render(" Help ") + "\n" + strings.Join(lines, "\n"),
	)
}
