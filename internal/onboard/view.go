package onboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vimgreet/vimgreet/internal/vim"
)

// Shared color palette and styles for the wizard.
var (
	colorPrimary   = lipgloss.Color("3")   // yellow
	colorSecondary = lipgloss.Color("6")   // cyan
	colorGood      = lipgloss.Color("2")   // green
	colorError     = lipgloss.Color("1")   // red
	colorMuted     = lipgloss.Color("240") // dark gray

	stylePrimary   = lipgloss.NewStyle().Foreground(colorPrimary)
	styleSecondary = lipgloss.NewStyle().Foreground(colorSecondary)
	styleGood      = lipgloss.NewStyle().Foreground(colorGood)
	styleError     = lipgloss.NewStyle().Foreground(colorError)
	styleMuted     = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold      = lipgloss.NewStyle().Bold(true)

	styleModeBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("0")).Background(colorPrimary)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	stylePanelFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)

	stylePopupBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	styleErrorBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	styleInfoBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorSecondary).
			Padding(0, 1)

	styleCursor = lipgloss.NewStyle().Reverse(true)
)

const (
	sidebarWidth = 16
	contentWidth = 56
	pickerRows   = 12
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.confirm != confirmNone:
		body = m.renderConfirmDialog()
	case m.showHelp:
		body = renderWizardHelp()
	case !m.setupStarted:
		body = m.renderWelcome()
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderStepContent())
	}

	message := m.renderMessagePanel()
	status := m.renderStatusBar()

	stacked := lipgloss.JoinVertical(lipgloss.Left, body, message)
	if m.width > 0 && m.height > 0 {
		innerHeight := m.height - lipgloss.Height(status)
		if innerHeight < 1 {
			innerHeight = 1
		}
		stacked = lipgloss.Place(m.width, innerHeight, lipgloss.Center, lipgloss.Center, stacked)
	}
	return lipgloss.JoinVertical(lipgloss.Left, stacked, status)
}

func (m Model) renderWelcome() string {
	title := m.cfg.General.Title
	if title == "" {
		title = "System Setup"
	}
	body := styleBold.Foreground(colorPrimary).Render(title) + "\n\n" +
		m.cfg.General.Subtitle + "\n\n" +
		styleMuted.Render("Press ") + styleSecondary.Render("Enter") + styleMuted.Render(" to begin")
	return stylePopupBox.Padding(1, 4).Render(body)
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(styleMuted.Render(" Steps ") + "\n")

	for i, item := range m.menu {
		marker := m.stepMarker(i)
		label := fmt.Sprintf("%d %s %s", i+1, marker, item.ID.ShortName())
		switch {
		case i == m.selected && m.panel == panelSidebar:
			label = styleCursor.Render("> " + label)
		case i == m.selected:
			label = stylePrimary.Render("> " + label)
		default:
			label = "  " + label
		}
		b.WriteString(label + "\n")
	}

	box := stylePanel
	if m.panel == panelSidebar {
		box = stylePanelFocused
	}
	return box.Width(sidebarWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) stepMarker(idx int) string {
	switch m.results[idx] {
	case ResultCompleted:
		return styleGood.Render("✓")
	case ResultSkipped:
		return styleMuted.Render("~")
	case ResultFailed:
		return styleError.Render("✗")
	case ResultLocked:
		return styleMuted.Render("◦")
	}
	return "·"
}

func (m Model) renderStepContent() string {
	var body string
	id, ok := m.currentStepID()
	switch {
	case !ok:
		body = ""
	case m.isCurrentStepLocked():
		body = styleMuted.Render("This step is locked.\nComplete previous steps first.")
	case len(m.tasks) > 0:
		body = m.renderTasks()
	default:
		switch id {
		case StepUser:
			body = m.renderUserForm()
		case StepLocale:
			body = m.renderPicker("Select a locale")
		case StepKeyboard:
			body = m.renderPicker("Select a keyboard layout")
		case StepNetwork:
			body = m.renderNetwork()
		case StepPreferences:
			body = m.renderPicker("Select a timezone")
		case StepReview:
			body = m.renderReview()
		case StepUpdate:
			body = m.renderUpdate()
		case StepReboot:
			body = m.renderReboot()
		}
	}

	box := stylePanel
	if m.panel == panelContent {
		box = stylePanelFocused
	}
	return box.Width(contentWidth).Render(body)
}

func (m Model) renderUserForm() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Create your account ") + "\n\n")
	b.WriteString(m.renderFormField("Username", m.username, 0, m.username.Content()))
	b.WriteString("\n\n")
	b.WriteString(m.renderFormField("Password", m.password, 1, m.password.Display('*')))
	b.WriteString("\n\n")
	b.WriteString(m.renderFormField("Confirm password", m.passwordConfirm, 2, m.passwordConfirm.Display('*')))
	return b.String()
}

func (m Model) renderFormField(label string, buf *vim.Buffer, field int, display string) string {
	focused := m.panel == panelContent && m.content.kind == focusField && m.content.field == field
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

func (m Model) renderPicker(title string) string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" "+title+" ") + "\n")

	focused := m.panel == panelContent && m.content.kind == focusPicker
	filter := m.pickerFilter.Content()
	filterLine := styleMuted.Render("Filter: ")
	if focused && m.mode == vim.ModeInsert {
		filterLine += filter + stylePrimary.Render("│")
	} else if filter != "" {
		filterLine += filter
	} else {
		filterLine += styleMuted.Render("(type to filter)")
	}
	b.WriteString(filterLine + "\n\n")

	items := m.filteredPickerItems()
	if len(items) == 0 {
		b.WriteString(styleMuted.Render("  (no matches)"))
		return b.String()
	}

	// Keep the selection visible inside a fixed window.
	start := 0
	if m.pickerSelected >= pickerRows {
		start = m.pickerSelected - pickerRows + 1
	}
	end := start + pickerRows
	if end > len(items) {
		end = len(items)
	}
	for i := start; i < end; i++ {
		line := "  " + items[i]
		if i == m.pickerSelected && focused {
			line = styleCursor.Render("> " + items[i])
		} else if i == m.pickerSelected {
			line = stylePrimary.Render("> " + items[i])
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(styleMuted.Render(fmt.Sprintf("  %d/%d", m.pickerSelected+1, len(items))))
	return b.String()
}

func (m Model) renderNetwork() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Network ") + "\n\n")
	if m.networkConnected {
		b.WriteString(styleGood.Render("● Connected") + "\n\n")
		b.WriteString(styleMuted.Render("Press Enter to continue"))
	} else {
		b.WriteString(styleError.Render("● Not connected") + "\n\n")
		b.WriteString(styleMuted.Render("Press Enter to open ") +
			styleSecondary.Render(m.cfg.Network.Program) + "\n")
		b.WriteString(styleMuted.Render("or :skip to continue without a connection"))
	}
	return b.String()
}

func (m Model) renderReview() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Review ") + "\n\n")

	row := func(label, value string) {
		if value == "" {
			value = styleMuted.Render("(skipped)")
		} else {
			value = styleSecondary.Render(value)
		}
		b.WriteString(fmt.Sprintf("  %-10s %s\n", label, value))
	}
	row("User", m.username.Content())
	row("Locale", m.selectedLocale)
	row("Keyboard", m.selectedKeyboard)
	row("Timezone", m.selectedTimezone)

	b.WriteString("\n" + styleMuted.Render("Press Enter to apply this configuration"))
	return b.String()
}

func (m Model) renderUpdate() string {
	if m.sudoNeeded && !m.sudoEntered && !m.dryRun {
		var b strings.Builder
		b.WriteString(stylePrimary.Render(" Authentication required ") + "\n\n")
		b.WriteString(styleMuted.Render("Some commands need sudo.") + "\n\n")
		b.WriteString(m.renderFormField("Password", m.sudoPassword, 0, m.sudoPassword.Display('*')))
		return b.String()
	}

	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Install packages ") + "\n\n")

	for ci, cat := range m.cfg.Updates {
		check := "[ ]"
		switch {
		case m.isCategoryFullySelected(ci):
			check = "[x]"
		case m.isCategoryPartiallySelected(ci):
			check = "[~]"
		}
		header := fmt.Sprintf("%s %s", check, cat.Name)
		if m.panel == panelContent && ci == m.pkgCatCursor && m.pkgCursor < 0 {
			header = styleCursor.Render("> " + header)
		} else {
			header = styleBold.Render("  " + header)
		}
		b.WriteString(header + "\n")

		for pi, pkg := range cat.Packages {
			check := "[ ]"
			if m.pkgIsSelected(ci, pi) {
				check = "[x]"
			}
			label := fmt.Sprintf("%s %s", check, pkg.Title)
			if pkg.Required {
				label += styleMuted.Render(" (required)")
			}
			if m.panel == panelContent && ci == m.pkgCatCursor && pi == m.pkgCursor {
				b.WriteString("    " + styleCursor.Render("> "+label) + "\n")
			} else {
				b.WriteString("      " + label + "\n")
			}
		}
	}

	b.WriteString("\n" + styleMuted.Render("Space: toggle  Enter: install  :skip to skip"))
	return b.String()
}

func (m Model) renderReboot() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Finish ") + "\n\n")
	if m.setupComplete {
		b.WriteString(styleGood.Render("Setup complete!") + "\n")
		return b.String()
	}
	b.WriteString("Your system is ready.\n\n")
	b.WriteString(styleMuted.Render("Press Enter to finish setup and reboot"))
	return b.String()
}

func (m Model) renderTasks() string {
	var b strings.Builder
	b.WriteString(stylePrimary.Render(" Working ") + "\n\n")

	for _, task := range m.tasks {
		var mark string
		switch task.State {
		case TaskRunning:
			mark = styleSecondary.Render(m.spinner.View())
		case TaskSuccess:
			mark = styleGood.Render("✓")
		case TaskFailed:
			mark = styleError.Render("✗")
		default:
			mark = styleMuted.Render("·")
		}
		b.WriteString(fmt.Sprintf(" %s %s\n", mark, task.Name))

		if task.State == TaskRunning && task.Progress >= 0 {
			b.WriteString("   " + m.progress.ViewAs(float64(task.Progress)/100) + "\n")
		}
		if task.State == TaskFailed && task.Output != "" {
			b.WriteString("   " + styleError.Render(firstLine(task.Output)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
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
	case m.isExecuting:
		text, title, box = "Working...", " Info ", styleInfoBox
	default:
		// Reserve the panel height.
		return "\n\n\n"
	}

	hint := ""
	if !m.isExecuting {
		hint = styleMuted.Render(" (press any key to dismiss)")
	}
	return box.Width(contentWidth + sidebarWidth).Render(styleBold.Render(title) + "\n" + text + hint)
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
	right += styleMuted.Render(m.statusHint()) + " "

	if m.width <= 0 {
		return left + "  " + right
	}
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

// statusHint gives the context-sensitive key legend shown on the right.
func (m Model) statusHint() string {
	switch {
	case m.isExecuting:
		return "working..."
	case m.confirm != confirmNone:
		return "y:confirm n:cancel"
	case m.showHelp:
		return "Esc:close"
	case !m.setupStarted:
		return "Enter:start  :q quit"
	case m.mode == vim.ModeInsert:
		return "Esc:normal Enter:next"
	case m.panel == panelSidebar:
		return "j/k:navigate l/Enter:open  ?:help"
	case m.content.kind == focusPicker:
		return "j/k:select Enter:choose  /type to filter"
	case m.content.kind == focusField:
		return "i:edit j/k:fields Enter:submit"
	default:
		return "Enter:continue h:back  ?:help"
	}
}

func (m Model) renderConfirmDialog() string {
	var title, question string
	switch m.confirm {
	case confirmPoweroff:
		title, question = "Shutdown", "Are you sure you want to shut down?"
	case confirmCancel:
		title, question = "Cancel setup", "Quit setup without finishing?"
	default:
		title, question = "Reboot", "Are you sure you want to reboot?"
		if m.setupComplete {
			question = "Setup complete! Reboot now?"
		}
	}

	body := question + "\n\n" +
		styleGood.Bold(true).Render("  y") + " - Yes    " +
		styleError.Bold(true).Render("n") + " - No"

	return stylePopupBox.Render(
		stylePrimary.Bold(true).Render(" "+title+" ") + "\n\n" + body,
	)
}

func renderWizardHelp() string {
	lines := []string{
		styleBold.Render("Navigation"),
		"  j/k      Move up/down",
		"  h/l      Switch sidebar/content",
		"  1-9      Jump to step",
		"  Enter    Open / run step",
		"  i        Edit focused input",
		"  Space    Toggle package",
		"",
		styleBold.Render("Commands"),
		"  :next       Go to next step",
		"  :skip       Skip the current step",
		"  :reboot     Reboot system",
		"  :poweroff   Shutdown system",
		"  :cancel     Quit setup",
		"  :help       Show this help",
		"",
		styleMuted.Render("Press Escape to close"),
	}
	return stylePopupBox.BorderForeground(colorMuted).Render(
		stylePrimary.Render(" Help ") + "\n" + strings.Join(lines, "\n"),
	)
}
