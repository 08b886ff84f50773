package greeter

import "github.com/charmbracelet/lipgloss"

// Shared color palette and styles for the login screen.
var (
	colorPrimary   = lipgloss.Color("3")   // yellow
	colorSecondary = lipgloss.Color("6")   // cyan
	colorError     = lipgloss.Color("1")   // red
	colorMuted     = lipgloss.Color("240") // dark gray

	stylePrimary   = lipgloss.NewStyle().Foreground(colorPrimary)
	styleSecondary = lipgloss.NewStyle().Foreground(colorSecondary)
	styleError     = lipgloss.NewStyle().Foreground(colorError)
	styleMuted     = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold      = lipgloss.NewStyle().Bold(true)

	styleModeBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("0")).Background(colorPrimary)

	styleFormBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)

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
