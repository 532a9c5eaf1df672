package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed     = lipgloss.Color("#ff5555")
	colorGreen   = lipgloss.Color("#50fa7b")
	colorYellow  = lipgloss.Color("#f1fa8c")
	colorBgLight = lipgloss.Color("#343746")
	colorFg      = lipgloss.Color("#f8f8f2")
	colorBorder  = lipgloss.Color("#44475a")
)

// Style definitions for the approval gate: an original-hunk pane, a
// proposed-snippet pane, and a status bar.
var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	originalHeaderStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true).
				Padding(0, 0, 1, 0)

	proposedHeaderStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true).
				Padding(0, 0, 1, 0)

	contextLineStyle = lipgloss.NewStyle().
				Foreground(colorFg)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
