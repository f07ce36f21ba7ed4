package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	GameLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	TurnInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	SecretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	MatchedDigitStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B")).
				Bold(true)

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// ApplyTheme switches the pale foregrounds to readable colors on light
// terminals. The default theme asks termenv what the terminal reports.
func ApplyTheme(theme string) {
	dark := true
	switch theme {
	case "dark":
		dark = true
	case "light":
		dark = false
	default:
		dark = termenv.HasDarkBackground()
	}

	if dark {
		return
	}

	GameLogStyle = GameLogStyle.Foreground(lipgloss.Color("#1A1A1A"))
	SecretStyle = SecretStyle.Foreground(lipgloss.Color("#1A1A1A"))
	PlayerInfoStyle = PlayerInfoStyle.Foreground(lipgloss.Color("#1A1A1A"))
	WarningStyle = WarningStyle.Foreground(lipgloss.Color("#B8860B"))
}
