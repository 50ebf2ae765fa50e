package tui

import "github.com/charmbracelet/lipgloss"

// Board geometry in terminal cells. Mouse hit-testing depends on these.
const (
	tileWidth  = 6
	tileHeight = 3

	// The board is drawn below the title and a blank line, inside a border
	boardTop  = 3
	boardLeft = 1
)

var (
	goldColor   = lipgloss.Color("#FFD700")
	borderColor = lipgloss.Color("#5C5C5C")

	// One accent per configured background, cycled when there are more
	backgroundPalette = []lipgloss.Color{
		lipgloss.Color("#E52521"), // red
		lipgloss.Color("#4A90E2"), // blue
		lipgloss.Color("#43B047"), // green
		lipgloss.Color("#F5A623"), // orange
		lipgloss.Color("#9B59B6"), // purple
	}

	titleStyle = lipgloss.NewStyle().Bold(true)

	tileStyle = lipgloss.NewStyle().
			Width(tileWidth).
			Height(tileHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color("#FFFFFF"))

	blankStyle = lipgloss.NewStyle().
			Width(tileWidth).
			Height(tileHeight)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	victoryStyle = lipgloss.NewStyle().Foreground(goldColor).Bold(true)
)

func accentColor(background int) lipgloss.Color {
	if background < 0 {
		background = 0
	}
	return backgroundPalette[background%len(backgroundPalette)]
}
