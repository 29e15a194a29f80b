package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#bd93f9")
	colorSuccess = lipgloss.Color("#50fa7b")
	colorError   = lipgloss.Color("#ff5555")
	colorSubtext = lipgloss.Color("#6272a4")
	colorText    = lipgloss.Color("#f8f8f2")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff79c6")).
				Bold(true)

	rowStyle = lipgloss.NewStyle().Foreground(colorText)

	statusStyles = map[string]lipgloss.Style{
		"completed": lipgloss.NewStyle().Foreground(colorSuccess),
		"failed":    lipgloss.NewStyle().Foreground(colorError),
		"canceled":  lipgloss.NewStyle().Foreground(colorSubtext),
	}

	helpStyle = lipgloss.NewStyle().Foreground(colorSubtext)
)

func styleForStatus(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return rowStyle
}
