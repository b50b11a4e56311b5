package ui

import (
	"github.com/charmbracelet/lipgloss"

	"planboard/internal/document"
	"planboard/internal/planner"
)

var (
	primaryColor   = lipgloss.Color("62")  // Purple
	secondaryColor = lipgloss.Color("241") // Gray
	successColor   = lipgloss.Color("42")  // Green
	warningColor   = lipgloss.Color("214") // Orange
	errorColor     = lipgloss.Color("196") // Red
	infoColor      = lipgloss.Color("39")  // Cyan

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	doneStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Strikethrough(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	formStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	priorityStyles = map[document.Priority]lipgloss.Style{
		document.PriorityHigh:   lipgloss.NewStyle().Foreground(errorColor),
		document.PriorityMedium: lipgloss.NewStyle().Foreground(warningColor),
		document.PriorityLow:    lipgloss.NewStyle().Foreground(infoColor),
	}

	statusStyles = map[planner.DateStatus]lipgloss.Style{
		planner.StatusPastIncomplete: lipgloss.NewStyle().Foreground(errorColor),
		planner.StatusPastComplete:   lipgloss.NewStyle().Foreground(successColor),
		planner.StatusToday:          lipgloss.NewStyle().Foreground(infoColor).Bold(true),
		planner.StatusFuture:         lipgloss.NewStyle().Foreground(primaryColor),
	}
)

func priorityStyle(p document.Priority) lipgloss.Style {
	if style, ok := priorityStyles[p.Normalize()]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// projectStyle renders the project's own color as a swatch.
func projectStyle(color string) lipgloss.Style {
	if color == "" {
		color = planner.DefaultProjectColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func statusGlyph(s planner.DateStatus) string {
	glyph := "·"
	switch s {
	case planner.StatusPastIncomplete:
		glyph = "!"
	case planner.StatusPastComplete:
		glyph = "✓"
	case planner.StatusToday:
		glyph = "•"
	case planner.StatusFuture:
		glyph = "○"
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render(glyph)
	}
	return helpStyle.Render(glyph)
}
