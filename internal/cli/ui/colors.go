// Package ui provides UI styling and output functions for the CLI.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aki/armlaunch/internal/runstate"
)

// Colors adapt to light and dark terminals
var (
	red   = lipgloss.AdaptiveColor{Light: "#C00000", Dark: "#FF5555"}
	green = lipgloss.AdaptiveColor{Light: "#007A00", Dark: "#50FA7B"}
	blue  = lipgloss.AdaptiveColor{Light: "#0057B8", Dark: "#4DA6FF"}
	amber = lipgloss.AdaptiveColor{Light: "#B36B00", Dark: "#FFB86C"}
	gray  = lipgloss.AdaptiveColor{Light: "#707070", Dark: "#8A8A8A"}
)

var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	InfoStyle    = lipgloss.NewStyle().Foreground(blue)
	WarningStyle = lipgloss.NewStyle().Foreground(amber)
	DimStyle     = lipgloss.NewStyle().Foreground(gray)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

// Icons
const (
	RobotIcon    = "🤖"
	ProcessIcon  = "⚙️"
	ArgumentIcon = "🔧"
	SuccessIcon  = "✅"
	ErrorIcon    = "❌"
	InfoIcon     = "ⓘ"
	WarningIcon  = "⚠️"
)

// statusStyles colors run and entity statuses by outcome. Anything not
// listed is dimmed.
var statusStyles = map[runstate.Status]lipgloss.Style{
	runstate.StatusRunning:    SuccessStyle,
	runstate.StatusCompleted:  SuccessStyle,
	runstate.StatusFailed:     ErrorStyle.Bold(true),
	runstate.StatusStarting:   WarningStyle,
	runstate.StatusRestarting: WarningStyle,
	runstate.StatusStopping:   WarningStyle,
}

// StatusStyle returns the style of a status
func StatusStyle(s runstate.Status) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return DimStyle
}
