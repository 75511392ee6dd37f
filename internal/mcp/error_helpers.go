package mcp

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestions represents an error with tool suggestions
type ErrorWithSuggestions struct {
	Message     string
	Suggestions []string
}

// Error returns the error message with suggestions
func (e *ErrorWithSuggestions) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}

	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString("\n\nTry one of these instead:\n")
	for _, suggestion := range e.Suggestions {
		sb.WriteString("  - ")
		sb.WriteString(suggestion)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NewErrorWithSuggestions creates a new error with tool suggestions
func NewErrorWithSuggestions(message string, suggestions ...string) error {
	return &ErrorWithSuggestions{
		Message:     message,
		Suggestions: suggestions,
	}
}

// DescriptionNotFoundError lists the known descriptions
func DescriptionNotFoundError(source string, known []string) error {
	suggestions := make([]string, 0, len(known))
	for _, k := range known {
		suggestions = append(suggestions, fmt.Sprintf("description: %q", k))
	}
	return NewErrorWithSuggestions(fmt.Sprintf("launch description not found: %s", source), suggestions...)
}

// RunNotFoundError is returned when no run matches
func RunNotFoundError(id string) error {
	msg := "no launch runs recorded"
	if id != "" {
		msg = fmt.Sprintf("launch run not found: %s", id)
	}
	return NewErrorWithSuggestions(msg,
		"launch_status without run_id - Show the newest run",
		"armlaunch launch - Start a launch from the command line",
	)
}
