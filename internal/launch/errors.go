package launch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingArguments is returned when required launch arguments were not supplied
	ErrMissingArguments = errors.New("missing required launch arguments")

	// ErrInvalidBool is returned when a condition predicate is not a boolean
	ErrInvalidBool = errors.New("invalid boolean value")

	// ErrUnknownConfiguration is returned when a substitution references an unset configuration
	ErrUnknownConfiguration = errors.New("launch configuration not set")

	// ErrInvalidChoice is returned when an argument value is outside its declared choices
	ErrInvalidChoice = errors.New("value not in allowed choices")

	// ErrIncludeCycle is returned when a description includes itself, directly or not
	ErrIncludeCycle = errors.New("include cycle detected")

	// ErrUnknownDescription is returned when an include names an unregistered description
	ErrUnknownDescription = errors.New("launch description not found")
)

// MissingArgumentsError lists every required argument a description was
// resolved without.
type MissingArgumentsError struct {
	Source string
	Names  []string
}

func (e *MissingArgumentsError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrMissingArguments, strings.Join(e.Names, ", "))
	if e.Source != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, e.Source)
	}
	return msg
}

func (e *MissingArgumentsError) Unwrap() error {
	return ErrMissingArguments
}
