package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrShutdownRequested is returned when an entity with a shutdown
	// on-exit action exits
	ErrShutdownRequested = errors.New("shutdown requested")

	// ErrDependencyFailed marks entities that never started because an
	// entity they depend on failed
	ErrDependencyFailed = errors.New("dependency failed")

	// ErrUnknownDependency is returned when an entity depends on a name
	// that is not in the plan
	ErrUnknownDependency = errors.New("unknown dependency")
)

// ShutdownError reports which entity ended the run
type ShutdownError struct {
	Entity   string
	ExitCode int
	Reason   string
}

func (e *ShutdownError) Error() string {
	msg := fmt.Sprintf("%s: %s exited with code %d", ErrShutdownRequested, e.Entity, e.ExitCode)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Unwrap returns ErrShutdownRequested
func (e *ShutdownError) Unwrap() error {
	return ErrShutdownRequested
}
