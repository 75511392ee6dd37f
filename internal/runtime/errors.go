package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeNotAvailable indicates that the runtime is not available or properly configured
	ErrRuntimeNotAvailable = errors.New("runtime is not available")

	// ErrProcessNotFound indicates that the requested process was not found
	ErrProcessNotFound = errors.New("process not found")

	// ErrProcessAlreadyDone indicates that the process has already completed
	ErrProcessAlreadyDone = errors.New("process already completed")

	// ErrInvalidCommand indicates that the command specification is invalid
	ErrInvalidCommand = errors.New("invalid command")
)

// ExitError reports a process that exited with a non-zero status
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s was terminated by a signal", e.Name)
	}
	return fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
}

// ExitCodeOf extracts the exit code carried by err: 0 for nil, the code of
// an *ExitError, and -1 for anything else.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}
