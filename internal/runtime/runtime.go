// Package runtime is the process layer under the supervisor. A runtime
// starts one OS process (real or simulated) per enabled launch entity and
// hands back a Process the supervisor waits on and stops.
package runtime

import (
	"context"
	"io"
	"time"
)

// DefaultGracePeriod is how long Stop waits for SIGTERM before SIGKILL
const DefaultGracePeriod = 5 * time.Second

// Runtime starts entity processes
type Runtime interface {
	// Type is the registry name ("local", "dryrun")
	Type() string

	// Validate reports whether the runtime can start processes on this host
	Validate() error

	// Execute starts spec. The process is stopped when ctx is cancelled.
	Execute(ctx context.Context, spec ExecutionSpec) (Process, error)

	// Find looks a process up by ID or entity name
	Find(ctx context.Context, id string) (Process, error)

	// List returns every process started by this runtime, finished ones
	// included
	List(ctx context.Context) ([]Process, error)
}

// Process is one started entity
type Process interface {
	ID() string
	// Name is the entity name
	Name() string
	// PID is the OS process ID, or a synthetic one for simulated runs
	PID() int
	State() ProcessState

	// Wait blocks until exit. A non-zero exit comes back as *ExitError,
	// see ExitCodeOf.
	Wait(ctx context.Context) error
	// ExitCode is valid once the process finished
	ExitCode() (int, error)

	// Stop sends SIGTERM to the process group and kills it after the grace
	// period. Stopping a finished process returns ErrProcessAlreadyDone.
	Stop(ctx context.Context) error
	Kill(ctx context.Context) error
}

// ExecutionSpec is a launch entity rendered for execution
type ExecutionSpec struct {
	Name    string
	Command []string
	// Shell joins Command with spaces and runs it through the shell, as
	// ExecuteProcess(shell=True) does
	Shell bool
	// Oneshot entities (spawners, shell commands) are expected to exit
	Oneshot bool

	WorkingDir string
	// Environment is layered over the supervisor's own environment
	Environment map[string]string

	// Stdout and Stderr get the entity output; nil discards it
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessState is the lifecycle state of a Process
type ProcessState string

const (
	StateStarting ProcessState = "starting"
	StateRunning  ProcessState = "running"
	// StateStopped covers exit 0 and stops requested by the supervisor
	StateStopped ProcessState = "stopped"
	StateFailed  ProcessState = "failed"
	StateUnknown ProcessState = "unknown"
)

// IsTerminal reports whether the process has exited
func (s ProcessState) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}
