// Package runstate persists the state of launch runs so other armlaunch
// invocations can inspect and stop them.
package runstate

import (
	"fmt"

	"github.com/samber/lo"
)

// Status is the lifecycle state of a run or of one entity in it.
//
// An entity starts pending. Skipped entities had a false condition.
// Oneshots (spawners, shell commands) end completed when they exit 0,
// daemons end stopped when the supervisor stopped them. Restarting is
// only used between spawner retries.
type Status string

const (
	StatusPending    Status = "pending"
	StatusStarting   Status = "starting"
	StatusRunning    Status = "running"
	StatusRestarting Status = "restarting"
	StatusStopping   Status = "stopping"

	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

type statusInfo struct {
	// active statuses may have a live process
	active bool
	next   []Status
}

// lifecycle lists every status with the statuses it may move to. Statuses
// without successors are terminal.
var lifecycle = map[Status]statusInfo{
	StatusPending:    {next: []Status{StatusStarting, StatusSkipped, StatusStopped, StatusFailed}},
	StatusStarting:   {active: true, next: []Status{StatusRunning, StatusRestarting, StatusStopping, StatusFailed}},
	StatusRunning:    {active: true, next: []Status{StatusStopping, StatusRestarting, StatusCompleted, StatusStopped, StatusFailed}},
	StatusRestarting: {active: true, next: []Status{StatusStarting, StatusStopped, StatusFailed}},
	StatusStopping:   {active: true, next: []Status{StatusStopped, StatusCompleted, StatusFailed}},
	StatusCompleted:  {},
	StatusStopped:    {},
	StatusFailed:     {},
	StatusSkipped:    {},
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether s is a final status
func (s Status) IsTerminal() bool {
	info, ok := lifecycle[s]
	return ok && len(info.next) == 0
}

// IsActive reports whether a process may exist in status s
func (s Status) IsActive() bool {
	return lifecycle[s].active
}

// CanTransitionTo reports whether s may move to target
func (s Status) CanTransitionTo(target Status) bool {
	return lo.Contains(lifecycle[s].next, target)
}

// ValidateTransition returns an *InvalidTransitionError for a move the
// lifecycle does not allow
func ValidateTransition(from, to Status) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to}
}

// InvalidTransitionError rejects a status change. Entity is set when the
// change came through Store.Transition.
type InvalidTransitionError struct {
	Entity string
	From   Status
	To     Status
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
	if e.Entity == "" {
		return msg
	}
	return e.Entity + ": " + msg
}
