package runstate

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when no run matches an ID
var ErrRunNotFound = errors.New("run not found")

// Run is the persisted state of one launch
type Run struct {
	ID          string            `yaml:"id" json:"id"`
	Description string            `yaml:"description" json:"description"`
	Runtime     string            `yaml:"runtime" json:"runtime"`
	Status      Status            `yaml:"status" json:"status"`
	Arguments   map[string]string `yaml:"arguments,omitempty" json:"arguments,omitempty"`

	// SupervisorPID is the armlaunch process supervising the run
	SupervisorPID int `yaml:"supervisor_pid" json:"supervisor_pid"`

	Entities  []*EntityState `yaml:"entities" json:"entities"`
	Error     string         `yaml:"error,omitempty" json:"error,omitempty"`
	StartedAt time.Time      `yaml:"started_at" json:"started_at"`
	UpdatedAt time.Time      `yaml:"updated_at" json:"updated_at"`
}

// EntityState is the persisted state of one entity of a run
type EntityState struct {
	Name      string    `yaml:"name" json:"name"`
	Kind      string    `yaml:"kind" json:"kind"`
	Status    Status    `yaml:"status" json:"status"`
	PID       int       `yaml:"pid,omitempty" json:"pid,omitempty"`
	ExitCode  *int      `yaml:"exit_code,omitempty" json:"exit_code,omitempty"`
	Restarts  int       `yaml:"restarts,omitempty" json:"restarts,omitempty"`
	Command   []string  `yaml:"command,omitempty" json:"command,omitempty"`
	Condition string    `yaml:"condition,omitempty" json:"condition,omitempty"`
	LogFile   string    `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	Error     string    `yaml:"error,omitempty" json:"error,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// Entity returns the state of the named entity
func (r *Run) Entity(name string) (*EntityState, bool) {
	for _, e := range r.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Active returns the entities that may have a live process
func (r *Run) Active() []*EntityState {
	var out []*EntityState
	for _, e := range r.Entities {
		if e.Status.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of entities per status
func (r *Run) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, e := range r.Entities {
		counts[e.Status]++
	}
	return counts
}
