// Package dryrun provides a runtime that starts nothing. Oneshot specs exit
// immediately with status 0 and daemons run until stopped, unless a
// Behavior says otherwise.
package dryrun

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/runtime"
)

// Type is the registry name of the dry-run runtime
const Type = "dryrun"

// Behavior scripts how the processes started for one entity name exit
type Behavior struct {
	// ExitCode is the status of a process that exits on its own
	ExitCode int
	// ExitAfter makes a daemon exit on its own after this long
	ExitAfter time.Duration
	// FailTimes makes the first n starts exit with ExitCode, later starts
	// exit 0. Zero applies ExitCode to every start.
	FailTimes int
	// StartErr is returned by Execute instead of starting a process
	StartErr error
}

// Runtime records execution specs without running them
type Runtime struct {
	mu        sync.Mutex
	behaviors map[string]Behavior
	starts    map[string]int
	executed  []runtime.ExecutionSpec
	processes []*Process
	log       logger.Logger
	pid       atomic.Int64
}

// Option configures the dry-run runtime
type Option func(*Runtime)

// WithBehavior scripts the processes started for an entity
func WithBehavior(name string, b Behavior) Option {
	return func(r *Runtime) {
		r.behaviors[name] = b
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(r *Runtime) {
		r.log = l
	}
}

// New creates a dry-run runtime
func New(opts ...Option) *Runtime {
	r := &Runtime{
		behaviors: make(map[string]Behavior),
		starts:    make(map[string]int),
		log:       logger.Nop(),
	}
	r.pid.Store(40000)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Factory creates dry-run runtimes for the runtime registry
func Factory(cfg runtime.Config) (runtime.Runtime, error) {
	return New(WithLogger(cfg.Logger)), nil
}

// Type returns the runtime type identifier
func (r *Runtime) Type() string {
	return Type
}

// Validate always succeeds
func (r *Runtime) Validate() error {
	return nil
}

// Execute records the spec and returns a simulated process
func (r *Runtime) Execute(ctx context.Context, spec runtime.ExecutionSpec) (runtime.Process, error) {
	if len(spec.Command) == 0 || spec.Command[0] == "" {
		return nil, runtime.ErrInvalidCommand
	}

	r.mu.Lock()
	b, scripted := r.behaviors[spec.Name]
	r.starts[spec.Name]++
	attempt := r.starts[spec.Name]
	r.executed = append(r.executed, spec)
	r.mu.Unlock()

	if b.StartErr != nil {
		return nil, b.StartErr
	}

	code := b.ExitCode
	if b.FailTimes > 0 && attempt > b.FailTimes {
		code = 0
	}

	p := &Process{
		id:    uuid.New().String(),
		name:  spec.Name,
		pid:   int(r.pid.Add(1)),
		state: runtime.StateRunning,
		done:  make(chan struct{}),
	}

	r.log.Info("dry run", "entity", spec.Name, "command", strings.Join(spec.Command, " "), "shell", spec.Shell)
	if spec.Stdout != nil {
		fmt.Fprintf(spec.Stdout, "[dry-run] %s\n", strings.Join(spec.Command, " "))
	}

	r.mu.Lock()
	r.processes = append(r.processes, p)
	r.mu.Unlock()

	switch {
	case spec.Oneshot && (!scripted || b.ExitAfter == 0):
		p.finish(code)
	case scripted && b.ExitAfter > 0:
		go func() {
			select {
			case <-time.After(b.ExitAfter):
				p.finish(code)
			case <-p.done:
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			p.finish(-1)
		case <-p.done:
		}
	}()

	return p, nil
}

// Find locates a process by ID or entity name
func (r *Runtime) Find(ctx context.Context, id string) (runtime.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.processes {
		if p.id == id || p.name == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", runtime.ErrProcessNotFound, id)
}

// List returns every simulated process
func (r *Runtime) List(ctx context.Context) ([]runtime.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]runtime.Process, 0, len(r.processes))
	for _, p := range r.processes {
		out = append(out, p)
	}
	return out, nil
}

// Exit makes the newest running process of an entity exit with code, the
// way a crashed node would
func (r *Runtime) Exit(name string, code int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.processes) - 1; i >= 0; i-- {
		p := r.processes[i]
		if p.name != name {
			continue
		}
		if p.State() != runtime.StateRunning {
			return fmt.Errorf("%w: %s", runtime.ErrProcessAlreadyDone, name)
		}
		p.finish(code)
		return nil
	}
	return fmt.Errorf("%w: %s", runtime.ErrProcessNotFound, name)
}

// Executed returns the specs passed to Execute, in order
func (r *Runtime) Executed() []runtime.ExecutionSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runtime.ExecutionSpec(nil), r.executed...)
}

// Starts returns how many times an entity was started
func (r *Runtime) Starts(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts[name]
}

// Process is a simulated process
type Process struct {
	id   string
	name string
	pid  int

	mu       sync.Mutex
	state    runtime.ProcessState
	exitCode int
	done     chan struct{}
	once     sync.Once
}

func (p *Process) finish(code int) {
	p.once.Do(func() {
		p.mu.Lock()
		p.exitCode = code
		if code == 0 {
			p.state = runtime.StateStopped
		} else {
			p.state = runtime.StateFailed
		}
		p.mu.Unlock()
		close(p.done)
	})
}

// ID returns the unique identifier for this process
func (p *Process) ID() string { return p.id }

// Name returns the entity name
func (p *Process) Name() string { return p.name }

// PID returns a fake process ID
func (p *Process) PID() int { return p.pid }

// State returns the current state of the process
func (p *Process) State() runtime.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until the process finishes
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		p.mu.Lock()
		code := p.exitCode
		p.mu.Unlock()
		if code != 0 {
			return &runtime.ExitError{Name: p.name, Code: code}
		}
		return nil
	}
}

// Stop finishes the process as if it exited cleanly on SIGTERM
func (p *Process) Stop(ctx context.Context) error {
	if p.State() != runtime.StateRunning {
		return runtime.ErrProcessAlreadyDone
	}
	p.finish(0)
	return nil
}

// Kill finishes the process as if it was killed
func (p *Process) Kill(ctx context.Context) error {
	if p.State() != runtime.StateRunning {
		return runtime.ErrProcessAlreadyDone
	}
	p.finish(-1)
	return nil
}

// ExitCode returns the exit code (valid after process completes)
func (p *Process) ExitCode() (int, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.exitCode, nil
	default:
		return -1, fmt.Errorf("process still running")
	}
}
