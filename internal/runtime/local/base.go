// Package local provides a runtime that executes processes directly using os/exec.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/runtime"
)

// baseRuntime keeps track of the processes a runtime started
type baseRuntime struct {
	processes sync.Map // map[string]*Process
}

// Find locates an existing process by ID or entity name
func (r *baseRuntime) Find(ctx context.Context, id string) (runtime.Process, error) {
	if proc, ok := r.processes.Load(id); ok {
		return proc.(*Process), nil
	}

	var found *Process
	r.processes.Range(func(_, value any) bool {
		if p := value.(*Process); p.spec.Name == id {
			found = p
			return false
		}
		return true
	})
	if found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("%w: %s", runtime.ErrProcessNotFound, id)
}

// List returns all processes managed by this runtime
func (r *baseRuntime) List(ctx context.Context) ([]runtime.Process, error) {
	var processes []runtime.Process
	r.processes.Range(func(_, value any) bool {
		processes = append(processes, value.(*Process))
		return true
	})
	return processes, nil
}

// setupCommand configures common command properties
func setupCommand(cmd *exec.Cmd, spec runtime.ExecutionSpec) error {
	if spec.WorkingDir != "" {
		if _, err := os.Stat(spec.WorkingDir); err != nil {
			return fmt.Errorf("working directory does not exist: %w", err)
		}
		cmd.Dir = spec.WorkingDir
	}

	cmd.Env = os.Environ()
	for k, v := range spec.Environment {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	return nil
}

// Process represents a local process
type Process struct {
	id          string
	cmd         *exec.Cmd
	spec        runtime.ExecutionSpec
	state       runtime.ProcessState
	gracePeriod time.Duration
	log         logger.Logger
	mu          sync.RWMutex
	done        chan struct{}
	doneOnce    sync.Once
	exitCode    int
}

// ID returns the unique identifier for this process
func (p *Process) ID() string {
	return p.id
}

// Name returns the entity name
func (p *Process) Name() string {
	return p.spec.Name
}

// State returns the current state of the process
func (p *Process) State() runtime.ProcessState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// PID returns the OS process ID
func (p *Process) PID() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Wait blocks until the process completes
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		p.mu.RLock()
		code := p.exitCode
		p.mu.RUnlock()
		if code != 0 {
			return &runtime.ExitError{Name: p.spec.Name, Code: code}
		}
		return nil
	}
}

// Stop sends SIGTERM to the process group and kills it if it is still
// alive after the grace period
func (p *Process) Stop(ctx context.Context) error {
	if p.State() != runtime.StateRunning {
		return runtime.ErrProcessAlreadyDone
	}

	p.log.Debug("stopping process", "pid", p.PID(), "grace", p.gracePeriod)
	if err := signalStop(p.cmd); err != nil {
		return err
	}

	timer := time.NewTimer(p.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		p.log.Warn("process did not stop in time, killing", "pid", p.PID())
		return p.Kill(ctx)
	case <-ctx.Done():
		return p.Kill(context.WithoutCancel(ctx))
	case <-p.done:
		return nil
	}
}

// Kill forcefully terminates the process group (SIGKILL)
func (p *Process) Kill(ctx context.Context) error {
	if p.State() != runtime.StateRunning {
		return runtime.ErrProcessAlreadyDone
	}

	if err := signalKill(p.cmd); err != nil {
		return err
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExitCode returns the exit code (valid after process completes)
func (p *Process) ExitCode() (int, error) {
	select {
	case <-p.done:
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.exitCode, nil
	default:
		return -1, fmt.Errorf("process still running")
	}
}

// monitor waits for the process to complete and updates its state
func (p *Process) monitor() {
	err := p.cmd.Wait()

	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}

	p.mu.Lock()
	p.exitCode = code
	if code == 0 {
		p.state = runtime.StateStopped
	} else {
		p.state = runtime.StateFailed
	}
	p.mu.Unlock()

	p.log.Debug("process exited", "pid", p.PID(), "exit_code", code)
	p.doneOnce.Do(func() {
		close(p.done)
	})
}

// setState updates the process state
func (p *Process) setState(state runtime.ProcessState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// createProcess creates a new Process instance
func createProcess(spec runtime.ExecutionSpec, grace time.Duration, log logger.Logger) *Process {
	return &Process{
		id:          uuid.New().String(),
		spec:        spec,
		state:       runtime.StateStarting,
		gracePeriod: grace,
		log:         log.With("entity", spec.Name),
		done:        make(chan struct{}),
	}
}
