package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/launch/params"
	"github.com/aki/armlaunch/internal/runstate"
	"github.com/aki/armlaunch/internal/runtime"
)

// unit is the supervision state of one entity
type unit struct {
	entity     *launch.Entity
	log        logger.Logger
	out        *outputs
	paramsFile string

	ready     chan struct{}
	readyOnce sync.Once
	ok        bool

	mu       sync.Mutex
	status   runstate.Status
	proc     runtime.Process
	restarts int
	runID    string
}

func newUnit(e *launch.Entity, log logger.Logger) *unit {
	return &unit{
		entity: e,
		log:    logger.ForEntity(log, e.Name),
		ready:  make(chan struct{}),
		status: runstate.StatusPending,
	}
}

// writeParams writes the generated parameter file of a node
func (u *unit) writeParams(dir string) error {
	if u.entity.Kind != launch.KindNode {
		return nil
	}
	path, err := params.WriteFile(dir, u.entity.Name, u.entity.NodeName, u.entity.Namespace, u.entity.Parameters)
	if err != nil {
		return fmt.Errorf("%s: %w", u.entity.Name, err)
	}
	u.paramsFile = path
	return nil
}

// markReady releases dependents; ok reports whether they may start
func (u *unit) markReady(ok bool) {
	u.readyOnce.Do(func() {
		u.ok = ok
		close(u.ready)
	})
}

func (u *unit) spec() runtime.ExecutionSpec {
	e := u.entity
	spec := runtime.ExecutionSpec{
		Name:        e.Name,
		Command:     e.CommandLine(u.paramsFile),
		Shell:       e.Shell,
		WorkingDir:  e.WorkingDir,
		Environment: e.Env,
		Oneshot:     !e.IsDaemon(),
	}
	if u.out != nil {
		spec.Stdout = u.out.stdout
		spec.Stderr = u.out.stderr
	}
	return spec
}

// transition moves the unit to a new status and persists it. Invalid
// transitions are logged and ignored.
func (s *Supervisor) transition(u *unit, to runstate.Status, mutate func(*runstate.EntityState)) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return s.transitionLocked(u, to, mutate)
}

func (s *Supervisor) transitionLocked(u *unit, to runstate.Status, mutate func(*runstate.EntityState)) bool {
	if err := runstate.ValidateTransition(u.status, to); err != nil {
		u.log.Debug("ignoring transition", "from", u.status, "to", to)
		return false
	}
	u.status = to

	if s.store != nil && u.runID != "" {
		if err := s.store.Transition(context.Background(), u.runID, u.entity.Name, to, mutate); err != nil {
			u.log.Warn("failed to persist state", "status", to, "error", err)
		}
	}
	return true
}

// start launches one process for the unit
func (s *Supervisor) start(ctx context.Context, u *unit) (runtime.Process, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.transition(u, runstate.StatusStarting, nil)

	// processes outlive ctx; stopAll stops them explicitly
	proc, err := s.rt.Execute(context.WithoutCancel(ctx), u.spec())
	if err != nil {
		u.log.Error("failed to start", "error", err)
		return nil, fmt.Errorf("failed to start %s: %w", u.entity.Name, err)
	}

	u.mu.Lock()
	u.proc = proc
	if ctx.Err() != nil {
		// shutdown began while Execute ran and stopAll saw no process
		s.transitionLocked(u, runstate.StatusStopping, func(e *runstate.EntityState) {
			e.PID = proc.PID()
		})
		u.mu.Unlock()
		stopCtx := context.WithoutCancel(ctx)
		if err := proc.Stop(stopCtx); err != nil && !errors.Is(err, runtime.ErrProcessAlreadyDone) {
			u.log.Warn("failed to stop late process", "error", err)
		}
		_ = proc.Wait(stopCtx)
		return nil, ctx.Err()
	}
	s.transitionLocked(u, runstate.StatusRunning, func(e *runstate.EntityState) {
		e.PID = proc.PID()
		e.Restarts = u.restarts
	})
	u.mu.Unlock()

	u.log.Info("started", "pid", proc.PID())
	return proc, nil
}

// awaitDependencies blocks until every dependency is ready. It returns false
// and marks the unit failed when a dependency failed or ctx ended.
func (s *Supervisor) awaitDependencies(ctx context.Context, u *unit, deps []*unit) bool {
	for _, d := range deps {
		select {
		case <-ctx.Done():
			s.transition(u, runstate.StatusStopped, nil)
			u.markReady(false)
			return false
		case <-d.ready:
			if !d.ok {
				err := fmt.Errorf("%s: %w: %s", u.entity.Name, ErrDependencyFailed, d.entity.Name)
				u.log.Error("not starting", "error", err)
				s.recordFailure(err)
				s.transition(u, runstate.StatusFailed, func(e *runstate.EntityState) {
					e.Error = err.Error()
				})
				u.markReady(false)
				return false
			}
		}
	}
	return true
}

// supervise follows the unit until it is done for good
func (s *Supervisor) supervise(ctx context.Context, cancel context.CancelCauseFunc, u *unit, proc runtime.Process, startErr error) {
	if u.entity.IsDaemon() {
		s.superviseDaemon(ctx, cancel, u, proc, startErr)
		return
	}
	s.superviseOneshot(ctx, cancel, u, proc, startErr)
}

func (s *Supervisor) superviseDaemon(ctx context.Context, cancel context.CancelCauseFunc, u *unit, proc runtime.Process, startErr error) {
	e := u.entity

	for {
		if startErr != nil {
			if ctx.Err() != nil {
				s.transition(u, runstate.StatusStopped, nil)
				u.markReady(false)
				return
			}
			s.fail(u, startErr)
			u.markReady(false)
			if e.ShutdownOnExit {
				cancel(&ShutdownError{Entity: e.Name, ExitCode: -1, Reason: e.ShutdownReason})
			}
			return
		}

		u.markReady(true)
		if probe, ok := s.probes[e.Name]; ok {
			go s.runProbe(ctx, u, probe)
		}

		waitErr := proc.Wait(context.Background())
		code := runtime.ExitCodeOf(waitErr)

		if ctx.Err() != nil {
			s.exited(u, runstate.StatusStopped, code)
			return
		}

		u.log.Info("exited", "exit_code", code)

		if e.ShutdownOnExit {
			s.exited(u, statusForCode(code), code)
			cancel(&ShutdownError{Entity: e.Name, ExitCode: code, Reason: e.ShutdownReason})
			return
		}

		if !e.Respawn {
			if code != 0 {
				s.recordFailure(fmt.Errorf("%s: %w", e.Name, waitErr))
			}
			s.exited(u, statusForCode(code), code)
			return
		}

		u.mu.Lock()
		u.restarts++
		restarts := u.restarts
		s.transitionLocked(u, runstate.StatusRestarting, func(st *runstate.EntityState) {
			st.ExitCode = &code
			st.Restarts = restarts
		})
		u.mu.Unlock()

		u.log.Info("respawning", "delay", e.RespawnDelay, "restarts", restarts)
		select {
		case <-ctx.Done():
			s.transition(u, runstate.StatusStopped, nil)
			return
		case <-time.After(e.RespawnDelay):
		}

		proc, startErr = s.start(ctx, u)
	}
}

func (s *Supervisor) superviseOneshot(ctx context.Context, cancel context.CancelCauseFunc, u *unit, first runtime.Process, firstErr error) {
	e := u.entity

	retries := e.Retries
	delay := e.RetryDelay
	if retries == 0 {
		retries = s.retries
		delay = s.retryDelay
	}

	policy := retrypolicy.Builder[any]().
		WithMaxRetries(retries).
		WithDelay(delay).
		OnRetry(func(ev failsafe.ExecutionEvent[any]) {
			u.log.Warn("retrying", "attempt", ev.Attempts(), "error", ev.LastError())
		}).
		Build()

	attempt := 0
	err := failsafe.NewExecutor[any](policy).WithContext(ctx).Run(func() error {
		attempt++
		proc, err := first, firstErr
		if attempt > 1 {
			u.mu.Lock()
			u.restarts++
			u.mu.Unlock()
			proc, err = s.start(ctx, u)
		}

		if err == nil {
			err = proc.Wait(context.Background())
		}
		if err != nil && ctx.Err() == nil && (retries < 0 || attempt <= retries) {
			code := runtime.ExitCodeOf(err)
			s.transition(u, runstate.StatusRestarting, func(st *runstate.EntityState) {
				st.ExitCode = &code
				st.Error = err.Error()
			})
		}
		return err
	})

	switch {
	case ctx.Err() != nil:
		s.transition(u, runstate.StatusStopped, nil)
		u.markReady(false)
	case err != nil:
		s.fail(u, err)
		u.markReady(false)
		if e.ShutdownOnExit {
			cancel(&ShutdownError{Entity: e.Name, ExitCode: runtime.ExitCodeOf(err), Reason: e.ShutdownReason})
		}
	default:
		s.exited(u, runstate.StatusCompleted, 0)
		u.log.Info("completed", "attempts", attempt)
		u.markReady(true)
		if e.ShutdownOnExit {
			cancel(&ShutdownError{Entity: e.Name, Reason: e.ShutdownReason})
		}
	}
}

func (s *Supervisor) fail(u *unit, err error) {
	u.log.Error("failed", "error", err)
	s.recordFailure(err)
	code := runtime.ExitCodeOf(err)
	s.transition(u, runstate.StatusFailed, func(st *runstate.EntityState) {
		st.Error = err.Error()
		if code >= 0 {
			st.ExitCode = &code
		}
	})
}

func (s *Supervisor) exited(u *unit, status runstate.Status, code int) {
	s.transition(u, status, func(st *runstate.EntityState) {
		st.ExitCode = &code
	})
}

// beginStop marks a running unit as stopping and returns its process
func (s *Supervisor) beginStop(u *unit) runtime.Process {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.proc == nil || u.proc.State().IsTerminal() {
		return nil
	}
	if u.status != runstate.StatusRunning {
		return nil
	}
	s.transitionLocked(u, runstate.StatusStopping, nil)
	return u.proc
}

func (s *Supervisor) runProbe(ctx context.Context, u *unit, probe Probe) {
	if err := probe(ctx, u.entity); err != nil {
		if ctx.Err() == nil {
			u.log.Warn("readiness probe failed", "error", err)
		}
		return
	}
	u.log.Info("ready")
}

func statusForCode(code int) runstate.Status {
	if code == 0 {
		return runstate.StatusCompleted
	}
	return runstate.StatusFailed
}

// createRun writes the initial run state
func (s *Supervisor) createRun(ctx context.Context, plan *launch.Plan, units map[string]*unit) error {
	s.mu.Lock()
	s.failures = nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}

	run := &runstate.Run{
		ID:            plan.ID,
		Description:   plan.Description,
		Runtime:       s.rt.Type(),
		Arguments:     make(map[string]string),
		SupervisorPID: os.Getpid(),
		StartedAt:     time.Now(),
	}
	for _, a := range plan.Arguments {
		if a.Source == plan.Description {
			run.Arguments[a.Name] = a.Value
		}
	}

	for _, e := range plan.Entities {
		state := &runstate.EntityState{
			Name:      e.Name,
			Kind:      string(e.Kind),
			Command:   e.Command,
			Condition: e.Condition,
		}
		if u, ok := units[e.Name]; ok {
			u.runID = plan.ID
			state.Command = u.spec().Command
			if u.out != nil {
				state.LogFile = u.out.logFile
			}
		} else {
			state.Status = runstate.StatusSkipped
		}
		run.Entities = append(run.Entities, state)
	}

	if err := s.store.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (s *Supervisor) setRunStatus(id string, status runstate.Status, runErr error) {
	if s.store == nil {
		return
	}
	if err := s.store.SetStatus(context.Background(), id, status, runErr); err != nil && !errors.Is(err, runstate.ErrRunNotFound) {
		s.log.Warn("failed to persist run status", "status", status, "error", err)
	}
}
