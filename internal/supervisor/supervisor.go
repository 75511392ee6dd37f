// Package supervisor starts the entities of a resolved launch plan and keeps
// them running until the launch shuts down.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/runstate"
	"github.com/aki/armlaunch/internal/runtime"
)

// Probe checks that a started entity is ready to serve. Failures are logged,
// never fatal.
type Probe func(ctx context.Context, e *launch.Entity) error

// Supervisor runs launch plans on a runtime
type Supervisor struct {
	rt       runtime.Runtime
	store    *runstate.Store
	log      logger.Logger
	runDir   string
	probes   map[string]Probe
	stdout   io.Writer
	stderr   io.Writer
	screenMu sync.Mutex

	retries    int
	retryDelay time.Duration
	stopWait   time.Duration

	mu       sync.Mutex
	failures []error
}

// Option configures a Supervisor
type Option func(*Supervisor)

// WithStore persists run state on every transition
func WithStore(store *runstate.Store) Option {
	return func(s *Supervisor) {
		s.store = store
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Supervisor) {
		s.log = l
	}
}

// WithRunDir sets the directory for generated parameter files and logs.
// Without it a temporary directory is used and removed after the run.
func WithRunDir(dir string) Option {
	return func(s *Supervisor) {
		s.runDir = dir
	}
}

// WithProbe attaches a readiness probe to an entity
func WithProbe(entity string, probe Probe) Option {
	return func(s *Supervisor) {
		s.probes[entity] = probe
	}
}

// WithScreen sets where screen output goes
func WithScreen(stdout, stderr io.Writer) Option {
	return func(s *Supervisor) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithDefaultRetries sets the retries of oneshot entities that declare none
func WithDefaultRetries(retries int, delay time.Duration) Option {
	return func(s *Supervisor) {
		s.retries = retries
		s.retryDelay = delay
	}
}

// WithStopTimeout bounds how long shutdown waits for processes to stop
func WithStopTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		s.stopWait = d
	}
}

// New creates a supervisor on the given runtime
func New(rt runtime.Runtime, opts ...Option) *Supervisor {
	s := &Supervisor{
		rt:       rt,
		log:      logger.Nop(),
		probes:   make(map[string]Probe),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stopWait: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts every enabled entity of the plan and blocks until the launch
// ends. It returns nil when ctx is canceled (the launch was stopped), a
// *ShutdownError when an entity with a shutdown on-exit action exits, and
// the combined entity failures when every entity exits on its own.
func (s *Supervisor) Run(ctx context.Context, plan *launch.Plan) error {
	ordered, err := Order(plan)
	if err != nil {
		return err
	}

	runDir := s.runDir
	if runDir == "" {
		tmp, err := os.MkdirTemp("", "armlaunch-"+plan.ID)
		if err != nil {
			return fmt.Errorf("failed to create run directory: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()
		runDir = tmp
	}

	runLog := logger.ForRun(s.log, plan.ID)
	units := make(map[string]*unit, len(ordered))
	for _, e := range ordered {
		u := newUnit(e, runLog)
		out, err := s.openOutputs(e, filepath.Join(runDir, "logs"))
		if err != nil {
			closeUnits(units)
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		u.out = out
		if err := u.writeParams(filepath.Join(runDir, "params")); err != nil {
			closeUnits(units)
			_ = out.Close()
			return err
		}
		units[e.Name] = u
	}
	defer closeUnits(units)

	if err := s.createRun(ctx, plan, units); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.log.Info("starting launch", "run", plan.ID, "description", plan.Description, "entities", len(ordered))

	var wg sync.WaitGroup
	for _, e := range ordered {
		u := units[e.Name]
		deps := lo.FilterMap(e.DependsOn, func(name string, _ int) (*unit, bool) {
			d, ok := units[name]
			return d, ok
		})

		if len(deps) == 0 {
			// start inline so independent entities keep declaration order
			proc, err := s.start(runCtx, u)
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.supervise(runCtx, cancel, u, proc, err)
			}()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if !s.awaitDependencies(runCtx, u, deps) {
				return
			}
			proc, err := s.start(runCtx, u)
			s.supervise(runCtx, cancel, u, proc, err)
		}()
	}

	s.setRunStatus(plan.ID, runstate.StatusRunning, nil)

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	var result error
	select {
	case <-runCtx.Done():
		var shutdown *ShutdownError
		if cause := context.Cause(runCtx); errors.As(cause, &shutdown) {
			result = shutdown
			s.log.Info("shutting down", "entity", shutdown.Entity, "exit_code", shutdown.ExitCode)
		} else {
			s.log.Info("launch interrupted, stopping")
		}
	case <-finished:
		result = s.entityFailures()
		s.log.Info("all entities exited")
	}

	s.setRunStatus(plan.ID, runstate.StatusStopping, nil)
	cancel(context.Canceled)
	stopErr := s.stopAll(ordered, units)

	select {
	case <-finished:
	case <-time.After(s.stopWait):
		stopErr = multierr.Append(stopErr, fmt.Errorf("entities still running after %s", s.stopWait))
	}

	s.setRunStatus(plan.ID, finalStatus(ctx, result), result)
	return multierr.Combine(result, stopErr)
}

func finalStatus(ctx context.Context, result error) runstate.Status {
	var shutdown *ShutdownError
	switch {
	case errors.As(result, &shutdown):
		if shutdown.ExitCode == 0 {
			return runstate.StatusCompleted
		}
		return runstate.StatusFailed
	case result != nil:
		return runstate.StatusFailed
	case ctx.Err() != nil:
		return runstate.StatusStopped
	default:
		return runstate.StatusCompleted
	}
}

// stopAll stops every live process concurrently
func (s *Supervisor) stopAll(ordered []*launch.Entity, units map[string]*unit) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.stopWait)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for i := len(ordered) - 1; i >= 0; i-- {
		u := units[ordered[i].Name]
		proc := s.beginStop(u)
		if proc == nil {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := proc.Stop(ctx); err != nil && !errors.Is(err, runtime.ErrProcessAlreadyDone) {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("failed to stop %s: %w", u.entity.Name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}

func (s *Supervisor) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, err)
}

func (s *Supervisor) entityFailures() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return multierr.Combine(s.failures...)
}

func closeUnits(units map[string]*unit) {
	for _, u := range units {
		if u.out != nil {
			_ = u.out.Close()
		}
	}
}
