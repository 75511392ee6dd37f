package runstate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	runsDir       = "runs"
	stateFileName = "state.yaml"
)

// Store keeps run state files under <state dir>/runs/<run id>/state.yaml
type Store struct {
	dir  string
	file *yamlFile[Run]
	now  func() time.Time
}

// NewStore creates a store rooted at the state directory
func NewStore(stateDir string) *Store {
	return &Store{
		dir:  filepath.Join(stateDir, runsDir),
		file: newYAMLFile[Run](5 * time.Second),
		now:  time.Now,
	}
}

// RunDir returns the directory holding a run's state, logs and params files
func (s *Store) RunDir(id string) string {
	return filepath.Join(s.dir, id)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.RunDir(id), stateFileName)
}

// Create writes the initial state of a run. Entities without a status
// start as pending.
func (s *Store) Create(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return errors.New("run id cannot be empty")
	}

	now := s.now()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = StatusStarting
	}
	for _, e := range run.Entities {
		if e.Status == "" {
			e.Status = StatusPending
		}
		e.UpdatedAt = now
	}

	return s.file.Write(ctx, s.path(run.ID), run, nil)
}

// Load reads a run by ID. A unique ID prefix is accepted.
func (s *Store) Load(ctx context.Context, id string) (*Run, error) {
	full, err := s.resolveID(id)
	if err != nil {
		return nil, err
	}

	run, _, err := s.file.Read(ctx, s.path(full))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to read run %s: %w", id, err)
	}
	return run, nil
}

// Update applies fn to the stored run
func (s *Store) Update(ctx context.Context, id string, fn func(*Run) error) error {
	path := s.path(id)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return err
	}

	return s.file.Update(ctx, path, func(run *Run) error {
		if err := fn(run); err != nil {
			return err
		}
		run.UpdatedAt = s.now()
		return nil
	})
}

// Transition moves an entity to a new status. mutate, if set, runs after
// the transition is validated and may record the PID or exit code.
func (s *Store) Transition(ctx context.Context, id, entity string, to Status, mutate func(*EntityState)) error {
	return s.Update(ctx, id, func(run *Run) error {
		e, ok := run.Entity(entity)
		if !ok {
			return fmt.Errorf("run %s has no entity %q", id, entity)
		}
		if err := ValidateTransition(e.Status, to); err != nil {
			var invalid *InvalidTransitionError
			if errors.As(err, &invalid) {
				invalid.Entity = entity
			}
			return err
		}
		e.Status = to
		e.UpdatedAt = s.now()
		if mutate != nil {
			mutate(e)
		}
		return nil
	})
}

// SetStatus records the status of the run itself
func (s *Store) SetStatus(ctx context.Context, id string, status Status, runErr error) error {
	return s.Update(ctx, id, func(run *Run) error {
		if run.Status != status {
			if err := ValidateTransition(run.Status, status); err != nil {
				return err
			}
		}
		run.Status = status
		if runErr != nil {
			run.Error = runErr.Error()
		}
		return nil
	})
}

// List returns every run, newest first. Unreadable runs are skipped.
func (s *Store) List(ctx context.Context) ([]*Run, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, _, err := s.file.Read(ctx, s.path(entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// Latest returns the most recently started run
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return runs[0], nil
}

// Delete removes a run and everything in its directory
func (s *Store) Delete(id string) error {
	full, err := s.resolveID(id)
	if err != nil {
		return err
	}
	return os.RemoveAll(s.RunDir(full))
}

func (s *Store) resolveID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	if _, err := os.Stat(s.path(id)); err == nil {
		return id, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), id) {
			matches = append(matches, entry.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("run id %q is ambiguous (%d matches)", id, len(matches))
	}
}
