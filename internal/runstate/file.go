package runstate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrConcurrentModification is returned when a file has been modified since it was read
var ErrConcurrentModification = errors.New("file was modified concurrently")

// ErrLockTimeout is returned when acquiring a file lock times out
var ErrLockTimeout = errors.New("timeout acquiring file lock")

// fileInfo is the metadata compared for CAS writes
type fileInfo struct {
	ModTime time.Time
	Size    int64
}

// yamlFile provides process-safe YAML reads and writes guarded by flock,
// with compare-and-swap updates
type yamlFile[T any] struct {
	lockTimeout time.Duration
}

func newYAMLFile[T any](timeout time.Duration) *yamlFile[T] {
	return &yamlFile[T]{lockTimeout: timeout}
}

func (f *yamlFile[T]) lock(ctx context.Context, path string, shared bool) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, f.lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if shared {
		locked, err = lock.TryRLockContext(lockCtx, 50*time.Millisecond)
	} else {
		locked, err = lock.TryLockContext(lockCtx, 50*time.Millisecond)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return lock, nil
}

// Read reads the file under a shared lock
func (f *yamlFile[T]) Read(ctx context.Context, path string) (*T, *fileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}

	lock, err := f.lock(ctx, path, true)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = lock.Unlock() }()

	return readUnlocked[T](path)
}

func readUnlocked[T any](path string) (*T, *fileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var result T
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return &result, &fileInfo{ModTime: stat.ModTime(), Size: stat.Size()}, nil
}

// Write replaces the file under an exclusive lock. With a non-nil expected
// info the write fails with ErrConcurrentModification if the file changed.
func (f *yamlFile[T]) Write(ctx context.Context, path string, data *T, expected *fileInfo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock, err := f.lock(ctx, path, false)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	if expected != nil {
		stat, err := os.Stat(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat file: %w", err)
		}
		if err == nil && (!stat.ModTime().Equal(expected.ModTime) || stat.Size() != expected.Size) {
			return ErrConcurrentModification
		}
	}

	return writeUnlocked(path, data)
}

func writeUnlocked[T any](path string, data *T) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	// temp file + rename keeps lock-free readers from seeing partial writes
	tmp := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := atomicRename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Update applies fn to the file content while holding the exclusive lock
// for the whole read-modify-write. A missing file starts from the zero value.
func (f *yamlFile[T]) Update(ctx context.Context, path string, fn func(*T) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock, err := f.lock(ctx, path, false)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	data, _, err := readUnlocked[T](path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read file: %w", err)
		}
		data = new(T)
	}

	if err := fn(data); err != nil {
		return err
	}
	return writeUnlocked(path, data)
}
