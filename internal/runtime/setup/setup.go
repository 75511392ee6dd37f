// Package setup registers the built-in runtimes
package setup

import (
	"fmt"
	"sync"

	"github.com/aki/armlaunch/internal/runtime"
	"github.com/aki/armlaunch/internal/runtime/dryrun"
	"github.com/aki/armlaunch/internal/runtime/local"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterDefaults registers the local and dry-run runtimes with the default
// registry. Calling it more than once is harmless.
func RegisterDefaults() error {
	registerOnce.Do(func() {
		if err := runtime.Register(local.Type, local.Factory); err != nil {
			registerErr = fmt.Errorf("failed to register local runtime: %w", err)
			return
		}
		if err := runtime.Register(dryrun.Type, dryrun.Factory); err != nil {
			registerErr = fmt.Errorf("failed to register dryrun runtime: %w", err)
		}
	})
	return registerErr
}

// CreateFromType registers the defaults if needed and creates a runtime
func CreateFromType(runtimeType string, cfg runtime.Config) (runtime.Runtime, error) {
	if err := RegisterDefaults(); err != nil {
		return nil, err
	}
	return runtime.New(runtimeType, cfg)
}
