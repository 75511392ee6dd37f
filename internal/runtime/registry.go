package runtime

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aki/armlaunch/internal/core/logger"
)

// Config carries the settings every runtime factory receives
type Config struct {
	// GracePeriod is how long Stop waits before killing
	GracePeriod time.Duration
	// Shell runs entities declared with shell=True; empty picks $SHELL
	Shell  string
	Logger logger.Logger
}

// Factory creates a runtime instance
type Factory func(cfg Config) (Runtime, error)

// Registry manages runtime factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// defaultRegistry is the global registry instance
var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry
func Register(name string, factory Factory) error {
	return defaultRegistry.Register(name, factory)
}

// New creates a runtime from the default registry
func New(name string, cfg Config) (Runtime, error) {
	return defaultRegistry.New(name, cfg)
}

// List returns all registered runtime names from the default registry
func List() []string {
	return defaultRegistry.List()
}

// NewRegistry creates a new registry instance
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a runtime factory to the registry
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("runtime name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("runtime factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("runtime %q already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// New creates a runtime by name and validates it
func (r *Registry) New(name string, cfg Config) (Runtime, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("runtime %q not found (available: %v)", name, r.List())
	}

	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	rt, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime %q: %w", name, err)
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRuntimeNotAvailable, name, err)
	}
	return rt, nil
}

// List returns all registered runtime names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a runtime is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}
