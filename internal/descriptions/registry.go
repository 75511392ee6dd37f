// Package descriptions holds the launch descriptions armlaunch knows about,
// keyed by "<package>/<launch file>".
package descriptions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aki/armlaunch/internal/descriptions/gripper"
	"github.com/aki/armlaunch/internal/descriptions/panda"
	"github.com/aki/armlaunch/internal/launch"
)

// Default is the description used when none is named
const Default = panda.Source

// Generator builds a fresh launch description
type Generator func() *launch.LaunchDescription

// Entry is a registered description
type Entry struct {
	Source    string
	Summary   string
	Generator Generator
}

// Registry manages launch description generators
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// defaultRegistry is the global registry instance
var defaultRegistry = NewRegistry()

func init() {
	must(defaultRegistry.Register(panda.Source, "Panda arm with MoveIt controllers, warehouse database and gripper", panda.GenerateLaunchDescription))
	must(defaultRegistry.Register(gripper.Source, "Franka Hand driver or fake joint state publisher", gripper.GenerateLaunchDescription))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Register adds a generator to the default registry
func Register(source, summary string, gen Generator) error {
	return defaultRegistry.Register(source, summary, gen)
}

// Get retrieves an entry from the default registry
func Get(source string) (Entry, error) {
	return defaultRegistry.Get(source)
}

// List returns every entry of the default registry
func List() []Entry {
	return defaultRegistry.List()
}

// Loader returns the default registry as a launch.DescriptionLoader
func Loader() launch.DescriptionLoader {
	return defaultRegistry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(source, summary string, gen Generator) error {
	if source == "" {
		return fmt.Errorf("description source cannot be empty")
	}
	if gen == nil {
		return fmt.Errorf("description generator cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[source]; exists {
		return fmt.Errorf("description %q already registered", source)
	}

	r.entries[source] = Entry{Source: source, Summary: summary, Generator: gen}
	return nil
}

// Get retrieves an entry by source
func (r *Registry) Get(source string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[source]
	if !exists {
		return Entry{}, fmt.Errorf("%w: %s", launch.ErrUnknownDescription, source)
	}
	return entry, nil
}

// Load implements launch.DescriptionLoader
func (r *Registry) Load(source string) (*launch.LaunchDescription, error) {
	entry, err := r.Get(source)
	if err != nil {
		return nil, err
	}
	return entry.Generator(), nil
}

// List returns every entry sorted by source
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Source < entries[j].Source
	})
	return entries
}
