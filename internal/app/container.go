// Package app wires configuration, the package index, the run state store and
// the runtimes together for the CLI and the MCP server
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aki/armlaunch/internal/core/config"
	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/descriptions"
	"github.com/aki/armlaunch/internal/descriptions/panda"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/launch/ament"
	"github.com/aki/armlaunch/internal/runstate"
	"github.com/aki/armlaunch/internal/runtime"
	"github.com/aki/armlaunch/internal/runtime/dryrun"
	"github.com/aki/armlaunch/internal/runtime/setup"
	"github.com/aki/armlaunch/internal/supervisor"
	"github.com/aki/armlaunch/internal/warehouse"
)

// Container holds the services shared by every command
type Container struct {
	// ProjectRoot is the directory holding .armlaunch, or the working
	// directory when there is no project configuration
	ProjectRoot string

	ConfigManager *config.Manager
	Config        *config.Config
	Logger        logger.Logger
	Index         *ament.Index
	Store         *runstate.Store
}

// Options selects the project and logger of a container
type Options struct {
	// ProjectRoot skips the upward search for .armlaunch
	ProjectRoot string
	// ConfigPath is an explicit config file
	ConfigPath string
	// ManagerOptions are passed to the config manager
	ManagerOptions []config.ManagerOption
	Logger         logger.Logger
}

// NewContainer loads the configuration and creates the shared services
func NewContainer(ctx context.Context, opts Options) (*Container, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var manager *config.Manager
	root := opts.ProjectRoot
	switch {
	case opts.ConfigPath != "":
		manager = config.NewManagerForFile(opts.ConfigPath, opts.ManagerOptions...)
		root = manager.GetProjectRoot()
	default:
		if root == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			root = cwd
			if found, err := config.FindProjectRoot(cwd); err == nil {
				root = found
			}
		}
		manager = config.NewManager(root, opts.ManagerOptions...)
	}

	if opts.ConfigPath != "" && !manager.IsInitialized() {
		return nil, fmt.Errorf("%w: %s", config.ErrNotFound, opts.ConfigPath)
	}

	cfg, err := manager.Load(ctx)
	if err != nil {
		return nil, err
	}

	c := &Container{
		ProjectRoot:   root,
		ConfigManager: manager,
		Config:        cfg,
		Logger:        log,
		Index:         ament.NewIndex(cfg.AmentPrefixPaths...),
		Store:         runstate.NewStore(cfg.StateDir),
	}
	log.Debug("container ready", "project", root, "state_dir", cfg.StateDir, "prefixes", c.Index.Prefixes())
	return c, nil
}

// DefaultSource returns source, or the default description when empty
func DefaultSource(source string) string {
	if source == "" {
		return descriptions.Default
	}
	return source
}

// Arguments returns the arguments declared by a description
func (c *Container) Arguments(source string) ([]launch.DeclareLaunchArgument, error) {
	entry, err := descriptions.Get(DefaultSource(source))
	if err != nil {
		return nil, err
	}
	return entry.Generator().Arguments(), nil
}

// Resolve builds the plan of a description. Overrides are merged over the
// configured arguments. With dryRun, command substitutions are not run and
// executables resolve to their bare names.
func (c *Container) Resolve(ctx context.Context, source string, overrides map[string]string, dryRun bool) (*launch.Plan, error) {
	source = DefaultSource(source)
	entry, err := descriptions.Get(source)
	if err != nil {
		return nil, err
	}

	opts := []launch.ContextOption{
		launch.WithPackageIndex(c.Index),
		launch.WithDescriptionLoader(descriptions.Loader()),
		launch.WithLogger(c.Logger),
	}
	if dryRun {
		opts = append(opts,
			launch.WithCommandRunner(placeholderRunner{}),
			launch.WithLookPath(bareName))
	}

	lc := launch.NewContext(ctx, opts...)
	plan, err := launch.Resolve(lc, source, entry.Generator(), c.Config.LaunchArguments(overrides))
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("resolved plan", "run", plan.ID, "entities", len(plan.Entities), "enabled", len(plan.Enabled()))
	return plan, nil
}

// Warnings reports problems in the installed configuration of a description
// that do not stop it from resolving
func (c *Container) Warnings(source string) []string {
	if DefaultSource(source) != panda.Source {
		return nil
	}
	var warnings []string
	for _, name := range panda.MissingControllers(c.Index, c.Logger) {
		warnings = append(warnings, fmt.Sprintf("controller %s is not configured in %s", name, panda.ControllerCfg))
	}
	return warnings
}

// Runtime creates the configured runtime, or the dry-run runtime
func (c *Container) Runtime(dryRun bool) (runtime.Runtime, error) {
	runtimeType := c.Config.Runtime
	if dryRun {
		runtimeType = dryrun.Type
	}
	return setup.CreateFromType(runtimeType, runtime.Config{
		GracePeriod: c.Config.StopGracePeriod,
		Shell:       c.Config.Shell,
		Logger:      c.Logger,
	})
}

// Supervisor creates a supervisor for a plan, writing run state and logs
// under the state directory
func (c *Container) Supervisor(rt runtime.Runtime, plan *launch.Plan, stdout, stderr io.Writer) *supervisor.Supervisor {
	opts := []supervisor.Option{
		supervisor.WithStore(c.Store),
		supervisor.WithLogger(c.Logger),
		supervisor.WithRunDir(c.Store.RunDir(plan.ID)),
		supervisor.WithScreen(stdout, stderr),
		supervisor.WithDefaultRetries(c.Config.Spawner.Retries, c.Config.Spawner.RetryDelay),
		supervisor.WithStopTimeout(3 * c.Config.StopGracePeriod),
	}

	if c.Config.Warehouse.ProbeEnabled() && rt.Type() != dryrun.Type {
		prober := warehouse.NewProber(
			warehouse.WithTimeout(c.Config.Warehouse.ProbeTimeout),
			warehouse.WithLogger(c.Logger))
		opts = append(opts, supervisor.WithProbe(panda.DatabaseNode, func(ctx context.Context, e *launch.Entity) error {
			host, port := warehouse.Target(e.Parameters)
			return prober.Probe(ctx, host, port)
		}))
	}

	return supervisor.New(rt, opts...)
}

// Launch supervises a plan until it shuts down or ctx is canceled
func (c *Container) Launch(ctx context.Context, plan *launch.Plan, dryRun bool, stdout, stderr io.Writer) error {
	rt, err := c.Runtime(dryRun)
	if err != nil {
		return err
	}
	return c.Supervisor(rt, plan, stdout, stderr).Run(ctx, plan)
}

// Run loads a run by ID or unique prefix, or the newest run when id is empty
func (c *Container) Run(ctx context.Context, id string) (*runstate.Run, error) {
	if id == "" {
		return c.Store.Latest(ctx)
	}
	return c.Store.Load(ctx, id)
}

// placeholderRunner stands in for command substitutions in dry runs
type placeholderRunner struct{}

func (placeholderRunner) Run(_ context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	return []byte(fmt.Sprintf("<!-- output of: %s -->", strings.Join(argv, " "))), nil
}

func bareName(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return filepath.Base(name), nil
}
