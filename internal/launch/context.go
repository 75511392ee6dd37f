package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aki/armlaunch/internal/core/logger"
)

// PackageIndex resolves ROS package share directories
type PackageIndex interface {
	ShareDirectory(pkg string) (string, error)
}

// DescriptionLoader returns the launch description registered under a source key
type DescriptionLoader interface {
	Load(source string) (*LaunchDescription, error)
}

// CommandRunner runs a command during resolution and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner
func (ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("command %q failed: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("command %q failed: %w", argv[0], err)
	}
	return stdout.Bytes(), nil
}

// Context carries launch configurations and the services substitutions
// need while a description is resolved. A Context is used for one
// resolution and is not safe for concurrent use.
type Context struct {
	ctx      context.Context
	configs  map[string]string
	index    PackageIndex
	loader   DescriptionLoader
	runner   CommandRunner
	lookPath func(string) (string, error)
	logger   logger.Logger

	// commands and outputs are shared with child scopes
	commands *[]string
	outputs  map[string]string
	includes []string
}

// ContextOption configures a Context
type ContextOption func(*Context)

// WithPackageIndex sets the package index used by FindPackageShare
func WithPackageIndex(index PackageIndex) ContextOption {
	return func(c *Context) {
		c.index = index
	}
}

// WithDescriptionLoader sets the loader used for includes
func WithDescriptionLoader(loader DescriptionLoader) ContextOption {
	return func(c *Context) {
		c.loader = loader
	}
}

// WithCommandRunner replaces the runner used by Command substitutions
func WithCommandRunner(runner CommandRunner) ContextOption {
	return func(c *Context) {
		c.runner = runner
	}
}

// WithLookPath replaces the executable lookup used by FindExecutable
func WithLookPath(fn func(string) (string, error)) ContextOption {
	return func(c *Context) {
		c.lookPath = fn
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) ContextOption {
	return func(c *Context) {
		c.logger = l
	}
}

// NewContext creates a resolution context
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{
		ctx:      ctx,
		configs:  make(map[string]string),
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
		logger:   logger.Nop(),
		commands: new([]string),
		outputs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Context returns the Go context governing commands run during resolution
func (c *Context) Context() context.Context {
	return c.ctx
}

// Logger returns the context logger
func (c *Context) Logger() logger.Logger {
	return c.logger
}

// Configuration returns the value of a launch configuration
func (c *Context) Configuration(name string) (string, bool) {
	v, ok := c.configs[name]
	return v, ok
}

// SetConfiguration sets a launch configuration in this scope
func (c *Context) SetConfiguration(name, value string) {
	c.configs[name] = value
}

// Configurations returns a copy of every configuration in scope
func (c *Context) Configurations() map[string]string {
	out := make(map[string]string, len(c.configs))
	for k, v := range c.configs {
		out[k] = v
	}
	return out
}

// ShareDirectory resolves a package share directory through the index
func (c *Context) ShareDirectory(pkg string) (string, error) {
	if c.index == nil {
		return "", fmt.Errorf("no package index configured, cannot locate %s", pkg)
	}
	return c.index.ShareDirectory(pkg)
}

// Commands returns the command lines evaluated so far, in order
func (c *Context) Commands() []string {
	out := make([]string, len(*c.commands))
	copy(out, *c.commands)
	return out
}

func (c *Context) recordCommand(line string) {
	*c.commands = append(*c.commands, line)
}

// child returns a scope inheriting every configuration. Writes to the child
// do not leak into the parent.
func (c *Context) child(source string) *Context {
	includes := make([]string, len(c.includes), len(c.includes)+1)
	copy(includes, c.includes)

	return &Context{
		ctx:      c.ctx,
		configs:  c.Configurations(),
		index:    c.index,
		loader:   c.loader,
		runner:   c.runner,
		lookPath: c.lookPath,
		logger:   c.logger,
		commands: c.commands,
		outputs:  c.outputs,
		includes: append(includes, source),
	}
}

func (c *Context) including(source string) bool {
	for _, s := range c.includes {
		if s == source {
			return true
		}
	}
	return false
}
