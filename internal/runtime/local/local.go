package local

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"

	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/runtime"
)

// Type is the registry name of the local runtime
const Type = "local"

// Runtime implements the local process runtime
type Runtime struct {
	baseRuntime
	cfg runtime.Config
}

// New creates a new local runtime
func New(cfg runtime.Config) *Runtime {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = runtime.DefaultGracePeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Runtime{cfg: cfg}
}

// Factory creates local runtimes for the runtime registry
func Factory(cfg runtime.Config) (runtime.Runtime, error) {
	return New(cfg), nil
}

// Type returns the runtime type identifier
func (r *Runtime) Type() string {
	return Type
}

// Validate checks if this runtime is properly configured and available
func (r *Runtime) Validate() error {
	// Local runtime is always available
	return nil
}

// Execute starts a new process. Shell specs run through the configured
// shell, $SHELL, or /bin/sh.
func (r *Runtime) Execute(ctx context.Context, spec runtime.ExecutionSpec) (runtime.Process, error) {
	if len(spec.Command) == 0 || spec.Command[0] == "" {
		return nil, runtime.ErrInvalidCommand
	}

	proc := createProcess(spec, r.cfg.GracePeriod, r.cfg.Logger)

	argv := spec.Command
	if spec.Shell {
		argv = r.shellArgv(strings.Join(spec.Command, " "))
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := setupCommand(cmd, spec); err != nil {
		return nil, err
	}
	configureProcessIsolation(cmd)
	proc.cmd = cmd

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Name, err)
	}
	proc.setState(runtime.StateRunning)
	proc.log.Debug("process started", "pid", cmd.Process.Pid, "command", argv)

	r.processes.Store(proc.id, proc)

	go proc.monitor()

	// Handle context cancellation
	go func() {
		select {
		case <-ctx.Done():
			_ = proc.Stop(context.WithoutCancel(ctx))
		case <-proc.done:
		}
	}()

	return proc, nil
}

// shellArgv runs line through the shell with the flag that shell expects
func (r *Runtime) shellArgv(line string) []string {
	shell := r.shell()
	name := strings.ToLower(shell[strings.LastIndexAny(shell, `/\`)+1:])
	name = strings.TrimSuffix(name, ".exe")
	switch name {
	case "cmd":
		return []string{shell, "/C", line}
	case "powershell", "pwsh":
		return []string{shell, "-NoProfile", "-Command", line}
	}
	return []string{shell, "-c", line}
}

func (r *Runtime) shell() string {
	if r.cfg.Shell != "" {
		return r.cfg.Shell
	}
	if shell := os.Getenv("SHELL"); shell != "" && goruntime.GOOS != "windows" {
		return shell
	}
	if goruntime.GOOS == "windows" {
		return "cmd"
	}
	return "/bin/sh"
}
