//go:build windows

package local

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcessIsolation creates a new process group on Windows
func configureProcessIsolation(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags = syscall.CREATE_NEW_PROCESS_GROUP
}

// signalStop stops the process. Windows has no SIGTERM.
func signalStop(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to stop process: %w", err)
	}
	return nil
}

// signalKill kills the process
func signalKill(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill process: %w", err)
	}
	return nil
}
