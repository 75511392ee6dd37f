//go:build !windows

package local

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcessIsolation starts the command in its own process group so
// signals reach every child it spawns
func configureProcessIsolation(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// signalStop sends SIGTERM to the process group
func signalStop(cmd *exec.Cmd) error {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("failed to send SIGTERM to process group: %w", err)
	}
	return nil
}

// signalKill sends SIGKILL to the process group
func signalKill(cmd *exec.Cmd) error {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("failed to kill process group: %w", err)
	}
	return nil
}
