package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/runstate"
)

var (
	stopWait    bool
	stopTimeout time.Duration
)

var stopCmd = &cobra.Command{
	Use:   "stop [run-id]",
	Short: "Stop a running launch",
	Long: `Send SIGTERM to the supervisor of a launch run, the newest run when no ID
is given. The supervisor stops every process before it exits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVarP(&stopWait, "wait", "w", false, "Wait until the run has stopped")
	stopCmd.Flags().DurationVar(&stopTimeout, "timeout", 30*time.Second, "How long --wait waits")
}

func runStop(cmd *cobra.Command, args []string) error {
	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var id string
	if len(args) == 1 {
		id = args[0]
	}
	run, err := c.Run(ctx, id)
	if err != nil {
		return err
	}

	if run.Status.IsTerminal() {
		return fmt.Errorf("run %s is not active (%s)", run.ID, run.Status)
	}
	if run.SupervisorPID <= 0 {
		return fmt.Errorf("run %s has no supervisor recorded", run.ID)
	}

	proc, err := os.FindProcess(run.SupervisorPID)
	if err != nil {
		return fmt.Errorf("failed to find supervisor %d: %w", run.SupervisorPID, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal supervisor %d: %w", run.SupervisorPID, err)
	}
	c.Logger.Debug("sent SIGTERM to supervisor", "run", run.ID, "pid", run.SupervisorPID)

	if !stopWait {
		ui.Success("Stopping run %s", run.ID)
		return nil
	}

	status, err := waitForRun(ctx, c.Store, run.ID, stopTimeout)
	if err != nil {
		return err
	}
	ui.Success("Run %s %s", run.ID, status)
	return nil
}

// waitForRun polls the run state until it is terminal
func waitForRun(ctx context.Context, store *runstate.Store, id string, timeout time.Duration) (runstate.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		run, err := store.Load(ctx, id)
		if err != nil {
			return "", err
		}
		if run.Status.IsTerminal() {
			return run.Status, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("run %s still %s after %s", id, run.Status, timeout)
		case <-ticker.C:
		}
	}
}
