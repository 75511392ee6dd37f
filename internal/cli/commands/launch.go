package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/supervisor"
)

var launchDryRun bool

var launchCmd = &cobra.Command{
	Use:   "launch [description] [name:=value ...]",
	Short: "Resolve a launch description and supervise its processes",
	Long: `Resolve a launch description and start its nodes and processes in
dependency order. The launch runs until interrupted or until a process with
a shutdown action exits, ros2_control_node for the MoveIt launch.

With --dry-run nothing is executed: processes are simulated and command
substitutions are not run.`,
	Example: `  armlaunch launch robot_ip:=172.16.0.2
  armlaunch launch robot_ip:=dont-care use_fake_hardware:=true --dry-run`,
	RunE: runLaunch,
}

func init() {
	launchCmd.Flags().BoolVar(&launchDryRun, "dry-run", false, "Simulate processes instead of starting them")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	source, overrides, err := splitLaunchArgs(args)
	if err != nil {
		return err
	}

	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan, err := c.Resolve(ctx, source, overrides, launchDryRun)
	if err != nil {
		return err
	}

	for _, w := range c.Warnings(source) {
		ui.Warning("%s", w)
	}

	ui.Info("%s Launching %s (run %s, %d of %d entities enabled)",
		ui.RobotIcon, plan.Description, plan.ID, len(plan.Enabled()), len(plan.Entities))

	err = c.Launch(ctx, plan, launchDryRun, cmd.OutOrStdout(), cmd.ErrOrStderr())
	var shutdown *supervisor.ShutdownError
	switch {
	case err == nil:
		ui.Success("Launch %s stopped", plan.ID)
		return nil
	case errors.As(err, &shutdown) && shutdown.ExitCode == 0:
		ui.Info("%s exited, launch %s shut down", shutdown.Entity, plan.ID)
		return nil
	default:
		return fmt.Errorf("launch %s failed: %w", plan.ID, err)
	}
}
