package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/runstate"
)

var removeAllStopped bool

var removeCmd = &cobra.Command{
	Use:     "rm [run-id ...]",
	Aliases: []string{"remove"},
	Short:   "Remove finished launch runs with their logs",
	Long: `Remove the state, logs and parameter files of finished launch runs.
Active runs are refused; stop them first.`,
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeAllStopped, "all", false, "Remove every finished run")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !removeAllStopped {
		return fmt.Errorf("specify run IDs or --all")
	}

	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var runs []*runstate.Run
	if removeAllStopped {
		all, err := c.Store.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range all {
			if r.Status.IsTerminal() {
				runs = append(runs, r)
			}
		}
	}
	for _, id := range args {
		run, err := c.Store.Load(ctx, id)
		if err != nil {
			return err
		}
		if !run.Status.IsTerminal() {
			return fmt.Errorf("run %s is still %s, stop it first", run.ID, run.Status)
		}
		runs = append(runs, run)
	}

	for _, r := range runs {
		if err := c.Store.Delete(r.ID); err != nil {
			return fmt.Errorf("failed to remove run %s: %w", r.ID, err)
		}
		ui.Success("Removed run %s", r.ID)
	}
	if len(runs) == 0 {
		ui.Info("No finished runs to remove")
	}
	return nil
}
