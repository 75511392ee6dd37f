package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/core/tail"
)

var (
	logsRunID  string
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs <entity>",
	Short: "Show the log file of a launched entity",
	Long: `Show the log file of an entity of a launch run, the newest run unless
--run is given. Only entities whose output goes to the log have one.`,
	Example: `  armlaunch logs robot_state_publisher
  armlaunch logs robot_state_publisher --run 3f2a -f`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().StringVarP(&logsRunID, "run", "r", "", "Run ID or unique prefix")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Stream new output until the entity exits")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "Initial lines to show (default: terminal height)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	run, err := c.Run(ctx, logsRunID)
	if err != nil {
		return err
	}
	entity, ok := run.Entity(args[0])
	if !ok {
		return fmt.Errorf("run %s has no entity %s", run.ID, args[0])
	}
	if entity.LogFile == "" {
		return fmt.Errorf("%s writes to the screen only, it has no log file", entity.Name)
	}

	running := func(ctx context.Context) bool {
		current, err := c.Store.Load(ctx, run.ID)
		if err != nil {
			return false
		}
		e, ok := current.Entity(entity.Name)
		return ok && e.Status.IsActive()
	}

	opts := tail.DefaultOptions()
	opts.Writer = cmd.OutOrStdout()
	opts.MaxLines = logsLines
	tailer := tail.New(entity.LogFile, running, opts)

	if !logsFollow {
		_, err := tailer.Print()
		return err
	}
	if err := tailer.Follow(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
