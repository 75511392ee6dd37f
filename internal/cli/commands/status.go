package commands

import (
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/runstate"
)

var statusAll bool

var statusCmd = &cobra.Command{
	Use:     "status [run-id]",
	Aliases: []string{"ps"},
	Short:   "Show the state of a launch run",
	Long: `Show the state of a launch run by ID or unique ID prefix, the newest run
when no ID is given. Live CPU and memory usage is shown for running processes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusAll, "all", "a", false, "List every recorded run")
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if statusAll {
		runs, err := c.Store.List(ctx)
		if err != nil {
			return err
		}
		if ui.GlobalFormatter.IsStructured() {
			return ui.GlobalFormatter.Output(runs)
		}
		ui.PrintRunList(runs)
		return nil
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	}
	run, err := c.Run(ctx, id)
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsStructured() {
		return ui.GlobalFormatter.Output(run)
	}
	ui.PrintRun(run, processStats(run))
	return nil
}

// processStats samples CPU and memory of the live processes of a run.
// Processes that exited since the state was written are left out.
func processStats(run *runstate.Run) map[string]ui.ProcessStats {
	stats := make(map[string]ui.ProcessStats)
	for _, e := range run.Active() {
		if e.PID <= 0 {
			continue
		}
		p, err := process.NewProcess(int32(e.PID))
		if err != nil {
			continue
		}
		cpu, err := p.CPUPercent()
		if err != nil {
			continue
		}
		mem, err := p.MemoryInfo()
		if err != nil {
			continue
		}
		stats[e.Name] = ui.ProcessStats{CPUPercent: cpu, RSS: mem.RSS}
	}
	return stats
}
