package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
)

var describeRunCommands bool

var describeCmd = &cobra.Command{
	Use:     "describe [description] [name:=value ...]",
	Aliases: []string{"plan"},
	Short:   "Resolve a launch description without starting it",
	Long: `Resolve a launch description into its plan: bound arguments, the nodes and
processes it would start, their command lines and start order.

Command substitutions such as xacro are not run unless --run-commands is set.`,
	Example: `  armlaunch describe robot_ip:=172.16.0.2
  armlaunch describe robot_ip:=172.16.0.2 db:=true --format yaml`,
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().BoolVar(&describeRunCommands, "run-commands", false, "Run command substitutions such as xacro")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	source, overrides, err := splitLaunchArgs(args)
	if err != nil {
		return err
	}

	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}

	plan, err := c.Resolve(cmd.Context(), source, overrides, !describeRunCommands)
	if err != nil {
		return err
	}

	for _, w := range c.Warnings(source) {
		ui.Warning("%s", w)
	}

	if ui.GlobalFormatter.IsStructured() {
		return ui.GlobalFormatter.Output(plan)
	}
	ui.PrintPlan(plan)
	return nil
}
