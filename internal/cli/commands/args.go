package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/app"
	"github.com/aki/armlaunch/internal/cli/ui"
)

var argsCmd = &cobra.Command{
	Use:   "args [description]",
	Short: "List the arguments a launch description declares",
	Example: `  armlaunch args
  armlaunch args franka_gripper/gripper.launch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArgs,
}

func runArgs(cmd *cobra.Command, args []string) error {
	source := app.DefaultSource("")
	if len(args) == 1 {
		source = args[0]
	}

	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}

	declared, err := c.Arguments(source)
	if err != nil {
		return err
	}

	if ui.GlobalFormatter.IsStructured() {
		type item struct {
			Name        string  `json:"name" yaml:"name"`
			Default     *string `json:"default,omitempty" yaml:"default,omitempty"`
			Required    bool    `json:"required" yaml:"required"`
			Description string  `json:"description,omitempty" yaml:"description,omitempty"`
		}
		items := make([]item, 0, len(declared))
		for _, a := range declared {
			items = append(items, item{Name: a.Name, Default: a.DefaultValue, Required: a.Required(), Description: a.Description})
		}
		return ui.GlobalFormatter.Output(items)
	}

	ui.PrintArguments(source, declared)
	return nil
}
