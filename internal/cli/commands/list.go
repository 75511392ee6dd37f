package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/descriptions"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered launch descriptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := descriptions.List()
		if ui.GlobalFormatter.IsStructured() {
			type item struct {
				Source  string `json:"source" yaml:"source"`
				Summary string `json:"summary" yaml:"summary"`
			}
			items := make([]item, 0, len(entries))
			for _, e := range entries {
				items = append(items, item{Source: e.Source, Summary: e.Summary})
			}
			return ui.GlobalFormatter.Output(items)
		}

		ui.PrintDescriptions(entries)
		return nil
	},
}
