// Package commands provides CLI command implementations for armlaunch.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
)

// Global flags shared by every command
var (
	flagConfigPath string
	flagFormat     string
)

var rootCmd = &cobra.Command{
	Use:   "armlaunch",
	Short: "Launch and supervise the Franka panda MoveIt stack",
	Long: `Armlaunch resolves ROS2 launch descriptions for the Franka panda arm into a plan
of nodes and processes, then starts and supervises them.

Launch arguments are given as name:=value pairs after the description:

  armlaunch launch robot_ip:=172.16.0.2 use_fake_hardware:=true`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		ui.Out = cmd.OutOrStdout()
		return ui.SetGlobalFormatter(format)
	},
}

func init() {
	RegisterLoggerFlags(rootCmd)
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "Configuration file (default: nearest .armlaunch/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "o", "pretty", "Output format (pretty, json, yaml)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(argsCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
