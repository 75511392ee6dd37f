package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/core/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect armlaunch configuration",
	Example: `  # Show the effective configuration
  armlaunch config show

  # Validate the configuration file
  armlaunch config validate`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long:  "Display the configuration after environment overrides and defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file against the schema and check that
the runtime, log settings and launch argument names are valid.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	cfg := c.Config

	if ui.GlobalFormatter.IsStructured() {
		return ui.GlobalFormatter.Output(cfg)
	}

	source := c.ConfigManager.GetConfigPath()
	if !c.ConfigManager.IsInitialized() {
		source = "defaults"
	}
	ui.OutputLine("Configuration: %s", source)
	ui.OutputLine("  State directory:   %s", cfg.StateDir)
	ui.OutputLine("  Runtime:           %s", cfg.Runtime)
	ui.OutputLine("  Stop grace period: %s", cfg.StopGracePeriod)
	ui.OutputLine("  Log:               %s (%s)", cfg.LogLevel, cfg.LogFormat)
	ui.OutputLine("  Spawner retries:   %d every %s", cfg.Spawner.Retries, cfg.Spawner.RetryDelay)
	ui.OutputLine("  Warehouse probe:   %t (timeout %s)", cfg.Warehouse.ProbeEnabled(), cfg.Warehouse.ProbeTimeout)

	if prefixes := c.Index.Prefixes(); len(prefixes) > 0 {
		ui.OutputLine("\nAment prefixes:")
		for _, p := range prefixes {
			ui.OutputLine("  %s", p)
		}
	}

	merged := cfg.LaunchArguments(nil)
	if len(merged) > 0 {
		ui.OutputLine("\nArgument overrides:")
		for name, value := range merged {
			ui.OutputLine("  %s:=%s", name, value)
		}
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	var manager *config.Manager
	if flagConfigPath != "" {
		manager = config.NewManagerForFile(flagConfigPath)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root, err := config.FindProjectRoot(cwd)
		if err != nil {
			return err
		}
		manager = config.NewManager(root)
	}

	if !manager.IsInitialized() {
		return fmt.Errorf("%w: %s", config.ErrNotFound, manager.GetConfigPath())
	}

	// Load validates the file and the effective configuration
	if _, err := manager.Load(cmd.Context()); err != nil {
		ui.Error("Configuration validation failed: %v", err)
		return fmt.Errorf("invalid configuration")
	}

	ui.Success("Configuration is valid: %s", manager.GetConfigPath())
	return nil
}
