package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/app"
	"github.com/aki/armlaunch/internal/core/config"
	"github.com/aki/armlaunch/internal/core/logger"
)

// loadContainer loads the project configuration and builds the services
// for a command
func loadContainer(cmd *cobra.Command) (*app.Container, error) {
	c, err := app.NewContainer(cmd.Context(), app.Options{
		ConfigPath: flagConfigPath,
		Logger:     logger.Nop(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := CreateLogger(c.Config)
	if err != nil {
		return nil, err
	}
	c.Logger = log
	return c, nil
}

// splitLaunchArgs separates name:=value overrides from the optional
// description argument
func splitLaunchArgs(args []string) (string, map[string]string, error) {
	overrides, rest, err := config.ParseAssignments(args)
	if err != nil {
		return "", nil, err
	}

	switch len(rest) {
	case 0:
		return app.DefaultSource(""), overrides, nil
	case 1:
		return rest[0], overrides, nil
	default:
		return "", nil, fmt.Errorf("expected at most one launch description, got %d: %v", len(rest), rest)
	}
}
