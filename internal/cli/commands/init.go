package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/cli/ui"
	"github.com/aki/armlaunch/internal/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize armlaunch in the current directory",
	Long:  "Write a default .armlaunch/config.yaml in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var forceInit bool

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	manager := config.NewManager(cwd)
	if err := manager.Init(forceInit); err != nil {
		if errors.Is(err, config.ErrAlreadyInitialized) {
			return fmt.Errorf("armlaunch already initialized. Use --force to reinitialize")
		}
		return err
	}

	if err := addToGitignore(cwd); err != nil {
		ui.Warning("Failed to update .gitignore: %v", err)
	}

	ui.Success("armlaunch initialized in %s", cwd)
	ui.OutputLine("  Configuration: %s", filepath.Join(config.Dir, config.File))
	ui.OutputLine("\nRun 'armlaunch describe robot_ip:=<ip>' to preview the launch")
	return nil
}

// addToGitignore ignores the run state directory when the project already
// has a .gitignore
func addToGitignore(projectRoot string) (err error) {
	gitignorePath := filepath.Join(projectRoot, ".gitignore")
	data, err := os.ReadFile(gitignorePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if strings.Contains(string(data), config.Dir+"/runs") {
		return nil
	}

	file, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = file.WriteString("\n# armlaunch run state\n" + config.Dir + "/runs/\n")
	return err
}
