package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aki/armlaunch/internal/core/config"
	"github.com/aki/armlaunch/internal/core/logger"
)

// Global flags for logging configuration
var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags registers global logging flags
func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
}

// CreateLogger creates a stderr logger. Flags win over the configured
// level and format.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	levelName, formatName := flagLogLevel, flagLogFormat
	if cfg != nil {
		if levelName == "" {
			levelName = cfg.LogLevel
		}
		if formatName == "" {
			formatName = cfg.LogFormat
		}
	}

	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
	), nil
}
