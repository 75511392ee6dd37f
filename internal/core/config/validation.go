package config

import (
	"fmt"
	"regexp"

	"github.com/aki/armlaunch/internal/core/logger"
)

var argumentName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateConfig checks values the schema cannot, including those that came
// from the environment
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	switch cfg.Runtime {
	case "local", "dryrun":
	default:
		return fmt.Errorf("unsupported runtime: %s", cfg.Runtime)
	}

	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if _, err := logger.ParseFormat(cfg.LogFormat); err != nil {
		return err
	}

	if cfg.StopGracePeriod < 0 {
		return fmt.Errorf("stop_grace_period must not be negative")
	}
	if cfg.Spawner.Retries < -1 {
		return fmt.Errorf("spawner.retries must be -1 or greater")
	}
	if cfg.Spawner.RetryDelay < 0 {
		return fmt.Errorf("spawner.retry_delay must not be negative")
	}

	for _, m := range []map[string]string{cfg.Arguments, cfg.EnvArguments} {
		for name := range m {
			if !argumentName.MatchString(name) {
				return fmt.Errorf("invalid argument name: %q", name)
			}
		}
	}
	return nil
}
