// Package config provides configuration management for armlaunch projects.
package config

import (
	"time"
)

const (
	// Dir is the directory name for armlaunch metadata
	Dir = ".armlaunch"
	// File is the filename for the armlaunch configuration
	File = "config.yaml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "ARMLAUNCH_"

	// DefaultRuntime is the runtime used when none is configured
	DefaultRuntime = "local"
	// DefaultStopGracePeriod is how long a process may take to exit after SIGTERM
	DefaultStopGracePeriod = 5 * time.Second
	// DefaultRetryDelay is the pause between controller spawner attempts
	DefaultRetryDelay = 2 * time.Second
	// DefaultProbeTimeout bounds the warehouse readiness probe
	DefaultProbeTimeout = 30 * time.Second
)

// Config represents the armlaunch configuration
type Config struct {
	Version          string        `yaml:"version,omitempty" json:"version,omitempty"`
	StateDir         string        `yaml:"state_dir,omitempty" json:"state_dir,omitempty" env:"STATE_DIR"`
	AmentPrefixPaths []string      `yaml:"ament_prefix_paths,omitempty" json:"ament_prefix_paths,omitempty" env:"AMENT_PREFIX_PATHS, delimiter=:"`
	Runtime          string        `yaml:"runtime,omitempty" json:"runtime,omitempty" env:"RUNTIME"`
	StopGracePeriod  time.Duration `yaml:"stop_grace_period,omitempty" json:"stop_grace_period,omitempty" env:"STOP_GRACE_PERIOD"`
	Shell            string        `yaml:"shell,omitempty" json:"shell,omitempty" env:"SHELL"`
	LogLevel         string        `yaml:"log_level,omitempty" json:"log_level,omitempty" env:"LOG_LEVEL"`
	LogFormat        string        `yaml:"log_format,omitempty" json:"log_format,omitempty" env:"LOG_FORMAT"`

	Spawner   SpawnerConfig   `yaml:"spawner,omitempty" json:"spawner" env:", prefix=SPAWNER_"`
	Warehouse WarehouseConfig `yaml:"warehouse,omitempty" json:"warehouse" env:", prefix=WAREHOUSE_"`

	// Arguments override declared launch argument defaults
	Arguments map[string]string `yaml:"arguments,omitempty" json:"arguments,omitempty"`

	// EnvArguments are argument overrides from ARMLAUNCH_ARGUMENTS
	// (name:value,name:value). They win over Arguments.
	EnvArguments map[string]string `yaml:"-" json:"-" env:"ARGUMENTS"`
}

// SpawnerConfig controls how controller spawners are retried
type SpawnerConfig struct {
	// Retries is the number of extra attempts; -1 retries until shutdown
	Retries    int           `yaml:"retries,omitempty" json:"retries" env:"RETRIES"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty" json:"retry_delay" env:"RETRY_DELAY"`
}

// WarehouseConfig controls the MongoDB readiness probe of the warehouse node
type WarehouseConfig struct {
	Probe        *bool         `yaml:"probe,omitempty" json:"probe,omitempty" env:"PROBE, noinit"`
	ProbeTimeout time.Duration `yaml:"probe_timeout,omitempty" json:"probe_timeout" env:"PROBE_TIMEOUT"`
}

// ProbeEnabled reports whether the warehouse probe runs. It defaults to on.
func (w WarehouseConfig) ProbeEnabled() bool {
	return w.Probe == nil || *w.Probe
}

// DefaultConfig returns the default armlaunch configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LaunchArguments merges argument overrides by precedence: cli over
// environment over the config file. Declared defaults apply to whatever
// is left unset.
func (c *Config) LaunchArguments(cli map[string]string) map[string]string {
	out := make(map[string]string, len(c.Arguments)+len(c.EnvArguments)+len(cli))
	for _, m := range []map[string]string{c.Arguments, c.EnvArguments, cli} {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// applyDefaults fills unset fields
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.Runtime == "" {
		cfg.Runtime = DefaultRuntime
	}
	if cfg.StopGracePeriod == 0 {
		cfg.StopGracePeriod = DefaultStopGracePeriod
	}
	if cfg.Spawner.RetryDelay == 0 {
		cfg.Spawner.RetryDelay = DefaultRetryDelay
	}
	if cfg.Warehouse.ProbeTimeout == 0 {
		cfg.Warehouse.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}
