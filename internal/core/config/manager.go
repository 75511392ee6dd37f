package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when no project configuration exists
	ErrNotFound = errors.New("configuration file not found")
	// ErrAlreadyInitialized is returned by Init when a configuration exists
	ErrAlreadyInitialized = errors.New("configuration already exists")
)

// Template is the configuration written by Init
const Template = `# armlaunch project configuration
version: "1.0"

# Extra ament prefixes searched before AMENT_PREFIX_PATH
# ament_prefix_paths:
#   - /opt/ros/humble

runtime: local
stop_grace_period: 5s
# Shell for entities declared with shell=True, defaults to $SHELL
# shell: /bin/bash

spawner:
  # Extra attempts for controller spawners; -1 retries until shutdown
  retries: 0
  retry_delay: 2s

warehouse:
  probe: true
  probe_timeout: 30s

# Launch argument overrides, below ARMLAUNCH_ARGUMENTS and the command line
arguments:
  use_fake_hardware: "false"
`

// Manager loads the armlaunch configuration of a project
type Manager struct {
	projectRoot string
	configPath  string
	lookuper    envconfig.Lookuper
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLookuper replaces the environment used for overrides
func WithLookuper(l envconfig.Lookuper) ManagerOption {
	return func(m *Manager) {
		m.lookuper = l
	}
}

// NewManager creates a manager for the project rooted at projectRoot
func NewManager(projectRoot string, opts ...ManagerOption) *Manager {
	return newManager(projectRoot, filepath.Join(projectRoot, Dir, File), opts)
}

// NewManagerForFile creates a manager for an explicit config file. The
// project root is the directory holding the .armlaunch directory, or the
// file's own directory otherwise.
func NewManagerForFile(path string, opts ...ManagerOption) *Manager {
	dir := filepath.Dir(path)
	root := dir
	if filepath.Base(dir) == Dir {
		root = filepath.Dir(dir)
	}
	return newManager(root, path, opts)
}

func newManager(root, path string, opts []ManagerOption) *Manager {
	m := &Manager{
		projectRoot: root,
		configPath:  path,
		lookuper:    envconfig.OsLookuper(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the configuration. A missing file yields the defaults; the
// .env file of the project and ARMLAUNCH_* variables apply in both cases.
func (m *Manager) Load(ctx context.Context) (*Config, error) {
	if err := m.loadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := LoadWithValidation(m.configPath)
	switch {
	case errors.Is(err, ErrNotFound):
		cfg = &Config{}
	case err != nil:
		return nil, err
	}

	if err := m.applyEnv(ctx, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Join(m.projectRoot, Dir)
	} else if !filepath.IsAbs(cfg.StateDir) {
		cfg.StateDir = filepath.Join(m.projectRoot, cfg.StateDir)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads <project>/.env without overriding variables already set
func (m *Manager) loadDotEnv() error {
	path := filepath.Join(m.projectRoot, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (m *Manager) applyEnv(ctx context.Context, cfg *Config) error {
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:           cfg,
		Lookuper:         envconfig.PrefixLookuper(EnvPrefix, m.lookuper),
		DefaultOverwrite: true,
	})
	if err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// Init writes Template to the config path. An existing file is only
// replaced when force is set.
func (m *Manager) Init(force bool) error {
	if m.IsInitialized() && !force {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, m.configPath)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.configPath, []byte(Template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// IsInitialized checks if a config file exists
func (m *Manager) IsInitialized() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// GetProjectRoot returns the project root directory
func (m *Manager) GetProjectRoot() string {
	return m.projectRoot
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// LoadWithValidation reads a config file, expands ${VAR} references,
// validates it against the schema and decodes it.
func LoadWithValidation(path string) (*Config, error) {
	data, err := envsubst.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// FindProjectRoot searches upwards from dir for a .armlaunch/config.yaml
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, Dir, File)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: no %s directory found", ErrNotFound, Dir)
}
