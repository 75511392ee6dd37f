package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	dir := filepath.Join(root, Dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, File)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv() ManagerOption {
	return WithLookuper(envconfig.MapLookuper(map[string]string{}))
}

func TestManager_LoadDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := NewManager(root, noEnv()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Runtime)
	assert.Equal(t, DefaultStopGracePeriod, cfg.StopGracePeriod)
	assert.Equal(t, DefaultRetryDelay, cfg.Spawner.RetryDelay)
	assert.Zero(t, cfg.Spawner.Retries)
	assert.True(t, cfg.Warehouse.ProbeEnabled())
	assert.Equal(t, DefaultProbeTimeout, cfg.Warehouse.ProbeTimeout)
	assert.Equal(t, filepath.Join(root, Dir), cfg.StateDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestManager_LoadFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
state_dir: state
ament_prefix_paths:
  - /opt/ros/humble
  - /ws/install
runtime: dryrun
stop_grace_period: 10s
shell: /bin/bash
spawner:
  retries: 3
  retry_delay: 500ms
warehouse:
  probe: false
  probe_timeout: 5s
arguments:
  robot_ip: 172.16.0.2
  use_fake_hardware: true
`)

	m := NewManager(root, noEnv())
	assert.True(t, m.IsInitialized())

	cfg, err := m.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "state"), cfg.StateDir)
	assert.Equal(t, []string{"/opt/ros/humble", "/ws/install"}, cfg.AmentPrefixPaths)
	assert.Equal(t, "dryrun", cfg.Runtime)
	assert.Equal(t, 10*time.Second, cfg.StopGracePeriod)
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, 3, cfg.Spawner.Retries)
	assert.Equal(t, 500*time.Millisecond, cfg.Spawner.RetryDelay)
	assert.False(t, cfg.Warehouse.ProbeEnabled())
	assert.Equal(t, 5*time.Second, cfg.Warehouse.ProbeTimeout)
	assert.Equal(t, map[string]string{"robot_ip": "172.16.0.2", "use_fake_hardware": "true"}, cfg.Arguments)
}

func TestManager_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
runtime: local
spawner:
  retries: 1
arguments:
  robot_ip: 10.0.0.1
  db: "false"
`)

	env := envconfig.MapLookuper(map[string]string{
		"ARMLAUNCH_RUNTIME":            "dryrun",
		"ARMLAUNCH_STATE_DIR":          "/var/lib/armlaunch",
		"ARMLAUNCH_AMENT_PREFIX_PATHS": "/opt/ros/humble:/ws/install",
		"ARMLAUNCH_SPAWNER_RETRIES":    "-1",
		"ARMLAUNCH_WAREHOUSE_PROBE":    "false",
		"ARMLAUNCH_ARGUMENTS":          "db:true",
	})

	cfg, err := NewManager(root, WithLookuper(env)).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "dryrun", cfg.Runtime)
	assert.Equal(t, "/var/lib/armlaunch", cfg.StateDir)
	assert.Equal(t, []string{"/opt/ros/humble", "/ws/install"}, cfg.AmentPrefixPaths)
	assert.Equal(t, -1, cfg.Spawner.Retries)
	assert.False(t, cfg.Warehouse.ProbeEnabled())

	args := cfg.LaunchArguments(map[string]string{"robot_ip": "172.16.0.2"})
	assert.Equal(t, map[string]string{"robot_ip": "172.16.0.2", "db": "true"}, args)
}

func TestManager_Expansion(t *testing.T) {
	t.Setenv("ROBOT_IP_FOR_TEST", "192.168.1.7")
	root := t.TempDir()
	writeConfig(t, root, `
arguments:
  robot_ip: ${ROBOT_IP_FOR_TEST}
`)

	cfg, err := NewManager(root, noEnv()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.7", cfg.Arguments["robot_ip"])
}

func TestManager_DotEnv(t *testing.T) {
	// registered for cleanup, then removed so .env can set it
	t.Setenv("ARMLAUNCH_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("ARMLAUNCH_LOG_LEVEL"))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("ARMLAUNCH_LOG_LEVEL=debug\n"), 0o644))

	cfg, err := NewManager(root).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestManager_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown runtime in file",
			content: "runtime: docker\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "unknown field",
			content: "agents: {}\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "bad duration",
			content: "stop_grace_period: soon\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "bad argument name",
			content: "arguments:\n  \"robot ip\": x\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "unknown runtime from env",
			content: "runtime: local\n",
			env:     map[string]string{"ARMLAUNCH_RUNTIME": "docker"},
			wantErr: "unsupported runtime",
		},
		{
			name:    "bad retries from env",
			content: "",
			env:     map[string]string{"ARMLAUNCH_SPAWNER_RETRIES": "-5"},
			wantErr: "spawner.retries",
		},
		{
			name:    "malformed yaml",
			content: "runtime: [\n",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, root, tt.content)

			env := tt.env
			if env == nil {
				env = map[string]string{}
			}
			_, err := NewManager(root, WithLookuper(envconfig.MapLookuper(env))).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestManager_Init(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root, noEnv())
	require.False(t, m.IsInitialized())

	require.NoError(t, m.Init(false))
	assert.True(t, m.IsInitialized())

	cfg, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "false", cfg.Arguments["use_fake_hardware"])
	assert.Equal(t, 2*time.Second, cfg.Spawner.RetryDelay)

	assert.ErrorIs(t, m.Init(false), ErrAlreadyInitialized)
	assert.NoError(t, m.Init(true))
}

func TestNewManagerForFile(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "runtime: dryrun\n")

	m := NewManagerForFile(path, noEnv())
	assert.Equal(t, root, m.GetProjectRoot())
	assert.Equal(t, path, m.GetConfigPath())

	other := filepath.Join(root, "custom.yaml")
	require.NoError(t, os.WriteFile(other, []byte("runtime: dryrun\n"), 0o644))
	assert.Equal(t, root, NewManagerForFile(other).GetProjectRoot())
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	nested := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	_, err = FindProjectRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		overrides map[string]string
		rest      []string
		wantErr   bool
	}{
		{
			name:      "description and assignments",
			args:      []string{"franka_moveit_config/moveit.launch", "robot_ip:=172.16.0.2", "db:=True"},
			overrides: map[string]string{"robot_ip": "172.16.0.2", "db": "True"},
			rest:      []string{"franka_moveit_config/moveit.launch"},
		},
		{
			name:      "empty value",
			args:      []string{"robot_ip:="},
			overrides: map[string]string{"robot_ip": ""},
		},
		{
			name:      "value containing separator",
			args:      []string{"remap:=a:=b"},
			overrides: map[string]string{"remap": "a:=b"},
		},
		{
			name:      "later wins",
			args:      []string{"db:=false", "db:=true"},
			overrides: map[string]string{"db": "true"},
		},
		{
			name:    "empty name",
			args:    []string{":=value"},
			wantErr: true,
		},
		{
			name:    "bad name",
			args:    []string{"robot-ip:=1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides, rest, err := ParseAssignments(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.overrides, overrides)
			assert.Equal(t, tt.rest, rest)
		})
	}
}
