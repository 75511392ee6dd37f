package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/armlaunch/internal/core/config"
	"github.com/aki/armlaunch/internal/descriptions/panda"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/launch/ament"
	"github.com/aki/armlaunch/internal/runstate"
)

// newTestProject lays out an ament prefix with the franka packages and a
// project config pointing at it
func newTestProject(t *testing.T, extraConfig string) (string, string) {
	t.Helper()
	t.Setenv(ament.PrefixPathEnv, "")

	prefix := t.TempDir()
	for _, pkg := range []string{"franka_description", "franka_gripper", "franka_moveit_config"} {
		_, err := ament.Install(prefix, pkg)
		require.NoError(t, err)
	}

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, config.Dir), 0o755))
	content := "ament_prefix_paths:\n  - " + prefix + "\n" + extraConfig
	require.NoError(t, os.WriteFile(filepath.Join(root, config.Dir, config.File), []byte(content), 0o644))
	return root, prefix
}

func newTestContainer(t *testing.T, root string) *Container {
	t.Helper()
	c, err := NewContainer(context.Background(), Options{
		ProjectRoot:    root,
		ManagerOptions: []config.ManagerOption{config.WithLookuper(envconfig.MapLookuper(map[string]string{}))},
	})
	require.NoError(t, err)
	return c
}

func TestNewContainer(t *testing.T) {
	root, prefix := newTestProject(t, "")
	c := newTestContainer(t, root)

	assert.Equal(t, root, c.ProjectRoot)
	assert.Equal(t, filepath.Join(root, config.Dir), c.Config.StateDir)
	assert.Equal(t, []string{prefix}, c.Index.Prefixes())
	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.Logger)
}

func TestNewContainer_ExplicitConfigMissing(t *testing.T) {
	_, err := NewContainer(context.Background(), Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	assert.ErrorIs(t, err, config.ErrNotFound)
}

func TestContainer_Arguments(t *testing.T) {
	root, _ := newTestProject(t, "")
	c := newTestContainer(t, root)

	args, err := c.Arguments("")
	require.NoError(t, err)

	var names []string
	for _, a := range args {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"robot_ip", "use_fake_hardware", "fake_sensor_commands", "db"}, names)

	_, err = c.Arguments("nope/missing.launch")
	assert.ErrorIs(t, err, launch.ErrUnknownDescription)
}

func TestContainer_ResolveDryRun(t *testing.T) {
	root, _ := newTestProject(t, "arguments:\n  robot_ip: 10.0.0.5\n  db: \"true\"\n")
	c := newTestContainer(t, root)

	plan, err := c.Resolve(context.Background(), "", map[string]string{"robot_ip": "172.16.0.2"}, true)
	require.NoError(t, err)
	assert.Equal(t, panda.Source, plan.Description)

	ip, ok := plan.Argument("robot_ip")
	require.True(t, ok)
	assert.Equal(t, "172.16.0.2", ip.Value)

	db, ok := plan.Entity(panda.DatabaseNode)
	require.True(t, ok)
	assert.True(t, db.Enabled, "config arguments apply")

	rsp, ok := plan.Entity("robot_state_publisher")
	require.True(t, ok)
	description, _ := rsp.Parameters["robot_description"].(string)
	assert.True(t, strings.HasPrefix(description, "<!-- output of: "), description)
	assert.Contains(t, description, "panda_arm.urdf.xacro hand:=true robot_ip:=172.16.0.2")

	require.Len(t, plan.Commands, 1)
}

func TestContainer_ResolveMissingArgument(t *testing.T) {
	root, _ := newTestProject(t, "")
	c := newTestContainer(t, root)

	_, err := c.Resolve(context.Background(), "", nil, true)
	require.ErrorIs(t, err, launch.ErrMissingArguments)
	assert.Contains(t, err.Error(), "robot_ip")
}

func TestContainer_Warnings(t *testing.T) {
	root, prefix := newTestProject(t, "")
	c := newTestContainer(t, root)

	// unreadable configuration is not reported
	assert.Empty(t, c.Warnings(""))

	cfgDir := filepath.Join(prefix, "share", "franka_moveit_config", "config")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "panda_ros_controllers.yaml"), []byte(`
controller_manager:
  ros__parameters:
    joint_state_broadcaster:
      type: joint_state_broadcaster/JointStateBroadcaster
`), 0o644))

	warnings := c.Warnings(panda.Source)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "panda_arm_controller")

	assert.Empty(t, c.Warnings("franka_gripper/gripper.launch"))
}

func TestContainer_LaunchDryRun(t *testing.T) {
	root, _ := newTestProject(t, "stop_grace_period: 1s\n")
	c := newTestContainer(t, root)

	plan, err := c.Resolve(context.Background(), "", map[string]string{"robot_ip": "172.16.0.2"}, true)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var screen strings.Builder
	require.NoError(t, c.Launch(ctx, plan, true, &screen, &screen))

	run, err := c.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, run.ID)
	assert.Equal(t, "dryrun", run.Runtime)
	assert.Equal(t, runstate.StatusStopped, run.Status)

	spawner, ok := run.Entity(panda.SpawnerName("panda_arm_controller"))
	require.True(t, ok)
	assert.Equal(t, runstate.StatusCompleted, spawner.Status)

	db, ok := run.Entity(panda.DatabaseNode)
	require.True(t, ok)
	assert.Equal(t, runstate.StatusSkipped, db.Status)

	assert.Contains(t, screen.String(), "[ros2_control_node] [dry-run] ")

	byPrefix, err := c.Run(context.Background(), plan.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, plan.ID, byPrefix.ID)
}
