package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aki/armlaunch/internal/descriptions"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/runstate"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := Out
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

func TestPrintPlan(t *testing.T) {
	plan := &launch.Plan{
		ID:          "3f2a",
		Description: descriptions.Default,
		Arguments: []launch.ResolvedArgument{
			{Name: "robot_ip", Value: "172.16.0.2", Overridden: true, Source: descriptions.Default},
			{Name: "db", Value: "False", Source: descriptions.Default},
		},
		Entities: []*launch.Entity{
			{Name: "ros2_control_node", Kind: launch.KindNode, Enabled: true, Command: []string{"ros2", "run", "controller_manager", "ros2_control_node"}},
			{Name: "mongo_wrapper_ros.py", Kind: launch.KindNode, Condition: "if $(var db)", Command: []string{"ros2", "run", "warehouse_ros_mongo", "mongo_wrapper_ros.py"}},
			{Name: "spawner_panda_arm_controller", Kind: launch.KindProcess, Enabled: true, DependsOn: []string{"ros2_control_node"}, Command: []string{"ros2 run controller_manager spawner.py panda_arm_controller"}},
		},
	}

	out := captureOutput(t, func() { PrintPlan(plan) })

	assert.Contains(t, out, descriptions.Default)
	assert.Contains(t, out, "172.16.0.2 *")
	assert.Contains(t, out, "Entities (3)")
	assert.Contains(t, out, "ros2 run controller_manager spawner.py panda_arm_controller")
	assert.Contains(t, out, "if $(var db)")
}

func TestPrintArguments(t *testing.T) {
	def := "False"
	out := captureOutput(t, func() {
		PrintArguments(descriptions.Default, []launch.DeclareLaunchArgument{
			{Name: "robot_ip", Description: "Hostname or IP address of the robot."},
			{Name: "db", DefaultValue: &def, Description: "Database flag"},
		})
	})

	assert.Contains(t, out, "Arguments of "+descriptions.Default+" (2)")
	assert.Contains(t, out, "(required)")
	assert.Contains(t, out, "Database flag")
}

func TestPrintRun(t *testing.T) {
	code := 1
	run := &runstate.Run{
		ID:          "5d1c0f9e-aaaa-bbbb-cccc-000000000000",
		Description: descriptions.Default,
		Runtime:     "local",
		Status:      runstate.StatusFailed,
		Arguments:   map[string]string{"robot_ip": "172.16.0.2", "db": "False"},
		StartedAt:   time.Now(),
		Entities: []*runstate.EntityState{
			{Name: "robot_state_publisher", Status: runstate.StatusRunning, PID: 4242, UpdatedAt: time.Now()},
			{Name: "ros2_control_node", Status: runstate.StatusFailed, ExitCode: &code, Error: "exit status 1"},
		},
	}

	out := captureOutput(t, func() {
		PrintRun(run, map[string]ProcessStats{"robot_state_publisher": {CPUPercent: 12.5, RSS: 2 * 1024 * 1024}})
	})

	assert.Contains(t, out, "db:=False robot_ip:=172.16.0.2")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "2.0MB")
	assert.Contains(t, out, "exit status 1")

	list := captureOutput(t, func() { PrintRunList([]*runstate.Run{run}) })
	assert.Contains(t, list, "5d1c0f9e")
	assert.NotContains(t, list, "5d1c0f9e-")
}
