package launch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childDescription() *LaunchDescription {
	return NewLaunchDescription(
		DeclareArgument("robot_ip", "Robot address"),
		DeclareArgumentWithDefault("use_fake_hardware", "false", "Use fake hardware"),
		Node{
			Package:    "franka_gripper",
			Executable: "franka_gripper_node",
			Name:       "panda_gripper",
			Parameters: []Parameter{ParameterMap{"robot_ip": Config("robot_ip")}},
			Condition:  Unless(Config("use_fake_hardware")),
		},
		Node{
			Package:    "franka_gripper",
			Executable: "fake_gripper_state_publisher.py",
			Name:       "panda_gripper",
			Condition:  If(Config("use_fake_hardware")),
		},
	)
}

func parentDescription() *LaunchDescription {
	return NewLaunchDescription(
		DeclareArgument("robot_ip", "Robot address"),
		DeclareArgumentWithDefault("db", "False", "Database flag"),
		Node{
			Package:    "robot_state_publisher",
			Executable: "robot_state_publisher",
			Name:       "robot_state_publisher",
			Output:     Output(OutputBoth),
			Parameters: []Parameter{
				ParameterMap{"robot_description": Command(Subs(FindExecutable{Name: "xacro"}, " robot_ip:=", Config("robot_ip")))},
			},
		},
		Node{
			Package:    "controller_manager",
			Executable: "ros2_control_node",
			Parameters: []Parameter{
				ParameterMap{"rate": 30},
				ParameterFile{Path: PathJoin(Subs(FindPackageShare{Package: "franka_description"}, "config", "controllers.yaml"))},
			},
			Remappings: []Remapping{{From: "joint_states", To: "franka/joint_states"}},
			OnExit:     &Shutdown{Reason: "control node exited"},
		},
		Node{
			Package:    "warehouse_ros_mongo",
			Executable: "mongo_wrapper_ros.py",
			Condition:  If(Config("db")),
			Parameters: []Parameter{ParameterMap{"warehouse_port": 33829}},
		},
		IncludeLaunchDescription{
			Source:    "franka_gripper/gripper.launch",
			Arguments: []IncludeArgument{{Name: "robot_ip", Value: Config("robot_ip")}},
		},
		ExecuteProcess{
			Cmd:        Subs("ros2 run controller_manager spawner.py arm"),
			Shell:      true,
			Retries:    2,
			RetryDelay: time.Second,
			After:      []string{"ros2_control_node"},
		},
		ExecuteProcess{
			Cmd:   Subs("ros2 run controller_manager spawner.py broadcaster"),
			Shell: true,
		},
	)
}

func resolveTest(t *testing.T, overrides map[string]string) (*Plan, error) {
	t.Helper()
	lc := newTestContext(WithDescriptionLoader(mapLoader{
		"franka_gripper/gripper.launch": childDescription(),
	}))
	return Resolve(lc, "test/parent.launch", parentDescription(), overrides)
}

func TestResolve_EnabledEntityKeepsName(t *testing.T) {
	tests := []struct {
		fake       string
		executable string
	}{
		{fake: "false", executable: "franka_gripper_node"},
		{fake: "true", executable: "fake_gripper_state_publisher.py"},
	}

	for _, tt := range tests {
		t.Run("use_fake_hardware="+tt.fake, func(t *testing.T) {
			plan, err := resolveTest(t, map[string]string{"robot_ip": "172.16.0.2", "use_fake_hardware": tt.fake})
			require.NoError(t, err)

			gripper, ok := plan.Entity("panda_gripper")
			require.True(t, ok)
			assert.True(t, gripper.Enabled)
			assert.Equal(t, tt.executable, gripper.Executable)

			other, ok := plan.Entity("panda_gripper-2")
			require.True(t, ok)
			assert.False(t, other.Enabled)

			// declaration order is kept
			assert.Equal(t, "franka_gripper_node", plan.Entities[3].Executable)
		})
	}
}

func TestResolve(t *testing.T) {
	plan, err := resolveTest(t, map[string]string{"robot_ip": "172.16.0.2"})
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "test/parent.launch", plan.Description)

	names := make([]string, 0, len(plan.Entities))
	for _, e := range plan.Entities {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		"robot_state_publisher",
		"ros2_control_node",
		"mongo_wrapper_ros.py",
		"panda_gripper",
		"panda_gripper-2",
		"ros2",
		"ros2-2",
	}, names)

	t.Run("arguments", func(t *testing.T) {
		ip, ok := plan.Argument("robot_ip")
		require.True(t, ok)
		assert.Equal(t, "172.16.0.2", ip.Value)
		assert.True(t, ip.Overridden)

		db, ok := plan.Argument("db")
		require.True(t, ok)
		assert.Equal(t, "False", db.Value)
		assert.False(t, db.Overridden)

		// the include declares its own arguments, recorded with its source
		var included []string
		for _, a := range plan.Arguments {
			if a.Source == "franka_gripper/gripper.launch" {
				included = append(included, a.Name+"="+a.Value)
			}
		}
		assert.Equal(t, []string{"robot_ip=172.16.0.2", "use_fake_hardware=false"}, included)
	})

	t.Run("command substitution in parameters", func(t *testing.T) {
		rsp, ok := plan.Entity("robot_state_publisher")
		require.True(t, ok)
		assert.Equal(t, "/opt/ros/humble/bin/xacro robot_ip:=172.16.0.2", rsp.Parameters["robot_description"])
		assert.Equal(t, Output(OutputBoth), rsp.Output)
		assert.Equal(t, []string{"/opt/ros/humble/bin/xacro robot_ip:=172.16.0.2"}, plan.Commands)
	})

	t.Run("node parameters, files and remaps", func(t *testing.T) {
		ctrl, ok := plan.Entity("ros2_control_node")
		require.True(t, ok)
		assert.Equal(t, 30, ctrl.Parameters["rate"])
		assert.Equal(t, []string{"/ws/share/franka_description/config/controllers.yaml"}, ctrl.ParameterFiles)
		assert.True(t, ctrl.ShutdownOnExit)
		assert.Equal(t, "control node exited", ctrl.ShutdownReason)
		assert.Equal(t, Output(OutputLog), ctrl.Output)

		assert.Equal(t, []string{
			"ros2", "run", "controller_manager", "ros2_control_node",
			"--ros-args",
			"-r", "joint_states:=franka/joint_states",
			"--params-file", "/run/params.yaml",
			"--params-file", "/ws/share/franka_description/config/controllers.yaml",
		}, ctrl.CommandLine("/run/params.yaml"))
	})

	t.Run("conditions", func(t *testing.T) {
		db, _ := plan.Entity("mongo_wrapper_ros.py")
		assert.False(t, db.Enabled)
		assert.Equal(t, "if $(var db)", db.Condition)
		assert.Nil(t, db.Parameters)

		hw, _ := plan.Entity("panda_gripper")
		assert.True(t, hw.Enabled)
		assert.Equal(t, "172.16.0.2", hw.Parameters["robot_ip"])
		assert.Equal(t, "franka_gripper/gripper.launch", hw.Source)

		fake, _ := plan.Entity("panda_gripper-2")
		assert.False(t, fake.Enabled)
	})

	t.Run("processes", func(t *testing.T) {
		procs := plan.Processes()
		require.Len(t, procs, 2)
		assert.Equal(t, LifecycleOneshot, procs[0].Lifecycle)
		assert.True(t, procs[0].Shell)
		assert.Equal(t, 2, procs[0].Retries)
		assert.Equal(t, time.Second, procs[0].RetryDelay)
		assert.Equal(t, []string{"ros2_control_node"}, procs[0].DependsOn)
		assert.Equal(t, []string{"ros2 run controller_manager spawner.py broadcaster"}, procs[1].Command)
		assert.Equal(t, procs[1].Command, procs[1].CommandLine(""))
	})

	assert.Len(t, plan.Enabled(), 5)
}

func TestResolve_DatabaseEnabled(t *testing.T) {
	plan, err := resolveTest(t, map[string]string{"robot_ip": "172.16.0.2", "db": "true"})
	require.NoError(t, err)

	db, ok := plan.Entity("mongo_wrapper_ros.py")
	require.True(t, ok)
	assert.True(t, db.Enabled)
	assert.Equal(t, 33829, db.Parameters["warehouse_port"])
}

func TestResolve_Errors(t *testing.T) {
	t.Run("missing required argument", func(t *testing.T) {
		_, err := resolveTest(t, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingArguments)

		var missing *MissingArgumentsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"robot_ip"}, missing.Names)
		assert.Equal(t, "test/parent.launch", missing.Source)
	})

	t.Run("invalid boolean", func(t *testing.T) {
		_, err := resolveTest(t, map[string]string{"robot_ip": "x", "db": "sometimes"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidBool)
	})

	t.Run("choices", func(t *testing.T) {
		desc := NewLaunchDescription(DeclareLaunchArgument{
			Name:         "arm_id",
			DefaultValue: ptr("panda"),
			Choices:      []string{"panda", "fr3"},
		})
		_, err := Resolve(newTestContext(), "t", desc, map[string]string{"arm_id": "ur5"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidChoice)

		_, err = Resolve(newTestContext(), "t", desc, map[string]string{"arm_id": "fr3"})
		require.NoError(t, err)
	})

	t.Run("include cycle", func(t *testing.T) {
		loop := NewLaunchDescription(IncludeLaunchDescription{Source: "a"})
		lc := newTestContext(WithDescriptionLoader(mapLoader{"a": loop}))
		_, err := Resolve(lc, "a", loop, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIncludeCycle)
	})

	t.Run("unknown include", func(t *testing.T) {
		desc := NewLaunchDescription(IncludeLaunchDescription{Source: "nowhere"})
		lc := newTestContext(WithDescriptionLoader(mapLoader{}))
		_, err := Resolve(lc, "t", desc, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownDescription)
	})

	t.Run("nil description", func(t *testing.T) {
		_, err := Resolve(newTestContext(), "t", nil, nil)
		assert.ErrorIs(t, err, ErrUnknownDescription)
	})

	t.Run("node without executable", func(t *testing.T) {
		_, err := Resolve(newTestContext(), "t", NewLaunchDescription(Node{Package: "p"}), nil)
		require.Error(t, err)
	})
}

func TestResolve_IncludeDoesNotLeakConfigurations(t *testing.T) {
	child := NewLaunchDescription(DeclareArgumentWithDefault("arm_id", "panda", ""))
	parent := NewLaunchDescription(
		IncludeLaunchDescription{Source: "child"},
		ExecuteProcess{Name: "echo", Cmd: Subs("echo ", Config("arm_id"))},
	)

	lc := newTestContext(WithDescriptionLoader(mapLoader{"child": child}))
	_, err := Resolve(lc, "parent", parent, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfiguration)
}

func TestDescription_Accessors(t *testing.T) {
	d := parentDescription()
	args := d.Arguments()
	require.Len(t, args, 2)
	assert.True(t, args[0].Required())
	assert.False(t, args[1].Required())
	assert.Len(t, d.Nodes(), 3)
	assert.Len(t, d.Processes(), 2)
	assert.Len(t, d.Includes(), 1)
}

func ptr(s string) *string { return &s }
