// Package panda describes the MoveIt bringup of the Franka Emika Panda arm:
// robot state publisher, ros2_control, controller spawners, the warehouse
// database bridge, joint state aggregation and the gripper.
package panda

import (
	"fmt"

	"github.com/aki/armlaunch/internal/core/logger"
	"github.com/aki/armlaunch/internal/descriptions/gripper"
	"github.com/aki/armlaunch/internal/launch"
)

// Source is the registry key of the arm description
const Source = "franka_moveit_config/moveit.launch"

// Launch argument names
const (
	RobotIPArgument            = "robot_ip"
	UseFakeHardwareArgument    = "use_fake_hardware"
	FakeSensorCommandsArgument = "fake_sensor_commands"
	DatabaseArgument           = "db"
)

// Warehouse connection settings handed to the database bridge
const (
	WarehouseHost   = "localhost"
	WarehousePort   = 33829
	WarehousePlugin = "warehouse_ros_mongo::MongoDatabaseConnection"
)

// Entity names other packages refer to
const (
	ControlNode   = "ros2_control_node"
	DatabaseNode  = "mongo_wrapper_ros.py"
	ControllerCfg = "config/panda_ros_controllers.yaml"
)

// Controllers are spawned in this order once the control node is up
var Controllers = []string{"panda_arm_controller", "joint_state_broadcaster"}

// SpawnerName returns the entity name of a controller spawner
func SpawnerName(controller string) string {
	return "spawner_" + controller
}

// RobotDescription returns the xacro command producing the URDF. The launch
// arguments are passed through verbatim as name:=value tokens.
func RobotDescription() launch.Command {
	return launch.Command(launch.Subs(
		launch.FindExecutable{Name: "xacro"}, " ",
		launch.PathJoin(launch.Subs(launch.FindPackageShare{Package: "franka_description"}, "robots", "panda_arm.urdf.xacro")),
		" hand:=true",
		" robot_ip:=", launch.Config(RobotIPArgument),
		" use_fake_hardware:=", launch.Config(UseFakeHardwareArgument),
		" fake_sensor_commands:=", launch.Config(FakeSensorCommandsArgument),
	))
}

// GenerateLaunchDescription returns the arm description
func GenerateLaunchDescription() *launch.LaunchDescription {
	robotDescription := launch.ParameterMap{"robot_description": RobotDescription()}

	desc := launch.NewLaunchDescription(
		launch.DeclareArgument(RobotIPArgument, "Hostname or IP address of the robot."),
		launch.DeclareArgumentWithDefault(UseFakeHardwareArgument, "false", "Use fake hardware"),
		launch.DeclareArgumentWithDefault(FakeSensorCommandsArgument, "false",
			fmt.Sprintf("Fake sensor commands. Only valid when '%s' is true", UseFakeHardwareArgument)),
		launch.DeclareArgumentWithDefault(DatabaseArgument, "False", "Database flag"),

		launch.Node{
			Package:    "robot_state_publisher",
			Executable: "robot_state_publisher",
			Name:       "robot_state_publisher",
			Output:     launch.Output(launch.OutputBoth),
			Parameters: []launch.Parameter{robotDescription},
		},
		launch.Node{
			Package:    "controller_manager",
			Executable: ControlNode,
			Parameters: []launch.Parameter{
				robotDescription,
				launch.ParameterFile{Path: launch.PathJoin(launch.Subs(
					launch.FindPackageShare{Package: "franka_moveit_config"}, ControllerCfg,
				))},
			},
			Remappings: []launch.Remapping{{From: "joint_states", To: "franka/joint_states"}},
			Output:     launch.OutputPolicy{Stdout: launch.OutputScreen, Stderr: launch.OutputScreen},
			OnExit:     &launch.Shutdown{Reason: "ros2_control_node exited"},
		},
		launch.Node{
			Package:    "warehouse_ros_mongo",
			Executable: DatabaseNode,
			Parameters: []launch.Parameter{
				launch.ParameterMap{"warehouse_port": WarehousePort},
				launch.ParameterMap{"warehouse_host": WarehouseHost},
				launch.ParameterMap{"warehouse_plugin": WarehousePlugin},
			},
			Output:    launch.Output(launch.OutputScreen),
			Condition: launch.If(launch.Config(DatabaseArgument)),
		},
		launch.Node{
			Package:    "joint_state_publisher",
			Executable: "joint_state_publisher",
			Name:       "joint_state_publisher",
			Parameters: []launch.Parameter{
				launch.ParameterMap{
					"source_list": []string{"franka/joint_states", gripper.JointStatesTopic},
					"rate":        30,
				},
			},
		},
		launch.IncludeLaunchDescription{
			Source: gripper.Source,
			Arguments: []launch.IncludeArgument{
				{Name: RobotIPArgument, Value: launch.Config(RobotIPArgument)},
				{Name: UseFakeHardwareArgument, Value: launch.Config(UseFakeHardwareArgument)},
			},
		},
	)

	for _, controller := range Controllers {
		desc.Add(launch.ExecuteProcess{
			Name:   SpawnerName(controller),
			Cmd:    launch.Subs(fmt.Sprintf("ros2 run controller_manager spawner.py %s", controller)),
			Shell:  true,
			Output: launch.Output(launch.OutputScreen),
			After:  []string{ControlNode},
		})
	}
	return desc
}

// MissingControllers returns the spawned controllers absent from the
// controller manager configuration. It returns nil when the configuration
// cannot be loaded.
func MissingControllers(index launch.PackageIndex, log logger.Logger) []string {
	cfg := launch.LoadYAMLWithLogger(index, "franka_moveit_config", ControllerCfg, log)
	if cfg == nil {
		return nil
	}

	cm, _ := cfg["controller_manager"].(map[string]any)
	params, _ := cm["ros__parameters"].(map[string]any)

	var missing []string
	for _, c := range Controllers {
		if _, ok := params[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
