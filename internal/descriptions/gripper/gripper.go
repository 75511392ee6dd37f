// Package gripper describes the Franka Hand launch file included by the
// arm description.
package gripper

import "github.com/aki/armlaunch/internal/launch"

// Source is the registry key of the gripper description
const Source = "franka_gripper/gripper.launch"

const (
	robotIPArgument         = "robot_ip"
	useFakeHardwareArgument = "use_fake_hardware"
	armIDArgument           = "arm_id"
)

// JointStatesTopic is where both gripper publishers remap their joint states
const JointStatesTopic = "panda_gripper/joint_states"

// GenerateLaunchDescription returns the gripper description. Exactly one of
// the real gripper driver and the fake state publisher is enabled, chosen by
// use_fake_hardware.
func GenerateLaunchDescription() *launch.LaunchDescription {
	robotIP := launch.Config(robotIPArgument)
	useFakeHardware := launch.Config(useFakeHardwareArgument)
	armID := launch.Config(armIDArgument)

	jointNames := []launch.Substitution{
		launch.Concat(launch.Subs(armID, "_finger_joint1")),
		launch.Concat(launch.Subs(armID, "_finger_joint2")),
	}
	remappings := []launch.Remapping{{From: "~/joint_states", To: JointStatesTopic}}

	return launch.NewLaunchDescription(
		launch.DeclareArgument(robotIPArgument, "Hostname or IP address of the robot."),
		launch.DeclareArgumentWithDefault(useFakeHardwareArgument, "false", "Use fake hardware"),
		launch.DeclareArgumentWithDefault(armIDArgument, "panda", "Name of the arm, used as joint name prefix"),

		launch.Node{
			Package:    "franka_gripper",
			Executable: "franka_gripper_node",
			Name:       "panda_gripper",
			Parameters: []launch.Parameter{
				launch.ParameterMap{
					"robot_ip":    robotIP,
					"joint_names": jointNames,
				},
				launch.ParameterFile{Path: launch.PathJoin(launch.Subs(
					launch.FindPackageShare{Package: "franka_gripper"}, "config", "franka_gripper_node.yaml",
				))},
			},
			Remappings: remappings,
			Condition:  launch.Unless(useFakeHardware),
		},
		launch.Node{
			Package:    "franka_gripper",
			Executable: "fake_gripper_state_publisher.py",
			Name:       "panda_gripper",
			Parameters: []launch.Parameter{
				launch.ParameterMap{"joint_names": jointNames},
			},
			Remappings: remappings,
			Condition:  launch.If(useFakeHardware),
		},
	)
}
