package launch

import "time"

// Action is one entry of a launch description
type Action interface {
	isAction()
}

// DeclareLaunchArgument declares a user-overridable launch argument. An
// argument without a default value is required.
type DeclareLaunchArgument struct {
	Name         string
	DefaultValue *string
	Description  string
	Choices      []string
}

// DeclareArgument declares a required argument
func DeclareArgument(name, description string) DeclareLaunchArgument {
	return DeclareLaunchArgument{Name: name, Description: description}
}

// DeclareArgumentWithDefault declares an optional argument
func DeclareArgumentWithDefault(name, defaultValue, description string) DeclareLaunchArgument {
	return DeclareLaunchArgument{Name: name, DefaultValue: &defaultValue, Description: description}
}

// Required reports whether the argument has no default
func (a DeclareLaunchArgument) Required() bool {
	return a.DefaultValue == nil
}

// Parameter is a node parameter source: an inline map or a file
type Parameter interface {
	isParameter()
}

// ParameterMap holds inline node parameters. Values may be plain Go values
// (string, bool, int, float64, slices of those) or Substitutions.
type ParameterMap map[string]any

// ParameterFile is a ROS parameter YAML file passed to the node as-is
type ParameterFile struct {
	Path Substitution
}

// Remapping renames a topic or service for a node
type Remapping struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Shutdown tears the whole launch down when the owning process exits
type Shutdown struct {
	Reason string
}

// Node starts a ROS2 node with `ros2 run`
type Node struct {
	Package      string
	Executable   string
	Name         string
	Namespace    string
	Parameters   []Parameter
	Remappings   []Remapping
	Arguments    []Substitution
	Output       OutputPolicy
	OnExit       *Shutdown
	Condition    Condition
	Respawn      bool
	RespawnDelay time.Duration

	// After lists entity names that must be started first
	After []string
}

// ExecuteProcess runs an arbitrary command
type ExecuteProcess struct {
	Name       string
	Cmd        []Substitution
	Shell      bool
	Cwd        string
	Env        map[string]string
	Output     OutputPolicy
	OnExit     *Shutdown
	Condition  Condition
	Retries    int
	RetryDelay time.Duration

	// Daemon marks a long-running process; otherwise it is expected to exit
	Daemon bool

	// After lists entity names that must be started first
	After []string
}

// IncludeArgument binds one launch argument of an included description
type IncludeArgument struct {
	Name  string
	Value Substitution
}

// IncludeLaunchDescription pulls in another registered description
type IncludeLaunchDescription struct {
	Source    string
	Arguments []IncludeArgument
	Condition Condition
}

func (DeclareLaunchArgument) isAction()    {}
func (Node) isAction()                     {}
func (ExecuteProcess) isAction()           {}
func (IncludeLaunchDescription) isAction() {}

func (ParameterMap) isParameter()  {}
func (ParameterFile) isParameter() {}
