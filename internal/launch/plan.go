package launch

import "time"

// EntityKind distinguishes ROS nodes from plain processes
type EntityKind string

const (
	// KindNode is a ROS node started with `ros2 run`
	KindNode EntityKind = "node"
	// KindProcess is an arbitrary command
	KindProcess EntityKind = "process"
)

// Lifecycle represents how an entity is expected to behave once started
type Lifecycle string

const (
	// LifecycleOneshot entities run once and exit
	LifecycleOneshot Lifecycle = "oneshot"
	// LifecycleDaemon entities run until stopped
	LifecycleDaemon Lifecycle = "daemon"
)

// ResolvedArgument is a declared launch argument with its bound value
type ResolvedArgument struct {
	Name        string  `json:"name" yaml:"name"`
	Value       string  `json:"value" yaml:"value"`
	Default     *string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Overridden  bool    `json:"overridden" yaml:"overridden"`
	Source      string  `json:"source" yaml:"source"`
}

// Entity is one process of a resolved launch
type Entity struct {
	Name       string     `json:"name" yaml:"name"`
	Kind       EntityKind `json:"kind" yaml:"kind"`
	Source     string     `json:"source" yaml:"source"`
	Enabled    bool       `json:"enabled" yaml:"enabled"`
	Condition  string     `json:"condition,omitempty" yaml:"condition,omitempty"`
	Lifecycle  Lifecycle  `json:"lifecycle" yaml:"lifecycle"`
	Package    string     `json:"package,omitempty" yaml:"package,omitempty"`
	Executable string     `json:"executable,omitempty" yaml:"executable,omitempty"`

	// NodeName is the explicit ROS node name, empty when the node keeps
	// the name compiled into its executable.
	NodeName  string `json:"node_name,omitempty" yaml:"node_name,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Command is the resolved argv. For nodes it is the `ros2 run` prefix
	// without --ros-args; see CommandLine.
	Command        []string          `json:"command" yaml:"command"`
	Shell          bool              `json:"shell,omitempty" yaml:"shell,omitempty"`
	WorkingDir     string            `json:"working_dir,omitempty" yaml:"working_dir,omitempty"`
	Env            map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Parameters     map[string]any    `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ParameterFiles []string          `json:"parameter_files,omitempty" yaml:"parameter_files,omitempty"`
	Remappings     []Remapping       `json:"remappings,omitempty" yaml:"remappings,omitempty"`
	Output         OutputPolicy      `json:"output" yaml:"output"`

	ShutdownOnExit bool          `json:"shutdown_on_exit,omitempty" yaml:"shutdown_on_exit,omitempty"`
	ShutdownReason string        `json:"shutdown_reason,omitempty" yaml:"shutdown_reason,omitempty"`
	Retries        int           `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryDelay     time.Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
	Respawn        bool          `json:"respawn,omitempty" yaml:"respawn,omitempty"`
	RespawnDelay   time.Duration `json:"respawn_delay,omitempty" yaml:"respawn_delay,omitempty"`
	DependsOn      []string      `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// IsDaemon reports whether the entity runs until stopped
func (e *Entity) IsDaemon() bool {
	return e.Lifecycle == LifecycleDaemon
}

// CommandLine returns the full argv. For nodes the ROS arguments are
// appended, including the generated parameter file when paramsFile is set.
func (e *Entity) CommandLine(paramsFile string) []string {
	argv := append([]string(nil), e.Command...)
	if e.Kind != KindNode {
		return argv
	}

	var rosArgs []string
	if e.NodeName != "" {
		rosArgs = append(rosArgs, "-r", "__node:="+e.NodeName)
	}
	if e.Namespace != "" {
		rosArgs = append(rosArgs, "-r", "__ns:="+e.Namespace)
	}
	for _, r := range e.Remappings {
		rosArgs = append(rosArgs, "-r", r.From+":="+r.To)
	}
	if paramsFile != "" {
		rosArgs = append(rosArgs, "--params-file", paramsFile)
	}
	for _, f := range e.ParameterFiles {
		rosArgs = append(rosArgs, "--params-file", f)
	}

	if len(rosArgs) > 0 {
		argv = append(argv, "--ros-args")
		argv = append(argv, rosArgs...)
	}
	return argv
}

// Plan is a fully resolved launch: every argument bound, every condition
// evaluated and every substitution replaced by its value.
type Plan struct {
	ID          string             `json:"id" yaml:"id"`
	Description string             `json:"description" yaml:"description"`
	CreatedAt   time.Time          `json:"created_at" yaml:"created_at"`
	Arguments   []ResolvedArgument `json:"arguments" yaml:"arguments"`
	Entities    []*Entity          `json:"entities" yaml:"entities"`

	// Commands are the command substitutions evaluated during resolution
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// Enabled returns the entities whose conditions held
func (p *Plan) Enabled() []*Entity {
	var out []*Entity
	for _, e := range p.Entities {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Entity returns the entity with the given name
func (p *Plan) Entity(name string) (*Entity, bool) {
	for _, e := range p.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Argument returns the resolved value of a top-level argument
func (p *Plan) Argument(name string) (ResolvedArgument, bool) {
	for _, a := range p.Arguments {
		if a.Name == name && a.Source == p.Description {
			return a, true
		}
	}
	return ResolvedArgument{}, false
}

// Processes returns the plain process entities, enabled or not
func (p *Plan) Processes() []*Entity {
	var out []*Entity
	for _, e := range p.Entities {
		if e.Kind == KindProcess {
			out = append(out, e)
		}
	}
	return out
}
