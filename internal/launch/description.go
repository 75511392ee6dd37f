package launch

// LaunchDescription is an ordered list of launch actions
type LaunchDescription struct {
	Actions []Action
}

// NewLaunchDescription creates a description from actions in launch order
func NewLaunchDescription(actions ...Action) *LaunchDescription {
	return &LaunchDescription{Actions: actions}
}

// Add appends actions
func (d *LaunchDescription) Add(actions ...Action) {
	d.Actions = append(d.Actions, actions...)
}

// Arguments returns the arguments declared directly by this description,
// in declaration order. Arguments of included descriptions are not listed.
func (d *LaunchDescription) Arguments() []DeclareLaunchArgument {
	var out []DeclareLaunchArgument
	for _, a := range d.Actions {
		if arg, ok := a.(DeclareLaunchArgument); ok {
			out = append(out, arg)
		}
	}
	return out
}

// Nodes returns the node actions in order
func (d *LaunchDescription) Nodes() []Node {
	var out []Node
	for _, a := range d.Actions {
		if n, ok := a.(Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// Processes returns the process actions in order
func (d *LaunchDescription) Processes() []ExecuteProcess {
	var out []ExecuteProcess
	for _, a := range d.Actions {
		if p, ok := a.(ExecuteProcess); ok {
			out = append(out, p)
		}
	}
	return out
}

// Includes returns the include actions in order
func (d *LaunchDescription) Includes() []IncludeLaunchDescription {
	var out []IncludeLaunchDescription
	for _, a := range d.Actions {
		if inc, ok := a.(IncludeLaunchDescription); ok {
			out = append(out, inc)
		}
	}
	return out
}
