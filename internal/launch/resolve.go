package launch

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Resolve binds overrides onto the description's declared arguments,
// evaluates conditions, performs substitutions and expands includes. The
// source key names the description in the resulting Plan.
//
// Overrides that match no declared argument are kept as configurations so
// included descriptions can see them.
func Resolve(lc *Context, source string, desc *LaunchDescription, overrides map[string]string) (*Plan, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDescription, source)
	}

	scope := lc.child(source)
	for k, v := range overrides {
		scope.SetConfiguration(k, v)
	}

	r := &resolver{
		plan: &Plan{
			ID:          uuid.New().String(),
			Description: source,
			CreatedAt:   time.Now(),
		},
		names: make(map[string]int),
	}

	if err := r.resolve(scope, source, desc, overrides); err != nil {
		return nil, err
	}
	r.assignNames()

	r.plan.Commands = lc.Commands()
	return r.plan, nil
}

type resolver struct {
	plan  *Plan
	names map[string]int
}

func (r *resolver) resolve(lc *Context, source string, desc *LaunchDescription, overrides map[string]string) error {
	if err := r.bindArguments(lc, source, desc, overrides); err != nil {
		return err
	}

	for _, action := range desc.Actions {
		var err error
		switch a := action.(type) {
		case DeclareLaunchArgument:
			// bound above
		case Node:
			err = r.addNode(lc, source, a)
		case ExecuteProcess:
			err = r.addProcess(lc, source, a)
		case IncludeLaunchDescription:
			err = r.include(lc, source, a)
		default:
			err = fmt.Errorf("unsupported launch action %T", action)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}

// bindArguments applies defaults and collects every missing required
// argument before any entity is resolved.
func (r *resolver) bindArguments(lc *Context, source string, desc *LaunchDescription, overrides map[string]string) error {
	var missing []string
	for _, arg := range desc.Arguments() {
		value, bound := lc.Configuration(arg.Name)
		_, overridden := overrides[arg.Name]

		if !bound {
			if arg.Required() {
				missing = append(missing, arg.Name)
				continue
			}
			value = *arg.DefaultValue
			lc.SetConfiguration(arg.Name, value)
		}

		if len(arg.Choices) > 0 && !slices.Contains(arg.Choices, value) {
			return fmt.Errorf("argument %s=%q: %w %v", arg.Name, value, ErrInvalidChoice, arg.Choices)
		}

		r.plan.Arguments = append(r.plan.Arguments, ResolvedArgument{
			Name:        arg.Name,
			Value:       value,
			Default:     arg.DefaultValue,
			Description: arg.Description,
			Overridden:  overridden,
			Source:      source,
		})
	}

	if len(missing) > 0 {
		return &MissingArgumentsError{Source: source, Names: missing}
	}
	return nil
}

func (r *resolver) enabled(lc *Context, cond Condition) (bool, string, error) {
	if cond == nil {
		return true, "", nil
	}
	ok, err := cond.Evaluate(lc)
	if err != nil {
		return false, cond.String(), err
	}
	return ok, cond.String(), nil
}

// assignNames makes entity names unique, suffixing repeats with -2, -3,
// ... Enabled entities are named first so the process that runs keeps the
// declared name when a disabled alternative shares it, as the two gripper
// nodes do.
func (r *resolver) assignNames() {
	enabled, disabled := lo.FilterReject(r.plan.Entities, func(e *Entity, _ int) bool {
		return e.Enabled
	})
	for _, e := range append(enabled, disabled...) {
		e.Name = r.uniqueName(e.Name)
	}
}

func (r *resolver) uniqueName(base string) string {
	r.names[base]++
	if n := r.names[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

func (r *resolver) addNode(lc *Context, source string, n Node) error {
	if n.Package == "" || n.Executable == "" {
		return fmt.Errorf("node requires package and executable (got %q/%q)", n.Package, n.Executable)
	}

	base := n.Name
	if base == "" {
		base = n.Executable
	}

	ok, cond, err := r.enabled(lc, n.Condition)
	if err != nil {
		return fmt.Errorf("node %s: %w", base, err)
	}

	e := &Entity{
		Name:         base,
		Kind:         KindNode,
		Source:       source,
		Enabled:      ok,
		Condition:    cond,
		Lifecycle:    LifecycleDaemon,
		Package:      n.Package,
		Executable:   n.Executable,
		NodeName:     n.Name,
		Namespace:    n.Namespace,
		Output:       n.Output.normalized(),
		Respawn:      n.Respawn,
		RespawnDelay: n.RespawnDelay,
		Remappings:   append([]Remapping(nil), n.Remappings...),
		DependsOn:    append([]string(nil), n.After...),
	}
	if n.OnExit != nil {
		e.ShutdownOnExit = true
		e.ShutdownReason = n.OnExit.Reason
	}
	r.plan.Entities = append(r.plan.Entities, e)

	// Disabled entities keep their static description only; their
	// substitutions may reference things that do not exist.
	if !ok {
		e.Command = []string{"ros2", "run", n.Package, n.Executable}
		return nil
	}

	args := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		v, err := a.Perform(lc)
		if err != nil {
			return fmt.Errorf("node %s argument: %w", e.Name, err)
		}
		args = append(args, v)
	}
	e.Command = append([]string{"ros2", "run", n.Package, n.Executable}, args...)

	for _, p := range n.Parameters {
		switch param := p.(type) {
		case ParameterMap:
			if e.Parameters == nil {
				e.Parameters = make(map[string]any)
			}
			for k, v := range param {
				rv, err := resolveValue(lc, v)
				if err != nil {
					return fmt.Errorf("node %s parameter %s: %w", e.Name, k, err)
				}
				e.Parameters[k] = rv
			}
		case ParameterFile:
			f, err := param.Path.Perform(lc)
			if err != nil {
				return fmt.Errorf("node %s parameter file: %w", e.Name, err)
			}
			e.ParameterFiles = append(e.ParameterFiles, f)
		default:
			return fmt.Errorf("node %s: unsupported parameter %T", e.Name, p)
		}
	}

	return nil
}

func (r *resolver) addProcess(lc *Context, source string, p ExecuteProcess) error {
	if len(p.Cmd) == 0 {
		return fmt.Errorf("process %q has an empty command", p.Name)
	}

	base := p.Name
	if base == "" {
		base = processBaseName(p.Cmd)
	}

	ok, cond, err := r.enabled(lc, p.Condition)
	if err != nil {
		return fmt.Errorf("process %s: %w", base, err)
	}

	lifecycle := LifecycleOneshot
	if p.Daemon {
		lifecycle = LifecycleDaemon
	}

	e := &Entity{
		Name:       base,
		Kind:       KindProcess,
		Source:     source,
		Enabled:    ok,
		Condition:  cond,
		Lifecycle:  lifecycle,
		Shell:      p.Shell,
		WorkingDir: p.Cwd,
		Output:     p.Output.normalized(),
		Retries:    p.Retries,
		RetryDelay: p.RetryDelay,
		DependsOn:  append([]string(nil), p.After...),
	}
	if len(p.Env) > 0 {
		e.Env = make(map[string]string, len(p.Env))
		for k, v := range p.Env {
			e.Env[k] = v
		}
	}
	if p.OnExit != nil {
		e.ShutdownOnExit = true
		e.ShutdownReason = p.OnExit.Reason
	}
	r.plan.Entities = append(r.plan.Entities, e)

	if !ok {
		for _, c := range p.Cmd {
			e.Command = append(e.Command, c.String())
		}
		return nil
	}

	for _, c := range p.Cmd {
		v, err := c.Perform(lc)
		if err != nil {
			return fmt.Errorf("process %s: %w", e.Name, err)
		}
		e.Command = append(e.Command, v)
	}
	return nil
}

func (r *resolver) include(lc *Context, source string, inc IncludeLaunchDescription) error {
	ok, _, err := r.enabled(lc, inc.Condition)
	if err != nil {
		return fmt.Errorf("include %s: %w", inc.Source, err)
	}
	if !ok {
		lc.Logger().Debug("skipping include", "source", inc.Source, "condition", inc.Condition)
		return nil
	}

	if lc.including(inc.Source) {
		return fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, source, inc.Source)
	}
	if lc.loader == nil {
		return fmt.Errorf("%w: %s (no loader configured)", ErrUnknownDescription, inc.Source)
	}
	desc, err := lc.loader.Load(inc.Source)
	if err != nil {
		return err
	}

	child := lc.child(inc.Source)
	bound := make(map[string]string, len(inc.Arguments))
	for _, a := range inc.Arguments {
		v, err := a.Value.Perform(lc)
		if err != nil {
			return fmt.Errorf("include %s argument %s: %w", inc.Source, a.Name, err)
		}
		child.SetConfiguration(a.Name, v)
		bound[a.Name] = v
	}

	return r.resolve(child, inc.Source, desc, bound)
}

func resolveValue(lc *Context, v any) (any, error) {
	switch val := v.(type) {
	case Substitution:
		return val.Perform(lc)
	case []Substitution:
		out := make([]string, 0, len(val))
		for _, s := range val {
			rv, err := s.Perform(lc)
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			rv, err := resolveValue(lc, item)
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			rv, err := resolveValue(lc, item)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

// processBaseName derives a name from the first word of a command, the way
// launch names anonymous processes.
func processBaseName(cmd []Substitution) string {
	if t, ok := cmd[0].(Text); ok {
		if fields := strings.Fields(string(t)); len(fields) > 0 {
			return path.Base(fields[0])
		}
	}
	return "process"
}
