// Package launch models ROS2 launch descriptions: declared arguments,
// substitutions, conditions and the node and process actions that make up
// a launch file. Resolve turns a description into a Plan of concrete
// commands that the supervisor can run.
package launch

import (
	"fmt"
	"path/filepath"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
)

// Substitution is a value that is only known once launch configurations
// are bound: a launch argument, a package path, the output of a command.
type Substitution interface {
	// Perform resolves the substitution in the given scope
	Perform(lc *Context) (string, error)
	// String describes the substitution using launch-file syntax
	String() string
}

// Text is a literal substitution
type Text string

// Perform implements Substitution
func (t Text) Perform(*Context) (string, error) {
	return string(t), nil
}

func (t Text) String() string {
	return string(t)
}

// LaunchConfiguration resolves to the value of a launch configuration,
// normally bound by a DeclareLaunchArgument.
type LaunchConfiguration struct {
	Name string
}

// Config is shorthand for LaunchConfiguration{Name: name}
func Config(name string) LaunchConfiguration {
	return LaunchConfiguration{Name: name}
}

// Perform implements Substitution
func (s LaunchConfiguration) Perform(lc *Context) (string, error) {
	v, ok := lc.Configuration(s.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConfiguration, s.Name)
	}
	return v, nil
}

func (s LaunchConfiguration) String() string {
	return fmt.Sprintf("$(var %s)", s.Name)
}

// FindExecutable resolves to the absolute path of an executable on PATH
type FindExecutable struct {
	Name string
}

// Perform implements Substitution
func (s FindExecutable) Perform(lc *Context) (string, error) {
	path, err := lc.lookPath(s.Name)
	if err != nil {
		return "", fmt.Errorf("executable %s not found: %w", s.Name, err)
	}
	return path, nil
}

func (s FindExecutable) String() string {
	return fmt.Sprintf("$(find-exec %s)", s.Name)
}

// FindPackageShare resolves to the share directory of a ROS package
type FindPackageShare struct {
	Package string
}

// Perform implements Substitution
func (s FindPackageShare) Perform(lc *Context) (string, error) {
	return lc.ShareDirectory(s.Package)
}

func (s FindPackageShare) String() string {
	return fmt.Sprintf("$(find-pkg-share %s)", s.Package)
}

// PathJoin joins its parts as file path elements
type PathJoin []Substitution

// Perform implements Substitution
func (s PathJoin) Perform(lc *Context) (string, error) {
	parts := make([]string, 0, len(s))
	for _, sub := range s {
		v, err := sub.Perform(lc)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	return filepath.Join(parts...), nil
}

func (s PathJoin) String() string {
	parts := make([]string, 0, len(s))
	for _, sub := range s {
		parts = append(parts, sub.String())
	}
	return strings.Join(parts, "/")
}

// Concat concatenates its parts
type Concat []Substitution

// Perform implements Substitution
func (s Concat) Perform(lc *Context) (string, error) {
	return PerformAll(lc, s)
}

func (s Concat) String() string {
	return describeAll(s)
}

// Command concatenates its parts into a command line, runs it, and
// resolves to the trimmed standard output. A command line runs at most
// once per resolution; later uses get the first output.
type Command []Substitution

// Perform implements Substitution
func (s Command) Perform(lc *Context) (string, error) {
	line, err := s.CommandLine(lc)
	if err != nil {
		return "", err
	}
	if out, ok := lc.outputs[line]; ok {
		return out, nil
	}

	argv, err := shlex.Split(line, true)
	if err != nil {
		return "", fmt.Errorf("failed to split command %q: %w", line, err)
	}

	lc.recordCommand(line)
	lc.logger.Debug("running command substitution", "command", line)

	raw, err := lc.runner.Run(lc.ctx, argv)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(string(raw))
	lc.outputs[line] = out
	return out, nil
}

// CommandLine resolves the command line without running it.
func (s Command) CommandLine(lc *Context) (string, error) {
	return PerformAll(lc, s)
}

func (s Command) String() string {
	return fmt.Sprintf("$(command %s)", describeAll(s))
}

// Subs converts strings and substitutions into a substitution list.
// Strings become Text; anything else must already be a Substitution.
func Subs(values ...any) []Substitution {
	out := make([]Substitution, 0, len(values))
	for _, v := range values {
		switch val := v.(type) {
		case string:
			out = append(out, Text(val))
		case Substitution:
			out = append(out, val)
		default:
			panic(fmt.Sprintf("launch: cannot use %T as a substitution", v))
		}
	}
	return out
}

// PerformAll resolves every substitution and concatenates the results
func PerformAll(lc *Context, subs []Substitution) (string, error) {
	var b strings.Builder
	for _, sub := range subs {
		v, err := sub.Perform(lc)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func describeAll(subs []Substitution) string {
	var b strings.Builder
	for _, sub := range subs {
		b.WriteString(sub.String())
	}
	return b.String()
}
