package launch

import (
	"context"
	"fmt"
	"strings"
)

// fakeIndex maps package names to share directories
type fakeIndex map[string]string

func (f fakeIndex) ShareDirectory(pkg string) (string, error) {
	if dir, ok := f[pkg]; ok {
		return dir, nil
	}
	return "", fmt.Errorf("package not found: %s", pkg)
}

// echoRunner returns the command line instead of running it
type echoRunner struct {
	calls [][]string
}

func (r *echoRunner) Run(_ context.Context, argv []string) ([]byte, error) {
	r.calls = append(r.calls, argv)
	return []byte(strings.Join(argv, " ") + "\n"), nil
}

// mapLoader serves descriptions from a map
type mapLoader map[string]*LaunchDescription

func (m mapLoader) Load(source string) (*LaunchDescription, error) {
	if d, ok := m[source]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDescription, source)
}

func fakeLookPath(name string) (string, error) {
	return "/opt/ros/humble/bin/" + name, nil
}

func newTestContext(opts ...ContextOption) *Context {
	base := []ContextOption{
		WithPackageIndex(fakeIndex{
			"franka_description": "/ws/share/franka_description",
			"franka_gripper":     "/ws/share/franka_gripper",
		}),
		WithCommandRunner(&echoRunner{}),
		WithLookPath(fakeLookPath),
	}
	return NewContext(context.Background(), append(base, opts...)...)
}
