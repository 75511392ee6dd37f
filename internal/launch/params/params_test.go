package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFullyQualifiedName(t *testing.T) {
	tests := []struct {
		name      string
		node      string
		namespace string
		want      string
	}{
		{name: "anonymous", want: "/**"},
		{name: "root namespace", node: "robot_state_publisher", want: "/robot_state_publisher"},
		{name: "namespaced", node: "gripper", namespace: "panda", want: "/panda/gripper"},
		{name: "slashes trimmed", node: "gripper", namespace: "/panda/", want: "/panda/gripper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullyQualifiedName(tt.node, tt.namespace))
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "params")

	path, err := WriteFile(dir, "joint_state_publisher", "", "", map[string]any{
		"source_list": []string{"franka/joint_states", "panda_gripper/joint_states"},
		"rate":        30,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "joint_state_publisher.params.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	params := doc["/**"]["ros__parameters"]
	assert.Equal(t, 30, params["rate"])
	assert.Equal(t, []any{"franka/joint_states", "panda_gripper/joint_states"}, params["source_list"])
}

func TestWriteFile_MultilineString(t *testing.T) {
	urdf := "<?xml version=\"1.0\"?>\n<robot name=\"panda\">\n</robot>"

	path, err := WriteFile(t.TempDir(), "robot_state_publisher", "robot_state_publisher", "", map[string]any{
		"robot_description": urdf,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, urdf, doc["/robot_state_publisher"]["ros__parameters"]["robot_description"])
}

func TestWriteFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, "ros2", "", "", nil)
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFile_SanitizesEntityName(t *testing.T) {
	path, err := WriteFile(t.TempDir(), "ns/node name", "node", "ns", map[string]any{"a": true})
	require.NoError(t, err)
	assert.Equal(t, "ns_node_name.params.yaml", filepath.Base(path))
}
