// Package params writes node parameters in the layout `ros2 run --params-file`
// expects.
package params

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wildcard matches every node in a params file
const Wildcard = "/**"

// FullyQualifiedName returns the key a params file uses for a node. Nodes
// without an explicit name match by wildcard.
func FullyQualifiedName(nodeName, namespace string) string {
	if nodeName == "" {
		return Wildcard
	}
	ns := strings.Trim(namespace, "/")
	if ns == "" {
		return "/" + nodeName
	}
	return "/" + ns + "/" + nodeName
}

// Document builds the params-file mapping for a node
func Document(nodeName, namespace string, values map[string]any) map[string]any {
	return map[string]any{
		FullyQualifiedName(nodeName, namespace): map[string]any{
			"ros__parameters": normalize(values),
		},
	}
}

// Marshal renders the params-file document as YAML
func Marshal(nodeName, namespace string, values map[string]any) ([]byte, error) {
	data, err := yaml.Marshal(Document(nodeName, namespace, values))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	return data, nil
}

// WriteFile writes the parameters of one entity to <dir>/<entity>.params.yaml
// and returns the path. Nothing is written when values is empty.
func WriteFile(dir, entity, nodeName, namespace string, values map[string]any) (string, error) {
	if len(values) == 0 {
		return "", nil
	}

	data, err := Marshal(nodeName, namespace, values)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create params directory: %w", err)
	}

	path := filepath.Join(dir, fileName(entity))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write params file: %w", err)
	}
	return path, nil
}

func fileName(entity string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_")
	return r.Replace(entity) + ".params.yaml"
}

// normalize converts values into the shapes ROS parameters support. String
// slices stay string slices; other slices are kept element-wise.
func normalize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalize(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = normalizeValue(item)
		}
		return items
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}
