package launch

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aki/armlaunch/internal/core/logger"
)

// LoadYAML reads <share dir of pkg>/<relPath> and returns its top-level
// mapping. It returns nil when the package cannot be found, the file cannot
// be read, or the content is not a YAML mapping. It never returns an error;
// callers treat nil as "no configuration".
func LoadYAML(index PackageIndex, pkg, relPath string) map[string]any {
	return LoadYAMLWithLogger(index, pkg, relPath, nil)
}

// LoadYAMLWithLogger is LoadYAML with the reason for a nil result logged at
// debug level.
func LoadYAMLWithLogger(index PackageIndex, pkg, relPath string, log logger.Logger) map[string]any {
	if log == nil {
		log = logger.Nop()
	}
	if index == nil {
		log.Debug("no package index, skipping yaml load", "package", pkg, "path", relPath)
		return nil
	}

	share, err := index.ShareDirectory(pkg)
	if err != nil {
		log.Debug("package lookup failed", "package", pkg, "error", err)
		return nil
	}

	path := filepath.Join(share, relPath)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug("failed to read yaml", "path", path, "error", err)
		return nil
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		log.Debug("failed to parse yaml", "path", path, "error", err)
		return nil
	}
	return out
}
