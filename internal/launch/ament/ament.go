// Package ament locates ROS2 package share directories through the ament
// resource index, the same lookup ament_index_python performs.
package ament

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// PrefixPathEnv is the environment variable listing install prefixes
	PrefixPathEnv = "AMENT_PREFIX_PATH"

	// resourceIndexPackages is the marker directory for installed packages,
	// relative to a prefix.
	resourceIndexPackages = "share/ament_index/resource_index/packages"
)

// ErrPackageNotFound is returned when no prefix provides the package
var ErrPackageNotFound = errors.New("package not found")

// Index resolves package share directories. The zero value is not usable;
// create one with NewIndex.
type Index struct {
	prefixes []string

	mu    sync.RWMutex
	cache map[string]string
}

// NewIndex creates an index over the given prefixes followed by the
// prefixes listed in AMENT_PREFIX_PATH.
func NewIndex(extra ...string) *Index {
	return NewIndexFromPaths(append(extra, SplitPrefixPath(os.Getenv(PrefixPathEnv))...)...)
}

// NewIndexFromPaths creates an index that only searches the given prefixes.
func NewIndexFromPaths(prefixes ...string) *Index {
	seen := make(map[string]bool)
	var cleaned []string
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		cleaned = append(cleaned, p)
	}

	return &Index{
		prefixes: cleaned,
		cache:    make(map[string]string),
	}
}

// SplitPrefixPath splits a colon separated prefix list, dropping empty entries.
func SplitPrefixPath(value string) []string {
	var out []string
	for _, p := range strings.Split(value, string(os.PathListSeparator)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Prefixes returns the search path in lookup order
func (i *Index) Prefixes() []string {
	out := make([]string, len(i.prefixes))
	copy(out, i.prefixes)
	return out
}

// Prefix returns the install prefix that provides pkg.
func (i *Index) Prefix(pkg string) (string, error) {
	if pkg == "" || strings.ContainsAny(pkg, `/\`) {
		return "", fmt.Errorf("invalid package name %q", pkg)
	}

	i.mu.RLock()
	prefix, ok := i.cache[pkg]
	i.mu.RUnlock()
	if ok {
		return prefix, nil
	}

	for _, p := range i.prefixes {
		marker := filepath.Join(p, resourceIndexPackages, pkg)
		if _, err := os.Stat(marker); err == nil {
			i.mu.Lock()
			i.cache[pkg] = p
			i.mu.Unlock()
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrPackageNotFound, pkg)
}

// ShareDirectory returns <prefix>/share/<pkg> for the prefix providing pkg.
func (i *Index) ShareDirectory(pkg string) (string, error) {
	prefix, err := i.Prefix(pkg)
	if err != nil {
		return "", err
	}
	return filepath.Join(prefix, "share", pkg), nil
}

// Packages lists every package visible through the index. Packages found in
// earlier prefixes shadow later ones.
func (i *Index) Packages() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, p := range i.prefixes {
		entries, err := os.ReadDir(filepath.Join(p, resourceIndexPackages))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read resource index in %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() || seen[e.Name()] {
				continue
			}
			seen[e.Name()] = true
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Install registers pkg under prefix by creating its resource index marker
// and share directory. It is used to lay out workspaces for tests and for
// `armlaunch` overlay prefixes.
func Install(prefix, pkg string) (string, error) {
	markerDir := filepath.Join(prefix, resourceIndexPackages)
	if err := os.MkdirAll(markerDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create resource index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(markerDir, pkg), nil, 0o644); err != nil {
		return "", fmt.Errorf("failed to write resource marker: %w", err)
	}
	share := filepath.Join(prefix, "share", pkg)
	if err := os.MkdirAll(share, 0o755); err != nil {
		return "", fmt.Errorf("failed to create share directory: %w", err)
	}
	return share, nil
}
