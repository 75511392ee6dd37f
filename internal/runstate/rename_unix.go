//go:build !windows

package runstate

import "os"

// atomicRename replaces dst with src. Readers see the old or the new run
// file, never a partial one.
func atomicRename(src, dst string) error {
	return os.Rename(src, dst)
}
