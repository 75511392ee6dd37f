//go:build windows

package runstate

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const (
	errorAccessDenied     syscall.Errno = 5
	errorSharingViolation syscall.Errno = 32
)

// Run files are read by `armlaunch status` while the supervisor rewrites
// them, and Windows refuses to rename over a file that is open.
var renamePolicy = retrypolicy.Builder[any]().
	HandleIf(func(_ any, err error) bool {
		return errors.Is(err, errorAccessDenied) || errors.Is(err, errorSharingViolation)
	}).
	WithMaxRetries(5).
	WithDelay(10 * time.Millisecond).
	Build()

// atomicRename replaces dst with src
func atomicRename(src, dst string) error {
	return failsafe.NewExecutor[any](renamePolicy).Run(func() error {
		return os.Rename(src, dst)
	})
}
