//go:build !unix

package transfer

import (
	"syscall"

	"github.com/bamsammich/xfer/internal/stats"
)

// CopyBuffered is unavailable where descriptors are not integers.
func CopyBuffered(_, _ int, _ *CancelFlag, _ *stats.Collector) Result {
	return Result{Outcome: UnsupportedOnPlatform, Method: ReadWrite, Err: syscall.ENOSYS}
}
