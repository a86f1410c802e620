//go:build linux

package platform

import "golang.org/x/sys/unix"

// Preallocate attempts to pre-allocate disk space without changing the file
// size. Errors are ignored as fallocate is not supported on all filesystems.
func Preallocate(fd int, size int64) {
	if size <= 0 {
		return
	}
	//nolint:errcheck // fallocate is advisory; not supported on all filesystems
	unix.Fallocate(fd, unix.FALLOC_FL_KEEP_SIZE, 0, size)
}
