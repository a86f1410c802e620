//go:build linux

package platform

import "golang.org/x/sys/unix"

// AdviceSequential marks a range as read once from start to end.
const AdviceSequential = unix.FADV_SEQUENTIAL

// Fadvise declares the expected access pattern for a byte range of fd. The
// raw errno is returned on failure.
func Fadvise(fd int, offset, length int64, advice int) error {
	return unix.Fadvise(fd, offset, length, advice)
}
