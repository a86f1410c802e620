//go:build linux

package metadata

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// rawStatx issues statx(2) directly. A path containing NUL yields EINVAL.
func rawStatx(dirfd int, path string, flags int, mask uint32, buf *statxBuf) error {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return err
	}
	_, _, errno := syscall.Syscall6(
		unix.SYS_STATX,
		uintptr(dirfd),
		uintptr(unsafe.Pointer(p)),
		uintptr(flags),
		uintptr(mask),
		uintptr(unsafe.Pointer(buf)),
		0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}
