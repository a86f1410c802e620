//go:build linux

package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Probe resolves the optional kernel entry points. It has no side effects
// beyond the probing syscalls and never caches, so calling it twice yields
// identical tables. Most callers want Detect instead.
func Probe() Capabilities {
	return Capabilities{
		Kernel:       kernelVersion(),
		ExtendedStat: probeStatx(),
		RangeCopy:    probeCopyFileRange(),
	}
}

// probeStatx asks for the file type of the working directory. Only an
// absent syscall (or a seccomp filter posing as one) counts as unsupported.
func probeStatx() bool {
	var stx unix.Statx_t
	err := IgnoringEINTR(func() error {
		return unix.Statx(unix.AT_FDCWD, ".", unix.AT_STATX_SYNC_AS_STAT, unix.STATX_TYPE, &stx)
	})
	return !isMissingSyscall(err)
}

// probeCopyFileRange issues a zero-length copy between invalid descriptors.
// An implemented syscall rejects the descriptors with EBADF.
func probeCopyFileRange() bool {
	_, err := IgnoringEINTRIO(func() (int, error) {
		return unix.CopyFileRange(-1, nil, -1, nil, 0, 0)
	})
	return !isMissingSyscall(err)
}

func isMissingSyscall(err error) bool {
	return errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EPERM)
}

func kernelVersion() KernelVersion {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return KernelVersion{}
	}
	v, _ := parseKernelRelease(unix.ByteSliceToString(uname.Release[:]))
	return v
}
