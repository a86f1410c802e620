// Package platform detects optional kernel features at runtime and hosts the
// small syscall helpers shared by the metadata and transfer packages.
package platform

import (
	"fmt"
	"sync"
)

// Capabilities records which optional kernel entry points exist on the running
// system. It is a plain value: callers receive copies and can never mutate the
// process-wide table.
type Capabilities struct {
	Kernel       KernelVersion
	ExtendedStat bool // statx(2)
	RangeCopy    bool // copy_file_range(2)
}

// Without returns a copy of c with the named features forced off. Features can
// only be disabled this way, never enabled.
func (c Capabilities) Without(extendedStat, rangeCopy bool) Capabilities {
	if extendedStat {
		c.ExtendedStat = false
	}
	if rangeCopy {
		c.RangeCopy = false
	}
	return c
}

// CrossFilesystemRangeCopy reports whether copy_file_range(2) can copy between
// files on different filesystems. Older kernels fail such pairs with EXDEV,
// so the engine falls back to sendfile for them.
func (c Capabilities) CrossFilesystemRangeCopy() bool {
	return c.RangeCopy && c.Kernel.AtLeast(5, 3)
}

func (c Capabilities) String() string {
	return fmt.Sprintf("kernel=%s statx=%t copy_file_range=%t", c.Kernel, c.ExtendedStat, c.RangeCopy)
}

var detect = sync.OnceValue(Probe)

// Detect returns the process-wide capability table. The first call probes the
// kernel; every later call returns the same frozen value.
func Detect() Capabilities {
	return detect()
}
