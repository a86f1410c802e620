// Package metadata retrieves file attributes through statx(2) when the
// running kernel provides it, and through the legacy stat family otherwise.
package metadata

import (
	"io/fs"
	"time"
)

// Kernel file type and permission bits (stat.h).
const (
	modeTypeMask = 0o170000
	modeSocket   = 0o140000
	modeSymlink  = 0o120000
	modeRegular  = 0o100000
	modeBlock    = 0o060000
	modeDir      = 0o040000
	modeChar     = 0o020000
	modeFIFO     = 0o010000
	modeSetuid   = 0o4000
	modeSetgid   = 0o2000
	modeSticky   = 0o1000
)

// Timespec is a kernel timestamp with nanosecond precision.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// Time converts ts to a time.Time.
func (ts Timespec) Time() time.Time {
	return time.Unix(ts.Sec, ts.Nsec)
}

// IsZero reports whether ts is the unset sentinel.
func (ts Timespec) IsZero() bool {
	return ts.Sec == 0 && ts.Nsec == 0
}

// Record holds one file's attributes. Dev and Rdev use the kernel's combined
// dev_t encoding. Btime is the zero Timespec and HasBirthTime is false when
// the query path did not report a birth time.
type Record struct {
	Atime        Timespec
	Mtime        Timespec
	Ctime        Timespec
	Btime        Timespec
	Ino          uint64
	Dev          uint64
	Rdev         uint64
	Size         int64
	Mode         uint32
	Nlink        uint32
	UID          uint32
	GID          uint32
	HasBirthTime bool
}

// FileMode converts the raw mode bits into an fs.FileMode.
func (r Record) FileMode() fs.FileMode {
	mode := fs.FileMode(r.Mode & 0o777)
	switch r.Mode & modeTypeMask {
	case modeBlock:
		mode |= fs.ModeDevice
	case modeChar:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case modeDir:
		mode |= fs.ModeDir
	case modeFIFO:
		mode |= fs.ModeNamedPipe
	case modeSymlink:
		mode |= fs.ModeSymlink
	case modeSocket:
		mode |= fs.ModeSocket
	}
	if r.Mode&modeSetuid != 0 {
		mode |= fs.ModeSetuid
	}
	if r.Mode&modeSetgid != 0 {
		mode |= fs.ModeSetgid
	}
	if r.Mode&modeSticky != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

// CreationTime returns the birth time when known, else the modification time.
func (r Record) CreationTime() time.Time {
	if r.HasBirthTime {
		return r.Btime.Time()
	}
	return r.Mtime.Time()
}
