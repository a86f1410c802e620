//go:build linux

package metadata

import (
	"golang.org/x/sys/unix"

	"github.com/bamsammich/xfer/internal/platform"
)

func legacyStat(path string, followSymlinks bool) (Record, error) {
	flags := 0
	if !followSymlinks {
		flags = unix.AT_SYMLINK_NOFOLLOW
	}
	var st unix.Stat_t
	err := platform.IgnoringEINTR(func() error {
		return unix.Fstatat(unix.AT_FDCWD, path, &st, flags)
	})
	if err != nil {
		return Record{}, err
	}
	return recordFromStat(&st), nil
}

func legacyFstat(fd int) (Record, error) {
	var st unix.Stat_t
	err := platform.IgnoringEINTR(func() error {
		return unix.Fstat(fd, &st)
	})
	if err != nil {
		return Record{}, err
	}
	return recordFromStat(&st), nil
}

// recordFromStat copies a stat(2) result. Field widths vary by
// architecture, hence the explicit conversions.
//
//nolint:unconvert // widths differ across GOARCH
func recordFromStat(st *unix.Stat_t) Record {
	return Record{
		Mode:  uint32(st.Mode),
		Ino:   uint64(st.Ino),
		Dev:   uint64(st.Dev),
		Rdev:  uint64(st.Rdev),
		Nlink: uint32(st.Nlink), //nolint:gosec // G115: link counts fit in uint32
		UID:   st.Uid,
		GID:   st.Gid,
		Size:  int64(st.Size),
		Atime: Timespec{Sec: int64(st.Atim.Sec), Nsec: int64(st.Atim.Nsec)},
		Mtime: Timespec{Sec: int64(st.Mtim.Sec), Nsec: int64(st.Mtim.Nsec)},
		Ctime: Timespec{Sec: int64(st.Ctim.Sec), Nsec: int64(st.Ctim.Nsec)},
	}
}
