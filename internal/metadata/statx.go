package metadata

// statx(2) flags and masks (linux/fcntl.h, linux/stat.h).
const (
	atFDCWD           = -100
	atSymlinkNofollow = 0x100
	atEmptyPath       = 0x1000
	atStatxSyncAsStat = 0x0000

	statxBasicStats = 0x000007ff
	statxBtime      = 0x00000800
	statxAll        = statxBasicStats | statxBtime
)

// statx_timestamp (16 bytes).
type statxTimestamp struct {
	Sec      int64
	Nsec     uint32
	reserved int32
}

// struct statx (256 bytes). Laid out by hand so the query works on kernels
// newer than the headers this was built against.
type statxBuf struct {
	Mask           uint32
	Blksize        uint32
	Attributes     uint64
	Nlink          uint32
	UID            uint32
	GID            uint32
	Mode           uint16
	pad1           uint16
	Ino            uint64
	Size           uint64
	Blocks         uint64
	AttributesMask uint64
	Atime          statxTimestamp
	Btime          statxTimestamp
	Ctime          statxTimestamp
	Mtime          statxTimestamp
	RdevMajor      uint32
	RdevMinor      uint32
	DevMajor       uint32
	DevMinor       uint32
	pad2           [14]uint64
}

func (ts statxTimestamp) timespec() Timespec {
	return Timespec{Sec: ts.Sec, Nsec: int64(ts.Nsec)}
}

// record decodes the kernel layout. Birth time is only taken when the
// kernel marked it valid in the returned mask.
func (b *statxBuf) record() Record {
	r := Record{
		Mode:  uint32(b.Mode),
		Ino:   b.Ino,
		Dev:   makedev(b.DevMajor, b.DevMinor),
		Rdev:  makedev(b.RdevMajor, b.RdevMinor),
		Nlink: b.Nlink,
		UID:   b.UID,
		GID:   b.GID,
		Size:  int64(b.Size), //nolint:gosec // G115: file sizes fit in int64
		Atime: b.Atime.timespec(),
		Mtime: b.Mtime.timespec(),
		Ctime: b.Ctime.timespec(),
	}
	if b.Mask&statxBtime != 0 {
		r.Btime = b.Btime.timespec()
		r.HasBirthTime = true
	}
	return r
}

// makedev composes a dev_t the way glibc's gnu_dev_makedev does.
func makedev(major, minor uint32) uint64 {
	return (uint64(major)&0x00000fff)<<8 |
		(uint64(major)&0xfffff000)<<32 |
		(uint64(minor) & 0x000000ff) |
		(uint64(minor)&0xffffff00)<<12
}

// Major extracts the major number from a dev_t built by makedev.
func Major(dev uint64) uint32 {
	return uint32((dev>>8)&0x00000fff | (dev>>32)&0xfffff000)
}

// Minor extracts the minor number from a dev_t built by makedev.
func Minor(dev uint64) uint32 {
	return uint32(dev&0x000000ff | (dev>>12)&0xffffff00)
}
