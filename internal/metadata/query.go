package metadata

import (
	"errors"
	"sync"

	"github.com/bamsammich/xfer/internal/platform"
)

// ErrNotPerformed is returned by QueryPath and QueryFd when the kernel has
// no statx(2). It is not a failure: the caller should use a legacy stat path
// such as Stat or StatFd.
var ErrNotPerformed = errors.New("metadata: extended stat not available")

type statxFunc func(dirfd int, path string, flags int, mask uint32, buf *statxBuf) error

// Querier reads file attributes using the features recorded in its
// capability table. It keeps no per-call state and is safe for concurrent use.
type Querier struct {
	statx statxFunc
	caps  platform.Capabilities
}

// New returns a Querier bound to caps.
func New(caps platform.Capabilities) *Querier {
	return &Querier{caps: caps, statx: rawStatx}
}

var defaultQuerier = sync.OnceValue(func() *Querier {
	return New(platform.Detect())
})

// Default returns the Querier bound to the process-wide capability table.
func Default() *Querier {
	return defaultQuerier()
}

// Capabilities returns the table q was built with.
func (q *Querier) Capabilities() platform.Capabilities {
	return q.caps
}

// QueryPath reads the attributes of path with statx(2). When followSymlinks
// is false a trailing symlink is reported itself rather than its target.
// Errors are the raw errno from the kernel.
func (q *Querier) QueryPath(path string, followSymlinks bool) (Record, error) {
	if !q.caps.ExtendedStat {
		return Record{}, ErrNotPerformed
	}
	flags := atStatxSyncAsStat
	if !followSymlinks {
		flags |= atSymlinkNofollow
	}
	return q.query(atFDCWD, path, flags)
}

// QueryFd reads the attributes of the file open on fd. The descriptor is
// borrowed and left open.
func (q *Querier) QueryFd(fd int) (Record, error) {
	if !q.caps.ExtendedStat {
		return Record{}, ErrNotPerformed
	}
	return q.query(fd, "", atEmptyPath|atStatxSyncAsStat)
}

func (q *Querier) query(dirfd int, path string, flags int) (Record, error) {
	var buf statxBuf
	err := platform.IgnoringEINTR(func() error {
		return q.statx(dirfd, path, flags, statxAll, &buf)
	})
	if err != nil {
		return Record{}, err
	}
	return buf.record(), nil
}

// QueryPath calls QueryPath on the Default querier.
func QueryPath(path string, followSymlinks bool) (Record, error) {
	return Default().QueryPath(path, followSymlinks)
}

// QueryFd calls QueryFd on the Default querier.
func QueryFd(fd int) (Record, error) {
	return Default().QueryFd(fd)
}
