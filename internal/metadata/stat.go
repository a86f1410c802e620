package metadata

import "errors"

// Stat returns the attributes of path, using statx(2) when available and
// fstatat(2) otherwise. Records from the legacy path never carry a birth time.
func (q *Querier) Stat(path string, followSymlinks bool) (Record, error) {
	r, err := q.QueryPath(path, followSymlinks)
	if !errors.Is(err, ErrNotPerformed) {
		return r, err
	}
	return legacyStat(path, followSymlinks)
}

// StatFd is Stat for an open descriptor, falling back to fstat(2).
func (q *Querier) StatFd(fd int) (Record, error) {
	r, err := q.QueryFd(fd)
	if !errors.Is(err, ErrNotPerformed) {
		return r, err
	}
	return legacyFstat(fd)
}
