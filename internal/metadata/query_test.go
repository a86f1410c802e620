package metadata

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/xfer/internal/platform"
)

type statxCall struct {
	path  string
	dirfd int
	flags int
	mask  uint32
}

// fakeQuerier returns a Querier whose statx replays results in order and
// records every call.
func fakeQuerier(results []error, fill statxBuf) (*Querier, *[]statxCall) {
	var calls []statxCall
	q := New(platform.Capabilities{ExtendedStat: true})
	q.statx = func(dirfd int, path string, flags int, mask uint32, buf *statxBuf) error {
		calls = append(calls, statxCall{dirfd: dirfd, path: path, flags: flags, mask: mask})
		err := results[len(calls)-1]
		if err == nil {
			*buf = fill
		}
		return err
	}
	return q, &calls
}

func TestQueryNotPerformedWithoutStatx(t *testing.T) {
	q := New(platform.Capabilities{RangeCopy: true})
	q.statx = func(int, string, int, uint32, *statxBuf) error {
		t.Fatal("statx must not be called")
		return nil
	}

	_, err := q.QueryPath("/", true)
	assert.ErrorIs(t, err, ErrNotPerformed)

	_, err = q.QueryFd(0)
	assert.ErrorIs(t, err, ErrNotPerformed)
}

func TestQueryPathFlags(t *testing.T) {
	q, calls := fakeQuerier([]error{nil, nil}, statxBuf{Size: 7})

	r, err := q.QueryPath("a/b", true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.Size)

	_, err = q.QueryPath("a/b", false)
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, statxCall{dirfd: atFDCWD, path: "a/b", flags: atStatxSyncAsStat, mask: statxAll}, (*calls)[0])
	assert.Equal(t, statxCall{dirfd: atFDCWD, path: "a/b", flags: atSymlinkNofollow, mask: statxAll}, (*calls)[1])
}

func TestQueryFdFlags(t *testing.T) {
	q, calls := fakeQuerier([]error{nil}, statxBuf{})

	_, err := q.QueryFd(9)
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, statxCall{dirfd: 9, path: "", flags: atEmptyPath, mask: statxAll}, (*calls)[0])
}

func TestQueryRestartsOnEINTR(t *testing.T) {
	q, calls := fakeQuerier([]error{syscall.EINTR, syscall.EINTR, nil}, statxBuf{Ino: 5})

	r, err := q.QueryPath("x", true)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), r.Ino)

	require.Len(t, *calls, 3)
	assert.Equal(t, (*calls)[0], (*calls)[2], "restart must reuse the same arguments")
}

func TestQueryReturnsRawErrno(t *testing.T) {
	q, _ := fakeQuerier([]error{syscall.EACCES}, statxBuf{})

	r, err := q.QueryPath("x", true)
	assert.Equal(t, syscall.EACCES, err)
	assert.Equal(t, Record{}, r)
}

func TestDefaultUsesDetectedCapabilities(t *testing.T) {
	assert.Equal(t, platform.Detect(), Default().Capabilities())
	assert.Same(t, Default(), Default())
}
