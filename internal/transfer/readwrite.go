//go:build unix

package transfer

import (
	"io"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/bamsammich/xfer/internal/platform"
	"github.com/bamsammich/xfer/internal/stats"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// CopyBuffered copies from src to dst through a pooled userspace buffer,
// using and advancing both descriptors' file offsets. It is the fallback for
// descriptor pairs the kernel cannot copy between (Copy reported an
// Unsupported outcome). Cancel is polled between buffers; collector may be nil.
//
// When a write fails part way through a buffer, the source offset is moved
// back over the unwritten bytes so it always equals the bytes written. A
// source that cannot seek reports Failed instead, since those bytes are lost.
func CopyBuffered(dst, src int, cancel *CancelFlag, collector *stats.Collector) Result {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var totalWritten int64
	for {
		n, err := platform.IgnoringEINTRIO(func() (int, error) {
			return unix.Read(src, buf)
		})
		if err != nil {
			return readWriteResult(totalWritten, err)
		}
		if n == 0 {
			return Result{Outcome: Success, Method: ReadWrite, BytesWritten: totalWritten}
		}

		written := 0
		for written < n {
			w, err := platform.IgnoringEINTRIO(func() (int, error) {
				return unix.Write(dst, buf[written:n])
			})
			if err != nil {
				done := totalWritten + int64(written)
				if collector != nil && written > 0 {
					collector.AddReadWriteChunk(int64(written))
				}
				if _, serr := unix.Seek(src, -int64(n-written), io.SeekCurrent); serr != nil {
					return Result{Outcome: Failed, Method: ReadWrite, BytesWritten: done, Err: err}
				}
				return readWriteResult(done, err)
			}
			written += w
		}

		totalWritten += int64(n)
		if collector != nil {
			collector.AddReadWriteChunk(int64(n))
		}
		if cancel.Cancelled() {
			return Result{Outcome: Cancelled, Method: ReadWrite, BytesWritten: totalWritten, Err: syscall.ECANCELED}
		}
	}
}

func readWriteResult(written int64, err error) Result {
	outcome := Failed
	if err == syscall.EAGAIN {
		outcome = WouldBlock
	}
	return Result{Outcome: outcome, Method: ReadWrite, BytesWritten: written, Err: err}
}
