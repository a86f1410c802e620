// Package transfer copies bytes between two open descriptors inside the
// kernel, trying copy_file_range(2) first and sendfile(2) second, in bounded
// chunks so that a caller on another goroutine can cancel between them.
package transfer

import (
	"context"
	"sync/atomic"
)

// Outcome is the terminal state of a copy.
type Outcome int

const (
	Success Outcome = iota
	WouldBlock
	UnsupportedForDescriptorPair
	UnsupportedOnPlatform
	Cancelled
	Failed
)

var outcomeNames = [...]string{
	Success:                      "success",
	WouldBlock:                   "would_block",
	UnsupportedForDescriptorPair: "unsupported_for_descriptor_pair",
	UnsupportedOnPlatform:        "unsupported_on_platform",
	Cancelled:                    "cancelled",
	Failed:                       "failed",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Unsupported reports whether o is one of the two unsupported outcomes,
// meaning the caller should fall back to a userspace copy.
func (o Outcome) Unsupported() bool {
	return o == UnsupportedForDescriptorPair || o == UnsupportedOnPlatform
}

// Method identifies which primitive moved the bytes.
type Method int

const (
	None          Method = iota
	CopyFileRange        // Linux copy_file_range(2)
	Sendfile             // Linux sendfile(2)
	ReadWrite            // read(2)/write(2) through a userspace buffer
)

func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	case ReadWrite:
		return "read_write"
	default:
		return "unknown"
	}
}

// Result reports how a copy ended. Err holds the raw errno behind every
// outcome other than Success: ECANCELED for Cancelled, EAGAIN for
// WouldBlock, and the kernel's own error otherwise. BytesWritten counts
// bytes moved before the outcome, including a partial prefix.
type Result struct {
	Err          error
	Outcome      Outcome
	Method       Method
	BytesWritten int64
}

// Request describes one copy. Dst and Src are borrowed: they are read and
// written at their current file offsets and are never closed. Cancel may
// be nil.
type Request struct {
	Cancel *CancelFlag
	Dst    int
	Src    int
}

// CancelFlag is a flag any goroutine may set to stop a copy. The engine
// polls it between chunks, so a chunk already in the kernel completes first.
type CancelFlag struct {
	set atomic.Bool
}

// Cancel requests cancellation. It is safe to call more than once.
func (c *CancelFlag) Cancel() {
	c.set.Store(true)
}

// Cancelled reports whether Cancel has been called. A nil flag is never
// cancelled.
func (c *CancelFlag) Cancelled() bool {
	return c != nil && c.set.Load()
}

// CancelOnDone returns a flag that is set when ctx is done. The returned
// stop function detaches the flag from ctx.
func CancelOnDone(ctx context.Context) (*CancelFlag, func() bool) {
	flag := &CancelFlag{}
	stop := context.AfterFunc(ctx, flag.Cancel)
	return flag, stop
}
