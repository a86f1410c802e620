package transfer

import (
	"context"
	"log/slog"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/xfer/internal/event"
	"github.com/bamsammich/xfer/internal/platform"
	"github.com/bamsammich/xfer/internal/stats"
)

const (
	// cancellableChunk bounds how long a cancel request can go unnoticed.
	cancellableChunk = 1 << 20 // 1 MiB
	// maxChunk is the most sendfile(2) transfers in one call.
	maxChunk = 0x7ffff000
)

type kernelOps struct {
	copyFileRange func(dst, src, n int) (int, error)
	sendfile      func(dst, src, n int) (int, error)
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Logger receives debug records for tier fallbacks. Defaults to slog.Default().
	Logger *slog.Logger
	// Stats, when set, is updated after every chunk and terminal outcome.
	Stats *stats.Collector
	// Events, when set, receives progress events. Sends block, so the
	// channel must be drained while Copy runs.
	Events chan<- event.Event
	// Limiter, when set, throttles the copy. Chunks are capped at its burst.
	Limiter *rate.Limiter
}

// Engine copies between descriptors using the fastest primitive recorded in
// its capability table. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	logger  *slog.Logger
	stats   *stats.Collector
	events  chan<- event.Event
	limiter *rate.Limiter
	ops     kernelOps
	caps    platform.Capabilities
}

// New returns an Engine bound to caps.
func New(caps platform.Capabilities, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		caps:    caps,
		logger:  logger,
		stats:   opts.Stats,
		events:  opts.Events,
		limiter: opts.Limiter,
		ops:     kernel,
	}
}

// NewBWLimiter creates a rate.Limiter that caps throughput to bytesPerSec.
// The burst is 1 MiB, or bytesPerSec if smaller.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20 // 1 MiB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// step classifies one kernel call result.
type step int

const (
	stepContinue    step = iota // chunk moved; more may follow
	stepDone                    // source exhausted
	stepCancelled               // cancel flag observed between chunks
	stepFallThrough             // tier cannot serve this pair; try the next one
	stepWouldBlock              // non-blocking descriptor has no room or data
	stepUnsupported             // no in-kernel path for this pair
	stepFatal                   // anything else
)

// classifyRangeCopy maps a copy_file_range(2) result to a step.
func classifyRangeCopy(n int, err error) step {
	switch {
	case err == nil && n == 0:
		return stepDone
	case err == nil:
		return stepContinue
	}
	switch err {
	case syscall.EINVAL, syscall.EXDEV, syscall.ENOSYS, syscall.EOPNOTSUPP:
		return stepFallThrough
	}
	return stepFatal
}

// classifySendfile maps a sendfile(2) result to a step.
func classifySendfile(n int, err error) step {
	switch {
	case err == nil && n == 0:
		return stepDone
	case err == nil:
		return stepContinue
	}
	switch err {
	case syscall.EAGAIN:
		return stepWouldBlock
	case syscall.EINVAL, syscall.ENOSYS:
		return stepUnsupported
	}
	return stepFatal
}

// terminal maps the step that ended a tier to an outcome. The bool is false
// when the copy should continue with the next tier.
func terminal(s step, rangeCopyAttempted bool) (Outcome, bool) {
	switch s {
	case stepDone:
		return Success, true
	case stepCancelled:
		return Cancelled, true
	case stepWouldBlock:
		return WouldBlock, true
	case stepUnsupported:
		if !rangeCopyAttempted {
			return UnsupportedOnPlatform, true
		}
		return UnsupportedForDescriptorPair, true
	case stepFatal:
		return Failed, true
	}
	return 0, false
}

// tier is one in-kernel primitive and how to read its results.
type tier struct {
	op       func(dst, src, n int) (int, error)
	classify func(n int, err error) step
	method   Method
}

// Copy moves every remaining byte from req.Src to req.Dst. It blocks until
// the source is exhausted, the copy is cancelled, or a terminal error occurs.
// Bytes already moved are never rolled back.
func (e *Engine) Copy(req Request) Result {
	chunk := e.chunkSize(req.Cancel != nil)
	e.emit(event.Event{Type: event.TransferStarted})
	if e.stats != nil {
		e.stats.AddTransfersStarted(1)
	}

	tiers := make([]tier, 0, 2)
	if e.caps.RangeCopy {
		tiers = append(tiers, tier{op: e.ops.copyFileRange, classify: classifyRangeCopy, method: CopyFileRange})
	}
	tiers = append(tiers, tier{op: e.ops.sendfile, classify: classifySendfile, method: Sendfile})

	var total int64
	for _, t := range tiers {
		e.emit(event.Event{Type: event.TierStarted, Method: t.method.String(), Total: total})

		s, n, err := e.run(t, req, chunk, total)
		total += n

		outcome, done := terminal(s, e.caps.RangeCopy)
		if done {
			return e.finish(Result{Outcome: outcome, Method: t.method, BytesWritten: total, Err: outcomeErr(outcome, err)})
		}

		e.logger.Debug("in-kernel copy primitive unsupported, falling back",
			"method", t.method, "errno", err, "bytes", total)
		e.emit(event.Event{Type: event.TierAbandoned, Method: t.method.String(), Total: total, Error: err})
		if e.stats != nil {
			e.stats.AddFallbacks(1)
		}
		if req.Cancel.Cancelled() {
			return e.finish(Result{Outcome: Cancelled, Method: t.method, BytesWritten: total, Err: syscall.ECANCELED})
		}
	}

	// sendfile never falls through, so the loop always returns.
	panic("transfer: no terminal outcome")
}

// run drives one tier until it leaves stepContinue. It returns the step that
// ended the tier, the bytes this tier moved and the errno behind the step.
func (e *Engine) run(t tier, req Request, chunk int, before int64) (step, int64, error) {
	var moved int64
	for {
		n, err := platform.IgnoringEINTRIO(func() (int, error) {
			return t.op(req.Dst, req.Src, chunk)
		})
		s := t.classify(n, err)
		if s != stepContinue {
			return s, moved, err
		}

		moved += int64(n)
		e.chunkDone(t.method, n, before+moved)

		if req.Cancel.Cancelled() {
			return stepCancelled, moved, nil
		}
	}
}

func (e *Engine) chunkDone(m Method, n int, total int64) {
	if e.stats != nil {
		switch m {
		case CopyFileRange:
			e.stats.AddRangeCopyChunk(int64(n))
		case Sendfile:
			e.stats.AddSendfileChunk(int64(n))
		}
	}
	e.emit(event.Event{Type: event.ChunkCopied, Method: m.String(), Size: int64(n), Total: total})
	if e.limiter != nil {
		if err := e.limiter.WaitN(context.Background(), n); err != nil {
			e.logger.Debug("bandwidth limiter", "error", err)
		}
	}
}

func (e *Engine) chunkSize(cancellable bool) int {
	chunk := maxChunk
	if cancellable {
		chunk = cancellableChunk
	}
	if e.limiter != nil && e.limiter.Burst() > 0 && e.limiter.Burst() < chunk {
		chunk = e.limiter.Burst()
	}
	return chunk
}

func outcomeErr(o Outcome, err error) error {
	switch o {
	case Success:
		return nil
	case Cancelled:
		return syscall.ECANCELED
	}
	return err
}

var outcomeEvents = [...]event.Type{
	Success:                      event.TransferCompleted,
	WouldBlock:                   event.TransferWouldBlock,
	UnsupportedForDescriptorPair: event.TransferUnsupported,
	UnsupportedOnPlatform:        event.TransferUnsupported,
	Cancelled:                    event.TransferCancelled,
	Failed:                       event.TransferFailed,
}

func (e *Engine) finish(r Result) Result {
	if e.stats != nil {
		switch r.Outcome {
		case Success:
			e.stats.AddTransfersSucceeded(1)
		case WouldBlock:
			e.stats.AddTransfersWouldBlock(1)
		case UnsupportedForDescriptorPair, UnsupportedOnPlatform:
			e.stats.AddTransfersUnsupported(1)
		case Cancelled:
			e.stats.AddTransfersCancelled(1)
		case Failed:
			e.stats.AddTransfersFailed(1)
		}
	}
	e.emit(event.Event{
		Type:   outcomeEvents[r.Outcome],
		Method: r.Method.String(),
		Total:  r.BytesWritten,
		Error:  r.Err,
	})
	return r
}

func (e *Engine) emit(ev event.Event) {
	if e.events == nil {
		return
	}
	ev.Timestamp = time.Now()
	e.events <- ev
}
