package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/xfer/internal/stats"
)

// plainPresenter prints one line per outcome to stdout, and periodic
// progress to stderr when not a TTY.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    *stats.Collector
	label    string
	interval time.Duration
}

func (p *plainPresenter) Run(events <-chan Event) error {
	interval := p.interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case TierAbandoned:
		fmt.Fprintf(p.w, "fallback: %s unavailable (%v) after %s\n",
			ev.Method, ev.Error, FormatBytes(ev.Total))
	case TransferCompleted:
		fmt.Fprintf(p.w, "%s  %s  %s\n", p.label, FormatBytes(ev.Total), ev.Method)
	case TransferCancelled:
		fmt.Fprintf(p.w, "%s  %s  cancelled\n", p.label, FormatBytes(ev.Total))
	case TransferFailed, TransferUnsupported, TransferWouldBlock:
		fmt.Fprintf(p.w, "%s  %s  %s\n", p.label, FormatBytes(ev.Total), errString(ev.Error))
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", p.label)
	case VerifyOK:
		// silent in plain mode
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(10)
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s eta %s\n",
			pct,
			FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
			FormatRate(speed),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.errW, "progress: %s copied %s\n", FormatBytes(snap.BytesCopied), FormatRate(speed))
}

func (p *plainPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot())
}

func errString(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}
