package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/xfer/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// hudPresenter prints a feed line for each notable event and keeps a 2-line
// HUD redrawn in place below it.
type hudPresenter struct {
	w     io.Writer
	stats *stats.Collector
	label string

	method       string
	hudDrawn     bool
	hudLineCount int
	lastHUDDraw  time.Time
}

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond
)

func (p *hudPresenter) Run(events <-chan Event) error {
	// Fire first tick quickly to seed the ring buffer, then every second.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// A single large copy can go seconds without a chunk event.
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case TierStarted:
		p.method = ev.Method

	case TierAbandoned:
		p.feed("↯  %s%s unavailable (%v), falling back%s", ansiDim, ev.Method, ev.Error, ansiReset)

	case TransferCompleted:
		p.feed("✓  %s  %10s  %s", p.label, FormatBytes(ev.Total), ev.Method)

	case TransferCancelled:
		p.feed("–  %s  %10s  %scancelled%s", p.label, FormatBytes(ev.Total), ansiDim, ansiReset)

	case TransferFailed, TransferUnsupported, TransferWouldBlock:
		p.feed("✗  %s  %10s  %s", p.label, FormatBytes(ev.Total), errString(ev.Error))

	case VerifyStarted:
		p.feed("%sverifying checksums...%s", ansiDim, ansiReset)

	case VerifyOK:
		p.feed("✓  %s  checksum ok", p.label)

	case VerifyFailed:
		p.feed("✗  %s  CHECKSUM MISMATCH", p.label)
	}
}

// feed prints one line above the HUD.
func (p *hudPresenter) feed(format string, args ...any) {
	p.clearHUD()
	fmt.Fprintf(p.w, format+"\n", args...)
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	var pct float64
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesCopied) / float64(snap.BytesTotal)
	}

	// Line 1: throughput sparkline + speed + byte totals.
	spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		spark, FormatRate(p.stats.RollingSpeed(10)),
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal))

	// Line 2: progress bar + method + eta.
	method := p.method
	if method == "" {
		method = "-"
	}
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s   eta %s\n",
		pct*100, ProgressBar(pct, progressBarWidth), method, FormatETA(p.stats.ETA()))

	p.hudDrawn = true
	p.hudLineCount = 2
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up N lines and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", p.hudLineCount)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot())
}
