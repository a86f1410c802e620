package ui

import (
	"fmt"

	"github.com/bamsammich/xfer/internal/stats"
)

// completionSummary builds a final summary line from a snapshot.
// Format: done ✓  size 2.1 GiB  avg 641 MB/s  time 3s  fallbacks 1  errors 0
func completionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	failures := snap.TransfersFailed + snap.TransfersWouldBlock
	icon := "✓"
	switch {
	case failures > 0:
		icon = "✗"
	case snap.TransfersCancelled > 0:
		icon = "–"
	}

	base := fmt.Sprintf("done %s  size %s  avg %s  time %s",
		icon,
		FormatBytes(snap.BytesCopied),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)
	if snap.Fallbacks > 0 {
		base += fmt.Sprintf("  fallbacks %d", snap.Fallbacks)
	}
	if snap.BytesReadWrite > 0 {
		base += fmt.Sprintf("  buffered %s", FormatBytes(snap.BytesReadWrite))
	}
	return base + fmt.Sprintf("  errors %d", failures)
}
