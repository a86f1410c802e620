package ui

import "github.com/bamsammich/xfer/internal/event"

// Event is the progress event presenters consume.
type Event = event.Event

// Re-export event types for convenience.
const (
	TransferStarted     = event.TransferStarted
	TierStarted         = event.TierStarted
	TierAbandoned       = event.TierAbandoned
	ChunkCopied         = event.ChunkCopied
	TransferCompleted   = event.TransferCompleted
	TransferCancelled   = event.TransferCancelled
	TransferFailed      = event.TransferFailed
	TransferUnsupported = event.TransferUnsupported
	TransferWouldBlock  = event.TransferWouldBlock
	VerifyStarted       = event.VerifyStarted
	VerifyOK            = event.VerifyOK
	VerifyFailed        = event.VerifyFailed
)
