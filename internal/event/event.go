package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	TransferStarted Type = iota + 1
	TierStarted
	TierAbandoned
	ChunkCopied
	TransferCompleted
	TransferCancelled
	TransferFailed
	TransferUnsupported
	TransferWouldBlock
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	TransferStarted:     "TransferStarted",
	TierStarted:         "TierStarted",
	TierAbandoned:       "TierAbandoned",
	ChunkCopied:         "ChunkCopied",
	TransferCompleted:   "TransferCompleted",
	TransferCancelled:   "TransferCancelled",
	TransferFailed:      "TransferFailed",
	TransferUnsupported: "TransferUnsupported",
	TransferWouldBlock:  "TransferWouldBlock",
	VerifyStarted:       "VerifyStarted",
	VerifyOK:            "VerifyOK",
	VerifyFailed:        "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from a transfer.
type Event struct {
	Timestamp time.Time
	Error     error
	Type      Type
	Method    string // copy primitive in use, e.g. "sendfile"
	Size      int64  // chunk size (ChunkCopied)
	Total     int64  // bytes moved so far in this transfer
}
