package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks transfer statistics using lock-free atomic counters. A
// single Collector may be shared by several engines copying concurrently.
type Collector struct {
	transfersStarted     atomic.Int64
	transfersSucceeded   atomic.Int64
	transfersCancelled   atomic.Int64
	transfersFailed      atomic.Int64
	transfersUnsupported atomic.Int64
	transfersWouldBlock  atomic.Int64
	fallbacks            atomic.Int64
	chunks               atomic.Int64
	bytesCopied          atomic.Int64
	bytesRangeCopy       atomic.Int64
	bytesSendfile        atomic.Int64
	bytesReadWrite       atomic.Int64
	bytesTotal           atomic.Int64
	startTime            time.Time

	// Ring buffer, written only by Tick() and never by copying goroutines.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per tick
	ringIdx    int
	ringCount  int // how many samples have been written (capped at ringSize)
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotal records the number of bytes expected, for ETA.
func (c *Collector) SetTotal(bytes int64) { c.bytesTotal.Store(bytes) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	TransfersStarted     int64
	TransfersSucceeded   int64
	TransfersCancelled   int64
	TransfersFailed      int64
	TransfersUnsupported int64
	TransfersWouldBlock  int64
	Fallbacks            int64
	Chunks               int64
	BytesCopied          int64
	BytesRangeCopy       int64
	BytesSendfile        int64
	BytesReadWrite       int64
	BytesTotal           int64
	Elapsed              time.Duration
}

func (c *Collector) AddTransfersStarted(n int64)     { c.transfersStarted.Add(n) }
func (c *Collector) AddTransfersSucceeded(n int64)   { c.transfersSucceeded.Add(n) }
func (c *Collector) AddTransfersCancelled(n int64)   { c.transfersCancelled.Add(n) }
func (c *Collector) AddTransfersFailed(n int64)      { c.transfersFailed.Add(n) }
func (c *Collector) AddTransfersUnsupported(n int64) { c.transfersUnsupported.Add(n) }
func (c *Collector) AddTransfersWouldBlock(n int64)  { c.transfersWouldBlock.Add(n) }
func (c *Collector) AddFallbacks(n int64)            { c.fallbacks.Add(n) }

// AddRangeCopyChunk records one chunk moved by copy_file_range.
func (c *Collector) AddRangeCopyChunk(bytes int64) {
	c.chunks.Add(1)
	c.bytesRangeCopy.Add(bytes)
	c.bytesCopied.Add(bytes)
}

// AddSendfileChunk records one chunk moved by sendfile.
func (c *Collector) AddSendfileChunk(bytes int64) {
	c.chunks.Add(1)
	c.bytesSendfile.Add(bytes)
	c.bytesCopied.Add(bytes)
}

// AddReadWriteChunk records one chunk moved through a userspace buffer.
func (c *Collector) AddReadWriteChunk(bytes int64) {
	c.chunks.Add(1)
	c.bytesReadWrite.Add(bytes)
	c.bytesCopied.Add(bytes)
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TransfersStarted:     c.transfersStarted.Load(),
		TransfersSucceeded:   c.transfersSucceeded.Load(),
		TransfersCancelled:   c.transfersCancelled.Load(),
		TransfersFailed:      c.transfersFailed.Load(),
		TransfersUnsupported: c.transfersUnsupported.Load(),
		TransfersWouldBlock:  c.transfersWouldBlock.Load(),
		Fallbacks:            c.fallbacks.Load(),
		Chunks:               c.chunks.Load(),
		BytesCopied:          c.bytesCopied.Load(),
		BytesRangeCopy:       c.bytesRangeCopy.Load(),
		BytesSendfile:        c.bytesSendfile.Load(),
		BytesReadWrite:       c.bytesReadWrite.Load(),
		BytesTotal:           c.bytesTotal.Load(),
		Elapsed:              c.Elapsed(),
	}
}

// Tick snapshots the byte delta into the ring buffer. Called 1/sec by the
// progress reporter.
func (c *Collector) Tick() {
	currentBytes := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.lastBytes = currentBytes
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := seconds
	if count > c.ringCount {
		count = c.ringCount
	}
	if count == 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// SparklineData returns up to n of the most recent bytes/sec samples,
// oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return nil
	}
	data := make([]float64, count)
	for i := range count {
		data[i] = float64(c.throughput[(c.ringIdx-count+i+ringSize)%ringSize])
	}
	return data
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"transfers=%d ok=%d cancelled=%d failed=%d unsupported=%d wouldblock=%d fallbacks=%d chunks=%d bytes=%d",
		s.TransfersStarted, s.TransfersSucceeded, s.TransfersCancelled, s.TransfersFailed,
		s.TransfersUnsupported, s.TransfersWouldBlock, s.Fallbacks, s.Chunks, s.BytesCopied,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
