// Package stats tracks byte and file counters for one running operation
// using lock-free atomics. A Collector is created per operation and
// threaded through the recursive copy/delete as the progress accumulator.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates operation counters.
type Collector struct {
	filesProcessed atomic.Int64
	filesFailed    atomic.Int64
	bytesProcessed atomic.Int64
	bytesTotal     atomic.Int64
	startTime      time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetBytesTotal records the precomputed denominator for progress.
func (c *Collector) SetBytesTotal(n int64) { c.bytesTotal.Store(n) }

func (c *Collector) AddFilesProcessed(n int64) { c.filesProcessed.Add(n) }
func (c *Collector) AddFilesFailed(n int64)    { c.filesFailed.Add(n) }
func (c *Collector) AddBytesProcessed(n int64) { c.bytesProcessed.Add(n) }

// BytesProcessed returns the bytes processed so far.
func (c *Collector) BytesProcessed() int64 { return c.bytesProcessed.Load() }

// BytesTotal returns the precomputed total.
func (c *Collector) BytesTotal() int64 { return c.bytesTotal.Load() }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesProcessed int64
	FilesFailed    int64
	BytesProcessed int64
	BytesTotal     int64
	Elapsed        time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesProcessed: c.filesProcessed.Load(),
		FilesFailed:    c.filesFailed.Load(),
		BytesProcessed: c.bytesProcessed.Load(),
		BytesTotal:     c.bytesTotal.Load(),
		Elapsed:        time.Since(c.startTime),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("files=%d failed=%d bytes=%d/%d",
		s.FilesProcessed, s.FilesFailed, s.BytesProcessed, s.BytesTotal)
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
