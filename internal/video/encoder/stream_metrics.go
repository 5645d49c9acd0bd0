package encoder

import (
	"sync"
	"time"
)

// StreamMetrics tracks the counters spec.md's testable properties reference
// (frames_skipped, bytes_sent) plus enough context to log a session summary.
type StreamMetrics struct {
	mu sync.RWMutex

	FramesCaptured uint64
	FramesSent     uint64
	FramesSkipped  uint64
	FramesDropped  uint64
	TotalBytesSent uint64

	startTime time.Time
}

// NewStreamMetrics returns a metrics tracker with its clock started now.
func NewStreamMetrics() *StreamMetrics {
	return &StreamMetrics{startTime: time.Now()}
}

func (m *StreamMetrics) RecordCapture() {
	m.mu.Lock()
	m.FramesCaptured++
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordSkip() {
	m.mu.Lock()
	m.FramesSkipped++
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordSent(size int) {
	m.mu.Lock()
	m.FramesSent++
	m.TotalBytesSent += uint64(size)
	m.mu.Unlock()
}

func (m *StreamMetrics) RecordDrop() {
	m.mu.Lock()
	m.FramesDropped++
	m.mu.Unlock()
}

// Snapshot is a point-in-time copy of the metrics for logging.
type Snapshot struct {
	FramesCaptured uint64
	FramesSent     uint64
	FramesSkipped  uint64
	FramesDropped  uint64
	TotalBytesSent uint64
	BandwidthKBps  float64
	Uptime         time.Duration
}

func (m *StreamMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uptime := time.Since(m.startTime)
	bw := 0.0
	if uptime.Seconds() > 0 {
		bw = float64(m.TotalBytesSent) / uptime.Seconds() / 1024.0
	}

	return Snapshot{
		FramesCaptured: m.FramesCaptured,
		FramesSent:     m.FramesSent,
		FramesSkipped:  m.FramesSkipped,
		FramesDropped:  m.FramesDropped,
		TotalBytesSent: m.TotalBytesSent,
		BandwidthKBps:  bw,
		Uptime:         uptime,
	}
}
