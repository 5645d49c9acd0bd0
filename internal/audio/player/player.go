// Package player implements the companion-side audio playback path: a small
// jitter buffer (capacity 5, DropOldest) feeding a platform mixer node, plus
// AudioControl routing state.
package player

import (
	"sync"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/queue"
)

var log = logging.L("audio.player")

// jitterCapacity is fixed at 5 per spec.md §4.7.
const jitterCapacity = 5

// Buffer interprets AudioConfig, decodes incoming AudioData, and schedules
// playback through a bounded jitter buffer.
type Buffer struct {
	mu     sync.Mutex
	cfg    protocol.AudioConfig
	q      *queue.DropOldest[[]byte]
	route  protocol.AudioRoute
	output OutputSink
}

// OutputSink is the platform mixer node a decoded PCM buffer is scheduled
// on. Actual OS playback is out of scope for this module (Non-goal); New
// callers pass the platform-specific sink, out of band of this package.
type OutputSink interface {
	Write(pcm []byte) error
}

// New builds a playback buffer for the given negotiated format and sink.
func New(cfg protocol.AudioConfig, output OutputSink) *Buffer {
	return &Buffer{
		cfg:    cfg,
		q:      queue.New[[]byte](jitterCapacity),
		route:  protocol.RouteBoth,
		output: output,
	}
}

// SetRoute applies an AudioControl routing change.
func (b *Buffer) SetRoute(route protocol.AudioRoute) {
	b.mu.Lock()
	b.route = route
	b.mu.Unlock()
}

// muted reports whether the current route suppresses playback on this side.
func (b *Buffer) muted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route == protocol.RouteMuted
}

// HandleAudioData decodes one AudioData payload and pushes its PCM onto the
// jitter buffer, dropping the oldest pending buffer when full.
func (b *Buffer) HandleAudioData(payload []byte) error {
	if b.muted() {
		return nil
	}

	a, err := protocol.ParseAudioData(payload)
	if err != nil {
		return err
	}

	pcm := append([]byte(nil), a.PCM...)
	if b.q.Push(pcm) {
		log.Debug("jitter buffer full, dropped oldest pending buffer")
	}
	return b.flush()
}

// flush writes every currently queued buffer to the output sink in order.
// Called after each push so playback stays close to real time; a richer
// pacing scheduler is intentionally not built here since the platform mixer
// itself governs playback timing.
func (b *Buffer) flush() error {
	for {
		pcm, ok := b.q.Pop()
		if !ok {
			return nil
		}
		if err := b.output.Write(pcm); err != nil {
			return err
		}
	}
}
