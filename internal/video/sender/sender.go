// Package sender runs the video producer/consumer pipeline: a capture
// callback feeds a bounded DropOldest queue (capacity 2), and a dedicated
// worker goroutine drains it, diffs or encodes each frame, and sends it on
// the video transport.Channel.
package sender

import (
	"sync"
	"sync/atomic"

	"github.com/lanternops/macwinbridge/internal/buffer"
	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/queue"
	"github.com/lanternops/macwinbridge/internal/transport"
	"github.com/lanternops/macwinbridge/internal/video/capture"
	"github.com/lanternops/macwinbridge/internal/video/encoder"
)

var log = logging.L("video.sender")

// queueCapacity is fixed at 2 per spec.md §4.6: caps end-to-end latency at
// at most one frame regardless of network slowness.
const queueCapacity = 2

// capturedFrame is one item pushed onto the bounded queue.
type capturedFrame struct {
	frame       *capture.Frame
	frameNumber uint32
}

// Sender drives the raw-BGRA pipeline: XOR-delta differencing against a kept
// reference, with the 16-byte raw frame sub-header.
type Sender struct {
	ch     *transport.Channel
	differ *encoder.Differ
	pool   *buffer.Pool
	q      *queue.DropOldest[capturedFrame]
	metrics *encoder.StreamMetrics

	frameNumber atomic.Uint32
	forceKey    atomic.Bool

	notify   chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSender builds a raw-BGRA video sender writing to ch.
func NewSender(ch *transport.Channel) *Sender {
	return &Sender{
		ch:      ch,
		differ:  encoder.NewDiffer(),
		pool:    &buffer.Pool{},
		q:       queue.New[capturedFrame](queueCapacity),
		metrics: encoder.NewStreamMetrics(),
		notify:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

// Metrics returns the sender's running metrics.
func (s *Sender) Metrics() *encoder.StreamMetrics { return s.metrics }

// RequestKeyFrame forces the next emitted frame to be a keyframe, driven by
// a VideoKeyRequest received on Control.
func (s *Sender) RequestKeyFrame() {
	s.forceKey.Store(true)
	s.differ.Reset()
}

// Submit enqueues a freshly captured frame, dropping the oldest queued frame
// if already at capacity. The capture pipeline calls this from its own
// loop; Submit never blocks.
func (s *Sender) Submit(f *capture.Frame) {
	s.metrics.RecordCapture()
	n := s.frameNumber.Add(1)
	dropped := s.q.Push(capturedFrame{frame: f, frameNumber: n})
	if dropped {
		s.metrics.RecordDrop()
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Start launches the dedicated consumer worker. Call Stop to shut it down.
func (s *Sender) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Stop signals the worker to exit and waits for it to drain.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Sender) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.notify:
		}

		for {
			item, ok := s.q.Pop()
			if !ok {
				break
			}
			s.processFrame(item)
		}
	}
}

func (s *Sender) processFrame(item capturedFrame) {
	forceKey := s.forceKey.Swap(false)
	if forceKey {
		s.differ.Reset()
	}

	result := s.differ.Diff(item.frame.Pix)
	defer s.pool.Put(item.frame.Pix)

	if result.Skip {
		s.metrics.RecordSkip()
		return
	}

	flags := protocol.MessageFlags(0)
	if result.KeyFrame {
		flags |= protocol.FlagKeyFrame
	} else {
		flags |= protocol.FlagCompressed
	}

	payload := protocol.BuildRawFrame(protocol.RawFrame{
		Width:       int32(item.frame.Width),
		Height:      int32(item.frame.Height),
		Stride:      int32(item.frame.Stride),
		FrameNumber: int32(item.frameNumber),
		Pixels:      result.Payload,
	})

	if err := s.ch.Send(protocol.TypeVideoFrame, flags, payload); err != nil {
		log.Warn("video frame send failed", "err", err)
		return
	}
	s.metrics.RecordSent(len(payload))
}
