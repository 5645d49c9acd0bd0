package sender

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lanternops/macwinbridge/internal/buffer"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/queue"
	"github.com/lanternops/macwinbridge/internal/transport"
	"github.com/lanternops/macwinbridge/internal/video/capture"
	"github.com/lanternops/macwinbridge/internal/video/encoder"
)

// EncodedSender drives the encoded-mode pipeline: capture delegates
// compression to a NALEncoder, this worker tags IDR frames as KeyFrame and
// wraps NAL units in the 22-byte encoded sub-header.
type EncodedSender struct {
	ch      *transport.Channel
	enc     encoder.NALEncoder
	pool    *buffer.Pool
	q       *queue.DropOldest[capturedFrame]
	metrics *encoder.StreamMetrics
	codec   uint8

	forceKey atomic.Bool
	notify   chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewEncodedSender builds an encoded-mode video sender. codec is the wire
// codec byte carried in the encoded sub-header (e.g. 1=H264, 2=H265).
func NewEncodedSender(ch *transport.Channel, enc encoder.NALEncoder, codec uint8) *EncodedSender {
	return &EncodedSender{
		ch:      ch,
		enc:     enc,
		pool:    &buffer.Pool{},
		q:       queue.New[capturedFrame](queueCapacity),
		metrics: encoder.NewStreamMetrics(),
		codec:   codec,
		notify:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (s *EncodedSender) Metrics() *encoder.StreamMetrics { return s.metrics }

// RequestKeyFrame forces the next emitted frame to be an IDR, driven by a
// VideoKeyRequest received on Control.
func (s *EncodedSender) RequestKeyFrame() { s.forceKey.Store(true) }

// Submit enqueues a freshly captured frame.
func (s *EncodedSender) Submit(f *capture.Frame) {
	s.metrics.RecordCapture()
	dropped := s.q.Push(capturedFrame{frame: f})
	if dropped {
		s.metrics.RecordDrop()
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *EncodedSender) Start() {
	s.wg.Add(1)
	go s.worker()
}

func (s *EncodedSender) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *EncodedSender) worker() {
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

func (s *EncodedSender) processFrame(item capturedFrame) {
	defer s.pool.Put(item.frame.Pix)

	forceKey := s.forceKey.Swap(false)
	nal, err := s.enc.Encode(item.frame.Pix, item.frame.Width, item.frame.Height, time.Now().UnixMicro(), forceKey)
	if err != nil {
		log.Warn("video encode failed", "err", err)
		return
	}

	payload := protocol.BuildEncodedFrame(protocol.EncodedFrame{
		Width:     int32(item.frame.Width),
		Height:    int32(item.frame.Height),
		Codec:     s.codec,
		FrameType: nal.FrameType,
		PtsMicros: time.Now().UnixMicro(),
		NAL:       nal.Data,
	})

	flags := protocol.MessageFlags(0)
	if nal.FrameType == protocol.FrameTypeIDR {
		flags |= protocol.FlagKeyFrame
	}

	if err := s.ch.Send(protocol.TypeVideoFrame, flags, payload); err != nil {
		log.Warn("encoded video frame send failed", "err", err)
		return
	}
	s.metrics.RecordSent(len(payload))
}
