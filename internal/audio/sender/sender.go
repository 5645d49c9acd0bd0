// Package sender packetizes captured PCM into AudioData messages and sends
// them on the audio transport.Channel through a bounded DropOldest queue of
// capacity 10, trading completeness for freshness under network stall.
package sender

import (
	"sync"
	"time"

	"github.com/lanternops/macwinbridge/internal/audio/capture"
	"github.com/lanternops/macwinbridge/internal/audio/convert"
	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/queue"
	"github.com/lanternops/macwinbridge/internal/transport"
)

var log = logging.L("audio.sender")

// queueCapacity is fixed at 10 per spec.md §4.7.
const queueCapacity = 10

type packet struct {
	timestamp int64
	pcm       []byte
}

// Sender owns the bounded send queue between the audio capture callback and
// the Audio channel.
type Sender struct {
	ch          *transport.Channel
	cfg         protocol.AudioConfig
	q           *queue.DropOldest[packet]
	dropped     uint64
	notify      chan struct{}
	stopOnce    sync.Once
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewSender builds an audio sender for the given negotiated format.
func NewSender(ch *transport.Channel, cfg protocol.AudioConfig) *Sender {
	return &Sender{
		ch:     ch,
		cfg:    cfg,
		q:      queue.New[packet](queueCapacity),
		notify: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Start launches the dedicated consumer worker draining the send queue.
func (s *Sender) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Stop signals the worker to exit and waits for it to drain.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// OnChunk is the capture callback: converts, packetizes, and enqueues one
// captured chunk. Silent chunks are dropped before ever reaching the queue.
func (s *Sender) OnChunk(chunk capture.Chunk) {
	if capture.SilencePredicate(chunk.Samples) {
		return
	}

	pcm := convert.FloatToInt16LE(chunk.Samples)
	if chunk.SampleRate != s.cfg.SampleRate {
		samples16 := bytesToInt16(pcm)
		resampled := convert.Resample(samples16, s.cfg.Channels, chunk.SampleRate, s.cfg.SampleRate)
		pcm = convert.Int16ToLE(resampled)
	}

	dropped := s.q.Push(packet{timestamp: time.Now().UnixNano(), pcm: pcm})
	if dropped {
		s.dropped++
	}

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Dropped returns the cumulative count of packets evicted by the DropOldest
// queue.
func (s *Sender) Dropped() uint64 { return s.dropped }

func (s *Sender) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.notify:
		}

		for {
			p, ok := s.q.Pop()
			if !ok {
				break
			}
			payload := protocol.BuildAudioData(protocol.AudioData{Timestamp: p.timestamp, PCM: p.pcm})
			if err := s.ch.Send(protocol.TypeAudioData, 0, payload); err != nil {
				log.Warn("audio data send failed", "err", err)
			}
		}
	}
}

func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
	}
	return out
}
