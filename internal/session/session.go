// Package session implements the orchestrator state machine: resolving a
// peer, opening the three fixed-port channels, exchanging the handshake,
// running the heartbeat, and tearing everything down in the correct order
// on any failure.
package session

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/transport"
)

var log = logging.L("session")

// Fixed ports per spec.md §6.
const (
	PortControl = 42100
	PortVideo   = 42101
	PortAudio   = 42102
)

// State is the orchestrator's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateDiscovering
	StateConnecting
	StateHandshaking
	StateStreaming
	StateTearingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDiscovering:
		return "Discovering"
	case StateConnecting:
		return "Connecting"
	case StateHandshaking:
		return "Handshaking"
	case StateStreaming:
		return "Streaming"
	case StateTearingDown:
		return "TearingDown"
	default:
		return "Unknown"
	}
}

// HandshakeError is the closed error kind for handshake failures: malformed
// JSON, incompatible version/platform, or timeout.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string { return "session: handshake: " + e.Reason }

const (
	heartbeatInterval = 30 * time.Second
	maxMissedBeats    = 3
)

// Pipelines bundles the start/stop hooks for the audio/video/KVM pipelines
// the orchestrator spawns in Streaming and tears down in reverse order.
// Any hook left nil is treated as a no-op, letting a companion in "receive
// only" mode omit the ones it doesn't run.
type Pipelines struct {
	StartAudio func()
	StopAudio  func()
	StartVideo func() // only called when the active display mode streams from this side
	StopVideo  func()
	StartKVM   func()
	StopKVM    func()
}

func (p Pipelines) startAudio() { call(p.StartAudio) }
func (p Pipelines) stopAudio()  { call(p.StopAudio) }
func (p Pipelines) startVideo() { call(p.StartVideo) }
func (p Pipelines) stopVideo()  { call(p.StopVideo) }
func (p Pipelines) startKVM()   { call(p.StartKVM) }
func (p Pipelines) stopKVM()    { call(p.StopKVM) }

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// Session is the orchestrator for one host↔companion connection.
type Session struct {
	state atomic.Int32

	control *transport.Channel
	video   *transport.Channel
	audio   *transport.Channel

	pipelines     Pipelines
	streamsVideo  bool
	missedBeats   atomic.Int32
	lastHeartbeat atomic.Int64 // UnixNano

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a Session in StateIdle.
func New(pipelines Pipelines) *Session {
	s := &Session{pipelines: pipelines, stopCh: make(chan struct{})}
	s.state.Store(int32(StateIdle))
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	log.Debug("session state transition", "state", st)
}

// DialHost opens all three channels as the initiator (the host role),
// closing any already-opened channel if a later one fails, per spec.md §4.4.
// addr is a host name or IP; a port in addr is ignored, since each channel
// has its own fixed port.
func (s *Session) DialHost(addr string) error {
	s.setState(StateConnecting)

	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	control, err := transport.Dial("control", fmt.Sprintf("%s:%d", addr, PortControl))
	if err != nil {
		s.setState(StateTearingDown)
		return err
	}
	video, err := transport.Dial("video", fmt.Sprintf("%s:%d", addr, PortVideo))
	if err != nil {
		control.Close()
		s.setState(StateTearingDown)
		return err
	}
	audioCh, err := transport.Dial("audio", fmt.Sprintf("%s:%d", addr, PortAudio))
	if err != nil {
		control.Close()
		video.Close()
		s.setState(StateTearingDown)
		return err
	}

	s.control, s.video, s.audio = control, video, audioCh
	return nil
}

// ListenCompanion accepts all three channels as the responder (the
// companion role), in the same order as DialHost dials them.
func (s *Session) ListenCompanion(bindAddr string) error {
	s.setState(StateConnecting)

	control, err := transport.Listen("control", fmt.Sprintf("%s:%d", bindAddr, PortControl))
	if err != nil {
		s.setState(StateTearingDown)
		return err
	}
	video, err := transport.Listen("video", fmt.Sprintf("%s:%d", bindAddr, PortVideo))
	if err != nil {
		control.Close()
		s.setState(StateTearingDown)
		return err
	}
	audioCh, err := transport.Listen("audio", fmt.Sprintf("%s:%d", bindAddr, PortAudio))
	if err != nil {
		control.Close()
		video.Close()
		s.setState(StateTearingDown)
		return err
	}

	s.control, s.video, s.audio = control, video, audioCh
	return nil
}

// HandshakeAsHost sends a Handshake and waits for the HandshakeAck, returning
// the companion's echoed Handshake (its own display dimensions/identity).
func (s *Session) HandshakeAsHost(ctx context.Context, hs protocol.Handshake) (protocol.Handshake, error) {
	s.setState(StateHandshaking)

	payload, err := protocol.Marshal(hs)
	if err != nil {
		return protocol.Handshake{}, &HandshakeError{Reason: err.Error()}
	}
	if err := s.control.Send(protocol.TypeHandshake, 0, payload); err != nil {
		return protocol.Handshake{}, &HandshakeError{Reason: err.Error()}
	}

	select {
	case msg := <-s.control.Messages():
		if msg.Header.Type != protocol.TypeHandshakeAck {
			return protocol.Handshake{}, &HandshakeError{Reason: "expected HandshakeAck, got " + msg.Header.Type.String()}
		}
		var ack protocol.Handshake
		if err := protocol.Unmarshal(msg.Payload, &ack); err != nil {
			return protocol.Handshake{}, &HandshakeError{Reason: "malformed HandshakeAck: " + err.Error()}
		}
		if !ack.Required() {
			return protocol.Handshake{}, &HandshakeError{Reason: "HandshakeAck missing required fields"}
		}
		return ack, nil
	case <-ctx.Done():
		return protocol.Handshake{}, &HandshakeError{Reason: "timeout waiting for HandshakeAck"}
	}
}

// HandshakeAsCompanion waits for a Handshake and replies with HandshakeAck.
func (s *Session) HandshakeAsCompanion(ctx context.Context, ack protocol.Handshake) (protocol.Handshake, error) {
	s.setState(StateHandshaking)

	select {
	case msg := <-s.control.Messages():
		if msg.Header.Type != protocol.TypeHandshake {
			return protocol.Handshake{}, &HandshakeError{Reason: "expected Handshake, got " + msg.Header.Type.String()}
		}
		var hs protocol.Handshake
		if err := protocol.Unmarshal(msg.Payload, &hs); err != nil {
			return protocol.Handshake{}, &HandshakeError{Reason: "malformed Handshake: " + err.Error()}
		}
		if !hs.Required() {
			return protocol.Handshake{}, &HandshakeError{Reason: "Handshake missing required fields"}
		}

		payload, err := protocol.Marshal(ack)
		if err != nil {
			return protocol.Handshake{}, &HandshakeError{Reason: err.Error()}
		}
		if err := s.control.Send(protocol.TypeHandshakeAck, 0, payload); err != nil {
			return protocol.Handshake{}, &HandshakeError{Reason: err.Error()}
		}
		return hs, nil
	case <-ctx.Done():
		return protocol.Handshake{}, &HandshakeError{Reason: "timeout waiting for Handshake"}
	}
}

// SetPipelines attaches the pipeline start/stop hooks. Callers build the
// hooks after the handshake resolves display dimensions and other session
// parameters, so this is separate from New; it must be called before Start.
func (s *Session) SetPipelines(p Pipelines) { s.pipelines = p }

// Control/Video/Audio expose the underlying channels so cmd-layer wiring can
// attach senders/receivers once the session reaches Streaming.
func (s *Session) Control() *transport.Channel { return s.control }
func (s *Session) Video() *transport.Channel   { return s.video }
func (s *Session) Audio() *transport.Channel   { return s.audio }

// Start enters Streaming: spawns audio and KVM unconditionally, video only
// when streamsVideo is true, and launches the heartbeat loop.
func (s *Session) Start(streamsVideo bool) {
	s.streamsVideo = streamsVideo
	s.setState(StateStreaming)

	s.pipelines.startAudio()
	s.pipelines.startKVM()
	if streamsVideo {
		s.pipelines.startVideo()
	}

	s.lastHeartbeat.Store(time.Now().UnixNano())
	s.wg.Add(1)
	go s.heartbeatLoop()

	s.control.OnDisconnected(func(err error) { s.teardown(err) })
	s.video.OnDisconnected(func(err error) { s.teardown(err) })
	s.audio.OnDisconnected(func(err error) { s.teardown(err) })
}

// OnHeartbeat records a received Heartbeat, resetting the missed-beat
// counter.
func (s *Session) OnHeartbeat() {
	s.missedBeats.Store(0)
	s.lastHeartbeat.Store(time.Now().UnixNano())
}

func (s *Session) heartbeatLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.control.Send(protocol.TypeHeartbeat, 0, nil); err != nil {
				log.Warn("heartbeat send failed", "err", err)
			}
			if s.missedBeats.Add(1) > maxMissedBeats {
				log.Warn("missed heartbeat threshold exceeded, tearing down")
				go s.teardown(fmt.Errorf("missed %d heartbeats", maxMissedBeats))
				return
			}
		}
	}
}

// teardown stops pipelines in reverse order (KVM, video, audio) then closes
// Control last, per spec.md §4.4. Safe to call multiple times, including from
// a channel's disconnect callback while teardown is closing that channel:
// only the first call does the work, later calls return at once.
func (s *Session) teardown(cause error) {
	first := false
	s.stopOnce.Do(func() {
		first = true
		s.setState(StateTearingDown)
		close(s.stopCh)
	})
	if !first {
		return
	}
	log.Info("session tearing down", "cause", cause)

	s.pipelines.stopKVM()
	if s.streamsVideo {
		s.pipelines.stopVideo()
	}
	s.pipelines.stopAudio()

	if s.video != nil {
		s.video.Close()
	}
	if s.audio != nil {
		s.audio.Close()
	}
	if s.control != nil {
		s.control.Send(protocol.TypeDisconnect, 0, nil)
		s.control.Close()
	}

	s.wg.Wait()
	s.setState(StateIdle)
}

// Stop tears the session down explicitly (e.g. on hotkey/user-requested
// disconnect), same ordering as a failure-driven teardown.
func (s *Session) Stop() {
	s.teardown(nil)
}
