// Package clipboard polls the local system clipboard for text changes and
// syncs them to the peer over Control as ClipboardSync, the way
// internal/remote/clipboard's proxyProvider bridges a Provider to IPC in the
// teacher — here the "IPC" is the Control channel instead of a user-helper
// process.
package clipboard

import (
	"sync"
	"time"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
)

var log = logging.L("clipboard")

// Provider is the opaque per-platform clipboard access contract; the actual
// OS clipboard API calls are out of scope here (same as KVM's Injector).
type Provider interface {
	GetText() (string, error)
	SetText(text string) error
}

// Sender delivers a ClipboardSync payload to the peer over Control.
type Sender interface {
	Send(t protocol.MessageType, flags protocol.MessageFlags, payload []byte) error
}

const pollInterval = 500 * time.Millisecond

// Syncer polls Provider for local clipboard changes and forwards them, while
// applying incoming ClipboardSync without re-broadcasting the echo.
type Syncer struct {
	provider Provider
	sender   Sender

	mu       sync.Mutex
	lastSeen string

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a Syncer. Call Start to begin polling.
func New(provider Provider, sender Sender) *Syncer {
	return &Syncer{provider: provider, sender: sender, stopCh: make(chan struct{})}
}

// Start launches the poll loop.
func (s *Syncer) Start() {
	s.wg.Add(1)
	go s.pollLoop()
}

// Stop halts polling and waits for it to exit.
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Syncer) pollLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

func (s *Syncer) pollOnce() {
	text, err := s.provider.GetText()
	if err != nil {
		log.Debug("clipboard read failed", "err", err)
		return
	}

	s.mu.Lock()
	unchanged := text == s.lastSeen
	if !unchanged {
		s.lastSeen = text
	}
	s.mu.Unlock()
	if unchanged || text == "" {
		return
	}

	payload, err := protocol.Marshal(protocol.ClipboardSyncPayload{Text: text})
	if err != nil {
		log.Warn("clipboard marshal failed", "err", err)
		return
	}
	if err := s.sender.Send(protocol.TypeClipboardSync, 0, payload); err != nil {
		log.Warn("clipboard send failed", "err", err)
	}
}

// HandleClipboardSync applies an incoming ClipboardSync payload to the local
// clipboard, recording it as lastSeen so the next poll doesn't echo it back.
func (s *Syncer) HandleClipboardSync(raw []byte) error {
	var payload protocol.ClipboardSyncPayload
	if err := protocol.Unmarshal(raw, &payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastSeen = payload.Text
	s.mu.Unlock()

	return s.provider.SetText(payload.Text)
}
