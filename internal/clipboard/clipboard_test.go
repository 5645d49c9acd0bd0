package clipboard

import (
	"sync"
	"testing"

	"github.com/lanternops/macwinbridge/internal/protocol"
)

type fakeProvider struct {
	mu   sync.Mutex
	text string
}

func (f *fakeProvider) GetText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

func (f *fakeProvider) SetText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []protocol.ClipboardSyncPayload
}

func (f *fakeSender) Send(t protocol.MessageType, flags protocol.MessageFlags, payload []byte) error {
	var p protocol.ClipboardSyncPayload
	if err := protocol.Unmarshal(payload, &p); err != nil {
		return err
	}
	f.mu.Lock()
	f.sent = append(f.sent, p)
	f.mu.Unlock()
	return nil
}

func TestPollOnceSendsOnChange(t *testing.T) {
	provider := &fakeProvider{text: "hello"}
	sender := &fakeSender{}
	s := New(provider, sender)

	s.pollOnce()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 || sender.sent[0].Text != "hello" {
		t.Fatalf("expected one sync with text hello, got %+v", sender.sent)
	}
}

func TestPollOnceSkipsUnchangedText(t *testing.T) {
	provider := &fakeProvider{text: "same"}
	sender := &fakeSender{}
	s := New(provider, sender)

	s.pollOnce()
	s.pollOnce()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one sync for unchanged text, got %d", len(sender.sent))
	}
}

func TestHandleClipboardSyncAppliesAndSuppressesEcho(t *testing.T) {
	provider := &fakeProvider{}
	sender := &fakeSender{}
	s := New(provider, sender)

	payload, err := protocol.Marshal(protocol.ClipboardSyncPayload{Text: "from peer"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := s.HandleClipboardSync(payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, _ := provider.GetText()
	if got != "from peer" {
		t.Fatalf("expected local clipboard set to %q, got %q", "from peer", got)
	}

	// Subsequent poll of the same applied text should not re-send.
	s.pollOnce()
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.sent) != 0 {
		t.Fatalf("expected no echo send, got %+v", sender.sent)
	}
}
