package player

import (
	"testing"

	"github.com/lanternops/macwinbridge/internal/protocol"
)

type fakeSink struct {
	writes [][]byte
}

func (f *fakeSink) Write(pcm []byte) error {
	f.writes = append(f.writes, pcm)
	return nil
}

func TestBufferHandleAudioDataWritesThrough(t *testing.T) {
	sink := &fakeSink{}
	buf := New(protocol.AudioConfig{SampleRate: 48000, Channels: 2, BitsPerSample: 16}, sink)

	payload := protocol.BuildAudioData(protocol.AudioData{Timestamp: 1, PCM: []byte{1, 2, 3, 4}})
	if err := buf.HandleAudioData(payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(sink.writes))
	}
}

func TestBufferMutedRouteDropsAudio(t *testing.T) {
	sink := &fakeSink{}
	buf := New(protocol.AudioConfig{SampleRate: 48000, Channels: 2, BitsPerSample: 16}, sink)
	buf.SetRoute(protocol.RouteMuted)

	payload := protocol.BuildAudioData(protocol.AudioData{Timestamp: 1, PCM: []byte{1, 2}})
	if err := buf.HandleAudioData(payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.writes) != 0 {
		t.Fatalf("expected no writes while muted, got %d", len(sink.writes))
	}
}
