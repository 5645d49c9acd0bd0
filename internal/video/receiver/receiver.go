// Package receiver is the companion-side counterpart to video/sender: it
// reconstructs full frames from VideoFrame messages (XOR-delta reversal for
// raw BGRA, direct NAL hand-off for encoded) and forwards them to an opaque
// Renderer. Actual on-screen presentation is out of scope here, the same
// Non-goal that keeps capture/inject/codec internals opaque.
package receiver

import (
	"fmt"
	"sync"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
)

var log = logging.L("video.receiver")

// Renderer consumes a reconstructed frame. Width/height/stride describe pix.
type Renderer interface {
	Render(width, height, stride int, pix []byte) error
}

// NALRenderer consumes an encoded access unit for platform-decoder hand-off.
type NALRenderer interface {
	RenderNAL(width, height int, codec uint8, keyFrame bool, nal []byte) error
}

// Receiver tracks the reference frame needed to reverse raw XOR deltas. The
// session pins one codec for its whole lifetime (VideoConfig.Codec,
// DESIGN.md Open Question #1), so Mode is set once after the handshake and
// never switches mid-session.
type Receiver struct {
	mu        sync.Mutex
	mode      Mode
	raw       Renderer
	encoded   NALRenderer
	ref       []byte
	refWidth  int
	refHeight int
}

// Mode selects which VideoFrame sub-header layout HandleVideoFrame expects.
type Mode int

const (
	ModeRaw Mode = iota
	ModeEncoded
)

// New builds a Receiver for the given mode. Either raw or encoded may be nil
// if the caller has no renderer wired for that mode.
func New(mode Mode, raw Renderer, encoded NALRenderer) *Receiver {
	return &Receiver{mode: mode, raw: raw, encoded: encoded}
}

// HandleVideoFrame dispatches payload per the session's pinned Mode.
func (r *Receiver) HandleVideoFrame(payload []byte, flags protocol.MessageFlags) error {
	if r.mode == ModeRaw {
		return r.handleRaw(payload, flags)
	}
	return r.handleEncoded(payload)
}

func (r *Receiver) handleRaw(payload []byte, flags protocol.MessageFlags) error {
	frame, err := protocol.ParseRawFrame(payload)
	if err != nil {
		return fmt.Errorf("receiver: raw frame: %w", err)
	}
	if r.raw == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	width, height := int(frame.Width), int(frame.Height)
	size := len(frame.Pixels)

	isKeyFrame := flags.Has(protocol.FlagKeyFrame)
	if isKeyFrame || width != r.refWidth || height != r.refHeight || len(r.ref) != size {
		r.ref = append([]byte(nil), frame.Pixels...)
		r.refWidth, r.refHeight = width, height
	} else {
		for i := 0; i < size; i++ {
			r.ref[i] ^= frame.Pixels[i]
		}
	}

	return r.raw.Render(width, height, int(frame.Stride), r.ref)
}

func (r *Receiver) handleEncoded(payload []byte) error {
	frame, err := protocol.ParseEncodedFrame(payload)
	if err != nil {
		return fmt.Errorf("receiver: encoded frame: %w", err)
	}
	if r.encoded == nil {
		return nil
	}
	return r.encoded.RenderNAL(int(frame.Width), int(frame.Height), frame.Codec, frame.KeyFrameFlag(), frame.NAL)
}

// LoggingRenderer is a Renderer/NALRenderer that only logs frame stats —
// the default when no platform presentation surface is wired up.
type LoggingRenderer struct{}

func (LoggingRenderer) Render(width, height, stride int, pix []byte) error {
	log.Debug("frame reconstructed", "width", width, "height", height, "bytes", len(pix))
	return nil
}

func (LoggingRenderer) RenderNAL(width, height int, codec uint8, keyFrame bool, nal []byte) error {
	log.Debug("NAL received", "width", width, "height", height, "codec", codec, "keyFrame", keyFrame, "bytes", len(nal))
	return nil
}
