package receiver

import (
	"bytes"
	"testing"

	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/video/encoder"
)

type capturingRenderer struct {
	width, height, stride int
	pix                    []byte
}

func (c *capturingRenderer) Render(width, height, stride int, pix []byte) error {
	c.width, c.height, c.stride = width, height, stride
	c.pix = append([]byte(nil), pix...)
	return nil
}

func TestReceiverReconstructsKeyFrameThenDelta(t *testing.T) {
	differ := encoder.NewDiffer()
	renderer := &capturingRenderer{}
	recv := New(ModeRaw, renderer, nil)

	frame1 := bytes.Repeat([]byte{0x11, 0x22, 0x33, 0xFF}, 4) // 4 pixels BGRA
	result1 := differ.Diff(frame1)
	if !result1.KeyFrame {
		t.Fatal("first diff should be a keyframe")
	}
	flags1 := protocol.MessageFlags(0)
	flags1 |= protocol.FlagKeyFrame
	payload1 := protocol.BuildRawFrame(protocol.RawFrame{Width: 2, Height: 2, Stride: 8, FrameNumber: 0, Pixels: result1.Payload})
	if err := recv.HandleVideoFrame(payload1, flags1); err != nil {
		t.Fatalf("handle keyframe: %v", err)
	}
	if !bytes.Equal(renderer.pix, frame1) {
		t.Fatalf("keyframe reconstruction mismatch: got %x, want %x", renderer.pix, frame1)
	}

	frame2 := append([]byte(nil), frame1...)
	frame2[0] = 0xAB
	frame2[5] = 0xCD
	result2 := differ.Diff(frame2)
	if result2.KeyFrame || result2.Skip {
		t.Fatalf("second diff should be a non-skipped delta, got %+v", result2)
	}
	flags2 := protocol.MessageFlags(0) | protocol.FlagCompressed
	payload2 := protocol.BuildRawFrame(protocol.RawFrame{Width: 2, Height: 2, Stride: 8, FrameNumber: 1, Pixels: result2.Payload})
	if err := recv.HandleVideoFrame(payload2, flags2); err != nil {
		t.Fatalf("handle delta: %v", err)
	}
	if !bytes.Equal(renderer.pix, frame2) {
		t.Fatalf("delta reconstruction mismatch: got %x, want %x", renderer.pix, frame2)
	}
}

func TestReceiverDimensionChangeWithoutKeyFrameFlagStillResets(t *testing.T) {
	renderer := &capturingRenderer{}
	recv := New(ModeRaw, renderer, nil)

	first := []byte{1, 2, 3, 4}
	payload1 := protocol.BuildRawFrame(protocol.RawFrame{Width: 1, Height: 1, Stride: 4, Pixels: first})
	if err := recv.HandleVideoFrame(payload1, protocol.FlagKeyFrame); err != nil {
		t.Fatalf("handle first: %v", err)
	}

	second := []byte{5, 6, 7, 8, 9, 10, 11, 12}
	payload2 := protocol.BuildRawFrame(protocol.RawFrame{Width: 2, Height: 1, Stride: 8, Pixels: second})
	if err := recv.HandleVideoFrame(payload2, 0); err != nil {
		t.Fatalf("handle dimension change: %v", err)
	}
	if !bytes.Equal(renderer.pix, second) {
		t.Fatalf("expected dimension-change frame treated as full frame: got %x, want %x", renderer.pix, second)
	}
}
