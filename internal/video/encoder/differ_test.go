package encoder

import (
	"bytes"
	"testing"
)

func TestDifferFirstFrameIsKeyFrame(t *testing.T) {
	d := NewDiffer()
	pix := bytes.Repeat([]byte{0x11}, 64)

	r := d.Diff(pix)
	if !r.KeyFrame {
		t.Fatal("expected first frame to be a keyframe")
	}
	if !bytes.Equal(r.Payload, pix) {
		t.Fatal("expected keyframe payload to equal the full frame")
	}
}

func TestDifferIdenticalFrameSkipped(t *testing.T) {
	d := NewDiffer()
	pix := bytes.Repeat([]byte{0x22}, 64)

	d.Diff(pix) // keyframe
	r := d.Diff(append([]byte(nil), pix...))
	if !r.Skip {
		t.Fatal("expected identical second frame to be skipped")
	}

	total, skipped := d.Stats()
	if total != 2 || skipped != 1 {
		t.Fatalf("expected total=2 skipped=1, got total=%d skipped=%d", total, skipped)
	}
}

func TestDifferChangedFrameReconstructs(t *testing.T) {
	d := NewDiffer()
	first := bytes.Repeat([]byte{0x00}, 37) // odd length exercises the tail loop
	d.Diff(first)

	second := make([]byte, len(first))
	copy(second, first)
	second[5] = 0xFF
	second[36] = 0x01

	r := d.Diff(second)
	if r.Skip || r.KeyFrame {
		t.Fatalf("expected a non-keyframe delta, got %+v", r)
	}

	reconstructed := make([]byte, len(first))
	for i := range reconstructed {
		reconstructed[i] = first[i] ^ r.Payload[i]
	}
	if !bytes.Equal(reconstructed, second) {
		t.Fatal("xor delta did not reconstruct the current frame")
	}
}

func TestDifferDimensionChangeForcesKeyFrame(t *testing.T) {
	d := NewDiffer()
	d.Diff(bytes.Repeat([]byte{0x01}, 16))

	r := d.Diff(bytes.Repeat([]byte{0x01}, 32))
	if !r.KeyFrame {
		t.Fatal("expected dimension change to force a keyframe")
	}
}

func TestDifferResetForcesKeyFrame(t *testing.T) {
	d := NewDiffer()
	d.Diff(bytes.Repeat([]byte{0x05}, 16))
	d.Reset()

	r := d.Diff(bytes.Repeat([]byte{0x05}, 16))
	if !r.KeyFrame {
		t.Fatal("expected keyframe after Reset even for an identical frame")
	}
}
