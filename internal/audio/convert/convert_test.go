package convert

import "testing"

func TestFloatToInt16LEClamping(t *testing.T) {
	out := FloatToInt16LE([]float32{1.5, -1.5, 0})
	if len(out) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(out))
	}
	// 1.5 clamps to 32767 -> 0xFF 0x7F little-endian
	if out[0] != 0xFF || out[1] != 0x7F {
		t.Errorf("expected clamped max sample, got %x %x", out[0], out[1])
	}
	// -1.5 clamps to -32768 -> 0x00 0x80 little-endian
	if out[2] != 0x00 || out[3] != 0x80 {
		t.Errorf("expected clamped min sample, got %x %x", out[2], out[3])
	}
}

func TestResampleNoOpWhenRatesMatch(t *testing.T) {
	samples := []int16{1, 2, 3, 4}
	out := Resample(samples, 1, 48000, 48000)
	if len(out) != len(samples) {
		t.Fatalf("expected unchanged length, got %d", len(out))
	}
}

func TestResampleUpsamplesFrameCount(t *testing.T) {
	samples := []int16{0, 100, 200, 300} // 4 mono frames at 8000Hz
	out := Resample(samples, 1, 8000, 16000)
	if len(out) != 8 {
		t.Fatalf("expected 8 frames at 2x rate, got %d", len(out))
	}
	if out[0] != 0 {
		t.Errorf("expected first sample preserved, got %d", out[0])
	}
}

func TestInt16ToLERoundTrip(t *testing.T) {
	out := Int16ToLE([]int16{-1, 256})
	want := []byte{0xFF, 0xFF, 0x00, 0x01}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("byte %d: expected %x, got %x", i, want[i], out[i])
		}
	}
}
