package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello companion")
	raw, err := Encode(TypeHeartbeat, FlagPriority, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	h, body, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Type != TypeHeartbeat {
		t.Errorf("expected type %s, got %s", TypeHeartbeat, h.Type)
	}
	if h.Flags != FlagPriority {
		t.Errorf("expected flags %d, got %d", FlagPriority, h.Flags)
	}
	if !bytes.Equal(body, payload) {
		t.Errorf("expected payload %q, got %q", payload, body)
	}
}

func TestDecodeShortHeader(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte{0x01, 0x00, 0x00}))
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestDecodeShortPayload(t *testing.T) {
	raw, err := Encode(TypeVideoFrame, 0, []byte("0123456789"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	truncated := raw[:len(raw)-3]
	_, _, err = Decode(bytes.NewReader(truncated))
	if !errors.Is(err, ErrShortPayload) {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}
}

func TestEncodeOversizedPayload(t *testing.T) {
	_, err := Encode(TypeVideoFrame, 0, make([]byte, MaxPayloadSize+1))
	if !errors.Is(err, ErrOversizedPayload) {
		t.Fatalf("expected ErrOversizedPayload, got %v", err)
	}
}

func TestChannelFor(t *testing.T) {
	cases := []struct {
		t    MessageType
		want Channel
	}{
		{TypeHandshake, ChannelControl},
		{TypeVideoFrame, ChannelVideo},
		{TypeDisplaySwitch, ChannelControl},
		{TypeVideoKeyRequest, ChannelControl},
		{TypeAudioData, ChannelAudio},
		{TypeMouseMove, ChannelControl},
	}
	for _, c := range cases {
		if got := ChannelFor(c.t); got != c.want {
			t.Errorf("ChannelFor(%s) = %s, want %s", c.t, got, c.want)
		}
	}
}

func TestRawFrameRoundTrip(t *testing.T) {
	pixels := bytes.Repeat([]byte{0xAB}, 64)
	payload := BuildRawFrame(RawFrame{
		Width:       8,
		Height:      2,
		Stride:      32,
		FrameNumber: 7,
		Pixels:      pixels,
	})

	f, err := ParseRawFrame(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Width != 8 || f.Height != 2 || f.Stride != 32 || f.FrameNumber != 7 {
		t.Errorf("unexpected header fields: %+v", f)
	}
	if !bytes.Equal(f.Pixels, pixels) {
		t.Errorf("pixel mismatch")
	}
}

func TestRawFrameShortPayload(t *testing.T) {
	_, err := ParseRawFrame([]byte{1, 2, 3})
	if !errors.Is(err, ErrShortPayload) {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}
}

func TestEncodedFrameRoundTrip(t *testing.T) {
	nal := []byte{0, 0, 0, 1, 0x65, 0xAA, 0xBB}
	payload := BuildEncodedFrame(EncodedFrame{
		Width:     1920,
		Height:    1080,
		Codec:     1,
		FrameType: FrameTypeIDR,
		PtsMicros: 123456789,
		NAL:       nal,
	})

	f, err := ParseEncodedFrame(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Width != 1920 || f.Height != 1080 || f.Codec != 1 {
		t.Errorf("unexpected header fields: %+v", f)
	}
	if f.FrameType != FrameTypeIDR {
		t.Errorf("expected IDR, got %v", f.FrameType)
	}
	if f.KeyFrameFlag() != FlagKeyFrame {
		t.Errorf("expected KeyFrame flag set for IDR")
	}
	if !bytes.Equal(f.NAL, nal) {
		t.Errorf("nal mismatch")
	}
}

func TestEncodedFrameNonKeyFrame(t *testing.T) {
	payload := BuildEncodedFrame(EncodedFrame{FrameType: FrameTypeP, NAL: []byte{1, 2}})
	f, err := ParseEncodedFrame(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.KeyFrameFlag() != 0 {
		t.Errorf("expected no KeyFrame flag for P frame")
	}
}

func TestAudioDataRoundTrip(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	payload := BuildAudioData(AudioData{Timestamp: 99, PCM: pcm})

	a, err := ParseAudioData(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.Timestamp != 99 {
		t.Errorf("expected timestamp 99, got %d", a.Timestamp)
	}
	if !bytes.Equal(a.PCM, pcm) {
		t.Errorf("pcm mismatch")
	}
}

func TestHandshakeRequired(t *testing.T) {
	h := Handshake{AppVersion: "1.0.0", DeviceName: "host", Platform: "Windows", DisplayWidth: 1920, DisplayHeight: 1080}
	if !h.Required() {
		t.Error("expected handshake with all required fields to be valid")
	}
	h.DisplayWidth = 0
	if h.Required() {
		t.Error("expected handshake missing DisplayWidth to be invalid")
	}
}

func TestVideoConfigIsEncoded(t *testing.T) {
	if (VideoConfig{Codec: CodecRawBGRA}).IsEncoded() {
		t.Error("raw codec should not be encoded")
	}
	if !(VideoConfig{Codec: CodecH264}).IsEncoded() {
		t.Error("h264 codec should be encoded")
	}
}

func TestJSONPayloadRoundTrip(t *testing.T) {
	in := KvmConfig{Edge: EdgeRight, DeadZonePx: 2, EdgeOffset: 0.5}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out KvmConfig
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}
