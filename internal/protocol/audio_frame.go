package protocol

import (
	"encoding/binary"
	"fmt"
)

// AudioHeaderSize is the size of the AudioData payload's timestamp prefix.
const AudioHeaderSize = 8

// AudioData is the parsed form of an AudioData payload:
// [timestamp:i64][pcm:n]. Timestamp is the capturing host's monotonic tick,
// usable only as a jitter-buffer ordering key — never wall-clock.
type AudioData struct {
	Timestamp int64
	PCM       []byte
}

// BuildAudioData packs an AudioData payload.
func BuildAudioData(a AudioData) []byte {
	buf := make([]byte, AudioHeaderSize+len(a.PCM))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(a.Timestamp))
	copy(buf[AudioHeaderSize:], a.PCM)
	return buf
}

// ParseAudioData parses an AudioData payload. The returned PCM slice aliases
// payload — callers that retain it across a buffer return must copy.
func ParseAudioData(payload []byte) (AudioData, error) {
	if len(payload) < AudioHeaderSize {
		return AudioData{}, fmt.Errorf("%w: audio data needs %d bytes, have %d", ErrShortPayload, AudioHeaderSize, len(payload))
	}
	return AudioData{
		Timestamp: int64(binary.LittleEndian.Uint64(payload[0:8])),
		PCM:       payload[AudioHeaderSize:],
	}, nil
}
