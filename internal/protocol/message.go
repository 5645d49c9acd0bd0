// Package protocol implements the wire framing and message catalog shared by
// the host and companion: an 8-byte little-endian header followed by a raw
// payload. There is no encryption and no compression beyond the video
// delta-frame convention described by MessageFlags — security is explicitly
// out of scope for this bridge.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the fixed, packed size of a message header on the wire.
const HeaderSize = 8

// MaxPayloadSize is the default cap on payload_length. Oversized payloads are
// rejected before allocation so a corrupt/hostile peer cannot force an
// unbounded read.
const MaxPayloadSize = 64 * 1024 * 1024

// MessageType is the closed set of message kinds, grouped by high byte.
type MessageType uint16

const (
	TypeHandshake    MessageType = 0x0001
	TypeHandshakeAck MessageType = 0x0002
	TypeHeartbeat    MessageType = 0x0003
	TypeDisconnect   MessageType = 0x0004

	TypeVideoFrame      MessageType = 0x0100
	TypeVideoConfig     MessageType = 0x0101
	TypeDisplaySwitch   MessageType = 0x0102
	TypeDisplayStatus   MessageType = 0x0103
	TypeVideoKeyRequest MessageType = 0x0104

	TypeAudioData    MessageType = 0x0200
	TypeAudioConfig  MessageType = 0x0201
	TypeAudioControl MessageType = 0x0202

	TypeMouseMove     MessageType = 0x0300
	TypeMouseButton   MessageType = 0x0301
	TypeMouseScroll   MessageType = 0x0302
	TypeCursorReturn  MessageType = 0x0303
	TypeKeyDown       MessageType = 0x0310
	TypeKeyUp         MessageType = 0x0311
	TypeClipboardSync MessageType = 0x0320
	TypeKvmConfig     MessageType = 0x0330
)

// String renders a MessageType for logging.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(0x%04x)", uint16(t))
}

var messageTypeNames = map[MessageType]string{
	TypeHandshake:       "Handshake",
	TypeHandshakeAck:    "HandshakeAck",
	TypeHeartbeat:       "Heartbeat",
	TypeDisconnect:      "Disconnect",
	TypeVideoFrame:      "VideoFrame",
	TypeVideoConfig:     "VideoConfig",
	TypeDisplaySwitch:   "DisplaySwitch",
	TypeDisplayStatus:   "DisplayStatus",
	TypeVideoKeyRequest: "VideoKeyRequest",
	TypeAudioData:       "AudioData",
	TypeAudioConfig:     "AudioConfig",
	TypeAudioControl:    "AudioControl",
	TypeMouseMove:       "MouseMove",
	TypeMouseButton:     "MouseButton",
	TypeMouseScroll:     "MouseScroll",
	TypeCursorReturn:    "CursorReturn",
	TypeKeyDown:         "KeyDown",
	TypeKeyUp:           "KeyUp",
	TypeClipboardSync:   "ClipboardSync",
	TypeKvmConfig:       "KvmConfig",
}

// HighByte returns the family byte (Control/Video/Audio/Input) of a type.
func (t MessageType) HighByte() byte {
	return byte(t >> 8)
}

// Channel identifies which of the three TCP connections a message family
// travels on. DisplaySwitch and VideoKeyRequest are the one exception noted
// in spec.md §3: they steer video but travel on Control.
type Channel int

const (
	ChannelControl Channel = iota
	ChannelVideo
	ChannelAudio
)

func (c Channel) String() string {
	switch c {
	case ChannelControl:
		return "control"
	case ChannelVideo:
		return "video"
	case ChannelAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// ChannelFor returns the channel a message type travels on.
func ChannelFor(t MessageType) Channel {
	switch t {
	case TypeDisplaySwitch, TypeVideoKeyRequest:
		return ChannelControl
	}
	switch t.HighByte() {
	case 0x01:
		return ChannelVideo
	case 0x02:
		return ChannelAudio
	default:
		return ChannelControl
	}
}

// MessageFlags is a bitfield carried alongside every message.
type MessageFlags uint16

const (
	FlagCompressed MessageFlags = 1 << 0
	FlagEncrypted  MessageFlags = 1 << 1 // reserved, unused in this version
	FlagPriority   MessageFlags = 1 << 2
	FlagKeyFrame   MessageFlags = 1 << 3
)

func (f MessageFlags) Has(bit MessageFlags) bool { return f&bit != 0 }

// Header is the fixed 8-byte envelope preceding every payload.
type Header struct {
	Type          MessageType
	Flags         MessageFlags
	PayloadLength uint32
}

// FramingError is the closed error kind for header/payload parsing failures.
type FramingError struct {
	Kind string
	Err  error
}

func (e *FramingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: framing error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("protocol: framing error (%s)", e.Kind)
}

func (e *FramingError) Unwrap() error { return e.Err }

// Sentinel framing error kinds, matched via errors.Is against a Kind-only value.
var (
	ErrShortHeader     = &FramingError{Kind: "short_header"}
	ErrShortPayload    = &FramingError{Kind: "short_payload"}
	ErrOversizedPayload = &FramingError{Kind: "oversized_payload"}
)

// Is lets errors.Is match by Kind alone, ignoring the wrapped cause.
func (e *FramingError) Is(target error) bool {
	other, ok := target.(*FramingError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Encode serializes a header+payload into a single byte slice suitable for
// one transport write (amortizing syscalls per spec.md §4.2).
func Encode(t MessageType, flags MessageFlags, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrOversizedPayload, len(payload), MaxPayloadSize)
	}
	buf := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(t))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(flags))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf, nil
}

// DecodeHeader parses exactly HeaderSize bytes into a Header. Callers read
// HeaderSize bytes up front (e.g. via io.ReadFull) before calling this.
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", ErrShortHeader, HeaderSize, len(raw))
	}
	h := Header{
		Type:          MessageType(binary.LittleEndian.Uint16(raw[0:2])),
		Flags:         MessageFlags(binary.LittleEndian.Uint16(raw[2:4])),
		PayloadLength: binary.LittleEndian.Uint32(raw[4:8]),
	}
	if h.PayloadLength > MaxPayloadSize {
		return Header{}, fmt.Errorf("%w: %d > %d", ErrOversizedPayload, h.PayloadLength, MaxPayloadSize)
	}
	return h, nil
}

// Decode reads one complete message (header + payload) from r. It is the
// incremental decode operation from spec.md §4.1: call it repeatedly against
// a persistent stream to yield one message at a time.
func Decode(r io.Reader) (Header, []byte, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, nil, fmt.Errorf("%w: %v", ErrShortHeader, err)
		}
		return Header{}, nil, err
	}

	h, err := DecodeHeader(headerBuf)
	if err != nil {
		return Header{}, nil, err
	}

	payload := make([]byte, h.PayloadLength)
	if h.PayloadLength > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return Header{}, nil, fmt.Errorf("%w: %v", ErrShortPayload, err)
			}
			return Header{}, nil, err
		}
	}
	return h, payload, nil
}
