package protocol

import (
	"encoding/binary"
	"fmt"
)

// RawFrameHeaderSize is the size of the raw-BGRA VideoFrame sub-header.
const RawFrameHeaderSize = 16

// EncodedFrameHeaderSize is the size of the H.264/H.265 VideoFrame sub-header.
const EncodedFrameHeaderSize = 22

// FrameType distinguishes encoded-mode NAL frame kinds.
type FrameType uint8

const (
	FrameTypeP   FrameType = 0
	FrameTypeIDR FrameType = 1
	FrameTypeB   FrameType = 2
)

// RawFrame is the parsed form of the raw-BGRA VideoFrame payload layout:
// [width:i32][height:i32][stride:i32][frame_number:i32][pixels:n].
type RawFrame struct {
	Width        int32
	Height       int32
	Stride       int32
	FrameNumber  int32
	Pixels       []byte
}

// BuildRawFrame packs a RawFrame into a VideoFrame payload.
func BuildRawFrame(f RawFrame) []byte {
	buf := make([]byte, RawFrameHeaderSize+len(f.Pixels))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.Width))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(f.Height))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(f.Stride))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(f.FrameNumber))
	copy(buf[RawFrameHeaderSize:], f.Pixels)
	return buf
}

// ParseRawFrame parses a raw-BGRA VideoFrame payload. The returned Pixels
// slice aliases payload — callers that retain it across a buffer return must
// copy.
func ParseRawFrame(payload []byte) (RawFrame, error) {
	if len(payload) < RawFrameHeaderSize {
		return RawFrame{}, fmt.Errorf("%w: raw frame sub-header needs %d bytes, have %d", ErrShortPayload, RawFrameHeaderSize, len(payload))
	}
	return RawFrame{
		Width:       int32(binary.LittleEndian.Uint32(payload[0:4])),
		Height:      int32(binary.LittleEndian.Uint32(payload[4:8])),
		Stride:      int32(binary.LittleEndian.Uint32(payload[8:12])),
		FrameNumber: int32(binary.LittleEndian.Uint32(payload[12:16])),
		Pixels:      payload[RawFrameHeaderSize:],
	}, nil
}

// EncodedFrame is the parsed form of the encoded-mode VideoFrame payload
// layout: [width:i32][height:i32][codec:u8][frame_type:u8][pts_us:i64][data_len:i32][nal:n].
type EncodedFrame struct {
	Width     int32
	Height    int32
	Codec     uint8
	FrameType FrameType
	PtsMicros int64
	NAL       []byte
}

// BuildEncodedFrame packs an EncodedFrame into a VideoFrame payload.
func BuildEncodedFrame(f EncodedFrame) []byte {
	buf := make([]byte, EncodedFrameHeaderSize+len(f.NAL))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(f.Width))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(f.Height))
	buf[8] = f.Codec
	buf[9] = uint8(f.FrameType)
	binary.LittleEndian.PutUint64(buf[10:18], uint64(f.PtsMicros))
	binary.LittleEndian.PutUint32(buf[18:22], uint32(len(f.NAL)))
	copy(buf[EncodedFrameHeaderSize:], f.NAL)
	return buf
}

// ParseEncodedFrame parses an encoded-mode VideoFrame payload. The returned
// NAL slice aliases payload — callers that retain it across a buffer return
// must copy.
func ParseEncodedFrame(payload []byte) (EncodedFrame, error) {
	if len(payload) < EncodedFrameHeaderSize {
		return EncodedFrame{}, fmt.Errorf("%w: encoded frame sub-header needs %d bytes, have %d", ErrShortPayload, EncodedFrameHeaderSize, len(payload))
	}
	dataLen := binary.LittleEndian.Uint32(payload[18:22])
	if int(dataLen) > len(payload)-EncodedFrameHeaderSize {
		return EncodedFrame{}, fmt.Errorf("%w: data_len %d exceeds remaining payload %d", ErrShortPayload, dataLen, len(payload)-EncodedFrameHeaderSize)
	}
	return EncodedFrame{
		Width:     int32(binary.LittleEndian.Uint32(payload[0:4])),
		Height:    int32(binary.LittleEndian.Uint32(payload[4:8])),
		Codec:     payload[8],
		FrameType: FrameType(payload[9]),
		PtsMicros: int64(binary.LittleEndian.Uint64(payload[10:18])),
		NAL:       payload[EncodedFrameHeaderSize : EncodedFrameHeaderSize+int(dataLen)],
	}, nil
}

// KeyFrameFlag reports the MessageFlags KeyFrame bit implied by an encoded
// frame's type, per spec: KeyFrame flag is set iff frame_type=IDR.
func (f EncodedFrame) KeyFrameFlag() MessageFlags {
	if f.FrameType == FrameTypeIDR {
		return FlagKeyFrame
	}
	return 0
}
