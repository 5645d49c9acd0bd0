//go:build cgo

package encoder

import (
	"fmt"

	openh264 "github.com/y9o/go-openh264"

	"github.com/lanternops/macwinbridge/internal/protocol"
)

// OpenH264Encoder is the optional concrete NALEncoder backend for
// encoded-mode video. It keeps the codec itself opaque to the rest of the
// module — callers interact only through the NALEncoder interface.
type OpenH264Encoder struct {
	enc           *openh264.Encoder
	width, height int
	gopSinceIDR   int
	gopSize       int
}

// NewOpenH264Encoder builds an H.264 encoder for the given dimensions.
// gopSize controls how many P-frames are emitted between IDRs absent an
// explicit VideoKeyRequest.
func NewOpenH264Encoder(width, height, gopSize int) (*OpenH264Encoder, error) {
	enc, err := openh264.NewEncoder(width, height)
	if err != nil {
		return nil, &EncoderError{Op: "init", Err: err}
	}
	if gopSize <= 0 {
		gopSize = 120
	}
	return &OpenH264Encoder{enc: enc, width: width, height: height, gopSize: gopSize}, nil
}

// Encode implements NALEncoder.
func (e *OpenH264Encoder) Encode(pix []byte, width, height int, ptsMicros int64, forceKeyFrame bool) (EncodedNAL, error) {
	if width != e.width || height != e.height {
		return EncodedNAL{}, &EncoderError{Op: "encode", Err: fmt.Errorf("dimension mismatch: encoder is %dx%d, frame is %dx%d", e.width, e.height, width, height)}
	}

	wantIDR := forceKeyFrame || e.gopSinceIDR >= e.gopSize
	nal, isIDR, err := e.enc.EncodeBGRA(pix, wantIDR)
	if err != nil {
		return EncodedNAL{}, &EncoderError{Op: "encode", Err: err}
	}

	frameType := protocol.FrameTypeP
	if isIDR {
		frameType = protocol.FrameTypeIDR
		e.gopSinceIDR = 0
	} else {
		e.gopSinceIDR++
	}

	return EncodedNAL{Data: nal, FrameType: frameType}, nil
}

// Close implements NALEncoder.
func (e *OpenH264Encoder) Close() error {
	return e.enc.Close()
}
