package encoder

import "github.com/lanternops/macwinbridge/internal/protocol"

// NALEncoder is the opaque encoded-frame producer contract: the codec itself
// is out of scope for this module (Non-goal) — concrete implementations
// (e.g. the go-openh264 backend) are exercised through this interface only.
type NALEncoder interface {
	// Encode compresses one BGRA frame into zero or more NAL units for the
	// given PTS (microseconds). forceKeyFrame requests an IDR regardless of
	// the encoder's own GOP schedule (driven by VideoKeyRequest).
	Encode(pix []byte, width, height int, ptsMicros int64, forceKeyFrame bool) (EncodedNAL, error)

	// Close releases encoder resources.
	Close() error
}

// EncodedNAL is one encoder output ready to wrap in the encoded VideoFrame
// sub-header.
type EncodedNAL struct {
	Data      []byte
	FrameType protocol.FrameType
}

// EncoderError wraps an encoder-init or per-frame encode failure.
type EncoderError struct {
	Op  string
	Err error
}

func (e *EncoderError) Error() string { return "encoder: " + e.Op + ": " + e.Err.Error() }
func (e *EncoderError) Unwrap() error { return e.Err }
