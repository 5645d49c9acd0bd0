package protocol

import "fmt"

// ProtocolViolation signals a message that was framed correctly but broke a
// session-level ordering rule — e.g. a VideoFrame arriving before the
// VideoConfig that must precede it.
type ProtocolViolation struct {
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol: violation: %s", e.Reason)
}

// NewProtocolViolation builds a ProtocolViolation with the given reason.
func NewProtocolViolation(reason string) error {
	return &ProtocolViolation{Reason: reason}
}
