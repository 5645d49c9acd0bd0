//go:build darwin

package capture

// Core Audio tap capture is out of scope for this module — specified only
// as an opaque per-platform contract (see package doc).
type coreAudioCapturer struct{}

func newPlatformCapturer() AudioCapturer {
	return &coreAudioCapturer{}
}

func (c *coreAudioCapturer) Start(callback func(Chunk)) error { return ErrNotSupported }
func (c *coreAudioCapturer) Stop()                            {}
