//go:build darwin

package capture

// ScreenCaptureKit/CGDisplayStream capture is out of scope for this module —
// specified only as an opaque per-platform contract (see package doc).
type darwinCapturer struct {
	cfg Config
}

func newPlatformCapturer(cfg Config) (ScreenCapturer, error) {
	return nil, ErrNotSupported
}

func (c *darwinCapturer) Capture() (*Frame, error) { return nil, ErrNotSupported }

func (c *darwinCapturer) Bounds() (int, int, error) { return 0, 0, ErrNotSupported }

func (c *darwinCapturer) Close() error { return nil }
