//go:build windows

package capture

// Desktop Duplication API capture is out of scope for this module — it is
// specified only as an opaque per-platform contract (see package doc).
// windowsCapturer is the stub that contract compiles against on Windows.
type windowsCapturer struct {
	cfg    Config
	width  int
	height int
}

func newPlatformCapturer(cfg Config) (ScreenCapturer, error) {
	return nil, ErrNotSupported
}

func (c *windowsCapturer) Capture() (*Frame, error) { return nil, ErrNotSupported }

func (c *windowsCapturer) Bounds() (int, int, error) { return 0, 0, ErrNotSupported }

func (c *windowsCapturer) Close() error { return nil }
