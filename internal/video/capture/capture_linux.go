//go:build linux

package capture

// X11/PipeWire capture is out of scope for this module — specified only as
// an opaque per-platform contract (see package doc). The bridge's two real
// endpoints are Windows (host) and macOS (companion); Linux exists here only
// so the module builds on a developer's Linux workstation.
type linuxCapturer struct {
	cfg Config
}

func newPlatformCapturer(cfg Config) (ScreenCapturer, error) {
	return nil, ErrNotSupported
}

func (c *linuxCapturer) Capture() (*Frame, error) { return nil, ErrNotSupported }

func (c *linuxCapturer) Bounds() (int, int, error) { return 0, 0, ErrNotSupported }

func (c *linuxCapturer) Close() error { return nil }
