package protocol

import "encoding/json"

// Handshake is the Control-channel JSON sent by the host and echoed back
// (same shape) by the companion as HandshakeAck. Unknown fields are ignored
// by encoding/json already; missing required fields are the caller's
// responsibility to reject (session abort per spec).
type Handshake struct {
	AppVersion    string `json:"AppVersion"`
	DeviceName    string `json:"DeviceName"`
	Platform      string `json:"Platform"` // "Windows" or "macOS"
	DisplayWidth  int    `json:"DisplayWidth"`
	DisplayHeight int    `json:"DisplayHeight"`
	RefreshRate   int    `json:"RefreshRate"`
	SupportsAudio bool   `json:"SupportsAudio"`
	SupportsInput bool   `json:"SupportsInput"`
}

// Required reports whether the fields a session cannot proceed without are
// populated. Callers treat a false result as session-abort.
func (h Handshake) Required() bool {
	return h.AppVersion != "" && h.DeviceName != "" && h.Platform != "" &&
		h.DisplayWidth > 0 && h.DisplayHeight > 0
}

// VideoCodec selects which VideoFrame sub-header layout a session uses.
type VideoCodec string

const (
	CodecRawBGRA VideoCodec = "raw"
	CodecH264    VideoCodec = "h264"
	CodecH265    VideoCodec = "h265"
)

// VideoConfig is sent once per session on Control before the first
// VideoFrame and pins the session to exactly one sub-header layout.
type VideoConfig struct {
	Codec      VideoCodec `json:"Codec"`
	Width      int        `json:"Width"`
	Height     int        `json:"Height"`
	TargetFPS  int        `json:"TargetFPS"`
	BitrateKbps int       `json:"BitrateKbps,omitempty"`
}

// IsEncoded reports whether Codec selects the 22-byte encoded sub-header
// layout rather than the 16-byte raw-BGRA one.
func (c VideoConfig) IsEncoded() bool {
	return c.Codec == CodecH264 || c.Codec == CodecH265
}

// AudioConfig is interpreted first on the companion side to build the
// output format before any AudioData arrives.
type AudioConfig struct {
	SampleRate    int `json:"SampleRate"`
	Channels      int `json:"Channels"`
	BitsPerSample int `json:"BitsPerSample"`
	BufferMs      int `json:"BufferMs"`
}

// AudioRoute is the payload carried by AudioControl.
type AudioRoute string

const (
	RouteWindowsToMac AudioRoute = "WindowsToMac"
	RouteMacToWindows AudioRoute = "MacToWindows"
	RouteBoth         AudioRoute = "Both"
	RouteMuted        AudioRoute = "Muted"
)

// AudioControl carries routing changes on the Audio channel.
type AudioControl struct {
	Route AudioRoute `json:"Route"`
}

// Edge identifies which screen edge a KVM crossing or CursorReturn refers to.
type Edge string

const (
	EdgeLeft   Edge = "Left"
	EdgeRight  Edge = "Right"
	EdgeTop    Edge = "Top"
	EdgeBottom Edge = "Bottom"
)

// KvmConfig carries the edge/dead-zone/offset tuning for the focus state
// machine, sent on Control.
type KvmConfig struct {
	Edge         Edge    `json:"Edge"`
	DeadZonePx   int     `json:"DeadZonePx"`
	EdgeOffset   float64 `json:"EdgeOffset"`
}

// CursorReturnPayload is the body of a CursorReturn message: the companion
// informs the host which edge was crossed and where along it, so the host
// may restore its cursor near the symmetric position.
type CursorReturnPayload struct {
	Edge     Edge    `json:"Edge"`
	Position float64 `json:"Position"` // normalized 0..1 along Edge
}

// MouseButtonKind is the portable button-event kind passed to inject().
type MouseButtonKind string

const (
	ButtonLDown MouseButtonKind = "LDown"
	ButtonLUp   MouseButtonKind = "LUp"
	ButtonRDown MouseButtonKind = "RDown"
	ButtonRUp   MouseButtonKind = "RUp"
	ButtonMDown MouseButtonKind = "MDown"
	ButtonMUp   MouseButtonKind = "MUp"
)

// MouseMovePayload is the JSON body of a MouseMove message.
type MouseMovePayload struct {
	X int `json:"X"`
	Y int `json:"Y"`
}

// MouseButtonPayload is the JSON body of a MouseButton message.
type MouseButtonPayload struct {
	Kind MouseButtonKind `json:"Kind"`
}

// MouseScrollPayload is the JSON body of a MouseScroll message.
type MouseScrollPayload struct {
	DX int `json:"DX"`
	DY int `json:"DY"`
}

// KeyEventPayload is the JSON body of KeyDown/KeyUp messages, carrying a
// Windows virtual-key code regardless of which platform originated it.
type KeyEventPayload struct {
	VKCode int `json:"VKCode"`
}

// ClipboardSyncPayload carries clipboard text across the Control channel.
type ClipboardSyncPayload struct {
	Text string `json:"Text"`
}

// MarshalJSON-backed helpers. Kept thin and symmetric: every payload struct
// above round-trips through encoding/json directly, these just save callers
// from repeating json.Marshal/Unmarshal at call sites.

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
