// Package inject defines the companion-side input injection contract:
// translating a portable event representation into the local OS's
// synthetic-input primitive. The actual OS syscalls are out of scope for
// this module (Non-goal) — this package specifies the contract and a static
// VK-to-native key-code table; platform files are thin stubs.
package inject

import "github.com/lanternops/macwinbridge/internal/protocol"

// Rect is the companion screen rectangle an injected event must stay within.
type Rect struct {
	Left, Top, Right, Bottom int
}

// EventKind discriminates the portable event union.
type EventKind int

const (
	EventMouseMove EventKind = iota
	EventMouseButton
	EventMouseScroll
	EventKeyDown
	EventKeyUp
)

// Event is the portable input representation passed to Injector.Inject.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Event struct {
	Kind EventKind

	X, Y int                      // EventMouseMove
	Button protocol.MouseButtonKind // EventMouseButton
	DX, DY int                      // EventMouseScroll
	VKCode int                      // EventKeyDown / EventKeyUp
}

// InjectionError wraps a platform injection failure.
type InjectionError struct {
	Op  string
	Err error
}

func (e *InjectionError) Error() string { return "inject: " + e.Op + ": " + e.Err.Error() }
func (e *InjectionError) Unwrap() error { return e.Err }

// Injector translates portable events into the local OS's synthetic-input
// primitive, confined to rect.
type Injector interface {
	Inject(event Event, rect Rect) error
}

// New returns the platform Injector.
func New() Injector {
	return newPlatformInjector()
}
