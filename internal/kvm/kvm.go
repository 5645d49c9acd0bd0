// Package kvm implements the focus state machine: which side (host or
// companion) the keyboard/mouse currently targets, edge-crossing detection
// on the host side, and the coordinate mapping used to hand off the cursor.
package kvm

import (
	"sync"
	"sync/atomic"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
)

var log = logging.L("kvm")

// Focus is which side currently owns keyboard/mouse input.
type Focus int32

const (
	FocusHost Focus = iota
	FocusCompanion
)

func (f Focus) String() string {
	if f == FocusCompanion {
		return "Companion"
	}
	return "Host"
}

// Rect is an integer screen rectangle, [L,T,R,B] per spec.md §4.8.
type Rect struct {
	Left, Top, Right, Bottom int
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// KvmError is the closed error kind for this package.
type KvmError struct {
	Op  string
	Err error
}

func (e *KvmError) Error() string { return "kvm: " + e.Op + ": " + e.Err.Error() }
func (e *KvmError) Unwrap() error { return e.Err }

// StateMachine tracks the focus flag (read-mostly, so atomic) and the
// cursor-confinement bookkeeping (mutated only on transitions, so behind a
// mutex) per spec.md §5's description of the two storage strategies.
type StateMachine struct {
	focus atomic.Int32

	mu             sync.Mutex
	hostRect       Rect
	companionRect  Rect
	edge           protocol.Edge
	deadZonePx     int
	edgeOffset     float64
	clipped        bool

	// InjectMouseMove is called with the companion-space entry coordinate on
	// a Host→Companion transition. The session package does not set it;
	// callers wire it, and while it is nil no entry move is emitted.
	InjectMouseMove func(x, y int)
	// SuppressLocalInput toggles whether the host hook delivers events to
	// the local OS (true = suppress, deliver to companion instead).
	SuppressLocalInput func(suppress bool)
	// ClipCursor confines (or releases, when rect is the zero Rect) the OS
	// cursor to a rectangle and hides/shows it.
	ClipCursor func(rect Rect, hide bool)
}

// NewStateMachine builds a state machine pinned to FocusHost, per spec.md
// §4.8 "initial Host".
func NewStateMachine(hostRect, companionRect Rect, edge protocol.Edge, deadZonePx int, edgeOffset float64) *StateMachine {
	s := &StateMachine{
		hostRect:      hostRect,
		companionRect: companionRect,
		edge:          edge,
		deadZonePx:    deadZonePx,
		edgeOffset:    edgeOffset,
	}
	s.focus.Store(int32(FocusHost))
	return s
}

// Focus returns the current focus value.
func (s *StateMachine) Focus() Focus {
	return Focus(s.focus.Load())
}

// Configure applies a KvmConfig update (edge/dead-zone/offset tuning).
func (s *StateMachine) Configure(cfg protocol.KvmConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edge = cfg.Edge
	s.deadZonePx = cfg.DeadZonePx
	s.edgeOffset = cfg.EdgeOffset
}

// AtEdge reports whether (x, y) has crossed the configured edge of the host
// primary rectangle, per the dead-zone math in spec.md §4.8.
func (s *StateMachine) AtEdge(x, y int) bool {
	s.mu.Lock()
	r, edge, d := s.hostRect, s.edge, s.deadZonePx
	s.mu.Unlock()

	switch edge {
	case protocol.EdgeRight:
		return x >= r.Right-d
	case protocol.EdgeLeft:
		return x <= r.Left+d
	case protocol.EdgeTop:
		return y <= r.Top+d
	case protocol.EdgeBottom:
		return y >= r.Bottom-d
	default:
		return false
	}
}

// HandleHostCursor feeds one host cursor position through the state machine.
// While Focus is Host, a qualifying edge crossing triggers the Host→
// Companion transition. While Focus is Companion, this is a no-op (the host
// cursor is clipped and suppressed; only forwarded events move the
// companion cursor).
func (s *StateMachine) HandleHostCursor(x, y int) {
	if s.Focus() != FocusHost {
		return
	}
	if !s.AtEdge(x, y) {
		return
	}
	s.transitionToCompanion(x, y)
}

func (s *StateMachine) transitionToCompanion(x, y int) {
	s.mu.Lock()
	r, edge := s.hostRect, s.edge
	companion := s.companionRect
	s.clipped = true
	s.mu.Unlock()

	entryX, entryY := mapCrossingToCompanion(edge, x, y, r, companion)

	if s.SuppressLocalInput != nil {
		s.SuppressLocalInput(true)
	}
	if s.ClipCursor != nil {
		s.ClipCursor(edgeStrip(r, edge), true)
	}
	s.focus.Store(int32(FocusCompanion))
	if s.InjectMouseMove != nil {
		s.InjectMouseMove(entryX, entryY)
	}
	log.Debug("kvm transition Host->Companion", "edge", edge, "entryX", entryX, "entryY", entryY)
}

// HandleCursorReturn applies a CursorReturn from the companion (or an
// equivalent hotkey toggle, via ManualReturn), releasing clip/suppression.
func (s *StateMachine) HandleCursorReturn(payload protocol.CursorReturnPayload) {
	if s.Focus() != FocusCompanion {
		return
	}

	s.mu.Lock()
	s.clipped = false
	s.mu.Unlock()

	if s.ClipCursor != nil {
		s.ClipCursor(Rect{}, false)
	}
	if s.SuppressLocalInput != nil {
		s.SuppressLocalInput(false)
	}
	s.focus.Store(int32(FocusHost))
	log.Debug("kvm transition Companion->Host", "edge", payload.Edge, "position", payload.Position)
}

// ManualReturn applies the hotkey-triggered Companion→Host transition,
// identical to HandleCursorReturn but without companion-provided edge info.
func (s *StateMachine) ManualReturn() {
	s.HandleCursorReturn(protocol.CursorReturnPayload{})
}

// MapHostToCompanion proportionally scales a host-space coordinate into
// companion space, used while Focus is Companion to forward every
// subsequent MouseMove at the correct relative position.
func (s *StateMachine) MapHostToCompanion(x, y int) (int, int) {
	s.mu.Lock()
	host, companion := s.hostRect, s.companionRect
	s.mu.Unlock()

	return scaleCoordinate(x, y, host, companion)
}

func scaleCoordinate(x, y int, from, to Rect) (int, int) {
	fw, fh := from.Width(), from.Height()
	if fw <= 0 || fh <= 0 {
		return 0, 0
	}
	relX := float64(x-from.Left) / float64(fw)
	relY := float64(y-from.Top) / float64(fh)
	return to.Left + int(relX*float64(to.Width())), to.Top + int(relY*float64(to.Height()))
}

// mapCrossingToCompanion computes the companion entry coordinate from the
// host crossing position, per spec.md §4.8 step 3 and the invariant in §8
// ("matching proportional coordinate within ±1 pixel of ⌊(p/L)·companion_dim⌋").
func mapCrossingToCompanion(edge protocol.Edge, x, y int, host, companion Rect) (int, int) {
	switch edge {
	case protocol.EdgeRight:
		p := y - host.Top
		l := host.Height()
		return companion.Left, companion.Top + proportional(p, l, companion.Height())
	case protocol.EdgeLeft:
		p := y - host.Top
		l := host.Height()
		return companion.Right, companion.Top + proportional(p, l, companion.Height())
	case protocol.EdgeTop:
		p := x - host.Left
		l := host.Width()
		return companion.Left + proportional(p, l, companion.Width()), companion.Bottom
	case protocol.EdgeBottom:
		p := x - host.Left
		l := host.Width()
		return companion.Left + proportional(p, l, companion.Width()), companion.Top
	default:
		return companion.Left, companion.Top
	}
}

func proportional(p, l, dim int) int {
	if l <= 0 {
		return 0
	}
	return int(float64(p) / float64(l) * float64(dim))
}

// edgeStrip returns the confinement rectangle used to clip the host cursor
// to a 1-4 px strip along the active edge while focus is Companion.
func edgeStrip(r Rect, edge protocol.Edge) Rect {
	const stripWidth = 2
	switch edge {
	case protocol.EdgeRight:
		return Rect{Left: r.Right - stripWidth, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
	case protocol.EdgeLeft:
		return Rect{Left: r.Left, Top: r.Top, Right: r.Left + stripWidth, Bottom: r.Bottom}
	case protocol.EdgeTop:
		return Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Top + stripWidth}
	case protocol.EdgeBottom:
		return Rect{Left: r.Left, Top: r.Bottom - stripWidth, Right: r.Right, Bottom: r.Bottom}
	default:
		return r
	}
}
