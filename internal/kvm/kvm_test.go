package kvm

import (
	"testing"

	"github.com/lanternops/macwinbridge/internal/protocol"
)

func TestEdgeCrossingAndReturn(t *testing.T) {
	host := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	companion := Rect{Left: 0, Top: 0, Right: 2560, Bottom: 1440}

	s := NewStateMachine(host, companion, protocol.EdgeRight, 2, 0)

	var clipped bool
	var suppressed bool
	var moveX, moveY int
	s.ClipCursor = func(r Rect, hide bool) { clipped = hide }
	s.SuppressLocalInput = func(suppress bool) { suppressed = suppress }
	s.InjectMouseMove = func(x, y int) { moveX, moveY = x, y }

	// Feed (1917, 500): short of the dead zone (x >= 1920-2), stays Host.
	s.HandleHostCursor(1917, 500)
	if s.Focus() != FocusHost {
		t.Fatalf("expected Host focus before crossing, got %s", s.Focus())
	}

	// Feed (1919, 500): crosses into the dead zone, becomes Companion.
	s.HandleHostCursor(1919, 500)
	if s.Focus() != FocusCompanion {
		t.Fatalf("expected Companion focus after crossing, got %s", s.Focus())
	}
	if !suppressed {
		t.Error("expected local input suppression on transition to Companion")
	}
	if !clipped {
		t.Error("expected cursor clip on transition to Companion")
	}

	wantY := 500 * 1440 / 1080
	if moveY < wantY-1 || moveY > wantY+1 {
		t.Errorf("expected companion entry y within ±1 of %d, got %d", wantY, moveY)
	}
	if moveX != companion.Left {
		t.Errorf("expected companion entry x at left edge %d, got %d", companion.Left, moveX)
	}

	// CursorReturn releases focus back to Host.
	s.HandleCursorReturn(protocol.CursorReturnPayload{Edge: protocol.EdgeLeft, Position: 0.5})
	if s.Focus() != FocusHost {
		t.Fatalf("expected Host focus after CursorReturn, got %s", s.Focus())
	}
	if clipped {
		t.Error("expected clip released after CursorReturn")
	}
	if suppressed {
		t.Error("expected suppression cleared after CursorReturn")
	}
}

func TestMapHostToCompanionScaling(t *testing.T) {
	host := Rect{Left: 0, Top: 0, Right: 1000, Bottom: 1000}
	companion := Rect{Left: 0, Top: 0, Right: 2000, Bottom: 500}
	s := NewStateMachine(host, companion, protocol.EdgeRight, 0, 0)

	x, y := s.MapHostToCompanion(500, 250)
	if x != 1000 {
		t.Errorf("expected x=1000, got %d", x)
	}
	if y != 125 {
		t.Errorf("expected y=125, got %d", y)
	}
}

func TestAtEdgeDeadZone(t *testing.T) {
	host := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
	s := NewStateMachine(host, Rect{Right: 100, Bottom: 100}, protocol.EdgeRight, 2, 0)

	if s.AtEdge(1917, 0) {
		t.Error("expected 1917 to be outside the dead zone for edge Right with d=2")
	}
	if !s.AtEdge(1918, 0) {
		t.Error("expected 1918 to be inside the dead zone for edge Right with d=2")
	}
}
