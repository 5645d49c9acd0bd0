//go:build darwin

package inject

import "github.com/lanternops/macwinbridge/internal/logging"

var log = logging.L("kvm.inject")

// cgEventInjector is the companion-side injector. The CGEvent synthetic
// input calls themselves are out of scope for this module (Non-goal,
// "platform-specific hook/inject syscalls specified by contract only") —
// this type exists to anchor the VK table lookup and confinement rect the
// real implementation would apply before calling CGEventPost.
type cgEventInjector struct{}

func newPlatformInjector() Injector {
	return &cgEventInjector{}
}

// Inject translates event into a native call. Unmapped VK codes are
// silently dropped per spec.md §4.9.
func (c *cgEventInjector) Inject(event Event, rect Rect) error {
	switch event.Kind {
	case EventKeyDown, EventKeyUp:
		native, ok := vkToNative[event.VKCode]
		if !ok {
			log.Debug("unmapped VK code dropped", "vk", event.VKCode)
			return nil
		}
		_ = native // would be passed to CGEventCreateKeyboardEvent
		return nil
	case EventMouseMove:
		x, y := clampToRect(event.X, event.Y, rect)
		_ = x
		_ = y
		return nil
	case EventMouseButton, EventMouseScroll:
		return nil
	default:
		return nil
	}
}

func clampToRect(x, y int, r Rect) (int, int) {
	if x < r.Left {
		x = r.Left
	}
	if x > r.Right {
		x = r.Right
	}
	if y < r.Top {
		y = r.Top
	}
	if y > r.Bottom {
		y = r.Bottom
	}
	return x, y
}
