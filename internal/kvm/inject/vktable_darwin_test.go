//go:build darwin

package inject

import "testing"

func TestVKTableCoversCoreKeys(t *testing.T) {
	required := []int{0x41, 0x30, 0x70, 0x25, 0x10, 0x0D, 0xBF}
	for _, vk := range required {
		if _, ok := vkToNative[vk]; !ok {
			t.Errorf("expected vk 0x%02X to be mapped", vk)
		}
	}
}

func TestUnmappedVKSilentlyDropped(t *testing.T) {
	inj := newPlatformInjector()
	if err := inj.Inject(Event{Kind: EventKeyDown, VKCode: 0xFEFE}, Rect{}); err != nil {
		t.Fatalf("expected unmapped vk to be silently dropped, got error: %v", err)
	}
}
