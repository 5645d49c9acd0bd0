//go:build windows

package capture

import (
	"fmt"
	"sync"

	"github.com/go-ole/go-ole"

	"github.com/lanternops/macwinbridge/internal/logging"
)

var log = logging.L("audio.capture")

// wasapiLoopbackCapturer captures the default render endpoint in loopback
// mode via WASAPI. COM activation follows the go-ole idiom (ole.CoInitialize
// / ole.CreateInstance); the IAudioClient/IAudioCaptureClient call sequence
// itself is the opaque per-platform contract this module specifies but does
// not implement (see package doc).
type wasapiLoopbackCapturer struct {
	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func newPlatformCapturer() AudioCapturer {
	return &wasapiLoopbackCapturer{}
}

func (w *wasapiLoopbackCapturer) Start(callback func(Chunk)) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("audio capture: already started")
	}
	w.started = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return fmt.Errorf("audio capture: CoInitializeEx: %w", err)
	}

	log.Debug("WASAPI loopback capture requested; device enumeration is the opaque platform contract")
	return ErrNotSupported
}

func (w *wasapiLoopbackCapturer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	close(w.stopCh)
	w.wg.Wait()
	w.started = false
	ole.CoUninitialize()
}
