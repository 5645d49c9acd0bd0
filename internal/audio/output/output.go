// Package output provides the companion-side OutputSink the audio player
// buffer writes decoded PCM to. The actual platform mixer call (Core Audio
// on macOS) is out of scope here, same Non-goal as capture/inject.
package output

import "github.com/lanternops/macwinbridge/internal/logging"

var log = logging.L("audio.output")

// Sink satisfies player.OutputSink with a stub that only logs write sizes.
type Sink struct{}

// New returns the platform output sink.
func New() *Sink { return &Sink{} }

func (s *Sink) Write(pcm []byte) error {
	log.Debug("pcm write", "bytes", len(pcm))
	return nil
}
