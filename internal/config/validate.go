package config

import (
	"fmt"
	"net"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validEdges = map[string]bool{
	"Left": true, "Right": true, "Top": true, "Bottom": true,
}

var validAudioRoutes = map[string]bool{
	"WindowsToMac": true, "MacToWindows": true, "Both": true, "Muted": true,
}

var validCodecs = map[string]bool{
	"raw": true, "h264": true, "h265": true,
}

// Result splits validation findings into fatals, which block startup, and
// warnings, which are logged but allow startup to proceed (with the
// offending field clamped to a safe value).
type Result struct {
	Fatals   []error
	Warnings []error
}

func (r *Result) HasFatals() bool { return len(r.Fatals) > 0 }

// AllErrors returns fatals followed by warnings, for callers that just want
// to log everything found without caring about severity.
func (r *Result) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

func (r *Result) addFatal(format string, args ...any)   { r.Fatals = append(r.Fatals, fmt.Errorf(format, args...)) }
func (r *Result) addWarning(format string, args ...any) { r.Warnings = append(r.Warnings, fmt.Errorf(format, args...)) }

// ValidateTiered checks Config for invalid values. Malformed fields that
// would make a session impossible to reason about (bad host/port, unknown
// enum value controlling wire behavior) are fatal; out-of-range numeric
// tunables are clamped to a safe value and reported as warnings.
func (c *Config) ValidateTiered() *Result {
	r := &Result{}

	if c.CompanionAddress != "" {
		if _, _, err := net.SplitHostPort(c.CompanionAddress); err != nil {
			if net.ParseIP(c.CompanionAddress) == nil {
				r.addFatal("companion_address %q is not a host:port or IP address: %v", c.CompanionAddress, err)
			}
		}
	}

	if c.VideoCodec != "" && !validCodecs[c.VideoCodec] {
		r.addFatal("video_codec %q is not valid (use raw, h264, h265)", c.VideoCodec)
	}

	if c.DisplayMode != "" && c.DisplayMode != "stream" && c.DisplayMode != "local" {
		r.addFatal("display_mode %q is not valid (use stream or local)", c.DisplayMode)
	}

	if c.AudioRoute != "" && !validAudioRoutes[c.AudioRoute] {
		r.addFatal("audio_route %q is not valid", c.AudioRoute)
	}

	if c.KvmEdge != "" && !validEdges[c.KvmEdge] {
		r.addFatal("kvm_edge %q is not valid (use Left, Right, Top, Bottom)", c.KvmEdge)
	}

	if c.VideoTargetFPS < 1 {
		r.addWarning("video_target_fps %d is below minimum 1, clamping", c.VideoTargetFPS)
		c.VideoTargetFPS = 1
	} else if c.VideoTargetFPS > 120 {
		r.addWarning("video_target_fps %d exceeds maximum 120, clamping", c.VideoTargetFPS)
		c.VideoTargetFPS = 120
	}

	if c.AudioSampleRate != 44100 && c.AudioSampleRate != 48000 {
		r.addWarning("audio_sample_rate %d is unusual (expected 44100 or 48000), leaving as-is", c.AudioSampleRate)
	}

	if c.AudioChannels < 1 || c.AudioChannels > 2 {
		r.addWarning("audio_channels %d out of range, clamping to 2", c.AudioChannels)
		c.AudioChannels = 2
	}

	if c.KvmDeadZonePx < 0 {
		r.addWarning("kvm_dead_zone_px %d is negative, clamping to 0", c.KvmDeadZonePx)
		c.KvmDeadZonePx = 0
	}

	if c.DiscoveryTimeoutS < 1 {
		r.addWarning("discovery_timeout_seconds %d is below minimum 1, clamping", c.DiscoveryTimeoutS)
		c.DiscoveryTimeoutS = 1
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.addWarning("log_level %q is not valid (use debug, info, warn, error), defaulting to info", c.LogLevel)
		c.LogLevel = "info"
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.addWarning("log_format %q is not valid (use text or json), defaulting to text", c.LogFormat)
		c.LogFormat = "text"
	}

	return r
}
