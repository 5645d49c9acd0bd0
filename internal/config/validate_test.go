package config

import (
	"fmt"
	"strings"
	"testing"
)

func TestValidateTieredBadCompanionAddressIsFatal(t *testing.T) {
	cfg := Default()
	cfg.CompanionAddress = "::::not-an-address"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("malformed companion_address should be fatal")
	}
}

func TestValidateTieredCompanionAddressAcceptsBareIP(t *testing.T) {
	cfg := Default()
	cfg.CompanionAddress = "192.168.1.50"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("bare IP companion_address should be valid: %v", result.Fatals)
	}
}

func TestValidateTieredUnknownVideoCodecIsFatal(t *testing.T) {
	cfg := Default()
	cfg.VideoCodec = "vp9"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unknown video_codec should be fatal")
	}
}

func TestValidateTieredUnknownDisplayModeIsFatal(t *testing.T) {
	cfg := Default()
	cfg.DisplayMode = "mirror"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unknown display_mode should be fatal")
	}
}

func TestValidateTieredUnknownAudioRouteIsFatal(t *testing.T) {
	cfg := Default()
	cfg.AudioRoute = "Nowhere"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unknown audio_route should be fatal")
	}
}

func TestValidateTieredUnknownKvmEdgeIsFatal(t *testing.T) {
	cfg := Default()
	cfg.KvmEdge = "Diagonal"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("unknown kvm_edge should be fatal")
	}
}

func TestValidateTieredFPSClampingIsWarning(t *testing.T) {
	cfg := Default()
	cfg.VideoTargetFPS = 0
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped fps should be warning, not fatal: %v", result.Fatals)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for clamped fps")
	}
	if cfg.VideoTargetFPS != 1 {
		t.Fatalf("VideoTargetFPS = %d, want 1 (clamped)", cfg.VideoTargetFPS)
	}
}

func TestValidateTieredHighFPSClampingIsWarning(t *testing.T) {
	cfg := Default()
	cfg.VideoTargetFPS = 999
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped fps should be warning, not fatal: %v", result.Fatals)
	}
	if cfg.VideoTargetFPS != 120 {
		t.Fatalf("VideoTargetFPS = %d, want 120 (clamped)", cfg.VideoTargetFPS)
	}
}

func TestValidateTieredAudioChannelsClamping(t *testing.T) {
	cfg := Default()
	cfg.AudioChannels = 0
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped audio channels should be warning: %v", result.Fatals)
	}
	if cfg.AudioChannels != 2 {
		t.Fatalf("AudioChannels = %d, want 2", cfg.AudioChannels)
	}
}

func TestValidateTieredNegativeDeadZoneClamping(t *testing.T) {
	cfg := Default()
	cfg.KvmDeadZonePx = -5
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped dead zone should be warning: %v", result.Fatals)
	}
	if cfg.KvmDeadZonePx != 0 {
		t.Fatalf("KvmDeadZonePx = %d, want 0", cfg.KvmDeadZonePx)
	}
}

func TestValidateTieredUnknownLogLevelIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown log level should not be fatal")
	}
	found := false
	for _, err := range result.Warnings {
		if strings.Contains(err.Error(), "log_level") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected warning about log level")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info (defaulted)", cfg.LogLevel)
	}
}

func TestValidateTieredInvalidLogFormatIsWarning(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log format should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for invalid log format")
	}
}

func TestHasFatals(t *testing.T) {
	r := Result{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.Fatals = append(r.Fatals, fmt.Errorf("test error"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}

func TestAllErrorsReturnsBoth(t *testing.T) {
	cfg := Default()
	cfg.VideoCodec = "vp9"    // fatal
	cfg.VideoTargetFPS = 9999 // warning
	result := cfg.ValidateTiered()

	all := result.AllErrors()
	if len(all) < 2 {
		t.Fatalf("AllErrors() returned %d errors, expected at least 2 (fatals + warnings)", len(all))
	}
}

func TestValidConfigHasNoErrors(t *testing.T) {
	cfg := Default()
	cfg.CompanionAddress = "192.168.1.50:42100"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("valid config has fatals: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("valid config has warnings: %v", result.Warnings)
	}
}
