// Package config loads and persists the bridge's per-user settings: which
// companion to connect to, per-pipeline tunables, and the last display mode
// / audio routing the user picked, so a session can resume them without
// re-prompting. The core treats the loaded Config as immutable for the
// lifetime of a session.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
)

var log = logging.L("config")

// Config is the full persisted settings set, read once at session start.
type Config struct {
	// Connection
	CompanionAddress  string `mapstructure:"companion_address"`
	DiscoveryEnabled  bool   `mapstructure:"discovery_enabled"`
	DiscoveryTimeoutS int    `mapstructure:"discovery_timeout_seconds"`

	// Video pipeline
	VideoCodec      string `mapstructure:"video_codec"` // "raw", "h264", "h265"
	VideoTargetFPS  int    `mapstructure:"video_target_fps"`
	VideoBitrateKbps int   `mapstructure:"video_bitrate_kbps"`
	DisplayMode     string `mapstructure:"display_mode"` // "stream" or "local"

	// Audio pipeline
	AudioSampleRate int    `mapstructure:"audio_sample_rate"`
	AudioChannels   int    `mapstructure:"audio_channels"`
	AudioBufferMs   int    `mapstructure:"audio_buffer_ms"`
	AudioRoute      string `mapstructure:"audio_route"` // protocol.AudioRoute

	// KVM
	KvmEdge       string  `mapstructure:"kvm_edge"` // protocol.Edge
	KvmDeadZonePx int     `mapstructure:"kvm_dead_zone_px"`
	KvmEdgeOffset float64 `mapstructure:"kvm_edge_offset"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns the settings a fresh install starts with.
func Default() *Config {
	return &Config{
		DiscoveryEnabled:  true,
		DiscoveryTimeoutS: 3,

		VideoCodec:       string(protocol.CodecRawBGRA),
		VideoTargetFPS:   30,
		VideoBitrateKbps: 8000,
		DisplayMode:      "stream",

		AudioSampleRate: 48000,
		AudioChannels:   2,
		AudioBufferMs:   20,
		AudioRoute:      string(protocol.RouteWindowsToMac),

		KvmEdge:       string(protocol.EdgeRight),
		KvmDeadZonePx: 2,
		KvmEdgeOffset: 0,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads config from cfgFile, or the default per-OS location if empty,
// falling back to Default() for anything unset. A missing file is not an
// error — a first run has nothing to load yet.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MACWINBRIDGE")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	result := cfg.ValidateTiered()
	for _, err := range result.Warnings {
		log.Warn("config validation", "error", err)
	}
	if result.HasFatals() {
		for _, err := range result.Fatals {
			log.Error("config validation fatal", "error", err)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %v", result.Fatals[0])
	}

	return cfg, nil
}

// Save writes cfg to the default per-OS location.
func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

// SaveTo writes cfg to cfgFile, or the default location if empty, with
// owner-only permissions.
func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("companion_address", cfg.CompanionAddress)
	viper.Set("discovery_enabled", cfg.DiscoveryEnabled)
	viper.Set("discovery_timeout_seconds", cfg.DiscoveryTimeoutS)
	viper.Set("video_codec", cfg.VideoCodec)
	viper.Set("video_target_fps", cfg.VideoTargetFPS)
	viper.Set("video_bitrate_kbps", cfg.VideoBitrateKbps)
	viper.Set("display_mode", cfg.DisplayMode)
	viper.Set("audio_sample_rate", cfg.AudioSampleRate)
	viper.Set("audio_channels", cfg.AudioChannels)
	viper.Set("audio_buffer_ms", cfg.AudioBufferMs)
	viper.Set("audio_route", cfg.AudioRoute)
	viper.Set("kvm_edge", cfg.KvmEdge)
	viper.Set("kvm_dead_zone_px", cfg.KvmDeadZonePx)
	viper.Set("kvm_edge_offset", cfg.KvmEdgeOffset)
	viper.Set("log_level", cfg.LogLevel)
	viper.Set("log_format", cfg.LogFormat)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		if dir := filepath.Dir(cfgPath); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "bridge.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MacWinBridge")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MacWinBridge")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "macwinbridge")
	}
}
