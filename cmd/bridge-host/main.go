// Command bridge-host runs on the Windows machine: it captures the local
// screen and audio, injects input the companion routes back, and exposes
// the KVM focus switch that lets the companion's mouse/keyboard take over
// when the cursor crosses the shared edge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lanternops/macwinbridge/internal/audio/capture"
	audiosender "github.com/lanternops/macwinbridge/internal/audio/sender"
	"github.com/lanternops/macwinbridge/internal/clipboard"
	"github.com/lanternops/macwinbridge/internal/config"
	"github.com/lanternops/macwinbridge/internal/discovery"
	"github.com/lanternops/macwinbridge/internal/hostinfo"
	"github.com/lanternops/macwinbridge/internal/kvm"
	"github.com/lanternops/macwinbridge/internal/kvm/inject"
	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/session"
	videocapture "github.com/lanternops/macwinbridge/internal/video/capture"
	videosender "github.com/lanternops/macwinbridge/internal/video/sender"
)

const version = "0.1.0"

var (
	cfgFile          string
	companionAddr    string
	disableDiscovery bool
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "bridge-host",
	Short: "macOS/Windows bridge — host side",
	Long:  "bridge-host runs on the Windows machine, streaming its screen and audio to a companion and accepting KVM control handoffs.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the companion and start streaming",
	Run: func(cmd *cobra.Command, args []string) {
		runHost()
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List companions visible on the local network",
	Run: func(cmd *cobra.Command, args []string) {
		runDiscover()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bridge-host v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: per-OS settings directory)")
	rootCmd.PersistentFlags().StringVar(&companionAddr, "companion", "", "companion host or IP (a port, if given, is ignored; channels use fixed ports), overrides config and discovery")
	rootCmd.PersistentFlags().BoolVar(&disableDiscovery, "no-discover", false, "skip LAN discovery, require --companion or a saved address")

	rootCmd.AddCommand(runCmd, discoverCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDiscover() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	peers, err := discovery.Discover(ctx, 3*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "discovery failed: %v\n", err)
		os.Exit(1)
	}
	if len(peers) == 0 {
		fmt.Println("no companions found")
		return
	}
	for _, p := range peers {
		fmt.Printf("%s\t%s\n", p.Name, p.Addr.IP)
	}
}

func runHost() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	log = logging.L("main")

	addr := resolveCompanionAddr(cfg)
	if addr == "" {
		fmt.Fprintln(os.Stderr, "no companion address: pass --companion, set companion_address in config, or enable discovery")
		os.Exit(1)
	}

	identity, err := hostinfo.Collect(context.Background(), hostinfo.PlatformWindows)
	if err != nil {
		log.Warn("host identity collection failed", "err", err)
		identity = hostinfo.Identity{DeviceName: "windows-host", Platform: hostinfo.PlatformWindows}
	}

	screenCapturer, err := videocapture.New(videocapture.DefaultConfig())
	if err != nil {
		log.Error("screen capture init failed", "err", err)
		os.Exit(1)
	}
	width, height, err := screenCapturer.Bounds()
	if err != nil {
		log.Error("screen bounds unavailable", "err", err)
		os.Exit(1)
	}

	audioCapturer := capture.New()

	sess := session.New(session.Pipelines{})
	if err := sess.DialHost(addr); err != nil {
		log.Error("connect failed", "err", err)
		os.Exit(1)
	}

	hsCtx, hsCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer hsCancel()
	hs := protocol.Handshake{
		AppVersion:    version,
		DeviceName:    identity.DeviceName,
		Platform:      identity.Platform,
		DisplayWidth:  width,
		DisplayHeight: height,
		SupportsAudio: true,
		SupportsInput: true,
	}
	companionHS, err := sess.HandshakeAsHost(hsCtx, hs)
	if err != nil {
		log.Error("handshake failed", "err", err)
		os.Exit(1)
	}
	log.Info("handshake complete", "companion", addr, "companionDevice", companionHS.DeviceName)

	kvmMachine := kvm.NewStateMachine(
		kvm.Rect{Right: width, Bottom: height},
		kvm.Rect{Right: companionHS.DisplayWidth, Bottom: companionHS.DisplayHeight},
		protocol.Edge(cfg.KvmEdge),
		cfg.KvmDeadZonePx,
		cfg.KvmEdgeOffset,
	)

	videoSndr := videosender.NewSender(sess.Video())
	audioSndr := audiosender.NewSender(sess.Audio(), protocol.AudioConfig{
		SampleRate:    cfg.AudioSampleRate,
		Channels:      cfg.AudioChannels,
		BitsPerSample: 16,
		BufferMs:      cfg.AudioBufferMs,
	})
	clipSyncer := clipboard.New(clipboard.NewPlatformProvider(), sess.Control())

	streamsVideo := cfg.DisplayMode == "stream"

	sess.SetPipelines(session.Pipelines{
		StartAudio: func() {
			audioSndr.Start()
			if err := audioCapturer.Start(audioSndr.OnChunk); err != nil {
				log.Warn("audio capture start failed, audio pipeline disabled", "err", err)
			}
			clipSyncer.Start()
		},
		StopAudio: func() {
			audioCapturer.Stop()
			audioSndr.Stop()
			clipSyncer.Stop()
		},
		StartVideo: func() {
			videoSndr.Start()
			go captureLoop(screenCapturer, videoSndr)
		},
		StopVideo: func() {
			videoSndr.Stop()
			screenCapturer.Close()
		},
		StartKVM: func() {
			log.Info("kvm focus state machine active")
			go controlLoop(sess, kvmMachine, clipSyncer, width, height)
		},
		StopKVM: func() {},
	})

	sess.Start(streamsVideo)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	sess.Stop()
}

func captureLoop(c videocapture.ScreenCapturer, sndr *videosender.Sender) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		frame, err := c.Capture()
		if err != nil {
			log.Warn("capture error", "err", err)
			continue
		}
		if frame == nil {
			continue
		}
		sndr.Submit(frame)
	}
}

// controlLoop dispatches inbound Control-channel messages: companion input
// events get injected locally, CursorReturn/KvmConfig drive the focus state
// machine, ClipboardSync is handed to the syncer, and Heartbeat feeds the
// session's missed-beat counter.
func controlLoop(sess *session.Session, kvmMachine *kvm.StateMachine, clipSyncer *clipboard.Syncer, width, height int) {
	injector := inject.New()
	hostRect := inject.Rect{Right: width, Bottom: height}

	for msg := range sess.Control().Messages() {
		switch msg.Header.Type {
		case protocol.TypeHeartbeat:
			sess.OnHeartbeat()
		case protocol.TypeClipboardSync:
			if err := clipSyncer.HandleClipboardSync(msg.Payload); err != nil {
				log.Warn("clipboard sync apply failed", "err", err)
			}
		case protocol.TypeCursorReturn:
			var p protocol.CursorReturnPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err != nil {
				log.Warn("malformed CursorReturn", "err", err)
				continue
			}
			kvmMachine.HandleCursorReturn(p)
		case protocol.TypeKvmConfig:
			var cfg protocol.KvmConfig
			if err := protocol.Unmarshal(msg.Payload, &cfg); err != nil {
				log.Warn("malformed KvmConfig", "err", err)
				continue
			}
			kvmMachine.Configure(cfg)
		case protocol.TypeMouseMove:
			var p protocol.MouseMovePayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventMouseMove, X: p.X, Y: p.Y}, hostRect)
			}
		case protocol.TypeMouseButton:
			var p protocol.MouseButtonPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventMouseButton, Button: p.Kind}, hostRect)
			}
		case protocol.TypeMouseScroll:
			var p protocol.MouseScrollPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventMouseScroll, DX: p.DX, DY: p.DY}, hostRect)
			}
		case protocol.TypeKeyDown:
			var p protocol.KeyEventPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventKeyDown, VKCode: p.VKCode}, hostRect)
			}
		case protocol.TypeKeyUp:
			var p protocol.KeyEventPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventKeyUp, VKCode: p.VKCode}, hostRect)
			}
		}
	}
}

func resolveCompanionAddr(cfg *config.Config) string {
	if companionAddr != "" {
		return companionAddr
	}
	if cfg.CompanionAddress != "" {
		return cfg.CompanionAddress
	}
	if !disableDiscovery && cfg.DiscoveryEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.DiscoveryTimeoutS)*time.Second)
		defer cancel()
		peers, err := discovery.Discover(ctx, time.Duration(cfg.DiscoveryTimeoutS)*time.Second)
		if err == nil && len(peers) > 0 {
			return peers[0].Addr.IP.String()
		}
	}
	return ""
}
