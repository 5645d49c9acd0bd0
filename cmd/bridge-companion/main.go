// Command bridge-companion runs on the macOS machine: it receives the
// host's screen and audio, presents the KVM edge-crossing hotspot, and
// routes local input back to the host when focus is handed over.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lanternops/macwinbridge/internal/audio/output"
	audioplayer "github.com/lanternops/macwinbridge/internal/audio/player"
	"github.com/lanternops/macwinbridge/internal/clipboard"
	"github.com/lanternops/macwinbridge/internal/config"
	"github.com/lanternops/macwinbridge/internal/discovery"
	"github.com/lanternops/macwinbridge/internal/hostinfo"
	"github.com/lanternops/macwinbridge/internal/kvm"
	"github.com/lanternops/macwinbridge/internal/kvm/inject"
	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
	"github.com/lanternops/macwinbridge/internal/session"
	videoreceiver "github.com/lanternops/macwinbridge/internal/video/receiver"
)

const version = "0.1.0"

var (
	cfgFile  string
	bindAddr string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "bridge-companion",
	Short: "macOS/Windows bridge — companion side",
	Long:  "bridge-companion runs on the macOS machine, receiving the host's screen and audio and accepting KVM control handoffs.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Listen for a host and start receiving",
	Run: func(cmd *cobra.Command, args []string) {
		runCompanion()
	},
}

var advertiseCmd = &cobra.Command{
	Use:   "advertise",
	Short: "Respond to LAN discovery requests so hosts can find this companion",
	Run: func(cmd *cobra.Command, args []string) {
		runAdvertise()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bridge-companion v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: per-OS settings directory)")
	rootCmd.PersistentFlags().StringVar(&bindAddr, "bind", "0.0.0.0", "address to bind the three channel listeners on")

	rootCmd.AddCommand(runCmd, advertiseCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAdvertise() {
	identity, err := hostinfo.Collect(context.Background(), hostinfo.PlatformMacOS)
	if err != nil {
		identity = hostinfo.Identity{DeviceName: "mac-companion"}
	}
	fmt.Printf("advertising as %q, Ctrl-C to stop\n", identity.DeviceName)
	if err := discovery.Respond(context.Background(), identity.DeviceName); err != nil {
		fmt.Fprintf(os.Stderr, "advertise failed: %v\n", err)
		os.Exit(1)
	}
}

func runCompanion() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	log = logging.L("main")

	identity, err := hostinfo.Collect(context.Background(), hostinfo.PlatformMacOS)
	if err != nil {
		log.Warn("companion identity collection failed", "err", err)
		identity = hostinfo.Identity{DeviceName: "mac-companion", Platform: hostinfo.PlatformMacOS}
	}

	sess := session.New(session.Pipelines{})
	if err := sess.ListenCompanion(bindAddr); err != nil {
		log.Error("listen failed", "err", err)
		os.Exit(1)
	}

	// Companion's own display dimensions would normally come from the
	// local display query; Bounds() isn't wired to a real capturer on this
	// side since the companion doesn't stream its own screen, so a fixed
	// rect stands in; it is sent in the HandshakeAck and used unchanged for
	// KVM coordinate mapping and input injection.
	const companionWidth, companionHeight = 2560, 1440

	hsCtx, hsCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer hsCancel()
	hostHS, err := sess.HandshakeAsCompanion(hsCtx, protocol.Handshake{
		AppVersion:    version,
		DeviceName:    identity.DeviceName,
		Platform:      identity.Platform,
		DisplayWidth:  companionWidth,
		DisplayHeight: companionHeight,
		SupportsAudio: true,
		SupportsInput: true,
	})
	if err != nil {
		log.Error("handshake failed", "err", err)
		os.Exit(1)
	}
	log.Info("handshake complete", "host", hostHS.DeviceName)

	kvmMachine := kvm.NewStateMachine(
		kvm.Rect{Right: hostHS.DisplayWidth, Bottom: hostHS.DisplayHeight},
		kvm.Rect{Right: companionWidth, Bottom: companionHeight},
		protocol.Edge(cfg.KvmEdge),
		cfg.KvmDeadZonePx,
		cfg.KvmEdgeOffset,
	)
	kvmMachine.InjectMouseMove = func(x, y int) {
		_ = inject.New().Inject(inject.Event{Kind: inject.EventMouseMove, X: x, Y: y}, inject.Rect{Right: companionWidth, Bottom: companionHeight})
	}

	videoMode := videoreceiver.ModeRaw
	if (protocol.VideoConfig{Codec: protocol.VideoCodec(cfg.VideoCodec)}).IsEncoded() {
		videoMode = videoreceiver.ModeEncoded
	}
	videoRecv := videoreceiver.New(videoMode, videoreceiver.LoggingRenderer{}, videoreceiver.LoggingRenderer{})
	audioBuf := audioplayer.New(protocol.AudioConfig{
		SampleRate:    cfg.AudioSampleRate,
		Channels:      cfg.AudioChannels,
		BitsPerSample: 16,
		BufferMs:      cfg.AudioBufferMs,
	}, output.New())
	clipSyncer := clipboard.New(clipboard.NewPlatformProvider(), sess.Control())

	sess.SetPipelines(session.Pipelines{
		StartAudio: func() {
			clipSyncer.Start()
			go audioLoop(sess, audioBuf)
			go videoLoop(sess, videoRecv)
		},
		StopAudio: func() { clipSyncer.Stop() },
		StartVideo: func() {},
		StopVideo:  func() {},
		StartKVM: func() {
			log.Info("kvm focus receiver active")
			go controlLoop(sess, kvmMachine, clipSyncer, companionWidth, companionHeight)
		},
		StopKVM: func() {},
	})

	sess.Start(false) // the companion never streams its own screen to the host

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	sess.Stop()
}

func videoLoop(sess *session.Session, recv *videoreceiver.Receiver) {
	for msg := range sess.Video().Messages() {
		if msg.Header.Type != protocol.TypeVideoFrame {
			continue
		}
		if err := recv.HandleVideoFrame(msg.Payload, msg.Header.Flags); err != nil {
			log.Warn("video frame handling failed", "err", err)
		}
	}
}

func audioLoop(sess *session.Session, audioBuf *audioplayer.Buffer) {
	for msg := range sess.Audio().Messages() {
		switch msg.Header.Type {
		case protocol.TypeAudioData:
			if err := audioBuf.HandleAudioData(msg.Payload); err != nil {
				log.Warn("audio data handling failed", "err", err)
			}
		case protocol.TypeAudioControl:
			var ctrl protocol.AudioControl
			if err := protocol.Unmarshal(msg.Payload, &ctrl); err != nil {
				log.Warn("malformed AudioControl", "err", err)
				continue
			}
			audioBuf.SetRoute(ctrl.Route)
		}
	}
}

// controlLoop dispatches inbound Control-channel messages: forwarded
// mouse/keyboard events get injected locally while focus is Companion,
// ClipboardSync is handed to the syncer, KvmConfig updates tuning, and
// Heartbeat feeds the session's missed-beat counter.
func controlLoop(sess *session.Session, kvmMachine *kvm.StateMachine, clipSyncer *clipboard.Syncer, width, height int) {
	injector := inject.New()
	companionRect := inject.Rect{Right: width, Bottom: height}

	for msg := range sess.Control().Messages() {
		switch msg.Header.Type {
		case protocol.TypeHeartbeat:
			sess.OnHeartbeat()
		case protocol.TypeClipboardSync:
			if err := clipSyncer.HandleClipboardSync(msg.Payload); err != nil {
				log.Warn("clipboard sync apply failed", "err", err)
			}
		case protocol.TypeKvmConfig:
			var cfg protocol.KvmConfig
			if err := protocol.Unmarshal(msg.Payload, &cfg); err == nil {
				kvmMachine.Configure(cfg)
			}
		case protocol.TypeMouseMove:
			var p protocol.MouseMovePayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventMouseMove, X: p.X, Y: p.Y}, companionRect)
			}
		case protocol.TypeMouseButton:
			var p protocol.MouseButtonPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventMouseButton, Button: p.Kind}, companionRect)
			}
		case protocol.TypeMouseScroll:
			var p protocol.MouseScrollPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventMouseScroll, DX: p.DX, DY: p.DY}, companionRect)
			}
		case protocol.TypeKeyDown:
			var p protocol.KeyEventPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventKeyDown, VKCode: p.VKCode}, companionRect)
			}
		case protocol.TypeKeyUp:
			var p protocol.KeyEventPayload
			if err := protocol.Unmarshal(msg.Payload, &p); err == nil {
				_ = injector.Inject(inject.Event{Kind: inject.EventKeyUp, VKCode: p.VKCode}, companionRect)
			}
		case protocol.TypeCursorReturn:
			// companion originates CursorReturn, doesn't receive it; ignore
			// defensively if a malformed peer sends one back.
		}
	}
}
