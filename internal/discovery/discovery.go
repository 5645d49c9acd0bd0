// Package discovery implements the UDP broadcast locate-one-peer protocol on
// port 42099: a host broadcasts MACWINBRIDGE_DISCOVER and companions
// listening on that port reply MACWINBRIDGE_HERE[|name] directly to the
// sender.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/lanternops/macwinbridge/internal/logging"
)

var log = logging.L("discovery")

// Port is the fixed UDP port discovery operates on.
const Port = 42099

const (
	discoverMessage = "MACWINBRIDGE_DISCOVER"
	hereMessage     = "MACWINBRIDGE_HERE"
)

// Peer is a discovered companion.
type Peer struct {
	Name string
	Addr *net.UDPAddr
}

// Discover broadcasts a request on Port and collects HERE replies until ctx
// is done or timeout elapses, whichever comes first.
func Discover(ctx context.Context, timeout time.Duration) ([]Peer, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, fmt.Errorf("discovery: listen: %w", err)
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetControlMessage(ipv4.FlagDst, true); err != nil {
		log.Debug("set control message failed, continuing without it", "err", err)
	}

	broadcastAddr := &net.UDPAddr{IP: net.IPv4bcast, Port: Port}
	if _, err := conn.WriteToUDP([]byte(discoverMessage), broadcastAddr); err != nil {
		return nil, fmt.Errorf("discovery: broadcast: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("discovery: set deadline: %w", err)
	}

	var peers []Peer
	buf := make([]byte, 512)
	for {
		select {
		case <-ctx.Done():
			return peers, nil
		default:
		}

		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if isTimeout(err) {
				return peers, nil
			}
			return peers, fmt.Errorf("discovery: read: %w", err)
		}

		msg := string(buf[:n])
		if !strings.HasPrefix(msg, hereMessage) {
			continue
		}
		name := ""
		if idx := strings.IndexByte(msg, '|'); idx >= 0 {
			name = msg[idx+1:]
		}
		peers = append(peers, Peer{Name: name, Addr: addr})
	}
}

// Respond listens on Port and answers every MACWINBRIDGE_DISCOVER with
// MACWINBRIDGE_HERE|name until ctx is canceled. It runs until ctx.Done, so
// callers launch it as a goroutine.
func Respond(ctx context.Context, name string) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: Port})
	if err != nil {
		return fmt.Errorf("discovery: listen: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	reply := hereMessage
	if name != "" {
		reply += "|" + name
	}
	replyBytes := []byte(reply)

	buf := make([]byte, 512)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("discovery read failed", "err", err)
			continue
		}
		if string(buf[:n]) != discoverMessage {
			continue
		}
		if _, err := conn.WriteToUDP(replyBytes, addr); err != nil {
			log.Warn("discovery reply failed", "err", err)
		}
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
