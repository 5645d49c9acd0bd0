// Package transport wraps a single net.Conn per logical Channel (Control,
// Video, Audio), serializing sends and running a dedicated receive loop that
// feeds a Messages() channel. One Channel corresponds to one TCP connection
// on one of the three fixed ports.
package transport

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lanternops/macwinbridge/internal/logging"
	"github.com/lanternops/macwinbridge/internal/protocol"
)

var log = logging.L("transport")

// Message is one decoded protocol message delivered on Messages().
type Message struct {
	Header  protocol.Header
	Payload []byte
}

// TransportError is the closed error kind for channel-level failures, as
// distinct from protocol framing errors.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Stats holds resettable per-channel counters.
type Stats struct {
	MessagesSent     atomic.Uint64
	MessagesReceived atomic.Uint64
	BytesSent        atomic.Uint64
	BytesReceived    atomic.Uint64
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.MessagesSent.Store(0)
	s.MessagesReceived.Store(0)
	s.BytesSent.Store(0)
	s.BytesReceived.Store(0)
}

// Channel wraps one net.Conn with message framing, a single-writer mutex,
// and a background receive loop.
type Channel struct {
	name string
	conn net.Conn

	sendMu sync.Mutex

	messages chan Message
	closed   atomic.Bool
	closeCh  chan struct{}
	closeOnce sync.Once
	wg       sync.WaitGroup

	Stats Stats

	onConnected    func()
	onDisconnected func(error)
}

// New wraps an already-established net.Conn as a named Channel and starts
// its receive loop. name is used only for logging (e.g. "control").
func New(name string, conn net.Conn) *Channel {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
		_ = tcp.SetKeepAlive(true)
		_ = tcp.SetKeepAlivePeriod(30 * time.Second)
	}

	c := &Channel{
		name:     name,
		conn:     conn,
		messages: make(chan Message, 64),
		closeCh:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.recvLoop()
	return c
}

// Dial connects to addr and wraps the connection as a Channel.
func Dial(name, addr string) (*Channel, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, &TransportError{Op: "dial " + name, Err: err}
	}
	return New(name, conn), nil
}

// DialWithRetry calls Dial up to maxAttempts times, sleeping delay between
// attempts, and returns the first Channel that connects.
func DialWithRetry(name, addr string, maxAttempts int, delay time.Duration) (*Channel, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ch, err := Dial(name, addr)
		if err == nil {
			return ch, nil
		}
		lastErr = err
		log.Warn("dial attempt failed", "channel", name, "attempt", attempt, "err", err)
		if attempt < maxAttempts {
			time.Sleep(delay)
		}
	}
	return nil, &TransportError{Op: "dial " + name + " (retry exhausted)", Err: lastErr}
}

// Listen accepts a single connection on addr and wraps it as a Channel. The
// companion side uses this: one listener per fixed port, one peer.
func Listen(name, addr string) (*Channel, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "listen " + name, Err: err}
	}
	defer l.Close()

	conn, err := l.Accept()
	if err != nil {
		return nil, &TransportError{Op: "accept " + name, Err: err}
	}
	return New(name, conn), nil
}

// OnConnected/OnDisconnected register lifecycle callbacks. OnDisconnected
// fires exactly once, when the receive loop observes the connection closing
// (EOF, read error, or explicit Close).
func (c *Channel) OnConnected(fn func())       { c.onConnected = fn }
func (c *Channel) OnDisconnected(fn func(error)) { c.onDisconnected = fn }

// Send encodes and writes one message, serialized against concurrent Sends
// through a single mutex so total order per channel is preserved regardless
// of which goroutine calls Send.
func (c *Channel) Send(t protocol.MessageType, flags protocol.MessageFlags, payload []byte) error {
	raw, err := protocol.Encode(t, flags, payload)
	if err != nil {
		return &TransportError{Op: "encode", Err: err}
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if _, err := c.conn.Write(raw); err != nil {
		return &TransportError{Op: "write " + c.name, Err: err}
	}
	c.Stats.MessagesSent.Add(1)
	c.Stats.BytesSent.Add(uint64(len(raw)))
	return nil
}

// Messages returns the channel of decoded messages fed by the receive loop.
// It is closed when the connection ends.
func (c *Channel) Messages() <-chan Message {
	return c.messages
}

// Close closes the underlying connection and stops the receive loop.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	c.wg.Wait()
	return err
}

func (c *Channel) recvLoop() {
	defer c.wg.Done()
	defer close(c.messages)

	if c.onConnected != nil {
		c.onConnected()
	}

	var endErr error
	for {
		h, payload, err := protocol.Decode(c.conn)
		if err != nil {
			endErr = err
			break
		}
		c.Stats.MessagesReceived.Add(1)
		c.Stats.BytesReceived.Add(uint64(protocol.HeaderSize + len(payload)))

		select {
		case c.messages <- Message{Header: h, Payload: payload}:
		case <-c.closeCh:
			return
		}
	}

	if c.closed.CompareAndSwap(false, true) {
		log.Debug("channel receive loop ended", "channel", c.name, "err", endErr)
		if c.onDisconnected != nil {
			c.onDisconnected(endErr)
		}
	}
}
