package transport

import (
	"net"
	"testing"
	"time"

	"github.com/lanternops/macwinbridge/internal/protocol"
)

func TestChannelSendRecv(t *testing.T) {
	serverConn, clientConn := createSocketPair(t)

	server := New("control", serverConn)
	client := New("control", clientConn)
	defer server.Close()
	defer client.Close()

	if err := client.Send(protocol.TypeHeartbeat, protocol.FlagPriority, []byte("ping")); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-server.Messages():
		if msg.Header.Type != protocol.TypeHeartbeat {
			t.Errorf("expected Heartbeat, got %s", msg.Header.Type)
		}
		if string(msg.Payload) != "ping" {
			t.Errorf("expected payload ping, got %q", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	if server.Stats.MessagesReceived.Load() != 1 {
		t.Errorf("expected 1 message received, got %d", server.Stats.MessagesReceived.Load())
	}
	if client.Stats.MessagesSent.Load() != 1 {
		t.Errorf("expected 1 message sent, got %d", client.Stats.MessagesSent.Load())
	}
}

func TestChannelDisconnectCallback(t *testing.T) {
	serverConn, clientConn := createSocketPair(t)
	server := New("video", serverConn)
	client := New("video", clientConn)
	defer client.Close()

	done := make(chan struct{})
	server.OnDisconnected(func(err error) {
		close(done)
	})

	client.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnect callback")
	}
}

func TestChannelMessagesClosedOnClose(t *testing.T) {
	serverConn, clientConn := createSocketPair(t)
	server := New("audio", serverConn)
	client := New("audio", clientConn)

	client.Close()
	server.Close()

	_, ok := <-server.Messages()
	if ok {
		t.Fatal("expected Messages() channel to be closed")
	}
}

func createSocketPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	clientCh := make(chan net.Conn, 1)
	go func() {
		conn, err := net.Dial("tcp", listener.Addr().String())
		if err != nil {
			t.Errorf("dial: %v", err)
			return
		}
		clientCh <- conn
	}()

	serverConn, err := listener.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	clientConn := <-clientCh
	return serverConn, clientConn
}
