// Package testhelpers provides common utilities and helper functions for
// testing the relay server.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests: starting a relay on a loopback listener, dialing
// TCP and WebSocket clients, and asserting on received payloads.
package testhelpers

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/gorelay/internal/server"
	"github.com/gorilla/websocket"
)

// ReadTimeout bounds every read performed by these helpers.
const ReadTimeout = 2 * time.Second

// StartRelay starts a relay with the given pool on an ephemeral loopback
// port and returns it with its dial address. The relay is shut down when
// the test finishes.
func StartRelay(t *testing.T, pool *server.Pool) (*server.Relay, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	relay := server.NewRelay(pool)
	go func() {
		if err := relay.Serve(listener); err != nil {
			t.Errorf("Serve returned %v", err)
		}
	}()

	t.Cleanup(func() {
		if err := relay.Shutdown(5 * time.Second); err != nil {
			t.Logf("Relay shutdown: %v", err)
		}
	})

	return relay, listener.Addr().String()
}

// ConnectClient dials the relay and consumes the greeting payload, returning
// a connection ready for chat traffic.
func ConnectClient(t *testing.T, addr string) net.Conn {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, ReadTimeout)
	if err != nil {
		t.Fatalf("Failed to dial relay at %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })

	if got := ReadText(t, conn); got != "Hello" {
		t.Fatalf("Expected greeting %q, got %q", "Hello", got)
	}
	return conn
}

// SendText writes one text chunk to the connection.
func SendText(t *testing.T, conn net.Conn, text string) {
	t.Helper()

	if err := conn.SetWriteDeadline(time.Now().Add(ReadTimeout)); err != nil {
		t.Fatalf("SetWriteDeadline failed: %v", err)
	}
	if _, err := conn.Write([]byte(text)); err != nil {
		t.Fatalf("Failed to send %q: %v", text, err)
	}
}

// ReadText reads one chunk from the connection and returns it as a string.
func ReadText(t *testing.T, conn net.Conn) string {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		t.Fatalf("SetReadDeadline failed: %v", err)
	}
	buf := make([]byte, 2048)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return string(buf[:n])
}

// ExpectText reads one chunk and fails the test if it differs from want.
func ExpectText(t *testing.T, conn net.Conn, want string) {
	t.Helper()

	if got := ReadText(t, conn); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// ExpectNoData asserts that nothing arrives on the connection within the
// given window.
func ExpectNoData(t *testing.T, conn net.Conn, window time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(window)); err != nil {
		t.Fatalf("SetReadDeadline failed: %v", err)
	}
	buf := make([]byte, 2048)
	if n, err := conn.Read(buf); err == nil {
		t.Errorf("Expected no data, received %q", string(buf[:n]))
	}
}

// ExpectClosed asserts that the connection yields EOF or a close error
// within the read timeout.
func ExpectClosed(t *testing.T, conn net.Conn) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		t.Fatalf("SetReadDeadline failed: %v", err)
	}
	buf := make([]byte, 2048)
	n, err := conn.Read(buf)
	if err == nil {
		t.Errorf("Expected closed connection, received %q", string(buf[:n]))
		return
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		t.Error("Expected closed connection, but read only timed out")
	}
}

// BuildWebSocketURL converts an httptest server URL into the ws:// URL of
// the gateway endpoint.
func BuildWebSocketURL(t *testing.T, httpURL string) string {
	t.Helper()

	if !strings.HasPrefix(httpURL, "http") {
		t.Fatalf("Unexpected test server URL: %s", httpURL)
	}
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
}

// DialWebSocket opens a gateway WebSocket connection with the given origin
// and consumes the greeting message.
func DialWebSocket(t *testing.T, wsURL, origin string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket at %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })

	if got := ReadWSText(t, conn); got != "Hello" {
		t.Fatalf("Expected greeting %q, got %q", "Hello", got)
	}
	return conn
}

// ReadWSText reads one text message from the WebSocket connection.
func ReadWSText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		t.Fatalf("SetReadDeadline failed: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	return string(payload)
}

// SendWSText writes one text message to the WebSocket connection.
func SendWSText(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()

	if err := conn.SetWriteDeadline(time.Now().Add(ReadTimeout)); err != nil {
		t.Fatalf("SetWriteDeadline failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		t.Fatalf("Failed to send %q: %v", text, err)
	}
}
