package integration

import (
	"net"
	"strings"
	"sync"
	"time"
)

// connReader accumulates everything received on a connection so assertions
// can tolerate TCP coalescing multiple relay payloads into one read.
type connReader struct {
	conn net.Conn

	mu  sync.Mutex
	buf strings.Builder
}

func newConnReader(conn net.Conn) *connReader {
	r := &connReader{conn: conn}
	go r.drain()
	return r
}

func (r *connReader) drain() {
	buf := make([]byte, 2048)
	for {
		if err := r.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}
		n, err := r.conn.Read(buf)
		if n > 0 {
			r.mu.Lock()
			r.buf.Write(buf[:n])
			r.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// waitFor polls the accumulated data for the given substring until the
// deadline passes.
func (r *connReader) waitFor(want string, deadline time.Time) bool {
	for time.Now().Before(deadline) {
		r.mu.Lock()
		found := strings.Contains(r.buf.String(), want)
		r.mu.Unlock()
		if found {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
