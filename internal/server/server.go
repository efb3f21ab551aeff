// Package server constructs and runs the TCP relay: the accept loop, the
// join path shared with the WebSocket gateway, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"time"
)

// Relay accepts client connections into pool slots and runs one session
// goroutine per connection. The accept loop never waits on a session and
// sessions never wait on the accept loop.
type Relay struct {
	pool    *Pool
	bufSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// joinMu orders Join against Shutdown: a join either completes its
	// WaitGroup registration before the shutdown signal or is refused.
	joinMu sync.Mutex
}

// NewRelay creates a relay over the given pool, reading client input in
// chunks of the configured buffer size.
func NewRelay(pool *Pool) *Relay {
	cfg := currentConfig()
	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		pool:    pool,
		bufSize: cfg.ReadBufferSize,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Pool returns the relay's slot pool.
func (r *Relay) Pool() *Pool {
	return r.pool
}

// Serve runs the accept loop until the listener fails or the relay shuts
// down. A single failed accept is logged and the loop continues; no slot is
// consumed because slots are only acquired after a successful accept. A
// listener closed outside of Shutdown is terminal and ends the loop with
// net.ErrClosed.
func (r *Relay) Serve(listener net.Listener) error {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-r.ctx.Done()
		if err := listener.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing listener: %v", err)
		}
	}()

	log.Printf("Relay listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-r.ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Printf("Accept failed: %v", err)
			// Transient failures such as fd exhaustion clear with time;
			// pause instead of hot-looping on the listener.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		addr := displayAddr(conn.RemoteAddr())
		log.Printf("Client connected: IPAddress(%s)", addr)
		r.Join(conn, addr)
	}
}

// Join binds a stream to a free slot and starts its session. It is the
// common entry for TCP connections and gateway-upgraded WebSocket streams.
// The attach can lose to a concurrent Join that grabbed the same empty slot,
// in which case the next slot is tried. A join racing Shutdown is refused:
// the stream is closed and nil is returned.
func (r *Relay) Join(stream io.ReadWriteCloser, addr string) *Slot {
	r.joinMu.Lock()
	defer r.joinMu.Unlock()

	if r.ctx.Err() != nil {
		log.Printf("Refusing client %s: relay is shutting down", addr)
		if err := stream.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing refused stream for %s: %v", addr, err)
		}
		return nil
	}

	var slot *Slot
	for {
		slot = r.pool.Acquire()
		if slot.Attach(stream, addr) {
			break
		}
	}
	log.Printf("Client %s assigned slot %d (pool size %d)", addr, slot.ID(), r.pool.Len())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		newSession(slot, r.pool, r.bufSize).run()
	}()
	return slot
}

// Shutdown closes every live connection and waits for session goroutines to
// finish, or until the timeout is reached.
func (r *Relay) Shutdown(timeout time.Duration) error {
	log.Println("Shutting down relay...")

	// Taking joinMu around the cancel means any in-flight Join has either
	// registered its session already or will observe the cancelled context.
	r.joinMu.Lock()
	r.cancel()
	r.joinMu.Unlock()

	r.pool.releaseAll()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Relay shutdown completed")
		return nil
	case <-time.After(timeout):
		log.Println("Relay shutdown timeout reached, some sessions may still be running")
		return context.DeadlineExceeded
	}
}

// displayAddr renders the remote endpoint as a dotted IPv4 address for
// logging, falling back to the transport's own formatting.
func displayAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		if ip4 := tcp.IP.To4(); ip4 != nil {
			return ip4.String()
		}
		return tcp.IP.String()
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}
