// Package server implements the per-connection session handler that relays
// text between a client and its peers in the pool.
package server

import (
	"errors"
	"io"
	"log"
	"strings"
)

// session is the unit of work for one accepted connection. It greets the
// client, relays every inbound chunk as echo plus broadcast, and tears the
// slot down when the client disconnects or sends the terminate token.
type session struct {
	slot    *Slot
	pool    *Pool
	bufSize int
}

func newSession(slot *Slot, pool *Pool, bufSize int) *session {
	return &session{
		slot:    slot,
		pool:    pool,
		bufSize: bufSize,
	}
}

// run drives the session to completion and releases the slot on the way out.
// It is the body of the per-connection goroutine; a panic here is recovered
// so one broken session cannot take down the accept loop or its peers.
func (s *session) run() {
	addr := s.slot.Addr()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in session for %s (slot %d): %v", addr, s.slot.ID(), r)
		}
		if err := s.slot.Release(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing connection for %s (slot %d): %v", addr, s.slot.ID(), err)
		}
		log.Printf("Client %s disconnected, slot %d free", addr, s.slot.ID())
	}()

	if err := s.slot.Send([]byte(greetingPayload)); err != nil {
		log.Printf("Error greeting %s: %v", addr, err)
		return
	}

	s.relay(addr)
}

// relay runs the read loop. Reads happen outside the slot lock so peers can
// still forward to this slot while it is blocked waiting for input.
func (s *session) relay(addr string) {
	stream := s.slot.currentStream()
	if stream == nil {
		return
	}

	buf := make([]byte, s.bufSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			text := strings.ToValidUTF8(string(buf[:n]), "�")
			log.Printf("Received from %s (slot %d): %s", addr, s.slot.ID(), text)

			if strings.HasPrefix(text, terminateToken) {
				if err := s.slot.Send([]byte(farewellPayload)); err != nil {
					log.Printf("Error sending farewell to %s: %v", addr, err)
				}
				return
			}

			if !s.deliver(text) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !isExpectedCloseError(err) {
				log.Printf("Read error from %s (slot %d): %v", addr, s.slot.ID(), err)
			}
			return
		}
	}
}

// deliver echoes the text back to the sender and forwards it to every peer
// occupied at this moment. The echo comes first so the sender always sees
// its own message acknowledged before any peer delivery is attempted.
// It returns false when the echo fails, which counts as a disconnect.
func (s *session) deliver(text string) bool {
	payload := []byte(text)

	if err := s.slot.Send(payload); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error echoing to slot %d: %v", s.slot.ID(), err)
		}
		return false
	}

	for _, peer := range s.pool.Peers(s.slot.ID()) {
		if err := peer.Send(payload); err != nil {
			// A peer that disconnected between the membership query and
			// the write is skipped, not treated as a failure.
			if errors.Is(err, ErrSlotEmpty) || isExpectedCloseError(err) {
				continue
			}
			log.Printf("Error forwarding from slot %d to slot %d: %v", s.slot.ID(), peer.ID(), err)
			continue
		}
		log.Printf("Forwarded: slot %d -> slot %d: %s", s.slot.ID(), peer.ID(), text)
	}
	return true
}
