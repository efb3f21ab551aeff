// Package server implements slot management for client connections, providing
// the lockable per-connection state that the pool hands out and reuses.
package server

import (
	"errors"
	"io"
	"sync"
)

// ErrSlotEmpty is returned when a send is attempted on a slot that has no
// attached stream, typically because the peer disconnected between the
// membership check and the write.
var ErrSlotEmpty = errors.New("server: slot is empty")

// Slot represents one reusable unit of pool-managed connection state.
// Its id is assigned once when the pool creates the slot and never changes;
// the stream and address flip between empty and occupied as clients come
// and go. Occupancy is derived from the stream field alone so the two can
// never disagree.
type Slot struct {
	id uint32

	// mu guards stream and addr and is never held across a blocking I/O
	// call. wmu serializes writers on the attached stream; it is the only
	// lock held while a write blocks, so occupancy checks, Attach, and
	// Release never wait behind a slow consumer.
	mu     sync.Mutex
	wmu    sync.Mutex
	stream io.ReadWriteCloser
	addr   string
}

func newSlot(id uint32) *Slot {
	return &Slot{id: id}
}

// ID returns the slot's stable identity.
func (s *Slot) ID() uint32 {
	return s.id
}

// Occupied reports whether the slot currently holds a live stream.
func (s *Slot) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Addr returns the remote address captured when the slot was attached,
// or an empty string for an empty slot.
func (s *Slot) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Attach binds an accepted stream and its remote address to the slot,
// marking it occupied. It returns false if the slot is already occupied,
// which indicates a pool accounting bug rather than a runtime condition.
func (s *Slot) Attach(stream io.ReadWriteCloser, addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return false
	}
	s.stream = stream
	s.addr = addr
	return true
}

// Send writes the payload to the slot's stream. Writers to the same slot
// are serialized by the write lock; the state lock is taken only to read
// the stream field. A concurrent Release may close the stream mid-write,
// which surfaces as a write error and is treated like any other disconnect.
// Sends to an empty slot fail with ErrSlotEmpty.
func (s *Slot) Send(payload []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil {
		return ErrSlotEmpty
	}
	_, err := stream.Write(payload)
	return err
}

// Release marks the slot empty and closes its stream, making the slot
// eligible for reuse by the pool. The close happens outside the state lock
// and also unblocks any writer currently stuck on the stream. The close
// error is returned for logging but the slot is emptied regardless.
func (s *Slot) Release() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.addr = ""
	s.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Close()
}

// currentStream returns the attached stream for the handler's read loop.
// Reads must not hold the slot lock, otherwise a blocked read would stall
// every peer trying to forward to this slot.
func (s *Slot) currentStream() io.ReadWriteCloser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}
