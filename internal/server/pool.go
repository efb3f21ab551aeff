// Package server provides the connection pool that owns every slot for the
// lifetime of the process and resolves slot acquisition and peer lookups.
package server

import "sync"

// Pool is an append-only, never-shrinking collection of connection slots.
// Slots are held by pointer, so growth never invalidates references that
// handlers already hold to their own slot or to peers. The pool mutex guards
// only the backing slice; each slot carries its own lock for stream state.
type Pool struct {
	mu    sync.Mutex
	slots []*Slot
}

// NewPool creates a pool with the given number of empty slots, with ids
// assigned in creation order starting at zero. A non-positive size yields
// an empty pool that grows on first acquisition.
func NewPool(size int) *Pool {
	if size < 0 {
		size = 0
	}
	slots := make([]*Slot, 0, size)
	for i := 0; i < size; i++ {
		slots = append(slots, newSlot(uint32(i)))
	}
	return &Pool{slots: slots}
}

// Acquire returns the first empty slot in creation order, growing the pool
// by one slot with a fresh id when every existing slot is occupied. It never
// blocks and never fails. The occupancy scan runs against a copy of the
// slice so the pool mutex guards only structural growth.
func (p *Pool) Acquire() *Slot {
	for _, slot := range p.snapshot() {
		if !slot.Occupied() {
			return slot
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	slot := newSlot(uint32(len(p.slots)))
	p.slots = append(p.slots, slot)
	return slot
}

// Peers returns every occupied slot other than excludeID, in creation order,
// evaluated at call time. Occupancy is checked outside the pool mutex.
// Callers re-check occupancy per slot when forwarding since a peer can
// disconnect between the query and the write.
func (p *Pool) Peers(excludeID uint32) []*Slot {
	snapshot := p.snapshot()
	peers := make([]*Slot, 0, len(snapshot))
	for _, slot := range snapshot {
		if slot.ID() == excludeID {
			continue
		}
		if slot.Occupied() {
			peers = append(peers, slot)
		}
	}
	return peers
}

// Len returns the current number of slots, occupied or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// releaseAll closes every occupied slot, used during shutdown.
func (p *Pool) releaseAll() {
	for _, slot := range p.snapshot() {
		_ = slot.Release()
	}
}

// snapshot copies the backing slice under the pool mutex so callers can
// inspect slots without holding it.
func (p *Pool) snapshot() []*Slot {
	p.mu.Lock()
	defer p.mu.Unlock()

	slots := make([]*Slot, len(p.slots))
	copy(slots, p.slots)
	return slots
}
