// Package slidingwindow implements the generic fixed-capacity ring the
// reliable channel instantiates three times: the send queue, the
// sent-packet tracker, and the receive queue. Each slot is addressed by
// sequence mod capacity; a per-slot sequence stamp disambiguates slots
// that alias under the modulus.
package slidingwindow

import (
	"github.com/chewbranca/networkedphysics-gdc2015/internal/runtimex"
	"github.com/chewbranca/networkedphysics-gdc2015/internal/seqnum"
)

// Entry is the minimal shape a window slot payload must provide: its own
// 16-bit sequence number. Whether a slot holds live data is tracked by the
// Window itself.
type Entry interface {
	Sequence() uint16
}

// Window is a fixed-capacity ring of slots, generic over the entry
// payload type T. It performs no aging or eviction itself; callers decide
// when a slot should be reused.
type Window[T Entry] struct {
	capacity int
	slots    []T
	valid    []bool
}

// New returns a Window with the given capacity. capacity must be > 0.
func New[T Entry](capacity int) *Window[T] {
	if capacity <= 0 {
		panic("slidingwindow: capacity must be positive")
	}
	return &Window[T]{
		capacity: capacity,
		slots:    make([]T, capacity),
		valid:    make([]bool, capacity),
	}
}

// Capacity returns the window's fixed capacity.
func (w *Window[T]) Capacity() int {
	return w.capacity
}

func (w *Window[T]) index(s uint16) int {
	return int(s) % w.capacity
}

// HasSlotAvailable reports whether sequence s may be inserted: either the
// slot is empty, it already holds s (a re-insert), or the sequence it
// holds is strictly more than capacity behind s, so it falls fully
// outside any window that could still legitimately contain s. A ring of
// capacity N holds at most N distinct live sequences, so the entry
// exactly capacity behind s (s - capacity) is still live and must block
// the insert, not be treated as stale.
func (w *Window[T]) HasSlotAvailable(s uint16) bool {
	idx := w.index(s)
	if !w.valid[idx] {
		return true
	}
	existing := w.slots[idx].Sequence()
	if existing == s {
		return true
	}
	// existing is stale iff s - existing > capacity, i.e. existing is
	// less_than (s - capacity).
	boundary := s - uint16(w.capacity)
	return !seqnum.LessThan(s, boundary) && seqnum.LessThan(existing, boundary)
}

// Find returns the slot for sequence s and true, iff the slot is valid and
// its stored sequence equals s exactly — a non-empty slot may belong to a
// different sequence sharing the modular index.
func (w *Window[T]) Find(s uint16) (T, bool) {
	idx := w.index(s)
	if w.valid[idx] && w.slots[idx].Sequence() == s {
		return w.slots[idx], true
	}
	var zero T
	return zero, false
}

// Insert places entry at entry.Sequence() mod capacity, overwriting
// whatever was there. Returns false without modifying the window if
// HasSlotAvailable would be false for this sequence.
func (w *Window[T]) Insert(entry T) bool {
	s := entry.Sequence()
	if !w.HasSlotAvailable(s) {
		return false
	}
	idx := w.index(s)
	w.slots[idx] = entry
	w.valid[idx] = true
	return true
}

// Remove invalidates the slot for sequence s, iff it currently holds s.
// Returns true if a slot was actually cleared.
func (w *Window[T]) Remove(s uint16) bool {
	idx := w.index(s)
	if w.valid[idx] && w.slots[idx].Sequence() == s {
		w.valid[idx] = false
		var zero T
		w.slots[idx] = zero
		return true
	}
	return false
}

// Valid reports whether the slot for sequence s is currently occupied by
// an entry stamped with exactly s.
func (w *Window[T]) Valid(s uint16) bool {
	_, ok := w.Find(s)
	return ok
}

// Each calls f for every currently valid slot, in arbitrary index order.
func (w *Window[T]) Each(f func(entry T)) {
	for i, ok := range w.valid {
		if ok {
			f(w.slots[i])
		}
	}
}

// InsertFast places a freshly constructed entry (via zero) at s mod
// capacity, overwriting whatever was there unconditionally, and returns
// it. Unlike Insert, it does not check HasSlotAvailable: callers that
// already scanned for the oldest id (GetData step 4, sent-packet
// recording) know the slot is fair game. zero must return an entry whose
// Sequence() is s.
func (w *Window[T]) InsertFast(s uint16, zero func(s uint16) T) T {
	idx := w.index(s)
	entry := zero(s)
	runtimex.Assert(entry.Sequence() == s, "slidingwindow: zero constructor stamped the wrong sequence")
	w.slots[idx] = entry
	w.valid[idx] = true
	return entry
}
