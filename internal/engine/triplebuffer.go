package engine

import "sync/atomic"

// TripleBuffer is a wait-free single-writer/single-reader slot carrying a
// full snapshot of T. The control thread calls Write; the audio thread
// calls Read at most once per block. Neither side ever blocks the other.
//
// Three backing slots are rotated by index so a writer never touches the
// slot the reader is currently examining: one slot is "published" (visible
// to the reader), one is the reader's own last-read copy, and one is free
// for the next write. A single atomic word packs the published slot index
// plus a "new data" flag, so publication is one atomic store.
type TripleBuffer[T any] struct {
	slots     [3]T
	state     atomic.Uint32 // low 2 bits: published slot index; bit 2: new-data flag
	readSlot  atomic.Uint32 // slot the reader currently owns; read by the writer too
	writeSlot uint32        // writer-only, never touched by the reader
}

// NewTripleBuffer seeds all three slots with initial.
func NewTripleBuffer[T any](initial T) *TripleBuffer[T] {
	tb := &TripleBuffer[T]{
		slots:     [3]T{initial, initial, initial},
		writeSlot: 1,
	}
	tb.state.Store(0)
	tb.readSlot.Store(0)
	return tb
}

// Write stores a new snapshot and publishes it. Only the control thread may
// call this.
func (tb *TripleBuffer[T]) Write(v T) {
	tb.slots[tb.writeSlot] = v
	published := tb.writeSlot
	tb.state.Store(published | newDataFlag)

	// Pick the next free slot: anything that isn't the one we just
	// published and isn't the one the reader currently owns.
	reading := tb.readSlot.Load()
	for i := uint32(0); i < 3; i++ {
		if i != published && i != reading {
			tb.writeSlot = i
			break
		}
	}
}

const newDataFlag = 1 << 2

// Update checks for a new published snapshot and, if present, adopts it as
// the reader's current slot. Returns true if a fresh snapshot was adopted.
// Only the audio thread may call this.
func (tb *TripleBuffer[T]) Update() bool {
	s := tb.state.Load()
	if s&newDataFlag == 0 {
		return false
	}
	published := s &^ newDataFlag
	tb.state.Store(published) // clear the new-data flag, leave index as-is
	tb.readSlot.Store(published)
	return true
}

// Read returns the reader's current snapshot (the latest one adopted by
// Update, or the initial value if Update was never called).
func (tb *TripleBuffer[T]) Read() T {
	return tb.slots[tb.readSlot.Load()]
}
