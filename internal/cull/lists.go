package cull

import "sync/atomic"

// VisibleList is a CPU stand-in for the GPU's atomicAdd-appended
// hw_visible_clusters/sw_visible_clusters storage buffers: a
// fixed-capacity slice plus an atomic write cursor. Writes past
// capacity are silently dropped, per spec.md §4.6/§7's documented
// overflow policy (scenario 6).
type VisibleList struct {
	slots   []uint32
	cursor  atomic.Uint32
}

// NewVisibleList allocates a list with fixed capacity, mirroring the
// build-time-sized GPU buffer (capacity = |clusters|, or a caller
// override for the overflow scenario).
func NewVisibleList(capacity uint32) *VisibleList {
	return &VisibleList{slots: make([]uint32, capacity)}
}

// Append attempts to write clusterIndex at the next slot. Returns
// false if capacity was already exhausted; the caller's increment of
// the corresponding draw/dispatch arg must only happen on success, to
// mirror the GPU's atomicAdd-then-bounds-check ordering.
func (l *VisibleList) Append(clusterIndex uint32) bool {
	slot := l.cursor.Add(1) - 1
	if slot >= uint32(len(l.slots)) {
		return false
	}
	l.slots[slot] = clusterIndex
	return true
}

// Count is the number of successful appends, saturating at capacity.
func (l *VisibleList) Count() uint32 {
	c := l.cursor.Load()
	if c > uint32(len(l.slots)) {
		return uint32(len(l.slots))
	}
	return c
}

// Reset zeroes the cursor for the next frame, matching spec.md §3's
// "cleared at the start of every frame" lifecycle for these buffers.
func (l *VisibleList) Reset() {
	l.cursor.Store(0)
}

// Slots returns the written prefix (bounded by capacity).
func (l *VisibleList) Slots() []uint32 {
	return l.slots[:l.Count()]
}
