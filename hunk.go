// hunk.go - single fixed-size bump/temp allocator (C1).
//
// Grounded on original_source/src/alloc.c: one contiguous byte region with
// a forward "bump" cursor and a reverse "temp" stack. bump_len + temp_len
// must never exceed the hunk size; exhaustion is a fatal, not a recoverable,
// error (spec.md §7) because these are programming errors, not runtime
// conditions a scene can recover from.

package pixelcore

import "log"

const (
	// DefaultHunkSize is the default total reserved byte count (spec.md §6).
	DefaultHunkSize = 32 * 1024 * 1024
	// DefaultMaxTempObjects is the default concurrent temp-allocation bound.
	DefaultMaxTempObjects = 8
)

// Mark is an opaque snapshot of the bump cursor, used to roll bump_alloc
// back to an earlier point (program/scene/frame scope discipline).
type Mark struct {
	bumpLen uint32
}

// TempHandle identifies a single temp allocation so it can be freed out of
// order. It carries its own offset rather than relying on pointer identity
// the way the C original does, since Go slices don't expose their backing
// offset for reverse lookup.
type TempHandle struct {
	offset uint32 // cumulative temp_len recorded at allocation time
	size   uint32
}

// Hunk is a single pre-sized byte region borrowed from by every longer-lived
// allocation in the engine. The hunk itself is process-lived; bytes it
// returns are borrowed by the caller until reset/free.
type Hunk struct {
	data []byte

	bumpLen uint32
	tempLen uint32

	tempObjects    [DefaultMaxTempObjects]uint32
	tempObjectsLen int

	maxTempObjects int
}

// NewHunk allocates a hunk of the given size. size and maxTempObjects of 0
// fall back to the spec.md §6 defaults.
func NewHunk(size int, maxTempObjects int) *Hunk {
	if size <= 0 {
		size = DefaultHunkSize
	}
	if maxTempObjects <= 0 {
		maxTempObjects = DefaultMaxTempObjects
	}
	if maxTempObjects > DefaultMaxTempObjects {
		maxTempObjects = DefaultMaxTempObjects
	}
	return &Hunk{
		data:           make([]byte, size),
		maxTempObjects: maxTempObjects,
	}
}

// Size returns the total hunk capacity in bytes.
func (h *Hunk) Size() int { return len(h.data) }

// BumpUsed returns the number of bytes currently claimed by the bump
// cursor, for debug_snapshot.go's arena occupancy report.
func (h *Hunk) BumpUsed() int { return int(h.bumpLen) }

// BumpMark snapshots the current bump cursor.
func (h *Hunk) BumpMark() Mark { return Mark{bumpLen: h.bumpLen} }

// BumpAlloc allocates n zero-initialized bytes from the low end of the hunk
// and advances the bump cursor. Fatal if the hunk would overflow.
func (h *Hunk) BumpAlloc(n uint32) []byte {
	if uint64(h.bumpLen)+uint64(h.tempLen)+uint64(n) >= uint64(len(h.data)) {
		log.Fatalf("pixelcore: failed to allocate %d bytes in hunk mem", n)
	}
	p := h.data[h.bumpLen : h.bumpLen+n]
	for i := range p {
		p[i] = 0
	}
	h.bumpLen += n
	return p
}

// BumpReset restores the bump cursor to a previously taken mark. This is a
// monotonic guarantee only: there is no validation that intervening
// allocations are unused by anyone still holding a reference to them.
func (h *Hunk) BumpReset(mark Mark) {
	if mark.bumpLen > uint32(len(h.data)) {
		log.Fatalf("pixelcore: invalid mem reset")
	}
	h.bumpLen = mark.bumpLen
}

// TempAlloc allocates n bytes (rounded up to a multiple of 8) from the high
// end of the hunk. Fatal if capacity or the temp-object table is exhausted.
func (h *Hunk) TempAlloc(n uint32) (TempHandle, []byte) {
	n = ((n + 7) >> 3) << 3
	if uint64(h.bumpLen)+uint64(h.tempLen)+uint64(n) >= uint64(len(h.data)) {
		log.Fatalf("pixelcore: failed to allocate %d bytes in temp mem", n)
	}
	if h.tempObjectsLen >= h.maxTempObjects {
		log.Fatalf("pixelcore: max temp objects reached")
	}
	h.tempLen += n
	start := uint32(len(h.data)) - h.tempLen
	h.tempObjects[h.tempObjectsLen] = h.tempLen
	h.tempObjectsLen++
	return TempHandle{offset: h.tempLen, size: n}, h.data[start : start+n]
}

// TempFree releases a temp allocation. After removal, the temp cursor is
// recomputed as the max over the remaining live offsets (so out-of-order
// freeing still preserves the true high-water mark). Fatal if the handle
// isn't a known temp object.
func (h *Hunk) TempFree(t TempHandle) {
	found := false
	var remainingMax uint32
	for i := 0; i < h.tempObjectsLen; i++ {
		if h.tempObjects[i] == t.offset {
			h.tempObjectsLen--
			h.tempObjects[i] = h.tempObjects[h.tempObjectsLen]
			i--
			found = true
			continue
		}
		if h.tempObjects[i] > remainingMax {
			remainingMax = h.tempObjects[i]
		}
	}
	if !found {
		log.Fatalf("pixelcore: temp object %v not known to hunk", t)
	}
	h.tempLen = remainingMax
}

// BumpFromTemp frees a temp block and then copies a subrange of it into a
// fresh bump allocation, "promoting" a sub-buffer without needing both
// regions materialized at once. The new allocation may overlap the freed
// temp bytes, so it is not zeroed first and the copy is overlap-safe.
func (h *Hunk) BumpFromTemp(t TempHandle, tempData []byte, off, n uint32) []byte {
	h.TempFree(t)
	if uint64(h.bumpLen)+uint64(h.tempLen)+uint64(n) >= uint64(len(h.data)) {
		log.Fatalf("pixelcore: failed to allocate %d bytes in hunk mem", n)
	}
	dst := h.data[h.bumpLen : h.bumpLen+n]
	copy(dst, tempData[off:off+n])
	h.bumpLen += n
	return dst
}

// TempAllocCheck is the end-of-frame assertion that temp is empty; fatal
// otherwise, since an unbalanced temp allocation is a programming error.
func (h *Hunk) TempAllocCheck() {
	if h.tempLen != 0 {
		log.Fatalf("pixelcore: temp memory not free: %d object(s)", h.tempObjectsLen)
	}
}
