package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Consistency checker used by the debug build and the test harness. Each
// check corresponds to an invariant that must hold between public calls.

// checkConsistency walks the allocator state and returns the first
// violated invariant, or nil. It is linear in the free-list length and in
// the segment count.
func (h *Heap) checkConsistency() error {
	if h.cfg.Backend == BackendSystem {
		return nil
	}
	a := h.cfg.Alignment
	heapSize := h.cfg.heapSize()

	skipSeen := h.skip.head
	var prevOff uint32
	var prevSize uint32
	first := true
	var freeTotal uint64

	for off := h.firstNext; off != endOfList; {
		if uint64(off) >= heapSize {
			return fmt.Errorf("free region offset %d outside heap of %d", off, heapSize)
		}
		size := format.RegionSize(h.area, int(off))
		if size < a || !format.IsAligned(size, a) {
			return fmt.Errorf("free region at %d has bad size %d", off, size)
		}
		if !first {
			if off <= prevOff {
				return fmt.Errorf("free list not ascending: %d after %d", off, prevOff)
			}
			if prevOff+prevSize == off {
				return fmt.Errorf("adjacent free regions at %d and %d not coalesced", prevOff, off)
			}
		}
		if !h.skip.head && h.skip.off == off {
			skipSeen = true
		}
		freeTotal += uint64(size)
		prevOff, prevSize = off, size
		first = false
		off = format.RegionNext(h.area, int(off))
	}

	if !skipSeen {
		return fmt.Errorf("skip pointer %d not present in free list", h.skip.off)
	}
	if h.blocksSize > heapSize {
		return fmt.Errorf("live bytes %d exceed heap size %d", h.blocksSize, heapSize)
	}
	if h.heapLimit < h.cfg.DesiredLimit || h.heapLimit%h.cfg.DesiredLimit != 0 {
		return fmt.Errorf("heap limit %d is not a positive multiple of %d",
			h.heapLimit, h.cfg.DesiredLimit)
	}
	if h.heapLimit < h.blocksSize {
		return fmt.Errorf("heap limit %d below live bytes %d", h.heapLimit, h.blocksSize)
	}

	if h.cfg.Backend == BackendSegmented {
		var occupied uint64
		for i := range h.segments {
			seg := &h.segments[i]
			if seg.occupied > h.cfg.SegmentSize {
				return fmt.Errorf("segment %d occupancy %d above capacity", i, seg.occupied)
			}
			if !seg.attached && seg.occupied != 0 {
				return fmt.Errorf("detached segment %d has occupancy %d", i, seg.occupied)
			}
			occupied += uint64(seg.occupied)
		}
		// The reserved leading granule is attributed to no block, so the
		// occupancy sum tracks the live byte count exactly.
		if occupied != h.blocksSize {
			return fmt.Errorf("segment occupancy sum %d != live bytes %d", occupied, h.blocksSize)
		}
	}

	return nil
}

// mustBeConsistent panics on the first violated invariant. Debug builds
// run it after every mutating call.
func (h *Heap) mustBeConsistent() {
	if err := h.checkConsistency(); err != nil {
		panic("heap: " + err.Error())
	}
}
