package heap

import (
	"fmt"
	"os"
)

// Segment table for the segmented backend. The free list treats the heap
// as one contiguous offset space; segments only carry the bookkeeping, so
// a single block may span several of them. Occupancy is attributed with
// the same fragment walk on the allocate and free paths, which keeps the
// sum-of-occupancy invariant equal to the live byte count by construction.

// segment holds the bookkeeping of one SegmentSize slice of the logical
// offset space. Its base is implicit: index * SegmentSize.
type segment struct {
	occupied uint32
	attached bool
}

// attachGroup marks count adjacent segments starting at start as backed.
func (h *Heap) attachGroup(start, count int) {
	for i := start; i < start+count; i++ {
		h.segments[i].attached = true
	}
	h.stats.SegmentAllocations++
}

// adjustOccupancy walks the [off, off+size) span in segment-sized
// fragments and applies each intersection length to the touched segment.
// Addressing is end-inclusive with the granule term carried consistently
// on both ends, matching the free-list's view of region extents.
func (h *Heap) adjustOccupancy(off, size uint32, add bool) {
	segSize := h.cfg.SegmentSize
	a := h.cfg.Alignment

	remaining := int64(size)
	blockEnd := off + size - a
	fragStart := off
	for remaining > 0 {
		sidx := fragStart / segSize
		segEnd := (sidx+1)*segSize - a
		fragEnd := blockEnd
		if fragEnd > segEnd {
			fragEnd = segEnd
		}
		n := fragEnd - fragStart + a

		seg := &h.segments[sidx]
		if add {
			seg.occupied += n
			debugAssert(seg.occupied <= segSize, "segment occupancy above capacity")
		} else {
			debugAssert(seg.occupied >= n, "segment occupancy underflow")
			seg.occupied -= n
		}
		remaining -= int64(n)
		fragStart = fragEnd + a
	}
}

// allocSegmentGroup attaches enough adjacent segments to cover an aligned
// request of need bytes and splices the fresh span into the free list.
// Reports false when no run of unattached segments is long enough.
func (h *Heap) allocSegmentGroup(need uint32) bool {
	if h.cfg.Backend != BackendSegmented {
		return false
	}
	segSize := h.cfg.SegmentSize
	count := int((need + segSize - 1) / segSize)

	start := -1
	run := 0
	for i := range h.segments {
		if h.segments[i].attached {
			run = 0
			continue
		}
		run++
		if run == count {
			start = i - count + 1
			break
		}
	}
	if start < 0 {
		return false
	}

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] attach segment group: start=%d count=%d need=%d\n",
			start, count, need)
	}

	h.attachGroup(start, count)
	base := uint32(start) * segSize
	h.insertFreeRegion(base, uint32(count)*segSize)
	return true
}

// releaseAllGroups detaches every segment at Close. The heap is empty at
// this point, so no live block can be stranded.
func (h *Heap) releaseAllGroups() {
	for i := range h.segments {
		debugAssert(h.segments[i].occupied == 0, "releasing occupied segment")
		h.segments[i].attached = false
	}
}

// AttachedSegments reports how many segments currently have backing, for
// the stats surface and tests.
func (h *Heap) AttachedSegments() int {
	n := 0
	for i := range h.segments {
		if h.segments[i].attached {
			n++
		}
	}
	return n
}

// SegmentOccupancy returns the occupied byte count of segment sidx.
func (h *Heap) SegmentOccupancy(sidx int) uint32 {
	return h.segments[sidx].occupied
}
