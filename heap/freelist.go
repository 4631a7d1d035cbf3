package heap

import "github.com/joshuapare/heapkit/internal/format"

// The free list is a singly-linked list of free regions ordered by
// increasing offset, linked through compressed next offsets stored in the
// in-place region headers. The first granule of every free span is its
// header; handing a region to a caller overwrites the header by definition.
//
// Invariants (outside any operation):
//   - strictly ascending offsets, terminated by endOfList
//   - no two regions adjacent (coalescing)
//   - every region size a positive multiple of the granule
//   - skip is the head or a node present in the list

// nodeSize reads the region size at n. The sentinel head has size 0.
func (h *Heap) nodeSize(n node) uint32 {
	if n.head {
		return 0
	}
	return format.RegionSize(h.area, int(n.off))
}

// nodeNext reads the next offset at n.
func (h *Heap) nodeNext(n node) uint32 {
	if n.head {
		return h.firstNext
	}
	return format.RegionNext(h.area, int(n.off))
}

// setNodeNext rewrites the next offset at n.
func (h *Heap) setNodeNext(n node, next uint32) {
	if n.head {
		h.firstNext = next
		return
	}
	format.SetRegionNext(h.area, int(n.off), next)
}

// allocRegionFast takes the head region for a single-granule request. The
// caller guarantees the list is non-empty; any region satisfies one granule
// because no region is ever smaller.
func (h *Heap) allocRegionFast() uint32 {
	blockOff := h.firstNext
	size := format.RegionSize(h.area, int(blockOff))
	next := format.RegionNext(h.area, int(blockOff))
	h.stats.AllocIterations++

	a := h.cfg.Alignment
	if size == a {
		h.firstNext = next
	} else {
		// Shrink in place: advance the header one granule forward.
		remaining := blockOff + a
		format.PutRegionHeader(h.area, int(remaining), size-a, next)
		h.firstNext = remaining
	}

	// The consumed region may have been the cached skip node.
	if !h.skip.head && h.skip.off == blockOff {
		if h.firstNext == endOfList {
			h.skip = headNode
		} else {
			h.skip = node{off: h.firstNext}
		}
	}
	return blockOff
}

// allocRegionSlow walks the list first-fit for an aligned request of need
// bytes. On a match the region is split or unlinked and the predecessor
// becomes the new skip node. Reports false when no region is large enough.
func (h *Heap) allocRegionSlow(need uint32) (uint32, bool) {
	prev := headNode
	currentOff := h.firstNext

	for currentOff != endOfList {
		h.stats.AllocIterations++
		size := format.RegionSize(h.area, int(currentOff))
		next := format.RegionNext(h.area, int(currentOff))

		if size >= need {
			if size > need {
				// Leave the residual region after the match.
				remaining := currentOff + need
				format.PutRegionHeader(h.area, int(remaining), size-need, next)
				h.setNodeNext(prev, remaining)
			} else {
				// Exact fit: unlink.
				h.setNodeNext(prev, next)
			}
			h.skip = prev
			return currentOff, true
		}

		prev = node{off: currentOff}
		currentOff = next
	}
	return 0, false
}

// insertFreeRegion splices an aligned span back into the list at its
// sorted position, merging with the predecessor and successor when
// adjacent. Shared by the free path and by segment group attachment.
func (h *Heap) insertFreeRegion(off, aligned uint32) {
	// The skip shortcut is sound because the list is offset-sorted: any
	// node at a lower offset is a valid starting predecessor.
	prev := headNode
	if !h.skip.head && off > h.skip.off {
		prev = h.skip
		h.stats.SkipCount++
	} else {
		h.stats.NonskipCount++
	}

	for h.nodeNext(prev) < off {
		prev = node{off: h.nodeNext(prev)}
		h.stats.FreeIterations++
	}
	nextOff := h.nodeNext(prev)

	// Merge with the predecessor when it ends exactly at off.
	var block node
	if !prev.head && prev.off+h.nodeSize(prev) == off {
		format.SetRegionSize(h.area, int(prev.off), h.nodeSize(prev)+aligned)
		block = prev
	} else {
		format.PutRegionHeader(h.area, int(off), aligned, nextOff)
		h.setNodeNext(prev, off)
		block = node{off: off}
	}

	// Merge with the successor when the block ends exactly at it.
	if nextOff != endOfList && block.off+h.nodeSize(block) == nextOff {
		merged := h.nodeSize(block) + format.RegionSize(h.area, int(nextOff))
		next := format.RegionNext(h.area, int(nextOff))
		format.PutRegionHeader(h.area, int(block.off), merged, next)
	} else {
		h.setNodeNext(block, nextOff)
	}

	h.skip = prev
}
