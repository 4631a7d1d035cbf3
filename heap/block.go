package heap

import "github.com/joshuapare/heapkit/internal/format"

// Block allocator: aligns requests, dispatches the fast or slow list path,
// and keeps the global and per-segment accounting in step with the list.

// allocBlock services one aligned attempt against the free list. It
// reports false when no region fits; the retry ladder above decides what
// happens next. The soft limit is ratcheted up after every attempt so it
// always stays above the live byte count.
func (h *Heap) allocBlock(size int, isSmallBlock bool) (uint32, bool) {
	required := format.AlignUp(uint32(size), h.cfg.Alignment)

	var off uint32
	ok := false
	if required == h.cfg.Alignment && h.firstNext != endOfList {
		off = h.allocRegionFast()
		ok = true
	} else {
		off, ok = h.allocRegionSlow(required)
	}

	if ok {
		h.blocksSize += uint64(required)
		h.allocatedBlocks++
		if h.cfg.Backend == BackendSegmented {
			h.adjustOccupancy(off, required, true)
		}
		if h.cfg.Backend == BackendDynamicEmulation && !(h.cfg.SlabSmallBlocks && isSmallBlock) {
			h.allocatedHeapSize += uint64(required)
			h.systemMetadataSize += h.cfg.SystemMetadataSize
		}
	}

	for h.blocksSize >= h.heapLimit {
		h.heapLimit += h.cfg.DesiredLimit
	}

	if ok {
		h.stats.noteAlloc(uint64(size), uint64(required))
	}
	return off, ok
}

// freeBlock returns a block to the list and reverses the accounting done
// by allocBlock. The supplied size must match the size used at allocation;
// callers are trusted to track it, debug builds assert.
func (h *Heap) freeBlock(ref Ref, size int, isSmallBlock bool) {
	debugAssert(size > 0, "free: zero size")
	debugAssert(h.IsHeapRef(ref), "free: pointer outside heap")
	debugAssert(h.heapLimit >= h.blocksSize, "free: limit below live bytes")
	if size <= 0 {
		return
	}

	aligned := format.AlignUp(uint32(size), h.cfg.Alignment)
	h.stats.FreeIterations++
	h.insertFreeRegion(ref, aligned)

	if h.cfg.Backend == BackendSegmented {
		h.adjustOccupancy(ref, aligned, false)
	}

	h.blocksSize -= uint64(aligned)
	h.allocatedBlocks--
	if h.cfg.Backend == BackendDynamicEmulation && !(h.cfg.SlabSmallBlocks && isSmallBlock) {
		h.allocatedHeapSize -= uint64(aligned)
		h.systemMetadataSize -= h.cfg.SystemMetadataSize
	}

	// Lower the soft limit while a full step of slack remains. The guard
	// is asymmetric with the raise on purpose: the limit may stay a step
	// high after a burst but never drops below the live byte count, nor
	// below one step.
	for h.blocksSize+h.cfg.DesiredLimit <= h.heapLimit && h.heapLimit > h.cfg.DesiredLimit {
		h.heapLimit -= h.cfg.DesiredLimit
	}

	h.stats.noteFree(uint64(size), uint64(aligned))
	if debugChecks {
		h.mustBeConsistent()
	}
}
