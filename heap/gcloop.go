package heap

import "github.com/joshuapare/heapkit/internal/format"

// Allocation entry points. Every path funnels through gcAndAlloc, which
// owns the retry ladder: budget check, optional pre-pass, first attempt,
// segment expansion, severity escalation, final expansion, then either a
// nil result or process termination.

// Alloc allocates size bytes, running the reclamation ladder when the heap
// is under pressure. On exhaustion the process terminates with
// ExitOutOfMemory. A zero size yields no block.
func (h *Heap) Alloc(size int) (Ref, []byte) {
	return h.gcAndAlloc(size, false, false)
}

// TryAlloc is Alloc returning (InvalidRef, nil) instead of terminating
// when the heap is exhausted.
func (h *Heap) TryAlloc(size int) (Ref, []byte) {
	return h.gcAndAlloc(size, true, false)
}

// AllocSmall is Alloc for small engine objects. The small-block tag only
// affects the emulated external-allocator accounting when the slab option
// is on; placement is identical to Alloc.
func (h *Heap) AllocSmall(size int) (Ref, []byte) {
	return h.gcAndAlloc(size, false, true)
}

// Free returns a block to the heap. size must be the size passed to the
// allocation that produced ref.
func (h *Heap) Free(ref Ref, size int) {
	if h.cfg.Backend == BackendSystem {
		h.systemFree(ref, size, false)
		return
	}
	h.freeBlock(ref, size, false)
}

// FreeSmall is Free for blocks obtained through AllocSmall.
func (h *Heap) FreeSmall(ref Ref, size int) {
	if h.cfg.Backend == BackendSystem {
		h.systemFree(ref, size, true)
		return
	}
	h.freeBlock(ref, size, true)
}

func (h *Heap) gcAndAlloc(size int, retNilOnError, isSmallBlock bool) (Ref, []byte) {
	if size <= 0 || size > maxBlockSize {
		return InvalidRef, nil
	}
	if h.cfg.Backend == BackendSystem {
		return h.systemAlloc(size, isSmallBlock)
	}

	// The reclamation callback may free blocks but must not allocate;
	// reentering here while a ladder is in flight is a caller bug.
	debugAssert(!h.insideAlloc, "alloc reentered from reclamation callback")
	h.insideAlloc = true
	defer func() { h.insideAlloc = false }()

	aligned := uint64(format.AlignUp(uint32(size), h.cfg.Alignment))

	if h.cfg.PreGCEachAlloc {
		h.runGC(SeverityHigh)
	}

	// Budget: the projected post-allocation total. The dynamic-emulation
	// backend budgets the emulated external-allocator footprint instead
	// of the live byte count, with the slab exemption for small blocks.
	var budget uint64
	if h.cfg.Backend == BackendDynamicEmulation {
		budget = h.allocatedHeapSize + aligned
		if h.cfg.SlabSmallBlocks && isSmallBlock {
			budget -= aligned
		}
	} else {
		budget = h.blocksSize + aligned
	}

	if h.cfg.LazyGC {
		if budget > h.cfg.heapSize() {
			h.runGC(SeverityLow)
		}
	} else if budget > h.heapLimit {
		h.runGC(SeverityLow)
	}

	if off, ok := h.allocBlock(size, isSmallBlock); ok {
		return h.finishAlloc(off, uint32(aligned))
	}

	// Expansion before escalation: a fresh segment group is cheaper than
	// a higher-severity collection.
	if h.allocSegmentGroup(uint32(aligned)) {
		if off, ok := h.allocBlock(size, isSmallBlock); ok {
			return h.finishAlloc(off, uint32(aligned))
		}
	}

	for severity := SeverityLow; severity <= SeverityHigh; severity++ {
		h.runGC(severity)
		if off, ok := h.allocBlock(size, isSmallBlock); ok {
			return h.finishAlloc(off, uint32(aligned))
		}
	}

	if h.allocSegmentGroup(uint32(aligned)) {
		if off, ok := h.allocBlock(size, isSmallBlock); ok {
			return h.finishAlloc(off, uint32(aligned))
		}
	}

	if retNilOnError {
		return InvalidRef, nil
	}
	h.fatalOutOfMemory()
	return InvalidRef, nil
}

func (h *Heap) finishAlloc(off, aligned uint32) (Ref, []byte) {
	debugAssert(format.IsAligned(off, h.cfg.Alignment), "alloc returned unaligned block")
	if debugChecks {
		h.mustBeConsistent()
	}
	return off, h.blockBytes(off, aligned)
}
