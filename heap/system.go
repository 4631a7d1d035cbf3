package heap

import "github.com/joshuapare/heapkit/internal/format"

// System-backend passthrough: every block is its own buffer from the
// general-purpose allocator. The free list, skip pointer, and segment
// table are inert; only the counters are maintained, modelling the
// per-block metadata and alignment of the external allocator.

func (h *Heap) systemAlloc(size int, isSmallBlock bool) (Ref, []byte) {
	_ = isSmallBlock // placement and accounting are uniform here

	buf := make([]byte, size)
	ref := h.sysNext
	h.sysNext++
	h.sysBlocks[ref] = buf

	footprint := format.AlignUp64(uint64(size)+h.cfg.SystemMetadataSize, h.cfg.SystemAlignment)
	h.blocksSize += uint64(size)
	h.allocatedHeapSize += footprint
	h.systemMetadataSize += h.cfg.SystemMetadataSize
	h.allocatedBlocks++

	h.stats.noteAlloc(uint64(size), uint64(size))
	return ref, buf
}

func (h *Heap) systemFree(ref Ref, size int, isSmallBlock bool) {
	_ = isSmallBlock

	debugAssert(size > 0, "free: zero size")
	if size <= 0 {
		return
	}
	buf, ok := h.sysBlocks[ref]
	debugAssert(ok, "free: unknown system block")
	debugAssert(len(buf) == size, "free: size does not match allocation")
	if !ok {
		return
	}
	delete(h.sysBlocks, ref)

	footprint := format.AlignUp64(uint64(size)+h.cfg.SystemMetadataSize, h.cfg.SystemAlignment)
	h.blocksSize -= uint64(size)
	h.allocatedHeapSize -= footprint
	h.systemMetadataSize -= h.cfg.SystemMetadataSize
	h.allocatedBlocks--

	h.stats.noteFree(uint64(size), uint64(size))
}
