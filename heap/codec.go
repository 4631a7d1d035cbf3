package heap

import "unsafe"

// Offset codec. A compressed pointer is the distance from the heap base,
// which keeps intra-heap links representable in 32 bits on a 64-bit host.
// In segmented mode the logical offset space is SegmentSize*MaxSegments and
// a compressed offset identifies its owning segment by integer division.

// Decompress returns the live view starting at ref: a slice aliasing the
// heap area from ref to the end of the logical space. On the system backend
// compression is the identity and the block registered under ref is
// returned as-is.
func (h *Heap) Decompress(ref Ref) []byte {
	if h.cfg.Backend == BackendSystem {
		return h.sysBlocks[ref]
	}
	debugAssert(uint64(ref) < h.cfg.heapSize(), "decompress: offset outside heap")
	return h.area[ref:]
}

// Compress converts a block view previously produced by Alloc or
// Decompress back to its offset form. b must alias the heap area; on the
// system backend, where blocks live outside any area, Compress reports
// InvalidRef and callers are expected to keep the ref from Alloc.
func (h *Heap) Compress(b []byte) Ref {
	if h.cfg.Backend == BackendSystem {
		debugAssert(false, "compress: system backend has no offset space")
		return InvalidRef
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(h.area)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	debugAssert(p >= base && p-base < uintptr(len(h.area)), "compress: pointer outside heap")
	off := Ref(p - base)
	debugAssert(off%h.cfg.Alignment == 0, "compress: unaligned pointer")
	return off
}

// blockBytes returns the caller-owned view of an allocated block.
func (h *Heap) blockBytes(off, size uint32) []byte {
	return h.area[off : off+size : off+size]
}
