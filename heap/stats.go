package heap

import (
	"fmt"
	"strings"
)

// Stats is the profiling facet: byte counters with peaks, call counters,
// and the traversal counters that expose free-list behavior (iterations
// per walk, skip-pointer hit rate).
type Stats struct {
	// HeapSize is the absolute capacity of the logical offset space.
	HeapSize uint64

	AllocatedBytes     uint64
	PeakAllocatedBytes uint64
	WasteBytes         uint64
	PeakWasteBytes     uint64

	AllocCount uint64
	FreeCount  uint64

	// List traversal counters, one increment per visited node.
	AllocIterations uint64
	FreeIterations  uint64

	// Free-insertion start point: searches begun at the skip pointer
	// versus at the list head.
	SkipCount    uint64
	NonskipCount uint64

	SegmentAllocations uint64

	// Typed usage breakdown maintained through RecordKindAlloc/Free.
	KindBytes     [kindCount]uint64
	PeakKindBytes [kindCount]uint64
}

// StatsSnapshot copies the current counter block.
func (h *Heap) StatsSnapshot() Stats {
	return h.stats
}

// BlocksSize returns the summed aligned size of live blocks.
func (h *Heap) BlocksSize() uint64 {
	return h.blocksSize
}

// AllocatedBlocks returns the number of live blocks.
func (h *Heap) AllocatedBlocks() uint64 {
	return h.allocatedBlocks
}

// HeapLimit returns the current soft trigger threshold.
func (h *Heap) HeapLimit() uint64 {
	return h.heapLimit
}

// AllocatedHeapSize returns the emulated external-allocator footprint
// (dynamic-emulation and system backends).
func (h *Heap) AllocatedHeapSize() uint64 {
	return h.allocatedHeapSize
}

// SystemMetadataSize returns the emulated per-block metadata total.
func (h *Heap) SystemMetadataSize() uint64 {
	return h.systemMetadataSize
}

// RecordKindAlloc attributes size bytes to a usage kind. Pure accounting;
// the engine layers call this next to their allocations.
func (h *Heap) RecordKindAlloc(k Kind, size int) {
	h.stats.KindBytes[k] += uint64(size)
	if h.stats.KindBytes[k] > h.stats.PeakKindBytes[k] {
		h.stats.PeakKindBytes[k] = h.stats.KindBytes[k]
	}
}

// RecordKindFree reverses RecordKindAlloc.
func (h *Heap) RecordKindFree(k Kind, size int) {
	h.stats.KindBytes[k] -= uint64(size)
}

func (s *Stats) noteAlloc(requested, aligned uint64) {
	s.AllocatedBytes += aligned
	s.WasteBytes += aligned - requested
	s.AllocCount++
	if s.AllocatedBytes > s.PeakAllocatedBytes {
		s.PeakAllocatedBytes = s.AllocatedBytes
	}
	if s.WasteBytes > s.PeakWasteBytes {
		s.PeakWasteBytes = s.WasteBytes
	}
}

func (s *Stats) noteFree(requested, aligned uint64) {
	s.FreeCount++
	s.AllocatedBytes -= aligned
	s.WasteBytes -= aligned - requested
}

// ratio formats a/b to four decimal places, tolerating a zero divisor.
func ratio(a, b uint64) string {
	if b == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d.%04d", a/b, a%b*10000/b)
}

// String renders the counter block as a multi-line report.
func (s Stats) String() string {
	var b strings.Builder
	b.WriteString("Heap stats:\n")
	fmt.Fprintf(&b, "  Heap size = %d bytes\n", s.HeapSize)
	fmt.Fprintf(&b, "  Allocated = %d bytes\n", s.AllocatedBytes)
	fmt.Fprintf(&b, "  Peak allocated = %d bytes\n", s.PeakAllocatedBytes)
	fmt.Fprintf(&b, "  Waste = %d bytes\n", s.WasteBytes)
	fmt.Fprintf(&b, "  Peak waste = %d bytes\n", s.PeakWasteBytes)
	for k := Kind(0); k < kindCount; k++ {
		fmt.Fprintf(&b, "  Allocated %s data = %d bytes\n", k, s.KindBytes[k])
		fmt.Fprintf(&b, "  Peak allocated %s data = %d bytes\n", k, s.PeakKindBytes[k])
	}
	fmt.Fprintf(&b, "  Skip-ahead ratio = %s\n", ratio(s.SkipCount, s.SkipCount+s.NonskipCount))
	fmt.Fprintf(&b, "  Average alloc iteration = %s\n", ratio(s.AllocIterations, s.AllocCount))
	fmt.Fprintf(&b, "  Average free iteration = %s\n", ratio(s.FreeIterations, s.FreeCount))
	return b.String()
}
