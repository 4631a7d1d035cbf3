package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// Shared helpers for the allocator tests. Tests live in this package so
// they can reach the list internals the public surface hides.

// regionSpan is one free region as seen by a list walk.
type regionSpan struct {
	off  uint32
	size uint32
}

// listRegions walks the free list and returns every region in order.
func listRegions(h *Heap) []regionSpan {
	var spans []regionSpan
	for off := h.firstNext; off != endOfList; {
		size := format.RegionSize(h.area, int(off))
		spans = append(spans, regionSpan{off: off, size: size})
		off = format.RegionNext(h.area, int(off))
	}
	return spans
}

// newTestHeap creates a heap and closes it at cleanup when the test left
// it empty.
func newTestHeap(t *testing.T, cfg Config) *Heap {
	t.Helper()
	h, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = h.Close()
	})
	return h
}

// staticConfig is a small static heap with an 8-byte granule and a limit
// step large enough not to interfere unless a test wants it to.
func staticConfig(areaSize uint32) Config {
	cfg := DefaultConfig
	cfg.Backend = BackendStatic
	cfg.AreaSize = areaSize
	cfg.DesiredLimit = 1024
	return cfg
}

// segmentedConfig is a segmented heap of count segments of segSize bytes.
func segmentedConfig(segSize uint32, count int) Config {
	cfg := DefaultConfig
	cfg.Backend = BackendSegmented
	cfg.SegmentSize = segSize
	cfg.MaxSegments = count
	cfg.DesiredLimit = 1024
	return cfg
}

// requireConsistent fails the test on the first violated heap invariant.
func requireConsistent(t *testing.T, h *Heap) {
	t.Helper()
	require.NoError(t, h.checkConsistency())
}
