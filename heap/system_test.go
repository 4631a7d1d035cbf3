package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func systemConfig() Config {
	cfg := DefaultConfig
	cfg.Backend = BackendSystem
	cfg.SystemMetadataSize = 16
	cfg.SystemAlignment = 16
	return cfg
}

// Test_SystemPassthrough covers the delegating backend: blocks come from
// the general-purpose allocator, counters model its footprint, and the
// free list stays inert.
func Test_SystemPassthrough(t *testing.T) {
	h := newTestHeap(t, systemConfig())

	ref, buf := h.Alloc(100)
	require.Len(t, buf, 100)
	require.Equal(t, uint64(100), h.BlocksSize())
	// 100 + 16 metadata, rounded to the 16-byte system granule.
	require.Equal(t, uint64(128), h.AllocatedHeapSize())
	require.Equal(t, uint64(16), h.SystemMetadataSize())
	require.Equal(t, uint64(1), h.AllocatedBlocks())

	h.Free(ref, 100)
	require.Zero(t, h.BlocksSize())
	require.Zero(t, h.AllocatedHeapSize())
	require.Zero(t, h.SystemMetadataSize())
	require.Zero(t, h.AllocatedBlocks())
}

// Test_SystemRefsAreStable verifies each block keeps its identity until
// freed and Decompress returns the registered buffer.
func Test_SystemRefsAreStable(t *testing.T) {
	h := newTestHeap(t, systemConfig())

	refA, bufA := h.Alloc(8)
	refB, bufB := h.Alloc(8)
	require.NotEqual(t, refA, refB)

	bufA[0] = 1
	bufB[0] = 2
	require.Equal(t, byte(1), h.Decompress(refA)[0])
	require.Equal(t, byte(2), h.Decompress(refB)[0])

	require.True(t, h.IsHeapRef(refA))
	h.Free(refA, 8)
	require.False(t, h.IsHeapRef(refA))
	h.Free(refB, 8)
}

// Test_SystemNoGCLadder verifies the passthrough never consults the
// reclamation callback.
func Test_SystemNoGCLadder(t *testing.T) {
	h := newTestHeap(t, systemConfig())

	called := false
	h.SetGCCallback(func(Severity) { called = true })

	ref, buf := h.Alloc(1 << 20)
	require.NotNil(t, buf)
	require.False(t, called)

	h.SetGCCallback(nil)
	h.Free(ref, 1<<20)
}
