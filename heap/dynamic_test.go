package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func dynamicConfig(areaSize uint32, slab bool) Config {
	cfg := DefaultConfig
	cfg.Backend = BackendDynamicEmulation
	cfg.AreaSize = areaSize
	cfg.DesiredLimit = 1024
	cfg.SystemMetadataSize = 16
	cfg.SystemAlignment = 16
	cfg.SlabSmallBlocks = slab
	return cfg
}

// Test_DynamicEmulationAccounting verifies the emulated external-
// allocator footprint moves with each block while placement stays on the
// free list.
func Test_DynamicEmulationAccounting(t *testing.T) {
	h := newTestHeap(t, dynamicConfig(512, false))

	ref, _ := h.Alloc(40)
	require.Equal(t, Ref(0), ref, "placement still comes from the free list")
	require.Equal(t, uint64(40), h.AllocatedHeapSize())
	require.Equal(t, uint64(16), h.SystemMetadataSize())

	ref2, _ := h.AllocSmall(24)
	require.Equal(t, uint64(64), h.AllocatedHeapSize(),
		"small blocks count like any other without the slab option")
	require.Equal(t, uint64(32), h.SystemMetadataSize())

	h.Free(ref, 40)
	h.FreeSmall(ref2, 24)
	require.Zero(t, h.AllocatedHeapSize())
	require.Zero(t, h.SystemMetadataSize())
}

// Test_SlabExemptsSmallBlocks verifies the slab option keeps small blocks
// out of the emulated accounting, on the alloc and the free path alike.
func Test_SlabExemptsSmallBlocks(t *testing.T) {
	h := newTestHeap(t, dynamicConfig(512, true))

	small, _ := h.AllocSmall(24)
	require.Zero(t, h.AllocatedHeapSize())
	require.Zero(t, h.SystemMetadataSize())

	big, _ := h.Alloc(64)
	require.Equal(t, uint64(64), h.AllocatedHeapSize())
	require.Equal(t, uint64(16), h.SystemMetadataSize())

	h.FreeSmall(small, 24)
	require.Equal(t, uint64(64), h.AllocatedHeapSize(),
		"small free must not drain the exempted accounting")

	h.Free(big, 64)
	require.Zero(t, h.AllocatedHeapSize())
	require.Zero(t, h.SystemMetadataSize())
}

// Test_DynamicBudgetUsesEmulatedFootprint verifies the pre-allocation
// trigger budgets the emulated footprint, so slab-exempt small blocks do
// not fire it.
func Test_DynamicBudgetUsesEmulatedFootprint(t *testing.T) {
	cfg := dynamicConfig(1024, true)
	cfg.DesiredLimit = 64
	h := newTestHeap(t, cfg)

	var calls []Severity
	h.SetGCCallback(func(sev Severity) { calls = append(calls, sev) })

	// Small blocks are exempt: no budget pass even past the limit step.
	refs := make([]Ref, 4)
	for i := range refs {
		refs[i], _ = h.AllocSmall(32)
	}
	require.Empty(t, calls)

	// A regular block projects the emulated footprint past the limit the
	// small blocks ratcheted up.
	big, _ := h.Alloc(200)
	require.Equal(t, []Severity{SeverityLow}, calls)

	h.SetGCCallback(nil)
	for _, ref := range refs {
		h.FreeSmall(ref, 32)
	}
	h.Free(big, 200)
}
