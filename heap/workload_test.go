package heap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Deterministic pseudo-random workloads that re-check every invariant
// after each operation. Seeds are fixed so failures reproduce.

type liveBlock struct {
	ref  Ref
	size int
}

func runWorkload(t *testing.T, h *Heap, seed int64, ops int, maxSize int) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	var live []liveBlock
	for i := 0; i < ops; i++ {
		if len(live) == 0 || rng.Intn(100) < 60 {
			size := 1 + rng.Intn(maxSize)
			ref, buf := h.TryAlloc(size)
			if buf == nil {
				// Exhausted: drain a block and move on.
				if len(live) == 0 {
					continue
				}
				victim := rng.Intn(len(live))
				h.Free(live[victim].ref, live[victim].size)
				live = append(live[:victim], live[victim+1:]...)
				continue
			}
			live = append(live, liveBlock{ref: ref, size: size})
		} else {
			victim := rng.Intn(len(live))
			h.Free(live[victim].ref, live[victim].size)
			live = append(live[:victim], live[victim+1:]...)
		}
		requireConsistent(t, h)
	}

	for _, b := range live {
		h.Free(b.ref, b.size)
		requireConsistent(t, h)
	}
	require.Zero(t, h.BlocksSize())
	require.Zero(t, h.AllocatedBlocks())
}

func Test_WorkloadInvariants_Static(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		h := newTestHeap(t, staticConfig(4096))
		runWorkload(t, h, seed, 400, 96)
		require.Equal(t, []regionSpan{{off: 0, size: 4096}}, listRegions(h))
	}
}

func Test_WorkloadInvariants_Segmented(t *testing.T) {
	for _, seed := range []int64{3, 11} {
		h := newTestHeap(t, segmentedConfig(512, 8))
		runWorkload(t, h, seed, 400, 160)
	}
}

func Test_WorkloadInvariants_DynamicEmulation(t *testing.T) {
	h := newTestHeap(t, dynamicConfig(64*1024, true))
	rng := rand.New(rand.NewSource(5))

	var live []liveBlock
	var small []bool
	for i := 0; i < 300; i++ {
		if len(live) == 0 || rng.Intn(100) < 55 {
			size := 1 + rng.Intn(80)
			isSmall := rng.Intn(2) == 0
			var ref Ref
			var buf []byte
			if isSmall {
				ref, buf = h.AllocSmall(size)
			} else {
				ref, buf = h.Alloc(size)
			}
			require.NotNil(t, buf)
			live = append(live, liveBlock{ref: ref, size: size})
			small = append(small, isSmall)
		} else {
			victim := rng.Intn(len(live))
			if small[victim] {
				h.FreeSmall(live[victim].ref, live[victim].size)
			} else {
				h.Free(live[victim].ref, live[victim].size)
			}
			live = append(live[:victim], live[victim+1:]...)
			small = append(small[:victim], small[victim+1:]...)
		}
		requireConsistent(t, h)
	}

	for i, b := range live {
		if small[i] {
			h.FreeSmall(b.ref, b.size)
		} else {
			h.Free(b.ref, b.size)
		}
	}
	require.Zero(t, h.BlocksSize())
	require.Zero(t, h.AllocatedHeapSize())
	require.Zero(t, h.SystemMetadataSize())
}
