package main

import (
	"math/rand"

	"github.com/joshuapare/heapkit/heap"
)

// workloadResult summarises one synthetic churn run.
type workloadResult struct {
	Ops      int
	Allocs   int
	Frees    int
	Failures int
	PeakLive uint64
}

// runWorkload churns the heap with a deterministic mix of allocations and
// frees, leaving it empty. Failed allocations (heap full) free a random
// victim and continue, which keeps the run going near capacity, where the
// free-list behavior is most interesting.
func runWorkload(h *heap.Heap, ops, maxSize int, allocBias int, seed int64) workloadResult {
	rng := rand.New(rand.NewSource(seed))

	type block struct {
		ref  heap.Ref
		size int
	}
	var live []block
	var res workloadResult

	for i := 0; i < ops; i++ {
		res.Ops++
		if len(live) == 0 || rng.Intn(100) < allocBias {
			size := 1 + rng.Intn(maxSize)
			ref, buf := h.TryAlloc(size)
			if buf == nil {
				res.Failures++
				if len(live) == 0 {
					continue
				}
				victim := rng.Intn(len(live))
				h.Free(live[victim].ref, live[victim].size)
				res.Frees++
				live = append(live[:victim], live[victim+1:]...)
				continue
			}
			res.Allocs++
			live = append(live, block{ref: ref, size: size})
			if h.BlocksSize() > res.PeakLive {
				res.PeakLive = h.BlocksSize()
			}
		} else {
			victim := rng.Intn(len(live))
			h.Free(live[victim].ref, live[victim].size)
			res.Frees++
			live = append(live[:victim], live[victim+1:]...)
		}
	}

	for _, b := range live {
		h.Free(b.ref, b.size)
		res.Frees++
	}
	return res
}
