// Package heap implements the allocator core of an embedded JavaScript
// engine runtime: fine-grained, short-lived blocks served from a bounded
// memory budget, in collaboration with an external mark-sweep collector.
//
// # Overview
//
// The allocator is a first-fit free list over a reserved byte area. Free
// spans carry an in-place header (size plus a compressed next offset) in
// their first alignment granule; the list is strictly address-ordered and
// adjacent spans are always coalesced. A cached skip pointer shortcuts the
// ordered insertion performed on free.
//
// # Backends
//
// Four strategies share one surface, selected by Config.Backend:
//
//   - BackendStatic: one fixed reservation, the common embedded build
//   - BackendSegmented: the offset space is split into equal segments
//     attached on demand, each tracking its own occupancy
//   - BackendDynamicEmulation: static placement with the accounting of a
//     general-purpose allocator, optionally slab-exempting small blocks
//   - BackendSystem: pass-through to the Go allocator, counters only
//
// # Allocation ladder
//
// When a request cannot be satisfied the heap calls out to the registered
// reclamation callback at escalating severities, interleaved with segment
// expansion on the segmented backend:
//
//	budget check -> low-severity pass -> attempt -> expand -> escalate
//	low, high -> expand -> nil or process exit
//
// Alloc terminates the process on exhaustion; TryAlloc returns a nil
// block instead. Callbacks may free blocks reentrantly but must not
// allocate.
//
// # Usage
//
//	h, err := heap.New(heap.DefaultConfig)
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//
//	h.SetGCCallback(func(sev heap.Severity) { engine.Collect(sev) })
//
//	ref, buf := h.Alloc(40)
//	// ... use buf ...
//	h.Free(ref, 40)
//
// # Thread safety
//
// A Heap is single-threaded by contract: no locks are taken and at most
// one call may be in flight. The only reentrancy allowed is Free/FreeSmall
// from inside the reclamation callback.
package heap
