package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

// Debug flag - set to true to enable the consistency checks and assertions
// on every public call (compile-time toggle).
const debugChecks = false

// Runtime debug flag for allocation logging - controlled by the
// HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// endOfList terminates the free list. One sentinel value is used for every
// backend; a legal offset never reaches it because Config validation keeps
// the logical offset space below 2^32-1.
const endOfList = ^uint32(0)

// maxBlockSize bounds a single request so offset arithmetic stays in 32
// bits with headroom for alignment.
const maxBlockSize = 1 << 30

// Heap is the allocator core: a free-list bump/coalesce allocator over a
// bounded logical offset space, collaborating with an external mark-sweep
// collector through a registered callback.
//
// A Heap is single-threaded by contract. It holds no locks and assumes at
// most one in-flight call; the only reentrancy allowed is Free/FreeSmall
// from inside the reclamation callback.
type Heap struct {
	cfg Config

	region *arena.Region
	area   []byte

	// firstNext is the sentinel head of the free list (size 0 by
	// definition, so only its next offset is stored).
	firstNext uint32

	// skip caches a predecessor to shortcut ordered free-insertion. It is
	// always the head or a node currently present in the list.
	skip node

	segments []segment

	blocksSize      uint64
	allocatedBlocks uint64
	heapLimit       uint64

	// Emulated external-allocator accounting (dynamic-emulation and
	// system backends).
	allocatedHeapSize  uint64
	systemMetadataSize uint64

	gcCallback  FreeUnusedCallback
	insideAlloc bool

	// System backend block table.
	sysBlocks map[Ref][]byte
	sysNext   Ref

	stats  Stats
	closed bool

	// Test hook: called instead of terminating the process on exhaustion
	// (nil in production).
	onFatal func()
}

// New reserves the heap area and installs the initial free region.
func New(cfg Config) (*Heap, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Heap{
		cfg:       cfg,
		firstNext: endOfList,
		skip:      headNode,
		heapLimit: cfg.DesiredLimit,
	}
	h.stats.HeapSize = cfg.heapSize()

	switch cfg.Backend {
	case BackendSystem:
		h.sysBlocks = make(map[Ref][]byte)
		return h, nil

	case BackendSegmented:
		region, err := arena.Reserve(int(cfg.heapSize()))
		if err != nil {
			return nil, err
		}
		h.region = region
		h.area = region.Bytes()
		h.segments = make([]segment, cfg.MaxSegments)

		// The initial group is a single segment. Offset 0 is reserved so
		// no legal block ever compresses to the null offset.
		h.attachGroup(0, 1)
		a := cfg.Alignment
		format.PutRegionHeader(h.area, int(a), cfg.SegmentSize-a, endOfList)
		h.firstNext = a
		return h, nil

	default: // BackendStatic, BackendDynamicEmulation
		region, err := arena.Reserve(int(cfg.AreaSize))
		if err != nil {
			return nil, err
		}
		h.region = region
		h.area = region.Bytes()
		format.PutRegionHeader(h.area, 0, cfg.AreaSize, endOfList)
		h.firstNext = 0
		return h, nil
	}
}

// Close releases the heap. Every block must have been freed; a non-empty
// heap is reported as ErrHeapNotEmpty and the backing is kept so the
// caller can still reach live blocks.
func (h *Heap) Close() error {
	if h.closed {
		return ErrClosed
	}
	if h.blocksSize != 0 || h.allocatedBlocks != 0 {
		return fmt.Errorf("%w: %d bytes in %d blocks",
			ErrHeapNotEmpty, h.blocksSize, h.allocatedBlocks)
	}

	if h.cfg.Backend == BackendSegmented {
		h.releaseAllGroups()
	}
	if h.cfg.Backend == BackendSystem {
		h.sysBlocks = nil
	}

	h.closed = true
	h.firstNext = endOfList
	h.skip = headNode
	if h.region != nil {
		err := h.region.Release()
		h.region = nil
		h.area = nil
		return err
	}
	return nil
}

// SetGCCallback registers the reclamation hook run by the allocation
// ladder. Passing nil removes it.
func (h *Heap) SetGCCallback(fn FreeUnusedCallback) {
	h.gcCallback = fn
}

// Config returns the options the heap was created with.
func (h *Heap) Config() Config {
	return h.cfg
}

// IsHeapRef reports whether ref is an address inside the heap area.
// Intended for debug assertions; cheap enough for tests as well.
func (h *Heap) IsHeapRef(ref Ref) bool {
	if h.cfg.Backend == BackendSystem {
		_, ok := h.sysBlocks[ref]
		return ok
	}
	if uint64(ref) >= h.cfg.heapSize() {
		return false
	}
	if !format.IsAligned(ref, h.cfg.Alignment) {
		return false
	}
	if h.cfg.Backend == BackendSegmented {
		return h.segments[ref/h.cfg.SegmentSize].attached
	}
	return true
}

// runGC invokes the reclamation callback, if any. Callbacks run between
// atomic allocation attempts only, never while list mutation is underway.
func (h *Heap) runGC(severity Severity) {
	if h.gcCallback == nil {
		return
	}
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] collect: severity=%s\n", severity)
	}
	h.gcCallback(severity)
}

// fatalOutOfMemory terminates the process with the distinguished exit
// code. The test hook replaces termination in tests.
func (h *Heap) fatalOutOfMemory() {
	if h.onFatal != nil {
		h.onFatal()
		return
	}
	fmt.Fprintln(os.Stderr, "heap: out of memory")
	os.Exit(ExitOutOfMemory)
}

// debugAssert panics when a contract is violated and debugChecks is on.
func debugAssert(cond bool, msg string) {
	if debugChecks && !cond {
		panic("heap: " + msg)
	}
}
