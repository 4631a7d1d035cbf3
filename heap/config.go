package heap

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/format"
)

// Backend selects the allocation strategy for a heap.
type Backend uint8

const (
	// BackendStatic services all blocks from one fixed reserved area.
	BackendStatic Backend = iota

	// BackendSegmented carves the logical offset space into equal segments
	// whose backing is attached on demand.
	BackendSegmented

	// BackendDynamicEmulation uses the static free-list area while
	// accounting as if each block came from a general-purpose allocator.
	BackendDynamicEmulation

	// BackendSystem passes every block through to the Go allocator.
	BackendSystem
)

// String returns the backend name for logs and the info command.
func (b Backend) String() string {
	switch b {
	case BackendStatic:
		return "static"
	case BackendSegmented:
		return "segmented"
	case BackendDynamicEmulation:
		return "dynamic-emulation"
	case BackendSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Config holds the allocator build options as a plain options struct.
// Use DefaultConfig as a starting point.
type Config struct {
	Backend Backend

	// Alignment is the granule every block size and address is rounded to.
	// Power of two, at least 8 bytes so the free-region header fits.
	Alignment uint32

	// AreaSize is the byte capacity of the heap area for the static and
	// dynamic-emulation backends. Multiple of Alignment.
	AreaSize uint32

	// SegmentSize and MaxSegments bound the segmented backend: the logical
	// offset space is SegmentSize*MaxSegments, attached one group at a time.
	SegmentSize uint32
	MaxSegments int

	// DesiredLimit is the step of the soft trigger threshold. The heap
	// limit is always a positive multiple of this value.
	DesiredLimit uint64

	// SystemMetadataSize and SystemAlignment model the per-block overhead
	// and alignment of the external general-purpose allocator. The
	// dynamic-emulation and system backends count SystemMetadataSize per
	// block; only the system backend rounds footprints to SystemAlignment.
	SystemMetadataSize uint64
	SystemAlignment    uint64

	// PreGCEachAlloc runs the reclamation callback at high severity before
	// every allocation. Debugging aid.
	PreGCEachAlloc bool

	// LazyGC triggers the pre-allocation reclamation pass only when the
	// budget exceeds the absolute heap capacity instead of the soft limit.
	LazyGC bool

	// SlabSmallBlocks exempts small blocks from the emulated
	// system-allocator accounting on the dynamic-emulation backend.
	SlabSmallBlocks bool
}

// DefaultConfig mirrors a common embedded-engine build: a 512KB static
// reservation with an 8-byte granule and an 8KB limit step.
var DefaultConfig = Config{
	Backend:            BackendStatic,
	Alignment:          8,
	AreaSize:           512 * 1024,
	SegmentSize:        64 * 1024,
	MaxSegments:        32,
	DesiredLimit:       8 * 1024,
	SystemMetadataSize: 16,
	SystemAlignment:    16,
}

// heapSize returns the absolute capacity of the logical offset space.
func (c *Config) heapSize() uint64 {
	switch c.Backend {
	case BackendSegmented:
		return uint64(c.SegmentSize) * uint64(c.MaxSegments)
	case BackendSystem:
		return 0
	default:
		return uint64(c.AreaSize)
	}
}

// validate checks the option invariants before any memory is reserved.
func (c *Config) validate() error {
	if c.Alignment < format.HeaderSize || !format.IsPowerOfTwo(c.Alignment) {
		return fmt.Errorf("%w: alignment %d must be a power of two >= %d",
			ErrBadConfig, c.Alignment, format.HeaderSize)
	}
	if c.DesiredLimit == 0 {
		return fmt.Errorf("%w: desired limit must be positive", ErrBadConfig)
	}
	switch c.Backend {
	case BackendStatic, BackendDynamicEmulation:
		if c.AreaSize == 0 || !format.IsAligned(c.AreaSize, c.Alignment) {
			return fmt.Errorf("%w: area size %d must be a positive multiple of %d",
				ErrBadConfig, c.AreaSize, c.Alignment)
		}
		if uint64(c.AreaSize) >= uint64(InvalidRef) {
			return fmt.Errorf("%w: area size %d does not leave room for the list sentinel",
				ErrBadConfig, c.AreaSize)
		}
	case BackendSegmented:
		if c.SegmentSize < 2*c.Alignment || !format.IsAligned(c.SegmentSize, c.Alignment) {
			return fmt.Errorf("%w: segment size %d must be a multiple of %d and hold at least two granules",
				ErrBadConfig, c.SegmentSize, c.Alignment)
		}
		if c.MaxSegments < 1 {
			return fmt.Errorf("%w: max segments %d must be at least 1", ErrBadConfig, c.MaxSegments)
		}
		if c.heapSize() >= uint64(InvalidRef) {
			return fmt.Errorf("%w: logical space %d does not leave room for the list sentinel",
				ErrBadConfig, c.heapSize())
		}
	case BackendSystem:
		if c.SystemAlignment == 0 || !format.IsPowerOfTwo(uint32(c.SystemAlignment)) {
			return fmt.Errorf("%w: system alignment %d must be a power of two",
				ErrBadConfig, c.SystemAlignment)
		}
	default:
		return fmt.Errorf("%w: unknown backend %d", ErrBadConfig, c.Backend)
	}
	return nil
}

// Describe returns a human-readable summary of the configured allocator,
// one option per line, for startup banners and the info command.
func (c *Config) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend: %s\n", c.Backend)
	fmt.Fprintf(&b, "alignment granule: %dB\n", c.Alignment)
	switch c.Backend {
	case BackendSegmented:
		fmt.Fprintf(&b, "segment size: %dB\n", c.SegmentSize)
		fmt.Fprintf(&b, "max segment count: %d\n", c.MaxSegments)
		fmt.Fprintf(&b, "logical heap size: %dB\n", c.heapSize())
	case BackendSystem:
		fmt.Fprintf(&b, "system metadata per block: %dB\n", c.SystemMetadataSize)
		fmt.Fprintf(&b, "system alignment: %dB\n", c.SystemAlignment)
	default:
		fmt.Fprintf(&b, "heap area size: %dB\n", c.AreaSize)
	}
	if c.Backend != BackendSystem {
		fmt.Fprintf(&b, "limit step: %dB\n", c.DesiredLimit)
	}
	if c.Backend == BackendDynamicEmulation {
		fmt.Fprintf(&b, "slab small blocks: %v\n", c.SlabSmallBlocks)
	}
	if c.PreGCEachAlloc {
		fmt.Fprintf(&b, "collect before each alloc: on\n")
	}
	if c.LazyGC {
		fmt.Fprintf(&b, "lazy collection trigger: on\n")
	}
	return b.String()
}
