package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_InitInstallsSingleRegion verifies the post-init list shape for the
// static and segmented backends.
func Test_InitInstallsSingleRegion(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		h := newTestHeap(t, staticConfig(256))
		require.Equal(t, []regionSpan{{off: 0, size: 256}}, listRegions(h))
		require.Equal(t, uint64(0), h.BlocksSize())
		require.Equal(t, h.cfg.DesiredLimit, h.HeapLimit())
		requireConsistent(t, h)
	})

	t.Run("segmented", func(t *testing.T) {
		h := newTestHeap(t, segmentedConfig(128, 4))
		// The leading granule is reserved; the initial segment carries
		// the rest.
		require.Equal(t, []regionSpan{{off: 8, size: 120}}, listRegions(h))
		require.Equal(t, 1, h.AttachedSegments())
		requireConsistent(t, h)
	})
}

// Test_InitFinalizeIdempotent runs the lifecycle twice and expects a
// fresh heap each time: zeroed stats and a single spanning free region.
func Test_InitFinalizeIdempotent(t *testing.T) {
	cfg := staticConfig(256)

	h1, err := New(cfg)
	require.NoError(t, err)
	p, _ := h1.Alloc(32)
	h1.Free(p, 32)
	require.NoError(t, h1.Close())

	h2, err := New(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, h2.Close()) }()

	stats := h2.StatsSnapshot()
	require.Zero(t, stats.AllocCount)
	require.Zero(t, stats.AllocatedBytes)
	require.Zero(t, stats.FreeCount)
	require.Equal(t, []regionSpan{{off: 0, size: 256}}, listRegions(h2))
}

// Test_CloseRejectsLiveBlocks verifies finalize refuses a non-empty heap
// and still works after the block is returned.
func Test_CloseRejectsLiveBlocks(t *testing.T) {
	h, err := New(staticConfig(256))
	require.NoError(t, err)

	ref, _ := h.Alloc(16)
	require.ErrorIs(t, h.Close(), ErrHeapNotEmpty)

	h.Free(ref, 16)
	require.NoError(t, h.Close())
	require.ErrorIs(t, h.Close(), ErrClosed)
}

// Test_ConfigValidation exercises the option invariants.
func Test_ConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unaligned area", func(c *Config) { c.AreaSize = 100 }},
		{"granule below header", func(c *Config) { c.Alignment = 4 }},
		{"granule not power of two", func(c *Config) { c.Alignment = 24 }},
		{"zero limit step", func(c *Config) { c.DesiredLimit = 0 }},
		{"zero segments", func(c *Config) {
			c.Backend = BackendSegmented
			c.MaxSegments = 0
		}},
		{"segment below two granules", func(c *Config) {
			c.Backend = BackendSegmented
			c.SegmentSize = 8
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.ErrorIs(t, err, ErrBadConfig)
		})
	}
}

// Test_IsHeapRef covers the containment checks used by the debug
// assertions.
func Test_IsHeapRef(t *testing.T) {
	h := newTestHeap(t, staticConfig(256))

	ref, _ := h.Alloc(16)
	require.True(t, h.IsHeapRef(ref))
	require.True(t, h.IsHeapRef(248))
	require.False(t, h.IsHeapRef(256))
	require.False(t, h.IsHeapRef(13))

	h.Free(ref, 16)

	hs := newTestHeap(t, segmentedConfig(128, 4))
	require.True(t, hs.IsHeapRef(8))
	require.False(t, hs.IsHeapRef(128), "detached segment is not heap space")
}

// Test_DescribeConfig sanity-checks the info banner for each backend.
func Test_DescribeConfig(t *testing.T) {
	cfg := DefaultConfig
	require.Contains(t, cfg.Describe(), "backend: static")

	cfg.Backend = BackendSegmented
	require.Contains(t, cfg.Describe(), "max segment count")

	cfg.Backend = BackendSystem
	require.Contains(t, cfg.Describe(), "system metadata per block")
}
