package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_AlignUp(t *testing.T) {
	tests := []struct {
		n, align, want uint32
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{13, 8, 16},
		{16, 16, 16},
		{17, 16, 32},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, AlignUp(tt.n, tt.align), "AlignUp(%d, %d)", tt.n, tt.align)
	}
}

func Test_IsPowerOfTwo(t *testing.T) {
	require.True(t, IsPowerOfTwo(8))
	require.True(t, IsPowerOfTwo(1))
	require.False(t, IsPowerOfTwo(0))
	require.False(t, IsPowerOfTwo(24))
}

func Test_RegionHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, 32)

	PutRegionHeader(buf, 8, 128, 4096)
	require.Equal(t, uint32(128), RegionSize(buf, 8))
	require.Equal(t, uint32(4096), RegionNext(buf, 8))

	SetRegionSize(buf, 8, 64)
	SetRegionNext(buf, 8, ^uint32(0))
	require.Equal(t, uint32(64), RegionSize(buf, 8))
	require.Equal(t, ^uint32(0), RegionNext(buf, 8))
}
