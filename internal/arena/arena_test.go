package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ReserveAndRelease(t *testing.T) {
	r, err := Reserve(64 * 1024)
	require.NoError(t, err)
	require.Equal(t, 64*1024, r.Size())

	// Fresh mappings are zeroed; writes must stick.
	data := r.Bytes()
	require.Equal(t, byte(0), data[0])
	require.Equal(t, byte(0), data[len(data)-1])
	data[0] = 0xAB
	data[len(data)-1] = 0xCD
	require.Equal(t, byte(0xAB), r.Bytes()[0])
	require.Equal(t, byte(0xCD), r.Bytes()[len(data)-1])

	require.NoError(t, r.Release())
	require.Nil(t, r.Bytes())
}
