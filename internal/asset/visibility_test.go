package asset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVisibilityEncodeDecode covers P7: for every (cluster in
// [0, 2^22 - 1), triangle in [0, 1024)) sampled across the range,
// decode(encode(c,t)) == (c,t) and encode != 0. cluster+1 must fit in
// the 22 bits above the triangle field, so 2^22 - 2 is the largest
// encodable cluster.
func TestVisibilityEncodeDecode(t *testing.T) {
	clusters := []uint32{0, 1, 7, 1023, 1 << 16, (1 << 22) - 2}
	triangles := []uint32{0, 1, 255, 512, 1023}

	for _, c := range clusters {
		for _, tri := range triangles {
			id := EncodeVisibilityID(c, tri)
			require.NotZero(t, id)
			gotC, gotT := DecodeVisibilityID(id)
			require.Equal(t, c, gotC)
			require.Equal(t, tri, gotT)
		}
	}
}

func TestVisibilityIDZeroIsBackground(t *testing.T) {
	require.NotEqual(t, uint32(0), EncodeVisibilityID(0, 0))
}

func TestVisibilityEntryPacking(t *testing.T) {
	entry := PackVisibilityEntry(0xDEADBEEF, 0x12345678)
	depth, id := UnpackVisibilityEntry(entry)
	require.Equal(t, uint32(0xDEADBEEF), depth)
	require.Equal(t, uint32(0x12345678), id)
}

func TestPackSW20_12RoundTrip(t *testing.T) {
	packed := PackSW20_12(0xABCDE, 0x345)
	depth, id := UnpackSW20_12(packed)
	require.Equal(t, uint32(0xABCDE), depth)
	require.Equal(t, uint32(0x345), id)
}

func TestPackSW16_16RoundTrip(t *testing.T) {
	packed := PackSW16_16(0xBEEF, 0xCAFE)
	depth, id := UnpackSW16_16(packed)
	require.Equal(t, uint32(0xBEEF), depth)
	require.Equal(t, uint32(0xCAFE), id)
}
