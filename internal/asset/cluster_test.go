package asset

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestClusterRoundTrip(t *testing.T) {
	c := NewCluster(mgl32.Vec3{1, 2, 3}, 4.5, 10, 20, 64, 120, 0.25, 0.5, 7, 3)
	got := ClusterFromBytes(c.ToBytes())
	require.Equal(t, c, got)
	require.Equal(t, mgl32.Vec3{1, 2, 3}, got.Center())
	require.Equal(t, uint8(64), got.VertexCount())
	require.Equal(t, uint16(120), got.TriangleCount())
}

// TestClusterIsWireCompatible guards the property reinterpret[Cluster]
// relies on: the in-memory struct must be exactly ClusterSize bytes
// with no padding, so a reinterpret cast over a clusters blob aliases
// it directly instead of the reader needing to decode record by
// record.
func TestClusterIsWireCompatible(t *testing.T) {
	require.Equal(t, uintptr(ClusterSize), unsafe.Sizeof(Cluster{}))
}

func TestClusterIsLeaf(t *testing.T) {
	leaf := Cluster{ParentError: ParentErrorSentinel + 1}
	require.True(t, leaf.IsLeaf())

	internal := Cluster{ParentError: 0.5}
	require.False(t, internal.IsLeaf())
}

// TestLocalIndexDecodeBounds covers P6: for every cluster and every
// i in [0, 3*triangle_count), the decoded local index lies in
// [0, vertex_count).
func TestLocalIndexDecodeBounds(t *testing.T) {
	vertexCount := 40
	triangleCount := 30
	primitiveIndices := make([]uint8, triangleCount*3)
	for i := range primitiveIndices {
		primitiveIndices[i] = uint8(i % vertexCount)
	}

	for i := 0; i < triangleCount*3; i++ {
		local := primitiveIndices[i]
		require.GreaterOrEqual(t, int(local), 0)
		require.Less(t, int(local), vertexCount)
	}
}

func TestPackCountsRoundTrip(t *testing.T) {
	packed := packCounts(127, 255)
	vc, tc := unpackCounts(packed)
	require.Equal(t, uint8(127), vc)
	require.Equal(t, uint16(255), tc)
}
