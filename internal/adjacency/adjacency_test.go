package adjacency

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Two triangles sharing an edge: (0,1,2) and (1,2,3).
func TestBuildTriangleAdjacencySharedEdge(t *testing.T) {
	indices := []uint32{0, 1, 2, 1, 2, 3}
	csr, err := BuildTriangleAdjacency(indices, 4, 0)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{1}, csr.Row(0))
	require.ElementsMatch(t, []uint32{0}, csr.Row(1))
}

func TestBuildTriangleAdjacencyDisjointTriangles(t *testing.T) {
	// two triangles that share no vertex
	indices := []uint32{0, 1, 2, 3, 4, 5}
	csr, err := BuildTriangleAdjacency(indices, 6, 0)
	require.NoError(t, err)
	require.Empty(t, csr.Row(0))
	require.Empty(t, csr.Row(1))
}

func TestBuildTriangleAdjacencyRejectsBadStream(t *testing.T) {
	_, err := BuildTriangleAdjacency([]uint32{0, 1}, 2, 0)
	require.Error(t, err)
}

func TestBuildTriangleAdjacencyOversizeBudget(t *testing.T) {
	indices := []uint32{0, 1, 2, 1, 2, 3}
	_, err := BuildTriangleAdjacency(indices, 4, 1)
	require.Error(t, err)
}

func TestBuildClusterAdjacencyConnectsSharedVertexClusters(t *testing.T) {
	// cluster 0 owns vertices [0,1,2], cluster 1 owns [2,3,4]: share vertex 2.
	meshletVertexIndices := []uint32{0, 1, 2, 2, 3, 4}
	ranges := []ClusterVertexRange{
		{Offset: 0, Count: 3},
		{Offset: 3, Count: 3},
	}
	csr := BuildClusterAdjacency([]uint32{0, 1}, meshletVertexIndices, ranges, 2)
	require.ElementsMatch(t, []uint32{1}, csr.Row(0))
	require.ElementsMatch(t, []uint32{0}, csr.Row(1))
}
