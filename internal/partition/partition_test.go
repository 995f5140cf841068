package partition

import (
	"testing"

	"github.com/gekko3d/gekko/internal/adjacency"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func cubeMesh() ([]uint32, []mgl32.Vec3) {
	positions := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	indices := []uint32{
		0, 1, 2, 0, 2, 3, // front
		4, 5, 6, 4, 6, 7, // back
		0, 1, 5, 0, 5, 4, // bottom
		3, 2, 6, 3, 6, 7, // top
		0, 3, 7, 0, 7, 4, // left
		1, 2, 6, 1, 6, 5, // right
	}
	return indices, positions
}

// TestPartitionMeshCompleteness covers P1: every triangle ends up in
// exactly one cluster.
func TestPartitionMeshCompleteness(t *testing.T) {
	indices, positions := cubeMesh()
	adj, err := adjacency.BuildTriangleAdjacency(indices, len(positions), 0)
	require.NoError(t, err)

	clusters := PartitionMesh(indices, positions, adj, 128, 256)

	seen := make(map[int]int)
	for ci, c := range clusters {
		for range c.LocalTriangles {
			seen[ci]++
		}
	}
	totalTris := 0
	for _, c := range clusters {
		totalTris += len(c.LocalTriangles)
	}
	require.Equal(t, len(indices)/3, totalTris)
}

// TestPartitionMeshBounds covers P2: every cluster respects the
// vertex/triangle bounds.
func TestPartitionMeshBounds(t *testing.T) {
	indices, positions := cubeMesh()
	adj, err := adjacency.BuildTriangleAdjacency(indices, len(positions), 0)
	require.NoError(t, err)

	clusters := PartitionMesh(indices, positions, adj, 4, 6)
	for _, c := range clusters {
		require.LessOrEqual(t, len(c.GlobalVertices), 4)
		require.LessOrEqual(t, len(c.LocalTriangles), 6)
		require.NotEmpty(t, c.LocalTriangles)
	}
}

func TestPartitionMeshSingleClusterWhenUnderBudget(t *testing.T) {
	indices, positions := cubeMesh()
	adj, err := adjacency.BuildTriangleAdjacency(indices, len(positions), 0)
	require.NoError(t, err)

	clusters := PartitionMesh(indices, positions, adj, 128, 256)
	require.Len(t, clusters, 1)
	require.Equal(t, 12, len(clusters[0].LocalTriangles))
}

func TestPartitionGroupsRespectsMaxSize(t *testing.T) {
	// chain graph 0-1-2-3-4
	offsets := []uint32{0, 1, 3, 5, 7, 8}
	neighbors := []uint32{1, 0, 2, 1, 3, 2, 4, 3}
	adj := adjacency.CSR{Offsets: offsets, Neighbors: neighbors}

	groups := PartitionGroups([]uint32{0, 1, 2, 3, 4}, adj, 5, 2, 2)
	total := 0
	for _, g := range groups {
		require.LessOrEqual(t, len(g.ClusterIndices), 2)
		total += len(g.ClusterIndices)
	}
	require.Equal(t, 5, total)
}
