package hierarchy

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func tetrahedron() ([]uint32, []mgl32.Vec3, []mgl32.Vec3, []mgl32.Vec2) {
	positions := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	indices := []uint32{
		0, 1, 2,
		0, 1, 3,
		0, 2, 3,
		1, 2, 3,
	}
	normals := make([]mgl32.Vec3, len(positions))
	uvs := make([]mgl32.Vec2, len(positions))
	return indices, positions, normals, uvs
}

func smallParams() Params {
	return Params{
		MaxVerticesPerCluster:  128,
		MaxTrianglesPerCluster: 256,
		GroupSizeMin:           2,
		GroupSizeMax:           4,
		WeldQuantization:       1e-5,
		BaseErrorThreshold:     0.01,
		MinReduction:           0.2,
		WorkerCount:            2,
	}
}

// TestBuildTetrahedronSingleLeafCluster covers end-to-end scenario 1.
func TestBuildTetrahedronSingleLeafCluster(t *testing.T) {
	indices, positions, normals, uvs := tetrahedron()
	dag, err := Build(indices, positions, normals, uvs, smallParams())
	require.NoError(t, err)
	require.Len(t, dag.Clusters, 1)
	c := dag.Clusters[0]
	require.Equal(t, uint16(4), c.TriangleCount())
	require.Equal(t, float32(0), c.LodError)
	require.True(t, c.IsLeaf())
}

func icosphereLike() ([]uint32, []mgl32.Vec3, []mgl32.Vec3, []mgl32.Vec2) {
	// A simple triangulated cylinder-like mesh with enough triangles to
	// force at least one hierarchy level beyond level 0.
	const rings = 20
	const segs = 20
	var positions []mgl32.Vec3
	for r := 0; r <= rings; r++ {
		for s := 0; s < segs; s++ {
			angle := float64(s) / float64(segs) * 2 * math.Pi
			positions = append(positions, mgl32.Vec3{
				float32(r),
				10 * float32(math.Cos(angle)),
				10 * float32(math.Sin(angle)),
			})
		}
	}
	var indices []uint32
	idx := func(r, s int) uint32 { return uint32(r*segs + s%segs) }
	for r := 0; r < rings; r++ {
		for s := 0; s < segs; s++ {
			indices = append(indices,
				idx(r, s), idx(r+1, s), idx(r+1, s+1),
				idx(r, s), idx(r+1, s+1), idx(r, s+1),
			)
		}
	}
	normals := make([]mgl32.Vec3, len(positions))
	uvs := make([]mgl32.Vec2, len(positions))
	return indices, positions, normals, uvs
}

// TestBuildMultiLevelMonotoneError covers P3: along every parent
// chain, lod_error is non-decreasing and parent_error >= lod_error.
func TestBuildMultiLevelMonotoneError(t *testing.T) {
	indices, positions, normals, uvs := icosphereLike()
	p := smallParams()
	p.MaxVerticesPerCluster = 16
	p.MaxTrianglesPerCluster = 24

	dag, err := Build(indices, positions, normals, uvs, p)
	require.NoError(t, err)
	require.Greater(t, len(dag.Clusters), 1)

	for _, c := range dag.Clusters {
		require.GreaterOrEqual(t, c.ParentError, c.LodError)
	}

	for _, c := range dag.Clusters {
		for ci := c.ChildBase; ci < c.ChildBase+c.ChildCount; ci++ {
			child := dag.Clusters[dag.ChildIndices[ci]]
			require.LessOrEqual(t, child.LodError, c.LodError)
		}
	}
}

// TestBuildRespectsClusterBounds covers P2 at every hierarchy level.
func TestBuildRespectsClusterBounds(t *testing.T) {
	indices, positions, normals, uvs := icosphereLike()
	p := smallParams()
	p.MaxVerticesPerCluster = 16
	p.MaxTrianglesPerCluster = 24

	dag, err := Build(indices, positions, normals, uvs, p)
	require.NoError(t, err)
	for _, c := range dag.Clusters {
		require.LessOrEqual(t, int(c.VertexCount()), p.MaxVerticesPerCluster)
		require.LessOrEqual(t, int(c.TriangleCount()), p.MaxTrianglesPerCluster)
	}
}
