package simplify

import (
	"testing"

	"github.com/gekko3d/gekko/internal/adaptrixerr"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func gridMesh() Mesh {
	// 3x3 grid of vertices, 2x2 grid of quads (8 triangles).
	var verts []mgl32.Vec3
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			verts = append(verts, mgl32.Vec3{float32(x), float32(y), 0})
		}
	}
	idx := func(x, y int) uint32 { return uint32(y*3 + x) }
	var tris [][3]uint32
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			tris = append(tris, [3]uint32{idx(x, y), idx(x+1, y), idx(x+1, y+1)})
			tris = append(tris, [3]uint32{idx(x, y), idx(x+1, y+1), idx(x, y+1)})
		}
	}
	return Mesh{Vertices: verts, Triangles: tris}
}

func TestSimplifyReducesTriangleCount(t *testing.T) {
	mesh := gridMesh()
	pinned := make([]bool, len(mesh.Vertices))
	result, err := Simplify(mesh, pinned, 0.5, 0.2)
	require.NoError(t, err)
	require.Less(t, len(result.Mesh.Triangles), len(mesh.Triangles))
}

func TestSimplifyNeverCollapsesPinnedVertices(t *testing.T) {
	mesh := gridMesh()
	pinned := make([]bool, len(mesh.Vertices))
	for i := range pinned {
		pinned[i] = true // pin everything: no edge is eligible
	}
	result, err := Simplify(mesh, pinned, 0.5, 0.9)
	require.NoError(t, err)
	require.Equal(t, len(mesh.Triangles), len(result.Mesh.Triangles))
}

func TestSimplifyRejectsNonManifoldEdges(t *testing.T) {
	// An edge (0,1) shared by three triangles.
	mesh := Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {1, 1, 0}},
		Triangles: [][3]uint32{
			{0, 1, 2},
			{0, 1, 3},
			{0, 1, 4},
		},
	}
	_, err := Simplify(mesh, make([]bool, len(mesh.Vertices)), 0.5, 0.2)
	require.Error(t, err)
	require.True(t, isNonManifold(err))
}

func isNonManifold(err error) bool {
	ae, ok := err.(*adaptrixerr.Error)
	return ok && ae.Kind == adaptrixerr.NonManifold
}
