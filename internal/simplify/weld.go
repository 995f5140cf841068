package simplify

import (
	"github.com/gekko3d/gekko/internal/asset"
	"github.com/go-gl/mathgl/mgl32"
)

// WeldGroup merges a set of clusters' local meshes into one mesh,
// welding vertices by quantized position (spec.md §4.3) so triangles
// that met at a group seam in the unmerged clusters become properly
// shared edges. Boundary pinning (spec.md §4.3's "boundary edges ...
// endpoints cannot be collapsed") is not computed here: a vertex
// welded from two clusters in this group looks identical to one
// shared with a cluster outside it, so the caller derives boundary
// status from its own adjacency data instead (see the boundaryKeys/
// pinned computation in hierarchy.go).
func WeldGroup(clusterVertices [][]mgl32.Vec3, clusterTriangles [][][3]uint8, quantGrid float64) Mesh {
	key := func(p mgl32.Vec3) [3]int64 { return asset.QuantizeKey(p, quantGrid) }

	weldIndex := make(map[[3]int64]uint32)
	var vertices []mgl32.Vec3

	localToWelded := make([][]uint32, len(clusterVertices))
	for ci, verts := range clusterVertices {
		localToWelded[ci] = make([]uint32, len(verts))
		for li, p := range verts {
			k := key(p)
			widx, ok := weldIndex[k]
			if !ok {
				widx = uint32(len(vertices))
				weldIndex[k] = widx
				vertices = append(vertices, p)
			}
			localToWelded[ci][li] = widx
		}
	}

	var triangles [][3]uint32
	for ci, tris := range clusterTriangles {
		for _, tri := range tris {
			triangles = append(triangles, [3]uint32{
				localToWelded[ci][tri[0]],
				localToWelded[ci][tri[1]],
				localToWelded[ci][tri[2]],
			})
		}
	}

	return Mesh{Vertices: vertices, Triangles: triangles}
}
