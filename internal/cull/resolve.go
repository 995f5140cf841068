package cull

import (
	"github.com/gekko3d/gekko/internal/asset"
	"github.com/go-gl/mathgl/mgl32"
)

// ResolvedPixel is what the full-screen resolve pass of spec.md §4.9
// produces per pixel before debug shading: which triangle was visible
// and its face normal.
type ResolvedPixel struct {
	Background bool
	Cluster    uint32
	Triangle   uint32
	Normal     mgl32.Vec3
}

// Resolve decodes a visibility-buffer ID (preferring the HW entry,
// falling back to SW, then background) and computes the triangle's
// face normal from its three vertices, exactly as the fragment
// resolve pass would per spec.md §4.9.
func Resolve(hwID, swID uint32, dag asset.DAG) ResolvedPixel {
	id := hwID
	if id == 0 {
		id = swID
	}
	if id == 0 {
		return ResolvedPixel{Background: true}
	}

	cluster, triangle := asset.DecodeVisibilityID(id)
	c := dag.Clusters[cluster]

	localOffset := c.TriangleOffset + triangle*3
	local0 := dag.PrimitiveIndices[localOffset]
	local1 := dag.PrimitiveIndices[localOffset+1]
	local2 := dag.PrimitiveIndices[localOffset+2]

	g0 := dag.MeshletVertexIndices[c.VertexOffset+uint32(local0)]
	g1 := dag.MeshletVertexIndices[c.VertexOffset+uint32(local1)]
	g2 := dag.MeshletVertexIndices[c.VertexOffset+uint32(local2)]

	p0 := dag.Vertices[g0].Position()
	p1 := dag.Vertices[g1].Position()
	p2 := dag.Vertices[g2].Position()

	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Dot(n) < 1e-12 {
		// Sub-pixel or degenerate triangle: the robust-normal rule
		// that prevents NaN-driven holes in the debug shading.
		n = mgl32.Vec3{0, 1, 0}
	} else {
		n = n.Normalize()
	}

	return ResolvedPixel{
		Cluster:  cluster,
		Triangle: triangle,
		Normal:   n,
	}
}
