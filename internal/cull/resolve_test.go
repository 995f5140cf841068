package cull

import (
	"math"
	"testing"

	"github.com/gekko3d/gekko/internal/asset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func singleTriangleDAG(p0, p1, p2 mgl32.Vec3) asset.DAG {
	vertices := []asset.VertexFloats{
		asset.NewVertex(p0, mgl32.Vec3{}, mgl32.Vec2{}),
		asset.NewVertex(p1, mgl32.Vec3{}, mgl32.Vec2{}),
		asset.NewVertex(p2, mgl32.Vec3{}, mgl32.Vec2{}),
	}
	return asset.DAG{
		Clusters: []asset.Cluster{
			asset.NewCluster(mgl32.Vec3{}, 0, 0, 0, 3, 1, 0, asset.ParentErrorSentinel+1, 0, 0),
		},
		Vertices:             vertices,
		MeshletVertexIndices: []uint32{0, 1, 2},
		PrimitiveIndices:     []uint8{0, 1, 2},
	}
}

// TestResolveBackground covers decode(0,0) -> background.
func TestResolveBackground(t *testing.T) {
	dag := singleTriangleDAG(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	px := Resolve(0, 0, dag)
	require.True(t, px.Background)
}

// TestResolveHWPreferredOverSW covers the resolver's "prefer HW when
// present" rule from spec.md §5.
func TestResolveHWPreferredOverSW(t *testing.T) {
	dag := singleTriangleDAG(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	hwID := asset.EncodeVisibilityID(0, 0)
	// Cluster 1 is not in the DAG, so only the HW id resolves.
	swID := asset.EncodeVisibilityID(1, 0)
	px := Resolve(hwID, swID, dag)
	require.False(t, px.Background)
	require.Equal(t, uint32(0), px.Cluster)
}

// TestResolveSubPixelTriangleFallsBackToUpNormal covers end-to-end
// scenario 3: a triangle whose projected extent (here, its world
// extent) is degenerate must not produce a NaN normal; the resolver
// falls back to (0,1,0) and the pixel remains non-background.
func TestResolveSubPixelTriangleFallsBackToUpNormal(t *testing.T) {
	tiny := float32(1e-8)
	dag := singleTriangleDAG(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{tiny, 0, 0},
		mgl32.Vec3{0, tiny, 0},
	)
	id := asset.EncodeVisibilityID(0, 0)
	px := Resolve(id, 0, dag)

	require.False(t, px.Background)
	require.Equal(t, mgl32.Vec3{0, 1, 0}, px.Normal)
	require.False(t, isNaNVec3(px.Normal))
}

func isNaNVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		if c != c { // NaN is the only float that compares unequal to itself
			return true
		}
	}
	return false
}

func TestResolveComputesFaceNormal(t *testing.T) {
	dag := singleTriangleDAG(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
	)
	id := asset.EncodeVisibilityID(0, 0)
	px := Resolve(id, 0, dag)
	require.InDelta(t, 0, px.Normal.X(), 1e-6)
	require.InDelta(t, 0, px.Normal.Y(), 1e-6)
	require.InDelta(t, 1, math.Abs(float64(px.Normal.Z())), 1e-6)
}
