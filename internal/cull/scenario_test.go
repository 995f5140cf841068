package cull

import (
	"math"
	"testing"

	"github.com/gekko3d/gekko/internal/asset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// TestScenarioUnitCubeCullsExactlyOneCluster covers end-to-end
// scenario 2: a unit cube as a single leaf cluster, camera at (0,0,3)
// looking down -Z, viewport 800x600, threshold 1.5px, must cull to
// exactly one cluster.
func TestScenarioUnitCubeCullsExactlyOneCluster(t *testing.T) {
	cluster := leafCluster(mgl32.Vec3{0, 0, 0}, 0.87, 0)
	clusters := []asset.Cluster{cluster}

	v := View{
		Frustum:       ExtractFrustum(perspectiveVP(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0})),
		CameraPos:     mgl32.Vec3{0, 0, 3},
		ScreenFactor:  600 / (2 * float32(math.Tan(float64(mgl32.DegToRad(30))))),
		ThresholdPx:   1.5,
		SWThresholdPx: 16,
	}

	list := NewVisibleList(uint32(len(clusters)))
	for i, c := range clusters {
		if d := Evaluate(c, v); d.Cut {
			list.Append(uint32(i))
		}
	}
	require.Equal(t, uint32(1), list.Count())
}

// TestScenarioTwoLevelHierarchyEmitsOnlyCoarserLevel covers end-to-end
// scenario 4: a 2-level hierarchy where the finer level's screen-space
// error exceeds threshold while the coarser level's does not; cull
// must select only the coarser cluster.
func TestScenarioTwoLevelHierarchyEmitsOnlyCoarserLevel(t *testing.T) {
	fine := internalCluster(mgl32.Vec3{0, 0, 0}, 1, 3.0, 10.0)
	coarse := leafCluster(mgl32.Vec3{0, 0, 0}, 1, 0.01)
	// coarse is root (no parent above it): IsLeaf() per the cut
	// algorithm's naming, meaning "nothing coarser to fall back to".

	v := View{
		Frustum:       ExtractFrustum(perspectiveVP(mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 0, 0})),
		CameraPos:     mgl32.Vec3{0, 0, 100},
		ScreenFactor:  500,
		ThresholdPx:   1.5,
		SWThresholdPx: 16,
	}

	fineDecision := Evaluate(fine, v)
	coarseDecision := Evaluate(coarse, v)

	require.False(t, fineDecision.Cut, "finer level should not be selected once its error exceeds threshold")
	require.True(t, coarseDecision.Cut, "coarser level should be selected")
}

// TestScenarioOverflowSilence covers end-to-end scenario 6: capacity
// is undersized relative to the number of passing clusters; the list
// must not write past capacity, and a Reset gives the next frame a
// clean slate.
func TestScenarioOverflowSilence(t *testing.T) {
	const capacity = 16
	const passing = 32

	list := NewVisibleList(capacity)
	for i := 0; i < passing; i++ {
		list.Append(uint32(i))
	}
	require.Equal(t, uint32(capacity), list.Count())
	require.Len(t, list.Slots(), capacity)

	list.Reset()
	for i := 0; i < 5; i++ {
		ok := list.Append(uint32(i))
		require.True(t, ok)
	}
	require.Equal(t, uint32(5), list.Count())
}
