package cull

import (
	"github.com/gekko3d/gekko/internal/asset"
	"github.com/go-gl/mathgl/mgl32"
)

// View carries the per-frame values the cut decision and hybrid split
// need, mirroring the fields of asset.ViewUniform that the WGSL
// culler reads from group 1, binding 0.
type View struct {
	Frustum      Frustum
	CameraPos    mgl32.Vec3
	ScreenFactor float32 // viewport_h / (2*tan(fov/2))
	ThresholdPx  float32
	SWThresholdPx float32
}

// Decision is the per-cluster outcome of the §4.6 culler.
type Decision struct {
	FrustumVisible bool
	Cut            bool // true iff this cluster passes the Nanite unique-cut test
	Sloppy         bool // projected screen extent below SWThresholdPx
}

const epsilon = 1e-6

// Evaluate runs the frustum test, the Nanite cut condition, and the
// hybrid HW/SW split for a single cluster, per spec.md §4.6 steps
// 1, 2 and 4. HZB occlusion (step 3) is applied separately by
// EvaluateWithOcclusion since it needs a depth pyramid sample.
func Evaluate(c asset.Cluster, v View) Decision {
	var d Decision
	if !v.Frustum.SphereInFrustum(c.Center(), c.Radius) {
		return d
	}
	d.FrustumVisible = true

	dist := float32Max(c.Center().Sub(v.CameraPos).Len()-c.Radius, epsilon)
	errorPx := c.LodError * v.ScreenFactor / dist
	parentErrorPx := c.ParentError * v.ScreenFactor / dist
	isLeaf := c.IsLeaf()

	d.Cut = errorPx <= v.ThresholdPx && (parentErrorPx > v.ThresholdPx || isLeaf)
	if !d.Cut {
		return d
	}

	extentPx := 2 * c.Radius * v.ScreenFactor / dist
	d.Sloppy = extentPx < v.SWThresholdPx
	return d
}

func float32Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// HZB is a CPU-side stand-in for the previous-frame depth pyramid the
// compute shader samples for occlusion, a single-channel mip chain
// indexed [mip][y*width+x].
type HZB struct {
	Mips   [][]float32
	Widths []int
	Heights []int
}

// SampleConservativeDepth applies the "sample the mip whose texel
// covers the projected radius" rule: it picks the finest mip whose
// texel size (2^(mip+1) pixels) is >= the projected screen-space
// diameter, or the coarsest mip when none is, and returns the single
// texel of that mip containing (screenX, screenY). Neighboring texels
// are not read.
func (h HZB) SampleConservativeDepth(screenX, screenY int, projectedRadiusPx float32) float32 {
	if len(h.Mips) == 0 {
		return 0
	}
	mip := 0
	for mip < len(h.Mips)-1 {
		texelSize := float32(1 << (mip + 1))
		if texelSize >= projectedRadiusPx*2 {
			break
		}
		mip++
	}
	w, ht := h.Widths[mip], h.Heights[mip]
	x := clampInt(screenX>>mip, 0, w-1)
	y := clampInt(screenY>>mip, 0, ht-1)
	return h.Mips[mip][y*w+x]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EvaluateWithOcclusion adds spec.md §4.6 step 3 on top of Evaluate:
// a cluster that passes frustum+cut is additionally rejected if its
// near point on the sphere projects to a depth farther than the
// HZB's recorded depth at that screen location.
func EvaluateWithOcclusion(c asset.Cluster, v View, viewProj mgl32.Mat4, viewportW, viewportH int, hzb *HZB) Decision {
	d := Evaluate(c, v)
	if !d.Cut || hzb == nil {
		return d
	}

	toCamera := c.Center().Sub(v.CameraPos)
	dist := toCamera.Len()
	if dist <= epsilon {
		return d
	}
	nearPoint := v.CameraPos.Add(toCamera.Mul(float32Max(dist-c.Radius, epsilon) / dist))

	clip := viewProj.Mul4x1(nearPoint.Vec4(1))
	if clip.W() <= epsilon {
		return d // behind the eye plane, let the frustum test's prior verdict stand
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	ndcZ := clip.Z() / clip.W()
	screenX := int((ndcX*0.5 + 0.5) * float32(viewportW))
	screenY := int((1 - (ndcY*0.5 + 0.5)) * float32(viewportH))

	projectedRadiusPx := c.Radius * v.ScreenFactor / float32Max(dist, epsilon)
	hzbDepth := hzb.SampleConservativeDepth(screenX, screenY, projectedRadiusPx)
	if ndcZ > hzbDepth+epsilon {
		d.Cut = false
	}
	return d
}
