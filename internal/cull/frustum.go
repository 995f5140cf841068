// Package cull implements the CPU-testable half of the culler: frustum
// plane extraction, the Nanite cut decision, and the sphere math the
// WGSL compute shader in internal/shaders mirrors verbatim. Keeping
// this logic in Go lets P4/P8 and the end-to-end scenarios run without
// a GPU, and gives the shader source a reference to be generated from.
package cull

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Frustum holds six planes in Ax+By+Cz+D=0 form, normal pointing
// inside, ordered Left, Right, Bottom, Top, Near, Far.
type Frustum struct {
	Planes [6]mgl32.Vec4
}

// ExtractFrustum derives the frustum from a view-projection matrix via
// Gribb-Hartmann plane extraction. Unlike the teacher's OpenGL-centric
// camera.go (near = row3+row2, symmetric with far), this assumes
// Vulkan clip space with Z in [0,1]: the near plane is row 2 directly
// and the far plane is row3-row2 (spec.md §4.6).
func ExtractFrustum(vp mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(i, 0), vp.At(i, 1), vp.At(i, 2), vp.At(i, 3)}
	}
	row0, row1, row2, row3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[0] = row3.Add(row0) // Left
	f.Planes[1] = row3.Sub(row0) // Right
	f.Planes[2] = row3.Add(row1) // Bottom
	f.Planes[3] = row3.Sub(row1) // Top
	f.Planes[4] = row2           // Near, Vulkan Z in [0,1]
	f.Planes[5] = row3.Sub(row2) // Far

	for i, p := range f.Planes {
		length := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
		if length > 0 {
			f.Planes[i] = p.Mul(1.0 / length)
		}
	}
	return f
}

// SphereInFrustum implements P8: a sphere fully outside any one plane
// is rejected; otherwise it is accepted (conservative, matches the
// compute shader's per-plane early-out).
func (f Frustum) SphereInFrustum(center mgl32.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		dist := p[0]*center[0] + p[1]*center[1] + p[2]*center[2] + p[3]
		if dist < -radius {
			return false
		}
	}
	return true
}
