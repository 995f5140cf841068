package asset

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewViewUniform builds a ViewUniform from a view-projection matrix and
// camera parameters, mirroring the teacher's UpdateCamera helper in
// voxelrt/rt/gpu/manager.go but against Adaptrix's own field set.
func NewViewUniform(viewProj mgl32.Mat4, cameraPos mgl32.Vec3, errorThresholdPx, viewportW, viewportH, screenFactor, swThresholdPx float32) ViewUniform {
	invViewProj, ok := viewProj.Inverse()
	if !ok {
		invViewProj = mgl32.Ident4()
	}
	var u ViewUniform
	u.ViewProj = mat4ToArray(viewProj)
	u.InvViewProj = mat4ToArray(invViewProj)
	u.CameraPos = [4]float32{cameraPos.X(), cameraPos.Y(), cameraPos.Z(), 0}
	u.ErrorThresholdPx = errorThresholdPx
	u.ViewportW = viewportW
	u.ViewportH = viewportH
	u.ScreenFactor = screenFactor
	u.SWThresholdPx = swThresholdPx
	return u
}

// ScreenFactorFromFOV computes viewport_h/(2*tan(fov_y/2)), the
// constant the culler multiplies a cluster's world-space error by to
// get a screen-space pixel error (spec.md §4.6).
func ScreenFactorFromFOV(fovY, viewportH float32) float32 {
	return viewportH / (2 * float32(math.Tan(float64(fovY)/2)))
}

func mat4ToArray(m mgl32.Mat4) [4][4]float32 {
	var out [4][4]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row][col] = m.At(row, col)
		}
	}
	return out
}

// ToBytes writes the little-endian wire representation of ViewUniform,
// matching the teacher's manual binary.LittleEndian packing style.
func (u ViewUniform) ToBytes() []byte {
	buf := make([]byte, ViewUniformSize)
	off := 0
	writeMat := func(m [4][4]float32) {
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(m[row][col]))
				off += 4
			}
		}
	}
	writeMat(u.ViewProj)
	writeMat(u.InvViewProj)
	for _, f := range u.CameraPos {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u.ErrorThresholdPx))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u.ViewportW))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u.ViewportH))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u.ScreenFactor))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u.SWThresholdPx))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u._pad0))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u._pad1))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(u._pad2))
	return buf
}
