// Package asset defines Adaptrix's wire-level data model: the flat
// vertex layout, packed cluster struct, visibility ID encoding, and
// the per-frame view uniform, all laid out exactly as they appear on
// the GPU storage buffers they back.
package asset

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexFloats is the wire-level vertex layout: 8 packed floats,
// position(3) normal(3) uv(2), 32 bytes, matching spec open question
// (b). Position/Normal/UV accessors reinterpret without copying.
type VertexFloats [8]float32

func NewVertex(position, normal mgl32.Vec3, uv mgl32.Vec2) VertexFloats {
	return VertexFloats{
		position.X(), position.Y(), position.Z(),
		normal.X(), normal.Y(), normal.Z(),
		uv.X(), uv.Y(),
	}
}

func (v VertexFloats) Position() mgl32.Vec3 { return mgl32.Vec3{v[0], v[1], v[2]} }
func (v VertexFloats) Normal() mgl32.Vec3   { return mgl32.Vec3{v[3], v[4], v[5]} }
func (v VertexFloats) UV() mgl32.Vec2       { return mgl32.Vec2{v[6], v[7]} }

const VertexSize = 32

// ToBytes writes the little-endian wire representation, matching the
// teacher's manual struct-packing idiom (voxelrt/rt/bvh.BVHNode.ToBytes).
func (v VertexFloats) ToBytes() []byte {
	buf := make([]byte, VertexSize)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
	return buf
}

// VertexFromBytes decodes a 32-byte little-endian slice back into a
// VertexFloats. Used by the LLAD reader path and round-trip tests.
func VertexFromBytes(b []byte) VertexFloats {
	var v VertexFloats
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : i*4+4]))
	}
	return v
}

// QuantizeKey maps a position to an integer grid cell for weld-by-
// quantized-position deduplication at the given grid size, mirroring
// original_source's weld_key = (pos*1000.0) as i32 pattern generalized
// to a configurable grid.
func QuantizeKey(p mgl32.Vec3, grid float64) [3]int64 {
	inv := 1.0 / grid
	return [3]int64{
		int64(math.Round(float64(p.X()) * inv)),
		int64(math.Round(float64(p.Y()) * inv)),
		int64(math.Round(float64(p.Z()) * inv)),
	}
}
