package asset

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// ParentErrorSentinel marks a leaf cluster: parent_error = +inf in
// spec prose, represented as any value > ParentErrorSentinel on disk
// and in memory (spec.md §3: "sentinel > 9e9").
const ParentErrorSentinel = 9e9

// ClusterSize is the packed on-disk/on-GPU size of Cluster, matching
// original_source's ClusterPacked (repr C): center_radius(16) +
// vertex_offset+triangle_offset+counts(12) + lod_error+parent_error(8)
// + child_base+child_count+reserved(12) = 48 bytes, 16-byte aligned.
const ClusterSize = 48

// Cluster is the packed cluster record, identical in meaning to
// spec.md §3's Cluster entity and original_source's ClusterPacked.
// Every field is a flat 4-byte scalar in wire order with no embedded
// vector type, so the in-memory layout matches the 48-byte wire
// layout exactly: the LLAD reader reinterprets the clusters blob in
// place (reinterpret[Cluster]) instead of decoding each record, the
// same zero-copy path Vertices and MeshletVertexIndices already use.
type Cluster struct {
	CenterX        float32
	CenterY        float32
	CenterZ        float32
	Radius         float32
	VertexOffset   uint32
	TriangleOffset uint32
	// PackedCounts is vertex_count (low byte) | triangle_count<<8;
	// triangle_count takes the next two bytes so a full 256-triangle
	// cluster fits.
	PackedCounts uint32
	LodError     float32
	ParentError  float32
	ChildBase    uint32
	ChildCount   uint32
	reserved     uint32
}

// These fail to compile if Cluster's in-memory layout ever drifts
// from the 48-byte wire layout reinterpret relies on (either bound
// alone only catches growth or shrinkage, not both).
var _ [ClusterSize - unsafe.Sizeof(Cluster{})]byte
var _ [unsafe.Sizeof(Cluster{}) - ClusterSize]byte

// NewCluster builds a Cluster from its logical fields, packing
// vertexCount/triangleCount into PackedCounts.
func NewCluster(center mgl32.Vec3, radius float32, vertexOffset, triangleOffset uint32, vertexCount uint8, triangleCount uint16, lodError, parentError float32, childBase, childCount uint32) Cluster {
	return Cluster{
		CenterX:        center.X(),
		CenterY:        center.Y(),
		CenterZ:        center.Z(),
		Radius:         radius,
		VertexOffset:   vertexOffset,
		TriangleOffset: triangleOffset,
		PackedCounts:   packCounts(vertexCount, triangleCount),
		LodError:       lodError,
		ParentError:    parentError,
		ChildBase:      childBase,
		ChildCount:     childCount,
	}
}

func (c Cluster) Center() mgl32.Vec3 { return mgl32.Vec3{c.CenterX, c.CenterY, c.CenterZ} }

func (c Cluster) VertexCount() uint8 {
	vc, _ := unpackCounts(c.PackedCounts)
	return vc
}

func (c Cluster) TriangleCount() uint16 {
	_, tc := unpackCounts(c.PackedCounts)
	return tc
}

// IsLeaf reports whether this cluster has no children, i.e. its
// parent_error carries the sentinel value (spec.md §3, §4.6).
func (c Cluster) IsLeaf() bool { return c.ParentError > ParentErrorSentinel }

// packCounts packs vertex_count (low byte) and triangle_count (next
// two bytes) into a single u32, per spec.md §3's "counts (packed: low
// byte = vertex_count, next byte = triangle_count)".
func packCounts(vertexCount uint8, triangleCount uint16) uint32 {
	return uint32(vertexCount) | (uint32(triangleCount) << 8)
}

func unpackCounts(packed uint32) (vertexCount uint8, triangleCount uint16) {
	return uint8(packed & 0xFF), uint16((packed >> 8) & 0xFFFF)
}

// ToBytes writes the little-endian wire representation of a cluster.
// Layout: center(12) radius(4) vertex_offset(4) triangle_offset(4)
// counts(4) lod_error(4) parent_error(4) child_base(4) child_count(4)
// reserved(4) = 48 bytes.
func (c Cluster) ToBytes() []byte {
	buf := make([]byte, ClusterSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], math.Float32bits(c.CenterX))
	le.PutUint32(buf[4:8], math.Float32bits(c.CenterY))
	le.PutUint32(buf[8:12], math.Float32bits(c.CenterZ))
	le.PutUint32(buf[12:16], math.Float32bits(c.Radius))
	le.PutUint32(buf[16:20], c.VertexOffset)
	le.PutUint32(buf[20:24], c.TriangleOffset)
	le.PutUint32(buf[24:28], c.PackedCounts)
	le.PutUint32(buf[28:32], math.Float32bits(c.LodError))
	le.PutUint32(buf[32:36], math.Float32bits(c.ParentError))
	le.PutUint32(buf[36:40], c.ChildBase)
	le.PutUint32(buf[40:44], c.ChildCount)
	le.PutUint32(buf[44:48], 0)
	return buf
}

// ClusterFromBytes decodes a 48-byte little-endian slice into a
// Cluster. Used by tests and anywhere a single record needs decoding
// off the fast path; the reader itself reinterprets the whole blob in
// place instead of calling this record by record.
func ClusterFromBytes(b []byte) Cluster {
	le := binary.LittleEndian
	return Cluster{
		CenterX:        math.Float32frombits(le.Uint32(b[0:4])),
		CenterY:        math.Float32frombits(le.Uint32(b[4:8])),
		CenterZ:        math.Float32frombits(le.Uint32(b[8:12])),
		Radius:         math.Float32frombits(le.Uint32(b[12:16])),
		VertexOffset:   le.Uint32(b[16:20]),
		TriangleOffset: le.Uint32(b[20:24]),
		PackedCounts:   le.Uint32(b[24:28]),
		LodError:       math.Float32frombits(le.Uint32(b[28:32])),
		ParentError:    math.Float32frombits(le.Uint32(b[32:36])),
		ChildBase:      le.Uint32(b[36:40]),
		ChildCount:     le.Uint32(b[40:44]),
	}
}

// DAG is the full built hierarchy: clusters plus the flat arrays they
// index into, ready for LLAD serialization. ChildIndices is build-time
// bookkeeping only (not one of the LLAD blobs in spec.md §4.5): the
// runtime cut test only ever reads a cluster's own lod_error/
// parent_error, never walks child pointers, so child relationships
// need not survive the round trip to disk.
type DAG struct {
	Clusters             []Cluster
	Vertices             []VertexFloats
	MeshletVertexIndices []uint32 // global vertex index per cluster-local slot
	PrimitiveIndices     []uint8  // local (0..127) vertex index per triangle corner
	ChildIndices         []uint32 // flat pool; Cluster.ChildBase/ChildCount range into this
}

// MeshInstance pairs a world transform with the cluster range of one
// mesh within a DAG, mirroring original_source's lib.rs MeshInstance.
type MeshInstance struct {
	WorldFromLocal mgl32.Mat4
	ClusterBase    uint32
	ClusterCount   uint32
}
