// Package llad implements the LLAD ("Lume Adaptrix Data") on-disk
// asset container of spec.md §4.5/§6: a magic header, a 16-byte
// aligned offset table for five blobs, and the blobs themselves,
// little-endian throughout. The reader returns typed spans over an
// mmap without copying (P5, scenario 5).
package llad

import "github.com/gekko3d/gekko/internal/asset"

const (
	Magic         = "LLAD"
	CurrentVersion = uint32(1)

	// blob indices into the fixed 5-entry offset table, per spec.md §4.5.
	blobVertices             = 0
	blobMeshletVertexIndices = 1
	blobPrimitiveIndices     = 2
	blobClusters             = 3
	blobReserved             = 4
	blobCount                = 5

	alignment = 16
)

// headerFixedSize is magic(4) + version(4) + header_size(4) + padding
// to keep the offset table itself 16-byte aligned, per spec.md §4.5:
// "0x08 header_size u32, then 5x(offset u64, size u64)".
const headerFixedSize = 16
const offsetTableEntrySize = 16 // one (offset u64, size u64) pair
const headerSize = headerFixedSize + blobCount*offsetTableEntrySize

// PackingByte values recorded in the reserved blob's first byte, per
// spec.md §9 open question (a) and SPEC_FULL.md §3.
const (
	PackingByte20_12 = 0
	PackingByte16_16 = 1
)

func alignUp(n uint64) uint64 {
	rem := n % alignment
	if rem == 0 {
		return n
	}
	return n + (alignment - rem)
}

// Asset is the in-memory (or mmap-backed) view over a loaded LLAD
// file's four data blobs plus its stamped build UUID.
type Asset struct {
	Clusters             []asset.Cluster
	Vertices             []asset.VertexFloats
	MeshletVertexIndices []uint32
	PrimitiveIndices     []uint8
	BuildID              [16]byte
	Packing              byte
}
