package llad

import (
	"encoding/binary"
	"os"
	"unsafe"

	"github.com/gekko3d/gekko/internal/adaptrixerr"
	"github.com/gekko3d/gekko/internal/asset"
)

// Reader owns the mmap backing a loaded LLAD file. Close must be
// called to release the mapping once the returned Asset is no longer
// needed; the typed slices in Asset alias the mapping's memory and
// become invalid after Close.
type Reader struct {
	file   *os.File
	mapped *mappedFile
	Asset  Asset
}

// Open memory-maps path and returns typed, zero-copy views over its
// four data blobs (P5, scenario 5: no full-file copy into Go-managed
// memory for large assets).
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, adaptrixerr.New(adaptrixerr.Truncated, "llad.Open", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, adaptrixerr.New(adaptrixerr.Truncated, "llad.Open", err)
	}
	size := info.Size()
	if size < int64(headerSize) {
		f.Close()
		return nil, adaptrixerr.Sentinel(adaptrixerr.Truncated)
	}

	mapped, err := mmapFile(f, size)
	if err != nil {
		f.Close()
		return nil, adaptrixerr.New(adaptrixerr.BuildAborted, "llad.Open", err)
	}

	asset, err := parse(mapped.data)
	if err != nil {
		mapped.Unmap()
		f.Close()
		return nil, err
	}

	return &Reader{file: f, mapped: mapped, Asset: asset}, nil
}

// Close unmaps the file and releases its file descriptor.
func (r *Reader) Close() error {
	err := r.mapped.Unmap()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type blobSpan struct {
	offset uint64
	size   uint64
}

func parse(data []byte) (Asset, error) {
	if len(data) < headerSize {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Truncated)
	}
	if string(data[0:4]) != Magic {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.BadMagic)
	}
	le := binary.LittleEndian
	version := le.Uint32(data[4:8])
	if version != CurrentVersion {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Unsupported)
	}
	declaredHeaderSize := le.Uint32(data[8:12])
	if declaredHeaderSize != uint32(headerSize) {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Unsupported)
	}

	var spans [blobCount]blobSpan
	for i := 0; i < blobCount; i++ {
		entry := data[headerFixedSize+i*offsetTableEntrySize:]
		off := le.Uint64(entry[0:8])
		sz := le.Uint64(entry[8:16])
		if off%alignment != 0 {
			return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Misaligned)
		}
		if off+sz > uint64(len(data)) {
			return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Truncated)
		}
		spans[i] = blobSpan{offset: off, size: sz}
	}

	slice := func(i int) []byte {
		s := spans[i]
		return data[s.offset : s.offset+s.size]
	}

	vertexBytes := slice(blobVertices)
	if len(vertexBytes)%asset.VertexSize != 0 {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Misaligned)
	}
	vertices := reinterpret[asset.VertexFloats](vertexBytes)

	meshletBytes := slice(blobMeshletVertexIndices)
	if len(meshletBytes)%4 != 0 {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Misaligned)
	}
	meshletVertexIndices := reinterpret[uint32](meshletBytes)

	primitiveIndices := slice(blobPrimitiveIndices)

	clusterBytes := slice(blobClusters)
	if len(clusterBytes)%asset.ClusterSize != 0 {
		return Asset{}, adaptrixerr.Sentinel(adaptrixerr.Misaligned)
	}
	clusters := reinterpret[asset.Cluster](clusterBytes)

	reserved := slice(blobReserved)
	var buildID [16]byte
	var packing byte
	if len(reserved) >= 17 {
		packing = reserved[0]
		copy(buildID[:], reserved[1:17])
	}

	return Asset{
		Clusters:             clusters,
		Vertices:             vertices,
		MeshletVertexIndices: meshletVertexIndices,
		PrimitiveIndices:     primitiveIndices,
		BuildID:              buildID,
		Packing:              packing,
	}, nil
}

// reinterpret casts a byte span to a typed slice without copying, the
// same unsafe.Slice/unsafe.Pointer idiom the teacher uses to hand raw
// vertex buffers to the GPU.
func reinterpret[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	stride := int(unsafe.Sizeof(zero))
	n := len(b) / stride
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

