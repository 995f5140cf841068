package llad

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/gekko3d/gekko/internal/adaptrixerr"
	"github.com/gekko3d/gekko/internal/asset"
	"github.com/google/uuid"
)

// Write serializes dag to path as an LLAD file. No partial file is
// ever visible under the final name: the asset is staged in a temp
// file in the destination directory and renamed into place
// (spec.md §7: "writer uses a temp file + rename").
func Write(path string, dag asset.DAG, packing byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".llad-*.tmp")
	if err != nil {
		return adaptrixerr.New(adaptrixerr.BuildAborted, "llad.Write", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath) // no-op once the rename below succeeds
	}()

	if err := writeTo(tmp, dag, packing); err != nil {
		return adaptrixerr.New(adaptrixerr.BuildAborted, "llad.Write", err)
	}
	if err := tmp.Close(); err != nil {
		return adaptrixerr.New(adaptrixerr.BuildAborted, "llad.Write", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return adaptrixerr.New(adaptrixerr.BuildAborted, "llad.Write", err)
	}
	return nil
}

func writeTo(f *os.File, dag asset.DAG, packing byte) error {
	verticesBytes := make([]byte, 0, len(dag.Vertices)*asset.VertexSize)
	for _, v := range dag.Vertices {
		verticesBytes = append(verticesBytes, v.ToBytes()...)
	}

	meshletBytes := make([]byte, len(dag.MeshletVertexIndices)*4)
	for i, v := range dag.MeshletVertexIndices {
		binary.LittleEndian.PutUint32(meshletBytes[i*4:i*4+4], v)
	}

	primitiveBytes := dag.PrimitiveIndices

	clusterBytes := make([]byte, 0, len(dag.Clusters)*asset.ClusterSize)
	for _, c := range dag.Clusters {
		clusterBytes = append(clusterBytes, c.ToBytes()...)
	}

	buildID := uuid.New()
	reservedBytes := make([]byte, 17)
	reservedBytes[0] = packing
	copy(reservedBytes[1:], buildID[:])

	blobs := [blobCount][]byte{
		blobVertices:             verticesBytes,
		blobMeshletVertexIndices: meshletBytes,
		blobPrimitiveIndices:     primitiveBytes,
		blobClusters:             clusterBytes,
		blobReserved:             reservedBytes,
	}

	offsets := [blobCount]uint64{}
	cursor := uint64(headerSize)
	cursor = alignUp(cursor)
	for i, b := range blobs {
		cursor = alignUp(cursor)
		offsets[i] = cursor
		cursor += uint64(len(b))
	}

	header := make([]byte, headerSize)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], CurrentVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(headerSize))
	// header[12:16] reserved padding, already zero.
	for i := 0; i < blobCount; i++ {
		entry := header[headerFixedSize+i*offsetTableEntrySize:]
		binary.LittleEndian.PutUint64(entry[0:8], offsets[i])
		binary.LittleEndian.PutUint64(entry[8:16], uint64(len(blobs[i])))
	}

	if _, err := f.Write(header); err != nil {
		return err
	}
	written := uint64(len(header))
	for i, b := range blobs {
		if err := padTo(f, &written, offsets[i]); err != nil {
			return err
		}
		if _, err := f.Write(b); err != nil {
			return err
		}
		written += uint64(len(b))
		_ = i
	}
	return nil
}

func padTo(f *os.File, written *uint64, target uint64) error {
	if target < *written {
		return nil
	}
	pad := target - *written
	if pad == 0 {
		return nil
	}
	zeros := make([]byte, pad)
	if _, err := f.Write(zeros); err != nil {
		return err
	}
	*written += pad
	return nil
}
