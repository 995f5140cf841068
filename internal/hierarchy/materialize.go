package hierarchy

import (
	"github.com/gekko3d/gekko/internal/asset"
)

// materialize flattens every level's clusterRecords into the final
// asset.DAG: a single Clusters array (global indices assigned level by
// level), a shared meshlet_vertex_indices array, a packed
// primitive_indices array, and the finished vertex pool.
func materialize(levels [][]clusterRecord, pool *vertexPool) asset.DAG {
	// First pass: compute each level's base offset into the final
	// clusters array, so children (indices local to the previous
	// level) can be remapped to global cluster indices.
	levelBase := make([]int, len(levels))
	total := 0
	for i, lvl := range levels {
		levelBase[i] = total
		total += len(lvl)
	}

	var clusters []asset.Cluster
	var meshletVertexIndices []uint32
	var primitiveIndices []uint8
	var childIndices []uint32

	for li, lvl := range levels {
		childLevelBase := 0
		if li > 0 {
			childLevelBase = levelBase[li-1]
		}
		for _, rec := range lvl {
			vertexOffset := uint32(len(meshletVertexIndices))
			meshletVertexIndices = append(meshletVertexIndices, rec.globalVertices...)

			triangleOffset := uint32(len(primitiveIndices))
			for _, tri := range rec.localTriangles {
				primitiveIndices = append(primitiveIndices, tri[0], tri[1], tri[2])
			}

			childBase := uint32(len(childIndices))
			for _, c := range rec.childIndices {
				childIndices = append(childIndices, uint32(childLevelBase)+c)
			}

			parentError := rec.parentError
			clusters = append(clusters, asset.NewCluster(
				rec.center, rec.radius,
				vertexOffset, triangleOffset,
				uint8(len(rec.globalVertices)), uint16(len(rec.localTriangles)),
				rec.lodError, parentError,
				childBase, uint32(len(rec.childIndices)),
			))
		}
	}

	vertices := make([]asset.VertexFloats, len(pool.positions))
	for i := range pool.positions {
		uv := pool.uvs[i]
		vertices[i] = asset.NewVertex(pool.positions[i], pool.normals[i], uv)
	}

	return asset.DAG{
		Clusters:             clusters,
		Vertices:              vertices,
		MeshletVertexIndices:  meshletVertexIndices,
		PrimitiveIndices:      primitiveIndices,
		ChildIndices:          childIndices,
	}
}
