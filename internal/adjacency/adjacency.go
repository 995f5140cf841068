// Package adjacency builds triangle and cluster neighbor structures in
// linear time and bounded memory, as required by spec.md §4.1. The
// triangle-level builder backs the cluster partitioner's region-grow
// seed selection; the cluster-level builder backs the hierarchy
// builder's grouping step (§4.4).
package adjacency

import (
	"sort"

	"github.com/gekko3d/gekko/internal/adaptrixerr"
)

// CSR is a compressed-sparse-row adjacency: row i's neighbors are
// Neighbors[Offsets[i]:Offsets[i+1]].
type CSR struct {
	Offsets   []uint32
	Neighbors []uint32
}

func (c CSR) Row(i uint32) []uint32 {
	return c.Neighbors[c.Offsets[i]:c.Offsets[i+1]]
}

// BuildTriangleAdjacency computes, for each triangle in an indexed
// mesh, the up-to-three triangles sharing an edge with it. It builds a
// vertex→triangle CSR first (§4.1 steps a-c), then intersects the two
// endpoint rows per edge — each row has average degree <20 on a
// manifold, so the whole pass is O(M). memoryBudget bounds the
// intermediate vertex_triangle array; exceeding it fails Oversize
// rather than allocating unbounded memory.
func BuildTriangleAdjacency(indices []uint32, vertexCount int, memoryBudget int) (CSR, error) {
	if len(indices)%3 != 0 {
		return CSR{}, adaptrixerr.New(adaptrixerr.Oversize, "adjacency.BuildTriangleAdjacency", errNotTriples)
	}
	triCount := len(indices) / 3

	// (a) vertex_triangle_count
	counts := make([]uint32, vertexCount)
	for _, v := range indices {
		counts[v]++
	}

	// (b) prefix sum
	offsets := make([]uint32, vertexCount+1)
	for v := 0; v < vertexCount; v++ {
		offsets[v+1] = offsets[v] + counts[v]
	}

	entryBytes := int(offsets[vertexCount]) * 4
	if memoryBudget > 0 && entryBytes > memoryBudget {
		return CSR{}, adaptrixerr.New(adaptrixerr.Oversize, "adjacency.BuildTriangleAdjacency", errBudget)
	}

	// (c) scatter triangle references
	vertexTriangle := make([]uint32, offsets[vertexCount])
	cursor := append([]uint32{}, offsets[:vertexCount]...)
	for t := 0; t < triCount; t++ {
		for k := 0; k < 3; k++ {
			v := indices[t*3+k]
			vertexTriangle[cursor[v]] = uint32(t)
			cursor[v]++
		}
	}
	vertexTriangles := CSR{Offsets: offsets, Neighbors: vertexTriangle}

	// edge -> triangle lookup: for each triangle's three edges,
	// intersect the two endpoint rows.
	neighborSets := make([]map[uint32]struct{}, triCount)
	for t := 0; t < triCount; t++ {
		neighborSets[t] = make(map[uint32]struct{}, 3)
	}
	for t := 0; t < triCount; t++ {
		for k := 0; k < 3; k++ {
			a := indices[t*3+k]
			b := indices[t*3+(k+1)%3]
			rowA := vertexTriangles.Row(a)
			rowB := vertexTriangles.Row(b)
			for _, ta := range rowA {
				if ta == uint32(t) {
					continue
				}
				for _, tb := range rowB {
					if ta == tb {
						neighborSets[t][ta] = struct{}{}
						neighborSets[ta][uint32(t)] = struct{}{}
					}
				}
			}
		}
	}

	outOffsets := make([]uint32, triCount+1)
	for t := 0; t < triCount; t++ {
		outOffsets[t+1] = outOffsets[t] + uint32(len(neighborSets[t]))
	}
	outNeighbors := make([]uint32, outOffsets[triCount])
	pos := 0
	for t := 0; t < triCount; t++ {
		ns := make([]uint32, 0, len(neighborSets[t]))
		for n := range neighborSets[t] {
			ns = append(ns, n)
		}
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
		copy(outNeighbors[pos:], ns)
		pos += len(ns)
	}

	return CSR{Offsets: outOffsets, Neighbors: outNeighbors}, nil
}

// ClusterVertexRange locates a cluster's local-to-global vertex index
// slice within the shared meshlet_vertex_indices array.
type ClusterVertexRange struct {
	Offset uint32
	Count  uint32
}

// BuildClusterAdjacency links two clusters iff they share any vertex.
// Grounded on original_source/.../partitioner.rs::build_adjacency: it
// only connects clusters adjacent in vertex-id sorted order, which is
// enough to keep the graph connected at O(M) instead of the O(M^2)
// all-pairs link, then dedups and emits CSR.
func BuildClusterAdjacency(clusterIndices []uint32, meshletVertexIndices []uint32, ranges []ClusterVertexRange, numClusters int) CSR {
	type entry struct {
		vertex  uint32
		cluster uint32
	}
	entries := make([]entry, 0, len(clusterIndices)*32)
	for _, ci := range clusterIndices {
		r := ranges[ci]
		for i := uint32(0); i < r.Count; i++ {
			v := meshletVertexIndices[r.Offset+i]
			entries = append(entries, entry{vertex: v, cluster: ci})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].vertex < entries[j].vertex })

	type pair struct{ a, b uint32 }
	pairs := make([]pair, 0, len(entries))
	i := 0
	for i < len(entries) {
		j := i + 1
		for j < len(entries) && entries[j].vertex == entries[i].vertex {
			j++
		}
		for k := i; k < j-1; k++ {
			c1, c2 := entries[k].cluster, entries[k+1].cluster
			if c1 != c2 {
				if c1 > c2 {
					c1, c2 = c2, c1
				}
				pairs = append(pairs, pair{c1, c2})
			}
		}
		i = j
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	deduped := pairs[:0:0]
	for idx, p := range pairs {
		if idx == 0 || p != pairs[idx-1] {
			deduped = append(deduped, p)
		}
	}

	offsets := make([]uint32, numClusters+1)
	for _, p := range deduped {
		offsets[p.a+1]++
		offsets[p.b+1]++
	}
	for i := 0; i < numClusters; i++ {
		offsets[i+1] += offsets[i]
	}
	cursor := append([]uint32{}, offsets[:numClusters]...)
	neighbors := make([]uint32, offsets[numClusters])
	for _, p := range deduped {
		neighbors[cursor[p.a]] = p.b
		cursor[p.a]++
		neighbors[cursor[p.b]] = p.a
		cursor[p.b]++
	}
	return CSR{Offsets: offsets, Neighbors: neighbors}
}

var errNotTriples = simpleErr("index stream length not a multiple of 3")
var errBudget = simpleErr("vertex-triangle table exceeds memory budget")

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
