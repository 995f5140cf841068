// Package partition implements spec.md §4.2's Cluster Partitioner
// (raw mesh → bounded clusters) and the group partitioner §4.4 reuses
// at each hierarchy level (cluster set → groups of up to 4). Both are
// greedy region-grow over an adjacency graph using bitset visited sets
// instead of a hash set; PartitionMesh seeds from the highest-valence
// unvisited triangle, PartitionGroups from the next unvisited cluster
// in the order given (spec.md §4.1, grounded on
// original_source/.../partitioner.rs::partition_clusters and the
// teacher's bitset/BFS idiom in voxelrt/rt/volume/xbrickmap.go).
package partition

import (
	"github.com/gekko3d/gekko/internal/adjacency"
	"github.com/go-gl/mathgl/mgl32"
)

// bitset is a flat []uint64 bitset sized for n bits.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) get(i int) bool { return b[i/64]&(1<<uint(i%64)) != 0 }
func (b bitset) set(i int)      { b[i/64] |= 1 << uint(i%64) }

// Cluster is a partitioner-local triangle cluster before it is packed
// into asset.Cluster: local vertex list (global indices, order =
// local index), local triangle list (each entry is 3 local indices).
type Cluster struct {
	GlobalVertices  []uint32 // local index -> global vertex index
	LocalTriangles  [][3]uint8
	Center          mgl32.Vec3
	Radius          float32
}

// PartitionMesh splits a triangle set into clusters bounded by
// maxVerts/maxTris (spec.md §4.2: 128/256 by default), minimizing cut
// edges via greedy region-grow over triangle adjacency. Every input
// triangle ends up in exactly one cluster (P1); empty clusters are
// never emitted.
func PartitionMesh(indices []uint32, positions []mgl32.Vec3, adj adjacency.CSR, maxVerts, maxTris int) []Cluster {
	triCount := len(indices) / 3
	visited := newBitset(triCount)

	// Seed order: highest valence (most neighbors) first, matching
	// spec.md §4.2's "greedy region-grow seeded by high-valence
	// triangles" acceptable algorithm.
	order := make([]int, triCount)
	for i := range order {
		order[i] = i
	}
	valence := func(t int) int { return len(adj.Row(uint32(t))) }
	insertionSortByValenceDesc(order, valence)

	var clusters []Cluster
	for _, start := range order {
		if visited.get(start) {
			continue
		}
		group := growCluster(start, adj, visited, triCount, maxTris)
		if len(group) == 0 {
			continue
		}
		// buildCluster stops admitting triangles at the vertex cap; the
		// rest of the group goes into further clusters.
		for len(group) > 0 {
			c := buildCluster(group, indices, positions, maxVerts)
			if len(c.LocalTriangles) == 0 {
				break
			}
			clusters = append(clusters, c)
			group = group[len(c.LocalTriangles):]
		}
	}
	return clusters
}

// growCluster performs a BFS from start over the triangle adjacency and
// returns up to maxTris unvisited triangles. A triangle is marked
// visited only when it joins the group, so neighbors still queued when
// the cap is reached remain available as later seeds. The vertex bound
// is not checked here; PartitionMesh splits a group whose vertices
// exceed maxVerts across several clusters.
func growCluster(start int, adj adjacency.CSR, visited bitset, triCount, maxTris int) []int {
	queue := []int{start}
	var group []int
	for len(queue) > 0 && len(group) < maxTris {
		t := queue[0]
		queue = queue[1:]
		if visited.get(t) {
			continue
		}
		visited.set(t)
		group = append(group, t)
		for _, n := range adj.Row(uint32(t)) {
			ni := int(n)
			if !visited.get(ni) {
				queue = append(queue, ni)
			}
		}
	}
	return group
}

func buildCluster(triangles []int, indices []uint32, positions []mgl32.Vec3, maxVerts int) Cluster {
	globalToLocal := make(map[uint32]uint8)
	var globalVerts []uint32
	var localTris [][3]uint8

	for _, t := range triangles {
		var corners [3]uint8
		for k := 0; k < 3; k++ {
			g := indices[t*3+k]
			local, ok := globalToLocal[g]
			if !ok {
				if len(globalVerts) >= maxVerts {
					// Vertex budget exhausted: stop admitting further
					// triangles rather than overflow the cluster.
					goto done
				}
				local = uint8(len(globalVerts))
				globalToLocal[g] = local
				globalVerts = append(globalVerts, g)
			}
			corners[k] = local
		}
		localTris = append(localTris, corners)
	}
done:

	pts := make([]mgl32.Vec3, len(globalVerts))
	for i, g := range globalVerts {
		pts[i] = positions[g]
	}
	center, radius := BoundingSphere(pts)

	return Cluster{
		GlobalVertices: globalVerts,
		LocalTriangles: localTris,
		Center:         center,
		Radius:         radius,
	}
}

func insertionSortByValenceDesc(order []int, valence func(int) int) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && valence(order[j]) > valence(order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

// Group is a set of cluster indices selected to be merged and
// simplified together at the next hierarchy level (spec.md §4.4).
type Group struct {
	ClusterIndices []uint32
}

// PartitionGroups region-grows groups of at most maxSize cluster
// indices from the given subset, using cluster adjacency, exactly the
// shape of original_source/.../partitioner.rs::partition_clusters.
// minSize is not enforced: a group holds fewer than minSize clusters,
// down to one, when fewer unvisited in-level neighbors remain.
func PartitionGroups(clusterIndices []uint32, adj adjacency.CSR, numClusters, minSize, maxSize int) []Group {
	visited := newBitset(numClusters)
	inLevel := newBitset(numClusters)
	for _, idx := range clusterIndices {
		inLevel.set(int(idx))
	}

	var groups []Group
	for _, start := range clusterIndices {
		if visited.get(int(start)) {
			continue
		}
		queue := []uint32{start}
		visited.set(int(start))
		var group []uint32
		for len(queue) > 0 && len(group) < maxSize {
			idx := queue[0]
			queue = queue[1:]
			group = append(group, idx)
			for _, n := range adj.Row(idx) {
				if !visited.get(int(n)) && inLevel.get(int(n)) {
					visited.set(int(n))
					queue = append(queue, n)
				}
			}
		}
		if len(group) > 0 {
			groups = append(groups, Group{ClusterIndices: group})
		}
	}
	_ = minSize // groups smaller than minSize are valid at hierarchy boundaries (few remaining clusters); see hierarchy package.
	return groups
}
