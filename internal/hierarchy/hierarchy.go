// Package hierarchy implements spec.md §4.4's Hierarchy Builder: the
// iterative group→simplify→partition loop that turns the finest-level
// clusters from internal/partition into a full ClusterDAG with
// monotone per-node error, dispatching independent groups to a
// work-stealing pool (§5). Grounded on
// original_source/lume-adaptrix/src/processor/builder.rs::build /
// build_next_level for the level loop and error-growth curve.
package hierarchy

import (
	"math"
	"sync"

	"github.com/gekko3d/gekko/internal/adjacency"
	"github.com/gekko3d/gekko/internal/asset"
	"github.com/gekko3d/gekko/internal/partition"
	"github.com/gekko3d/gekko/internal/simplify"
	"github.com/go-gl/mathgl/mgl32"
)

// Params mirrors internal/config.BuildConfig's fields the builder
// needs, kept separate so this package has no dependency on config's
// TOML concerns.
type Params struct {
	MaxVerticesPerCluster  int
	MaxTrianglesPerCluster int
	GroupSizeMin           int
	GroupSizeMax           int
	WeldQuantization       float64
	BaseErrorThreshold     float64
	MinReduction           float64
	WorkerCount            int
}

// clusterRecord is the builder's working representation of one
// cluster, before it is packed into asset.Cluster.
type clusterRecord struct {
	globalVertices []uint32
	localTriangles [][3]uint8
	center         mgl32.Vec3
	radius         float32
	lodError       float32
	parentError    float32
	childIndices   []uint32 // global indices of this cluster's children, empty for leaves
}

// Build runs the full level loop over an indexed triangle mesh and
// returns the finished DAG.
func Build(indices []uint32, positions []mgl32.Vec3, normals []mgl32.Vec3, uvs []mgl32.Vec2, p Params) (asset.DAG, error) {
	pool := newVertexPool(positions, normals, uvs)

	triAdj, err := adjacency.BuildTriangleAdjacency(indices, len(positions), 0)
	if err != nil {
		return asset.DAG{}, err
	}
	level0 := partition.PartitionMesh(indices, positions, triAdj, p.MaxVerticesPerCluster, p.MaxTrianglesPerCluster)

	current := make([]clusterRecord, len(level0))
	for i, c := range level0 {
		current[i] = clusterRecord{
			globalVertices: c.GlobalVertices,
			localTriangles: c.LocalTriangles,
			center:         c.Center,
			radius:         c.Radius,
			lodError:       0,
			parentError:    asset.ParentErrorSentinel + 1,
		}
	}

	var allLevels [][]clusterRecord
	allLevels = append(allLevels, current)

	wp := NewWorkerPool(p.WorkerCount)
	defer wp.Close()

	level := 0
	for {
		totalTris := 0
		for _, c := range current {
			totalTris += len(c.localTriangles)
		}
		if len(current) <= 1 || totalTris < 128 {
			break
		}

		next, err := buildNextLevel(current, pool, wp, level, p)
		if err != nil {
			return asset.DAG{}, err
		}
		if len(next) >= len(current) {
			// No further progress possible (e.g. every group fell back
			// to NonManifold pass-through); stop rather than loop
			// forever, per spec.md §4.4 step 4's termination clause
			// generalized to a stuck-progress guard.
			break
		}
		applyBackPatch(current, next)
		allLevels = append(allLevels, next)
		current = next
		level++
	}

	return materialize(allLevels, pool), nil
}

type groupResult struct {
	newClusters  []clusterRecord
	childGlobals [][]uint32 // parallel to newClusters: child indices within `current`
}

func buildNextLevel(current []clusterRecord, pool *vertexPool, wp *WorkerPool, level int, p Params) ([]clusterRecord, error) {
	numClusters := len(current)
	ranges := make([]adjacency.ClusterVertexRange, numClusters)
	var flatVerts []uint32
	for i, c := range current {
		ranges[i] = adjacency.ClusterVertexRange{Offset: uint32(len(flatVerts)), Count: uint32(len(c.globalVertices))}
		flatVerts = append(flatVerts, c.globalVertices...)
	}
	allIndices := make([]uint32, numClusters)
	for i := range allIndices {
		allIndices[i] = uint32(i)
	}
	clusterAdj := adjacency.BuildClusterAdjacency(allIndices, flatVerts, ranges, numClusters)

	groups := partition.PartitionGroups(allIndices, clusterAdj, numClusters, p.GroupSizeMin, p.GroupSizeMax)

	results := make([]groupResult, len(groups))
	var mu sync.Mutex // protects errOnce; the vertex pool locks its own mutex in append
	var errOnce error

	for gi, g := range groups {
		gi, g := gi, g
		wp.Submit(func() {
			res, err := processGroup(current, g, clusterAdj, pool, level, p)
			if err != nil {
				mu.Lock()
				if errOnce == nil {
					errOnce = err
				}
				mu.Unlock()
				return
			}
			results[gi] = res
		})
	}
	wp.Wait()
	if errOnce != nil {
		return nil, errOnce
	}

	// Single-threaded reduce: flatten every group's new clusters,
	// resolving childGlobals (indices into `current`) into nothing yet
	// — applyBackPatch (run by the caller against `current`) uses
	// those same indices, so no remapping is needed here.
	var next []clusterRecord
	for _, r := range results {
		for i, nc := range r.newClusters {
			nc.childIndices = r.childGlobals[i]
			next = append(next, nc)
		}
	}
	return next, nil
}

// processGroup runs §4.3 (weld+simplify) and §4.2 (re-partition) for
// one group. It touches only the group's own clusters plus the shared
// vertex pool (whose append takes the pool's own mutex), matching spec.md §5's
// "workers touch only their private cluster pool."
func processGroup(current []clusterRecord, g partition.Group, clusterAdj adjacency.CSR, pool *vertexPool, level int, p Params) (groupResult, error) {
	inGroup := make(map[uint32]bool, len(g.ClusterIndices))
	for _, idx := range g.ClusterIndices {
		inGroup[idx] = true
	}

	var clusterVerts [][]mgl32.Vec3
	var clusterTris [][][3]uint8
	boundaryKeys := make(map[[3]int64]bool)

	for _, idx := range g.ClusterIndices {
		c := current[idx]
		pts := make([]mgl32.Vec3, len(c.globalVertices))
		for i, gv := range c.globalVertices {
			pts[i] = pool.position(gv)
		}
		clusterVerts = append(clusterVerts, pts)
		clusterTris = append(clusterTris, c.localTriangles)

		for _, nb := range clusterAdj.Row(idx) {
			if inGroup[nb] {
				continue
			}
			for _, gv := range current[nb].globalVertices {
				boundaryKeys[asset.QuantizeKey(pool.position(gv), p.WeldQuantization)] = true
			}
		}
	}

	welded := simplify.WeldGroup(clusterVerts, clusterTris, p.WeldQuantization)
	pinned := make([]bool, len(welded.Vertices))
	for i, v := range welded.Vertices {
		if boundaryKeys[asset.QuantizeKey(v, p.WeldQuantization)] {
			pinned[i] = true
		}
	}

	errorThreshold := p.BaseErrorThreshold * math.Pow(2, float64(level))
	reductionRatio := 0.5
	if level >= 3 {
		reductionRatio = 0.25
	}

	simplified, simErr := simplify.Simplify(welded, pinned, reductionRatio, p.MinReduction)
	groupError := errorThreshold
	mesh := simplified.Mesh
	if simErr != nil {
		// NonManifold: pass the group through unchanged (spec.md §4.3).
		mesh = welded
		groupError = 0
	} else {
		groupError = math.Sqrt(simplified.Error) * errorThreshold
	}

	childMaxLod := float32(0)
	for _, idx := range g.ClusterIndices {
		if current[idx].lodError > childMaxLod {
			childMaxLod = current[idx].lodError
		}
	}
	newLodError := childMaxLod
	if float32(groupError) > newLodError {
		newLodError = float32(groupError)
	}

	newTriAdj, err := adjacency.BuildTriangleAdjacency(flattenTriangles(mesh.Triangles), len(mesh.Vertices), 0)
	if err != nil {
		return groupResult{}, err
	}
	newClusters := partition.PartitionMesh(flattenTriangles(mesh.Triangles), mesh.Vertices, newTriAdj, p.MaxVerticesPerCluster, p.MaxTrianglesPerCluster)

	records := make([]clusterRecord, len(newClusters))
	childGlobals := make([][]uint32, len(newClusters))
	for i, nc := range newClusters {
		globalIdx := make([]uint32, len(nc.GlobalVertices))
		for j, localVert := range nc.GlobalVertices {
			globalIdx[j] = pool.append(mesh.Vertices[localVert], mgl32.Vec3{0, 1, 0}, mgl32.Vec2{0, 0})
		}
		records[i] = clusterRecord{
			globalVertices: globalIdx,
			localTriangles: nc.LocalTriangles,
			center:         nc.Center,
			radius:         nc.Radius,
			lodError:       newLodError,
			parentError:    asset.ParentErrorSentinel + 1,
		}
		childGlobals[i] = g.ClusterIndices
	}

	return groupResult{newClusters: records, childGlobals: childGlobals}, nil
}

func flattenTriangles(tris [][3]uint32) []uint32 {
	out := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// applyBackPatch sets parent_error := max(parent_error, new_cluster.lod_error)
// for every child named by a level's cluster (spec.md §4.4 step 3).
func applyBackPatch(current, next []clusterRecord) {
	for _, nc := range next {
		for _, childIdx := range nc.childIndices {
			if current[childIdx].parentError > asset.ParentErrorSentinel {
				current[childIdx].parentError = nc.lodError
			} else if nc.lodError > current[childIdx].parentError {
				current[childIdx].parentError = nc.lodError
			}
		}
	}
}
