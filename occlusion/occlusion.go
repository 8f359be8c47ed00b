// Package occlusion finds open boundary loops in a reconstructed mesh,
// the footprint of missing sensor coverage, and synthesizes geometry to
// close them.
package occlusion

import (
	"github.com/seqsense/pcgol/mat"

	"objrecon/mesh"
)

// Hole is a maximal closed loop of boundary edges. Loop lists the vertex
// indices in walk order; Edges the corresponding boundary edges. The first
// loop vertex is not repeated at the end.
type Hole struct {
	Loop  []int
	Edges []mesh.Edge
}

// Report is the outcome of one detection pass. Every boundary edge of the
// mesh appears in exactly one hole or in Dangling. Dangling edges belong
// to a non-manifold boundary region; they are diagnosable, not fatal.
type Report struct {
	Holes    []Hole
	Dangling []mesh.Edge
}

// Detect classifies the whole boundary-edge set of m in one pass.
// A watertight mesh yields an empty report.
func Detect(m *mesh.Mesh) Report {
	boundary := m.BoundaryEdges()
	if len(boundary) == 0 {
		return Report{}
	}

	degree := map[int]int{}
	for _, e := range boundary {
		degree[e.A]++
		degree[e.B]++
	}

	// Edges touching a vertex of boundary degree != 2 cannot be part of a
	// simple loop.
	adj := map[int][]mesh.Edge{}
	var rep Report
	walkable := make([]bool, len(boundary))
	for i, e := range boundary {
		if degree[e.A] != 2 || degree[e.B] != 2 {
			rep.Dangling = append(rep.Dangling, e)
			continue
		}
		walkable[i] = true
		adj[e.A] = append(adj[e.A], e)
		adj[e.B] = append(adj[e.B], e)
	}

	used := map[mesh.Edge]bool{}
	for i, e := range boundary {
		if !walkable[i] || used[e] {
			continue
		}
		loop, edges, closed := walk(e, adj, used)
		if closed {
			rep.Holes = append(rep.Holes, Hole{Loop: loop, Edges: edges})
		} else {
			rep.Dangling = append(rep.Dangling, edges...)
		}
	}
	return rep
}

// walk follows the boundary starting at e until it returns to its start
// vertex or runs out of continuations.
func walk(start mesh.Edge, adj map[int][]mesh.Edge, used map[mesh.Edge]bool) (loop []int, edges []mesh.Edge, closed bool) {
	used[start] = true
	loop = []int{start.A, start.B}
	edges = []mesh.Edge{start}
	cur := start.B
	for {
		var next mesh.Edge
		found := false
		for _, e := range adj[cur] {
			if !used[e] {
				next = e
				found = true
				break
			}
		}
		if !found {
			// Stranded before returning to the start vertex.
			return loop, edges, false
		}
		used[next] = true
		edges = append(edges, next)
		if next.A == cur {
			cur = next.B
		} else {
			cur = next.A
		}
		if cur == start.A {
			return loop, edges, len(edges) >= 3
		}
		loop = append(loop, cur)
	}
}

// Repair returns a copy of m with every hole closed by a fan of triangles
// around a new vertex at the loop centroid. Existing vertices keep their
// positions; only new vertices and faces are appended.
func Repair(m *mesh.Mesh, holes []Hole) *mesh.Mesh {
	out := &mesh.Mesh{
		Vertices:  append([]mat.Vec3{}, m.Vertices...),
		Triangles: append([][3]int{}, m.Triangles...),
	}
	for _, h := range holes {
		if len(h.Loop) < 3 {
			continue
		}
		var c mat.Vec3
		for _, v := range h.Loop {
			c = c.Add(out.Vertices[v])
		}
		c = c.Mul(1 / float32(len(h.Loop)))
		ci := len(out.Vertices)
		out.Vertices = append(out.Vertices, c)
		for i, v := range h.Loop {
			w := h.Loop[(i+1)%len(h.Loop)]
			out.Triangles = append(out.Triangles, [3]int{v, w, ci})
		}
	}
	return out
}
