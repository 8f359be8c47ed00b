// Package mesh holds the vertex/face surface representation produced by the
// reconstruction stages, with the edge adjacency needed to reason about
// open boundaries.
package mesh

import (
	"fmt"
	"sort"

	"github.com/seqsense/pcgol/mat"
)

// Mesh is a triangulated surface. Every triangle references vertices by
// index into Vertices. Isolated vertices (referenced by no triangle) are
// allowed; they carry points that did not contribute to the surface.
type Mesh struct {
	Vertices  []mat.Vec3
	Triangles [][3]int
}

// Edge is an undirected vertex pair with A < B.
type Edge struct {
	A, B int
}

// NewEdge normalizes the endpoint order.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// IsEmpty reports whether the mesh has no geometry at all.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// Validate checks that every triangle references valid, distinct vertices.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, t := range m.Triangles {
		for _, v := range t {
			if v < 0 || v >= n {
				return fmt.Errorf("triangle %d references invalid vertex %d (of %d)", i, v, n)
			}
		}
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			return fmt.Errorf("triangle %d is degenerate: %v", i, t)
		}
	}
	return nil
}

// EdgeUses counts, for every edge, the number of triangles using it.
func (m *Mesh) EdgeUses() map[Edge]int {
	uses := make(map[Edge]int, 3*len(m.Triangles))
	for _, t := range m.Triangles {
		uses[NewEdge(t[0], t[1])]++
		uses[NewEdge(t[1], t[2])]++
		uses[NewEdge(t[2], t[0])]++
	}
	return uses
}

// BoundaryEdges returns the edges used by exactly one triangle, in
// ascending (A, B) order.
func (m *Mesh) BoundaryEdges() []Edge {
	var out []Edge
	for e, n := range m.EdgeUses() {
		if n == 1 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// IsWatertight reports whether the mesh has faces and no boundary edges.
func (m *Mesh) IsWatertight() bool {
	return len(m.Triangles) > 0 && len(m.BoundaryEdges()) == 0
}
