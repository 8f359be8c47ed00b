package surface

import (
	"math"
	"reflect"
	"testing"

	"github.com/seqsense/pcgol/mat"

	"objrecon/cloud"
	"objrecon/occlusion"
)

func TestGreedyBuild_empty(t *testing.T) {
	b := &GreedyBuilder{}
	m, err := b.Build(cloud.New(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 0 || len(m.Triangles) != 0 {
		t.Errorf("Expected empty mesh, got: %d vertices, %d triangles",
			len(m.Vertices), len(m.Triangles))
	}
	if m, err = b.Build(nil); err != nil || !m.IsEmpty() {
		t.Errorf("Expected empty mesh for nil cloud, got: %v, %v", m, err)
	}
}

func TestGreedyBuild_tinyCloud(t *testing.T) {
	pp, _ := cloud.FromVec3s([]mat.Vec3{{0, 0, 0}, {0.01, 0, 0}})
	b := &GreedyBuilder{Radius: 0.08}
	m, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 2 {
		t.Errorf("Expected 2 vertices, got: %d", len(m.Vertices))
	}
	if len(m.Triangles) != 0 {
		t.Errorf("Expected degenerate mesh without faces, got: %d triangles", len(m.Triangles))
	}
}

func TestGreedyBuild_planarGrid(t *testing.T) {
	var pts []mat.Vec3
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			pts = append(pts, mat.Vec3{float32(x) * 0.05, float32(y) * 0.05, 0})
		}
	}
	pp, err := cloud.FromVec3s(pts)
	if err != nil {
		t.Fatal(err)
	}

	b := &GreedyBuilder{Radius: 0.08}
	m, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != len(pts) {
		t.Fatalf("Every input point must map to one vertex, got: %d of %d",
			len(m.Vertices), len(pts))
	}
	if len(m.Triangles) == 0 {
		t.Fatal("Expected a non-empty triangulation of a dense grid")
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}

	// The builder is a pure function of the cloud.
	m2, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, m2) {
		t.Error("Expected deterministic triangulation")
	}
}

func TestGreedyBuild_extentMultipleOfRadius(t *testing.T) {
	// The grid extent (0.16) is an exact multiple of the connection
	// radius. Points on the extent boundary must still join the
	// triangulation instead of staying isolated.
	var pts []mat.Vec3
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			pts = append(pts, mat.Vec3{float32(x) * 0.04, float32(y) * 0.04, 0})
		}
	}
	pp, err := cloud.FromVec3s(pts)
	if err != nil {
		t.Fatal(err)
	}

	b := &GreedyBuilder{Radius: 0.08}
	m, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	used := make([]bool, len(m.Vertices))
	for _, tri := range m.Triangles {
		for _, v := range tri {
			used[v] = true
		}
	}
	for i, u := range used {
		if !u {
			t.Errorf("Vertex %d (%v) is isolated", i, m.Vertices[i])
		}
	}
}

func organizedGrid(w, h int, spacing float32) []mat.Vec3 {
	var pts []mat.Vec3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pts = append(pts, mat.Vec3{float32(x) * spacing, float32(y) * spacing, 0})
		}
	}
	return pts
}

func TestGridBuild_full(t *testing.T) {
	pts := organizedGrid(4, 3, 0.05)
	pp, _ := cloud.FromVec3s(pts)
	b := &GridBuilder{Width: 4, Height: 3}
	m, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) != 12 { // 3x2 cells, 2 triangles each
		t.Fatalf("Expected 12 triangles, got: %d", len(m.Triangles))
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	rep := occlusion.Detect(m)
	if len(rep.Holes) != 1 {
		t.Fatalf("Expected only the outer rim as boundary loop, got: %d holes", len(rep.Holes))
	}
	if len(rep.Holes[0].Edges) != 10 { // 2*(3+2) perimeter edges
		t.Errorf("Expected 10 rim edges, got: %d", len(rep.Holes[0].Edges))
	}
}

func TestGridBuild_missingSampleMakesHole(t *testing.T) {
	pts := organizedGrid(5, 5, 0.05)
	nan := float32(math.NaN())
	pts[12] = mat.Vec3{nan, nan, nan} // center sample unobserved
	pp, _ := cloud.FromVec3s(pts)

	b := &GridBuilder{Width: 5, Height: 5}
	m, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) != 24 { // 16 cells minus the 4 touching the gap
		t.Fatalf("Expected 24 triangles, got: %d", len(m.Triangles))
	}

	rep := occlusion.Detect(m)
	if len(rep.Dangling) != 0 {
		t.Fatalf("Expected manifold boundary, got dangling: %v", rep.Dangling)
	}
	if len(rep.Holes) != 2 {
		t.Fatalf("Expected outer rim and inner hole, got: %d holes", len(rep.Holes))
	}
	sizes := []int{len(rep.Holes[0].Edges), len(rep.Holes[1].Edges)}
	if !(sizes[0] == 16 && sizes[1] == 8) && !(sizes[0] == 8 && sizes[1] == 16) {
		t.Errorf("Expected an 8-edge hole and the 16-edge rim, got: %v", sizes)
	}
}

func TestGridBuild_notOrganized(t *testing.T) {
	pp, _ := cloud.FromVec3s(organizedGrid(4, 3, 0.05))
	b := &GridBuilder{Width: 5, Height: 5}
	if _, err := b.Build(pp); err == nil {
		t.Error("Expected error for mismatched grid dimensions")
	}
}

func TestGridBuild_maxEdgeCutsDiscontinuity(t *testing.T) {
	pts := organizedGrid(3, 2, 0.05)
	// Push one corner far away in depth.
	pts[2][2] = 1.0
	pp, _ := cloud.FromVec3s(pts)

	b := &GridBuilder{Width: 3, Height: 2, MaxEdge: 0.2}
	m, err := b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) != 2 { // right cell skipped
		t.Errorf("Expected 2 triangles, got: %d", len(m.Triangles))
	}

	b.MaxEdge = 0
	m, err = b.Build(pp)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) != 4 {
		t.Errorf("Expected 4 triangles without edge limit, got: %d", len(m.Triangles))
	}
}
