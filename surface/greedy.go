package surface

import (
	"math"
	"sort"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	storage "github.com/seqsense/pcgol/pc/storage/voxelgrid"

	"objrecon/cloud"
	"objrecon/mesh"
	"objrecon/plane"
)

const (
	defaultRadius       = 0.05
	defaultMaxNeighbors = 16
	defaultMaxGap       = math.Pi / 2
)

var cursor [][3]int

func init() {
	for _, x := range []int{-1, 0, 1} {
		for _, y := range []int{-1, 0, 1} {
			for _, z := range []int{-1, 0, 1} {
				cursor = append(cursor, [3]int{x, y, z})
			}
		}
	}
}

// GreedyBuilder triangulates an unorganized cloud by fanning each point to
// its angularly consecutive neighbors on the local tangent plane. Regions
// without samples stay open: a pair of neighbors is only connected when
// the angular gap between them is small.
type GreedyBuilder struct {
	// Radius is the neighbor connection radius. Faces only connect
	// vertices within this distance of each other.
	Radius float32
	// MaxNeighbors bounds the fan size per point.
	MaxNeighbors int
	// MaxGap is the largest angular gap (radians) between consecutive
	// neighbors that still gets bridged by a triangle.
	MaxGap float64
}

// Build implements Builder. Every input point becomes a mesh vertex at the
// same index; points without enough neighbors stay isolated.
func (b *GreedyBuilder) Build(pp *pc.PointCloud) (*mesh.Mesh, error) {
	if pp == nil || pp.Points == 0 {
		return &mesh.Mesh{}, nil
	}
	pts, err := cloud.Vec3s(pp)
	if err != nil {
		return nil, err
	}

	r := b.Radius
	if r <= 0 {
		r = defaultRadius
	}
	maxNb := b.MaxNeighbors
	if maxNb <= 0 {
		maxNb = defaultMaxNeighbors
	}
	maxGap := b.MaxGap
	if maxGap <= 0 {
		maxGap = defaultMaxGap
	}

	min, max := pts[0], pts[0]
	for _, p := range pts {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	ext := max.Sub(min)
	var size [3]int
	for i := range size {
		// Voxel indices are rounded to nearest, so the extent maps up to
		// index round(ext/r); size one more than that.
		size[i] = int(ext[i]/r+0.5) + 1
	}
	vg := storage.New(r, size, min)
	for i, p := range pts {
		vg.Add(p, i)
	}

	out := &mesh.Mesh{Vertices: pts}
	seen := map[[3]int]bool{}
	rSq := r * r

	nb := make([]neighbor, 0, 64)
	local := make([]mat.Vec3, 0, 64)
	for i, p := range pts {
		nb = nb[:0]
		pos, ok := vg.PosInt(p)
		if !ok {
			continue
		}
		for _, d := range cursor {
			addr, ok := vg.AddrByPosInt([3]int{pos[0] + d[0], pos[1] + d[1], pos[2] + d[2]})
			if !ok {
				continue
			}
			for _, j := range vg.GetByAddr(addr) {
				if j == i {
					continue
				}
				if dSq := pts[j].Sub(p).NormSq(); dSq <= rSq {
					nb = append(nb, neighbor{index: j, distSq: dSq})
				}
			}
		}
		if len(nb) < 2 {
			continue
		}
		sort.Slice(nb, func(a, b int) bool {
			if nb[a].distSq != nb[b].distSq {
				return nb[a].distSq < nb[b].distSq
			}
			return nb[a].index < nb[b].index
		})
		if len(nb) > maxNb {
			nb = nb[:maxNb]
		}

		local = local[:0]
		local = append(local, p)
		for _, n := range nb {
			local = append(local, pts[n.index])
		}
		normal, _, ok := plane.NormalOf(local)
		if !ok {
			continue
		}
		u, v := tangentBasis(normal)
		for k := range nb {
			d := pts[nb[k].index].Sub(p)
			nb[k].angle = math.Atan2(float64(d.Dot(v)), float64(d.Dot(u)))
		}
		sort.Slice(nb, func(a, b int) bool {
			if nb[a].angle != nb[b].angle {
				return nb[a].angle < nb[b].angle
			}
			return nb[a].index < nb[b].index
		})

		for k := range nb {
			a, c := nb[k], nb[(k+1)%len(nb)]
			gap := c.angle - a.angle
			if k == len(nb)-1 {
				gap += 2 * math.Pi
			}
			if gap > maxGap {
				continue
			}
			if pts[a.index].Sub(pts[c.index]).NormSq() > rSq {
				continue
			}
			tri := [3]int{i, a.index, c.index}
			key := sortedTriple(tri)
			if seen[key] {
				continue
			}
			if degenerate(pts[tri[0]], pts[tri[1]], pts[tri[2]]) {
				continue
			}
			seen[key] = true
			out.Triangles = append(out.Triangles, tri)
		}
	}
	return out, nil
}

type neighbor struct {
	index  int
	distSq float32
	angle  float64
}

// tangentBasis builds an orthonormal pair spanning the plane orthogonal
// to n. The reference axis is the one least aligned with n so that the
// cross product stays well conditioned.
func tangentBasis(n mat.Vec3) (u, v mat.Vec3) {
	k := 0
	if abs(n[1]) < abs(n[k]) {
		k = 1
	}
	if abs(n[2]) < abs(n[k]) {
		k = 2
	}
	var axis mat.Vec3
	axis[k] = 1
	u = n.Cross(axis).Normalized()
	v = n.Cross(u)
	return u, v
}

func abs(a float32) float32 {
	if a < 0 {
		return -a
	}
	return a
}

func sortedTriple(t [3]int) [3]int {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	return t
}

func degenerate(a, b, c mat.Vec3) bool {
	const minAreaSq = 1e-12
	return b.Sub(a).Cross(c.Sub(a)).NormSq() < minAreaSq
}
