package surface

import (
	"errors"
	"math"

	"github.com/seqsense/pcgol/pc"

	"objrecon/cloud"
	"objrecon/mesh"
)

// GridBuilder stitches an organized (row-major width×height) cloud into a
// mesh. Samples the sensor could not observe are marked by NaN
// coordinates; any cell touching a missing sample is skipped, so occluded
// regions come out as open boundary loops.
type GridBuilder struct {
	// Width and Height override the cloud header dimensions when >0.
	Width, Height int
	// MaxEdge skips cells with a stitch longer than this, cutting the
	// surface at depth discontinuities. Zero disables the check.
	MaxEdge float32
}

// Build implements Builder.
func (b *GridBuilder) Build(pp *pc.PointCloud) (*mesh.Mesh, error) {
	if pp == nil || pp.Points == 0 {
		return &mesh.Mesh{}, nil
	}
	w, h := b.Width, b.Height
	if w <= 0 || h <= 0 {
		w, h = pp.Width, pp.Height
	}
	if w <= 0 || h <= 0 || w*h != pp.Points {
		return nil, errors.New("cloud is not organized")
	}
	pts, err := cloud.Vec3s(pp)
	if err != nil {
		return nil, err
	}

	valid := make([]bool, len(pts))
	for i, p := range pts {
		valid[i] = !math.IsNaN(float64(p[0])) &&
			!math.IsNaN(float64(p[1])) &&
			!math.IsNaN(float64(p[2]))
	}

	out := &mesh.Mesh{Vertices: pts}
	maxSq := b.MaxEdge * b.MaxEdge
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			i00 := y*w + x
			i10 := i00 + 1
			i01 := i00 + w
			i11 := i01 + 1
			if !valid[i00] || !valid[i10] || !valid[i01] || !valid[i11] {
				continue
			}
			if b.MaxEdge > 0 {
				long := false
				for _, e := range [][2]int{
					{i00, i10}, {i10, i11}, {i11, i01}, {i01, i00}, {i00, i11},
				} {
					if pts[e[0]].Sub(pts[e[1]]).NormSq() > maxSq {
						long = true
						break
					}
				}
				if long {
					continue
				}
			}
			out.Triangles = append(out.Triangles,
				[3]int{i00, i10, i11},
				[3]int{i00, i11, i01},
			)
		}
	}
	return out, nil
}
