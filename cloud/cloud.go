// Package cloud provides constructors and slicing helpers for pcgol point
// clouds with plain x, y, z fields.
package cloud

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// New returns an empty cloud with n points of preallocated x, y, z storage.
func New(n int) *pc.PointCloud {
	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version:   0.7,
			Fields:    []string{"x", "y", "z"},
			Size:      []int{4, 4, 4},
			Type:      []string{"F", "F", "F"},
			Count:     []int{1, 1, 1},
			Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
			Width:     n,
			Height:    1,
		},
		Points: n,
	}
	pp.Data = make([]byte, n*pp.Stride())
	return pp
}

// FromVec3s packs the given points into a new cloud, keeping their order.
func FromVec3s(pts []mat.Vec3) (*pc.PointCloud, error) {
	pp := New(len(pts))
	if len(pts) == 0 {
		return pp, nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	for _, p := range pts {
		it.SetVec3(p)
		it.Incr()
	}
	return pp, nil
}

// Vec3s materializes the cloud points in storage order.
func Vec3s(pp *pc.PointCloud) ([]mat.Vec3, error) {
	if pp == nil || pp.Points == 0 {
		return nil, nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	out := make([]mat.Vec3, pp.Points)
	for i := 0; i < pp.Points; i++ {
		out[i] = it.Vec3At(i)
	}
	return out, nil
}

// Merge concatenates the given clouds in argument order. Nil and empty
// clouds are skipped. No deduplication or alignment is performed; frames
// are assumed to be co-registered already.
func Merge(pps ...*pc.PointCloud) *pc.PointCloud {
	var first *pc.PointCloud
	var n int
	for _, pp := range pps {
		if pp == nil || pp.Points == 0 {
			continue
		}
		if first == nil {
			first = pp
		}
		n += pp.Points
	}
	if first == nil {
		return New(0)
	}
	out := &pc.PointCloud{
		PointCloudHeader: first.PointCloudHeader.Clone(),
		Points:           n,
	}
	out.Width = n
	out.Height = 1
	out.Data = make([]byte, 0, n*out.Stride())
	for _, pp := range pps {
		if pp == nil || pp.Points == 0 {
			continue
		}
		out.Data = append(out.Data, pp.Data[:pp.Points*pp.Stride()]...)
	}
	return out
}

// Select returns a new cloud holding the points of pp at the given indices,
// in index order. Indices must be valid for pp.
func Select(pp *pc.PointCloud, indice []int) *pc.PointCloud {
	out := &pc.PointCloud{
		PointCloudHeader: pp.PointCloudHeader.Clone(),
		Points:           len(indice),
	}
	out.Width = len(indice)
	out.Height = 1
	out.Data = make([]byte, len(indice)*out.Stride())
	for j, i := range indice {
		pc.Copy(out, j, pp, i, 1)
	}
	return out
}
