// Package plane fits a dominant planar surface to a point cloud using the
// pcgol sample consensus estimator, and classifies the cloud into
// inlier/outlier index sets relative to the fitted plane.
package plane

import (
	"sort"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/sac"
	vgs "github.com/seqsense/pcgol/pc/segmentation/voxelgrid"
)

const (
	defaultResolution    = 0.05
	defaultMaxIterations = 20

	// Voxel count per axis is capped to keep the consensus grid bounded
	// for large scenes.
	maxVoxelsPerAxis = 256
)

// Model is the result of one fit. Inliers and Outliers are ascending index
// sets over the input cloud and partition it completely. A model with no
// inliers means no coherent plane was found; it is not an error.
type Model struct {
	// Plane equation: Normal.Dot(p) + Offset = 0.
	Normal mat.Vec3
	Offset float32

	Inliers  []int
	Outliers []int
}

// Fitter holds the parameters of the consensus search. The zero value is
// usable; unset fields fall back to defaults.
type Fitter struct {
	// DistanceTolerance is the maximum point-to-plane distance for a point
	// to be classified as inlier. Must be >0.
	DistanceTolerance float32
	// MaxIterations is the number of consensus samples to evaluate.
	MaxIterations int
	// Resolution is the voxel size of the grid backing the surface model.
	Resolution float32
	// Seed, when non-zero, replaces the ambient random source by a fixed
	// sequence so that the search is reproducible.
	Seed int64
}

// Fit runs the consensus search on pp. Clouds with fewer than 3 points
// yield a model with zero inliers.
func (f *Fitter) Fit(pp *pc.PointCloud) (*Model, error) {
	if pp == nil || pp.Points < 3 {
		m := &Model{}
		if pp != nil {
			m.Outliers = sequence(pp.Points)
		}
		return m, nil
	}

	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	min, max, err := pc.MinMaxVec3(it)
	if err != nil {
		return nil, err
	}

	res := f.Resolution
	if res <= 0 {
		res = defaultResolution
	}
	ext := max.Sub(min)
	var size [3]int
	for i := range size {
		if r := ext[i] / float32(maxVoxelsPerAxis); r > res {
			res = r
		}
	}
	for i := range size {
		// Voxel indices are rounded to nearest, so the extent maps up to
		// index round(ext/res); size one more than that.
		size[i] = int(ext[i]/res+0.5) + 1
	}

	v := vgs.New(res, size, min)
	if it, err = pp.Vec3Iterator(); err != nil {
		return nil, err
	}
	for i := 0; i < pp.Points; i++ {
		v.Add(it.Vec3At(i), i)
	}
	vIndice := v.Storage().Indice()
	ra := pc.NewIndiceVec3RandomAccessor(it, vIndice)

	iter := f.MaxIterations
	if iter < 1 {
		iter = defaultMaxIterations
	}
	var sampler sac.Sampler
	if f.Seed != 0 {
		sampler = newSeededSampler(f.Seed, ra.Len())
	} else {
		sampler = sac.NewRandomSampler(ra.Len())
	}
	s := sac.New(sampler, sac.NewVoxelGridSurfaceModel(v.Storage(), ra))
	if ok := s.Compute(iter); !ok {
		return &Model{Outliers: sequence(pp.Points)}, nil
	}

	raw := s.Coefficients().Inliers(f.DistanceTolerance)
	inliers := make([]int, len(raw))
	for j, i := range raw {
		inliers[j] = vIndice[i]
	}
	sort.Ints(inliers)

	m := &Model{Inliers: inliers}
	m.Outliers = complement(pp.Points, inliers)
	if len(inliers) >= 3 {
		pts := make([]mat.Vec3, len(inliers))
		for j, i := range inliers {
			pts[j] = it.Vec3At(i)
		}
		if n, c, ok := NormalOf(pts); ok {
			m.Normal = n
			m.Offset = -n.Dot(c)
		}
	}
	return m, nil
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// complement returns the ascending indices of [0,n) not present in the
// ascending set in.
func complement(n int, in []int) []int {
	out := make([]int, 0, n-len(in))
	j := 0
	for i := 0; i < n; i++ {
		if j < len(in) && in[j] == i {
			j++
			continue
		}
		out = append(out, i)
	}
	return out
}
