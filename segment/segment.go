// Package segment extracts spatially distinct object candidates from an
// accumulated scene cloud. The dominant support surface is removed first
// via a consensus plane fit; the remaining points are grouped by voxel-grid
// connectivity and small groups are discarded as noise.
package segment

import (
	"sort"

	"github.com/seqsense/pcgol/pc"
	vgs "github.com/seqsense/pcgol/pc/segmentation/voxelgrid"

	"objrecon/cloud"
	"objrecon/plane"
)

const (
	defaultResolution       = 0.05
	defaultMinClusterPoints = 30

	maxVoxelsPerAxis = 256
)

// Broadcaster receives extracted candidates for external visualization.
// Calls are fire-and-forget; implementations must not block the pipeline.
type Broadcaster interface {
	PublishCandidates(candidates []*pc.PointCloud)
}

// Extractor partitions a scene cloud into candidate object clouds.
type Extractor struct {
	// Fitter removes the support surface. Required.
	Fitter *plane.Fitter
	// MinPlanePoints is the minimum inlier count for a fitted plane to be
	// treated as the support surface. Below it the whole cloud is clustered.
	MinPlanePoints int
	// Resolution is the neighbor radius of the connectivity rule: points
	// in the same or adjacent voxels of this size belong to one candidate.
	Resolution float32
	// MinClusterPoints discards smaller clusters as noise.
	MinClusterPoints int

	// Broadcaster, when set, is the target of Publish.
	Broadcaster Broadcaster
}

// Extract returns the candidate clouds of pp, ordered by the first cloud
// index at which each cluster was seeded. Candidates are pairwise disjoint
// in source-point membership. An empty result is valid and means no
// reconstructible object was found.
func (e *Extractor) Extract(pp *pc.PointCloud) ([]*pc.PointCloud, error) {
	if pp == nil || pp.Points == 0 {
		return nil, nil
	}

	m, err := e.Fitter.Fit(pp)
	if err != nil {
		return nil, err
	}
	working := m.Outliers
	if minPts := e.MinPlanePoints; len(m.Inliers) < minPts {
		// No dominant support surface; cluster the whole cloud.
		working = append(append([]int{}, m.Inliers...), m.Outliers...)
		sort.Ints(working)
	}
	if len(working) == 0 {
		return nil, nil
	}

	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}

	res := e.Resolution
	if res <= 0 {
		res = defaultResolution
	}
	min := it.Vec3At(working[0])
	max := min
	for _, i := range working {
		p := it.Vec3At(i)
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
	for _, i := range working {
		v.Add(it.Vec3At(i), i)
	}

	minCluster := e.MinClusterPoints
	if minCluster <= 0 {
		minCluster = defaultMinClusterPoints
	}

	var candidates []*pc.PointCloud
	visited := make([]bool, pp.Points)
	for _, i := range working {
		if visited[i] {
			continue
		}
		indice := v.Segment(it.Vec3At(i))
		if len(indice) == 0 {
			visited[i] = true
			continue
		}
		for _, j := range indice {
			visited[j] = true
		}
		if len(indice) < minCluster {
			continue
		}
		sort.Ints(indice)
		candidates = append(candidates, cloud.Select(pp, indice))
	}
	return candidates, nil
}

// Publish broadcasts the candidates when a Broadcaster is configured.
func (e *Extractor) Publish(candidates []*pc.PointCloud) {
	if e.Broadcaster == nil || len(candidates) == 0 {
		return
	}
	e.Broadcaster.PublishCandidates(candidates)
}
