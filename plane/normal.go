package plane

import (
	"github.com/seqsense/pcgol/mat"
	gmat "gonum.org/v1/gonum/mat"
)

// NormalOf estimates the unit normal of the plane best fitting pts as the
// eigenvector of the smallest eigenvalue of the point covariance, and
// returns it together with the centroid. ok is false when the covariance
// is degenerate (fewer than 3 points or rank-deficient input).
func NormalOf(pts []mat.Vec3) (normal, centroid mat.Vec3, ok bool) {
	if len(pts) < 3 {
		return mat.Vec3{}, mat.Vec3{}, false
	}
	var c mat.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1 / float32(len(pts)))

	var cov [9]float64
	for _, p := range pts {
		d := p.Sub(c)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i*3+j] += float64(d[i]) * float64(d[j])
			}
		}
	}

	var eig gmat.EigenSym
	if ok := eig.Factorize(gmat.NewSymDense(3, cov[:]), true); !ok {
		return mat.Vec3{}, mat.Vec3{}, false
	}
	var vecs gmat.Dense
	eig.VectorsTo(&vecs)
	// Eigenvalues are in ascending order; the first column spans the
	// direction of least variance.
	n := mat.Vec3{
		float32(vecs.At(0, 0)),
		float32(vecs.At(1, 0)),
		float32(vecs.At(2, 0)),
	}
	if n.NormSq() == 0 {
		return mat.Vec3{}, mat.Vec3{}, false
	}
	return n.Normalized(), c, true
}
