// Package surface converts candidate point clouds into triangulated
// meshes. Holes caused by missing sensor coverage are left as open
// boundaries for the occlusion stage to analyze.
package surface

import (
	"github.com/seqsense/pcgol/pc"

	"objrecon/mesh"
)

// Builder turns one candidate cloud into a surface mesh. Very small or
// empty clouds yield a degenerate (possibly empty) mesh, not an error.
type Builder interface {
	Build(pp *pc.PointCloud) (*mesh.Mesh, error)
}
