package pipeline

import (
	"github.com/seqsense/pcgol/pc"

	"objrecon/artifact"
	"objrecon/mesh"
)

// LogBroadcaster publishes candidates and meshes to the artifact logger.
// It stands in for an external visualization channel.
type LogBroadcaster struct{}

// PublishCandidates implements segment.Broadcaster.
func (LogBroadcaster) PublishCandidates(candidates []*pc.PointCloud) {
	for i, c := range candidates {
		artifact.Logf("broadcast: candidate %d: %d points", i, c.Points)
	}
}

// PublishMeshes implements MeshPublisher.
func (LogBroadcaster) PublishMeshes(meshes []*mesh.Mesh) {
	for i, m := range meshes {
		artifact.Logf("broadcast: mesh %d: %d vertices, %d faces",
			i, len(m.Vertices), len(m.Triangles))
	}
}
