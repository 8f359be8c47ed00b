// Package pipeline drives one object reconstruction run: accumulate
// sensor frames, strip the support plane, cluster candidates, build a
// mesh per candidate and repair occlusion holes.
package pipeline

import (
	"context"
	"fmt"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/filter/voxelgrid"

	"objrecon/artifact"
	"objrecon/internal/config"
	"objrecon/mesh"
	"objrecon/occlusion"
	"objrecon/plane"
	"objrecon/segment"
	"objrecon/sensor"
	"objrecon/surface"
)

// State names the stage a run is in. It exists for error context and
// logging; runs are synchronous and single-threaded.
type State int

const (
	Idle State = iota
	Accumulating
	Extracting
	NoCandidates
	Meshing
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Extracting:
		return "extracting"
	case NoCandidates:
		return "no-candidates"
	case Meshing:
		return "meshing"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// HoleReport summarizes the occlusion analysis of one candidate mesh.
type HoleReport struct {
	Candidate int
	Holes     int
	Dangling  int
	Repaired  bool
}

// Result of one reconstruction run. Success is false when the scene
// yielded no candidate objects; that is a valid outcome, not an error.
type Result struct {
	Success bool
	Meshes  []*mesh.Mesh
	Reports []HoleReport
}

// MeshPublisher receives finished meshes for external visualization.
type MeshPublisher interface {
	PublishMeshes(meshes []*mesh.Mesh)
}

// Pipeline holds the fixed collaborators of reconstruction runs. All
// per-run data lives in the run started by Run, so a Pipeline itself
// carries no state between invocations.
type Pipeline struct {
	// Builder triangulates candidate clouds. Defaults to a GreedyBuilder
	// configured from the surface config section.
	Builder surface.Builder
	// Publisher, when set, receives the final meshes of successful runs.
	Publisher MeshPublisher

	cfg       *config.Config
	acc       *sensor.Accumulator
	extractor *segment.Extractor
	sink      artifact.Sink
}

// New wires a pipeline from configuration. sink may be nil to disable
// artifact output; broadcaster may be nil to disable candidate broadcast.
func New(cfg *config.Config, source sensor.Source, sink artifact.Sink, broadcaster segment.Broadcaster) *Pipeline {
	if sink == nil {
		sink = artifact.Discard
	}
	return &Pipeline{
		Builder: &surface.GreedyBuilder{Radius: cfg.Surface.NeighborRadius},
		cfg:     cfg,
		acc:     &sensor.Accumulator{Source: source},
		extractor: &segment.Extractor{
			Fitter: &plane.Fitter{
				DistanceTolerance: cfg.Plane.DistanceTolerance,
				MaxIterations:     cfg.Plane.MaxIterations,
				Resolution:        cfg.Plane.Resolution,
				Seed:              cfg.Plane.Seed,
			},
			MinPlanePoints:   cfg.Plane.MinPoints,
			Resolution:       cfg.Segmentation.Resolution,
			MinClusterPoints: cfg.Segmentation.MinClusterPoints,
			Broadcaster:      broadcaster,
		},
		sink: sink,
	}
}

// run is the request-scoped context of one invocation.
type run struct {
	*Pipeline
	state State
}

// Run executes one reconstruction. Runs must not overlap; callers
// serialize them (the HTTP layer does so with a mutex).
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	r := &run{Pipeline: p, state: Idle}
	if rs, ok := p.sink.(artifact.RunStarter); ok {
		if err := rs.StartRun(); err != nil {
			artifact.Logf("pipeline: start artifact run: %v", err)
		}
	}

	r.state = Accumulating
	scene, err := r.acc.Accumulate(ctx, r.cfg.FrameCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.state, err)
	}
	r.save("01-accumulated", scene)

	if res := r.cfg.DownsampleResolution; res > 0 && scene.Points > 0 {
		vg := voxelgrid.New(mat.Vec3{res, res, res})
		filtered, err := vg.Filter(scene)
		if err != nil {
			return nil, fmt.Errorf("%s: downsample: %w", r.state, err)
		}
		scene = filtered
		r.save("00-debug-downsampled", scene)
	}

	r.state = Extracting
	candidates, err := r.extractor.Extract(scene)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.state, err)
	}
	if len(candidates) == 0 {
		r.state = NoCandidates
		return &Result{Success: false, Meshes: []*mesh.Mesh{}}, nil
	}
	r.extractor.Publish(candidates)

	r.state = Meshing
	result := &Result{Success: true}
	for i, cand := range candidates {
		r.save(fmt.Sprintf("02-candidate-%02d", i), cand)
		m, err := r.Builder.Build(cand)
		if err != nil {
			return nil, fmt.Errorf("%s: candidate %d: %w", r.state, i, err)
		}
		r.saveMesh(fmt.Sprintf("03-mesh-%02d", i), m)

		rep := occlusion.Detect(m)
		hr := HoleReport{Candidate: i, Holes: len(rep.Holes), Dangling: len(rep.Dangling)}
		if r.cfg.Repair.Enabled && len(rep.Holes) > 0 {
			m = occlusion.Repair(m, rep.Holes)
			hr.Repaired = true
			r.saveMesh(fmt.Sprintf("04-repaired-%02d", i), m)
		}
		result.Meshes = append(result.Meshes, m)
		result.Reports = append(result.Reports, hr)
	}

	if p.Publisher != nil {
		p.Publisher.PublishMeshes(result.Meshes)
	}
	r.state = Done
	return result, nil
}

// save and saveMesh are best effort: a sink failure is logged, never
// propagated.
func (r *run) save(name string, pp *pc.PointCloud) {
	if err := r.sink.SavePointCloud(name, pp); err != nil {
		artifact.Logf("pipeline: save %s: %v", name, err)
	}
}

func (r *run) saveMesh(name string, m *mesh.Mesh) {
	if err := r.sink.SaveMesh(name, m); err != nil {
		artifact.Logf("pipeline: save %s: %v", name, err)
	}
}
