// Package artifact persists intermediate pipeline outputs for offline
// inspection. Saving is best effort: the pipeline logs and continues when
// a sink fails.
package artifact

import (
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/seqsense/pcgol/pc"

	"objrecon/mesh"
)

// Logf is the logging hook used by this package and the pipeline when an
// artifact cannot be saved. Replace it with SetLogger to integrate with an
// application logger.
var Logf = log.Printf

// SetLogger replaces the package logger. Passing nil silences it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}

// Sink stores named artifacts of one reconstruction run.
type Sink interface {
	SavePointCloud(name string, pp *pc.PointCloud) error
	SaveMesh(name string, m *mesh.Mesh) error
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) SavePointCloud(string, *pc.PointCloud) error { return nil }
func (discard) SaveMesh(string, *mesh.Mesh) error           { return nil }

// RunStarter is implemented by sinks that group artifacts per
// reconstruction run. The pipeline calls StartRun when a run begins.
type RunStarter interface {
	StartRun() error
}

// PerRunDirSink opens a fresh run directory on every StartRun so that
// successive runs do not overwrite each other's artifacts.
type PerRunDirSink struct {
	Base string

	cur *DirSink
}

// StartRun implements RunStarter.
func (s *PerRunDirSink) StartRun() error {
	d, err := NewDirSink(s.Base)
	if err != nil {
		return err
	}
	s.cur = d
	return nil
}

// Dir returns the current run directory, or "" before the first run.
func (s *PerRunDirSink) Dir() string {
	if s.cur == nil {
		return ""
	}
	return s.cur.Dir()
}

// SavePointCloud implements Sink.
func (s *PerRunDirSink) SavePointCloud(name string, pp *pc.PointCloud) error {
	if s.cur == nil {
		if err := s.StartRun(); err != nil {
			return err
		}
	}
	return s.cur.SavePointCloud(name, pp)
}

// SaveMesh implements Sink.
func (s *PerRunDirSink) SaveMesh(name string, m *mesh.Mesh) error {
	if s.cur == nil {
		if err := s.StartRun(); err != nil {
			return err
		}
	}
	return s.cur.SaveMesh(name, m)
}

// DirSink writes artifacts under a per-run directory. Clouds are stored
// as binary PCD, meshes as Wavefront OBJ.
type DirSink struct {
	dir string
}

// NewDirSink creates base/<random id>/ and returns a sink writing into
// it. Each reconstruction run gets its own sink so artifacts of
// successive runs do not overwrite each other.
func NewDirSink(base string) (*DirSink, error) {
	dir := filepath.Join(base, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the run directory.
func (s *DirSink) Dir() string { return s.dir }

// SavePointCloud implements Sink.
func (s *DirSink) SavePointCloud(name string, pp *pc.PointCloud) error {
	f, err := os.Create(filepath.Join(s.dir, name+".pcd"))
	if err != nil {
		return err
	}
	defer f.Close()
	return pc.Marshal(pp, f)
}

// SaveMesh implements Sink.
func (s *DirSink) SaveMesh(name string, m *mesh.Mesh) error {
	f, err := os.Create(filepath.Join(s.dir, name+".obj"))
	if err != nil {
		return err
	}
	defer f.Close()
	return mesh.WriteOBJ(f, m)
}
