package sensor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"

	"objrecon/cloud"
)

func mustCloud(t *testing.T, pts []mat.Vec3) *pc.PointCloud {
	t.Helper()
	pp, err := cloud.FromVec3s(pts)
	if err != nil {
		t.Fatal(err)
	}
	return pp
}

func TestAccumulate(t *testing.T) {
	src := &SliceSource{Clouds: []*pc.PointCloud{
		mustCloud(t, []mat.Vec3{{1, 0, 0}}),
		mustCloud(t, []mat.Vec3{{2, 0, 0}, {3, 0, 0}}),
		mustCloud(t, []mat.Vec3{{4, 0, 0}}),
	}}
	a := &Accumulator{Source: src}
	pp, err := a.Accumulate(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	pts, err := cloud.Vec3s(pp)
	if err != nil {
		t.Fatal(err)
	}
	expected := []mat.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}}
	if !reflect.DeepEqual(expected, pts) {
		t.Errorf("Expected points %v, got: %v", expected, pts)
	}
}

func TestAccumulate_zeroFrames(t *testing.T) {
	a := &Accumulator{Source: &SliceSource{}}
	pp, err := a.Accumulate(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if pp.Points != 0 {
		t.Errorf("Expected empty cloud, got: %d points", pp.Points)
	}
}

func TestAccumulate_exhausted(t *testing.T) {
	src := &SliceSource{Clouds: []*pc.PointCloud{
		mustCloud(t, []mat.Vec3{{1, 0, 0}}),
	}}
	a := &Accumulator{Source: src}
	_, err := a.Accumulate(context.Background(), 2)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("Expected ErrExhausted, got: %v", err)
	}
}

func TestAccumulate_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &Accumulator{Source: &SliceSource{}}
	if _, err := a.Accumulate(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestSliceSource_loop(t *testing.T) {
	src := &SliceSource{
		Clouds: []*pc.PointCloud{
			mustCloud(t, []mat.Vec3{{1, 0, 0}}),
			mustCloud(t, []mat.Vec3{{2, 0, 0}}),
		},
		Loop: true,
	}
	ctx := context.Background()
	var xs []float32
	for i := 0; i < 5; i++ {
		pp, err := src.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		pts, _ := cloud.Vec3s(pp)
		xs = append(xs, pts[0][0])
	}
	expected := []float32{1, 2, 1, 2, 1}
	if !reflect.DeepEqual(expected, xs) {
		t.Errorf("Expected frames %v, got: %v", expected, xs)
	}
}

func writePCD(t *testing.T, path string, pts []mat.Vec3) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pc.Marshal(mustCloud(t, pts), f); err != nil {
		t.Fatal(err)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writePCD(t, filepath.Join(dir, "frame-01.pcd"), []mat.Vec3{{1, 0, 0}})
	writePCD(t, filepath.Join(dir, "frame-00.pcd"), []mat.Vec3{{0, 0, 0}})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for i, expected := range []float32{0, 1} {
		pp, err := src.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		pts, err := cloud.Vec3s(pp)
		if err != nil {
			t.Fatal(err)
		}
		if len(pts) != 1 || pts[0][0] != expected {
			t.Errorf("Frame %d: expected x=%f, got: %v", i, expected, pts)
		}
	}
	if _, err := src.Next(ctx); !errors.Is(err, ErrExhausted) {
		t.Errorf("Expected ErrExhausted, got: %v", err)
	}
}

func TestNewDirSource_empty(t *testing.T) {
	if _, err := NewDirSource(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without .pcd files")
	}
}
