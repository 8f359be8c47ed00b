// Package config loads the reconstruction service configuration from a
// YAML file, with sane defaults for every field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// FrameCount is the number of sensor frames accumulated per request.
	FrameCount int `yaml:"frame_count"`
	// DownsampleResolution is the voxel size used to thin the accumulated
	// cloud before processing. Zero disables downsampling.
	DownsampleResolution float32 `yaml:"downsample_resolution"`

	Plane        Plane        `yaml:"plane"`
	Segmentation Segmentation `yaml:"segmentation"`
	Surface      Surface      `yaml:"surface"`
	Repair       Repair       `yaml:"repair"`

	// ArtifactDir is the base directory for per-run diagnostic output.
	// Empty disables artifact saving.
	ArtifactDir string `yaml:"artifact_dir"`
	// Listen is the HTTP listen address of the service.
	Listen string `yaml:"listen"`
}

type Plane struct {
	DistanceTolerance float32 `yaml:"distance_tolerance"`
	MaxIterations     int     `yaml:"max_iterations"`
	Resolution        float32 `yaml:"resolution"`
	// MinPoints is the inlier count below which no support plane is
	// considered present and the whole cloud is clustered.
	MinPoints int `yaml:"min_points"`
	// Seed fixes the plane fit sampling when nonzero.
	Seed int64 `yaml:"seed"`
}

type Segmentation struct {
	Resolution       float32 `yaml:"resolution"`
	MinClusterPoints int     `yaml:"min_cluster_points"`
}

type Surface struct {
	NeighborRadius float32 `yaml:"neighbor_radius"`
	MaxEdge        float32 `yaml:"max_edge"`
}

type Repair struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		FrameCount:           5,
		DownsampleResolution: 0.005,
		Plane: Plane{
			DistanceTolerance: 0.01,
			MaxIterations:     200,
			Resolution:        0.05,
			MinPoints:         500,
		},
		Segmentation: Segmentation{
			Resolution:       0.02,
			MinClusterPoints: 100,
		},
		Surface: Surface{
			NeighborRadius: 0.025,
		},
		Repair:      Repair{Enabled: true},
		ArtifactDir: "",
		Listen:      ":8080",
	}
}

// Load reads a YAML file over the defaults. Fields missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.FrameCount <= 0 {
		return fmt.Errorf("frame_count must be positive, got %d", c.FrameCount)
	}
	if c.Plane.DistanceTolerance <= 0 {
		return fmt.Errorf("plane.distance_tolerance must be positive, got %f", c.Plane.DistanceTolerance)
	}
	if c.Plane.MaxIterations <= 0 {
		return fmt.Errorf("plane.max_iterations must be positive, got %d", c.Plane.MaxIterations)
	}
	if c.Segmentation.Resolution <= 0 {
		return fmt.Errorf("segmentation.resolution must be positive, got %f", c.Segmentation.Resolution)
	}
	if c.Segmentation.MinClusterPoints < 0 {
		return fmt.Errorf("segmentation.min_cluster_points must not be negative, got %d", c.Segmentation.MinClusterPoints)
	}
	return nil
}
