package cli

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"objrecon/api"
	"objrecon/artifact"
	"objrecon/internal/config"
	"objrecon/pipeline"
	"objrecon/plane"
	"objrecon/sensor"
)

func newServeCmd(configPath *string) *cobra.Command {
	var frames string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconstruction HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			src, err := sensor.NewDirSource(frames)
			if err != nil {
				return err
			}
			// A replayed directory acts as an endless sensor.
			src.Loop = true

			sink, err := newSink(cfg)
			if err != nil {
				return err
			}
			p := pipeline.New(cfg, src, sink, pipeline.LogBroadcaster{})
			p.Publisher = pipeline.LogBroadcaster{}

			s := &api.Server{
				Reconstructor: p,
				Fitter: &plane.Fitter{
					DistanceTolerance: cfg.Plane.DistanceTolerance,
					MaxIterations:     cfg.Plane.MaxIterations,
					Resolution:        cfg.Plane.Resolution,
					Seed:              cfg.Plane.Seed,
				},
			}
			log.Printf("listening on %s", cfg.Listen)
			return http.ListenAndServe(cfg.Listen, s.Handler())
		},
	}
	c.Flags().StringVar(&frames, "frames", "", "directory of .pcd frames replayed as the sensor")
	_ = c.MarkFlagRequired("frames")
	return c
}

func newSink(cfg *config.Config) (artifact.Sink, error) {
	if cfg.ArtifactDir == "" {
		return artifact.Discard, nil
	}
	return &artifact.PerRunDirSink{Base: cfg.ArtifactDir}, nil
}
