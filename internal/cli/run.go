package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"objrecon/pipeline"
	"objrecon/sensor"
	"objrecon/surface"
)

func newRunCmd(configPath *string) *cobra.Command {
	var (
		frames     string
		gridW      int
		gridH      int
		prettyJSON bool
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Run one reconstruction over recorded frames and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			src, err := sensor.NewDirSource(frames)
			if err != nil {
				return err
			}
			sink, err := newSink(cfg)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, src, sink, pipeline.LogBroadcaster{})
			if gridW > 0 && gridH > 0 {
				p.Builder = &surface.GridBuilder{
					Width:   gridW,
					Height:  gridH,
					MaxEdge: cfg.Surface.MaxEdge,
				}
			}

			res, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			if prettyJSON {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(struct {
				Success bool                  `json:"success"`
				Meshes  int                   `json:"meshes"`
				Reports []pipeline.HoleReport `json:"reports,omitempty"`
			}{res.Success, len(res.Meshes), res.Reports})
		},
	}
	c.Flags().StringVar(&frames, "frames", "", "directory of .pcd frames")
	c.Flags().IntVar(&gridW, "grid-width", 0, "treat candidates as organized clouds of this width")
	c.Flags().IntVar(&gridH, "grid-height", 0, "treat candidates as organized clouds of this height")
	c.Flags().BoolVar(&prettyJSON, "pretty", false, "indent JSON output")
	_ = c.MarkFlagRequired("frames")
	return c
}
