package cli

import (
	"fmt"
	"os"

	"github.com/seqsense/pcgol/pc"
	"github.com/spf13/cobra"

	"objrecon/cloud"
	"objrecon/plane"
)

func newExtractPlaneCmd(configPath *string) *cobra.Command {
	var (
		tolerance float32
		out       string
	)

	c := &cobra.Command{
		Use:   "extract-plane <input.pcd>",
		Short: "Isolate the dominant plane of a cloud and write its inliers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			pp, err := pc.Unmarshal(in)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			f := &plane.Fitter{
				DistanceTolerance: cfg.Plane.DistanceTolerance,
				MaxIterations:     cfg.Plane.MaxIterations,
				Resolution:        cfg.Plane.Resolution,
				Seed:              cfg.Plane.Seed,
			}
			if tolerance > 0 {
				f.DistanceTolerance = tolerance
			}
			m, err := f.Fit(pp)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "plane: normal=%v offset=%f inliers=%d/%d\n",
				m.Normal, m.Offset, len(m.Inliers), pp.Points)

			w := os.Stdout
			if out != "" {
				w, err = os.Create(out)
				if err != nil {
					return err
				}
				defer w.Close()
			}
			return pc.Marshal(cloud.Select(pp, m.Inliers), w)
		},
	}
	c.Flags().Float32Var(&tolerance, "tolerance", 0, "override the plane distance tolerance")
	c.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return c
}
