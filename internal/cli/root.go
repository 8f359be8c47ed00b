// Package cli implements the objrecon command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"objrecon/internal/config"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "objrecon",
		Short:        "Object reconstruction from accumulated point-cloud frames",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML)")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newRunCmd(&configPath),
		newExtractPlaneCmd(&configPath),
	)
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
