package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/load"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the model and render every target without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := load.Dir(a.cfg.Path(a.cfg.ModelRoot))
			if err != nil {
				return err
			}
			cfg, err := a.genConfig()
			if err != nil {
				return err
			}
			files, err := gen.Check(cmd.Context(), g, cfg)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Model is valid: %d classes, %d files\n", len(g.Classes()), len(files))
			return nil
		},
	}
}
