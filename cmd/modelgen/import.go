package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/importer"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Write model files from the schema of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Import == nil {
				return gen.NewConfigError("import", nil, "missing import section")
			}
			imp, err := importer.New(*a.cfg.Import, importer.WithLogger(a.logger))
			if err != nil {
				return err
			}
			tasks, err := imp.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			w := gen.NewWriter(a.cfg.Path(a.cfg.ModelRoot)).WithLogger(a.logger)
			if err := w.Write(cmd.Context(), imp.Name(), tasks); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range w.Written() {
				fmt.Fprintln(out, f)
			}
			color.New(color.FgGreen).Fprintf(out, "Imported %d model files\n", len(tasks))
			return nil
		},
	}
}
