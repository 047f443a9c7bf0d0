package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/modelgen/cmd/modelgen/internal/watch"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/load"
)

func newGenerateCmd(a *app) *cobra.Command {
	var watchMode bool
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate the sources of every configured target",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watchMode {
				return a.watchModel(cmd.Context(), cmd.OutOrStdout())
			}
			return a.generate(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "generate again when a model file changes")
	return cmd
}

// genConfig builds the generation configuration of the project, reporting
// every invalid option at once.
func (a *app) genConfig() (*gen.Config, error) {
	opts, err := a.cfg.Options(a.logger)
	if err != nil {
		return nil, err
	}
	cfg := gen.DefaultConfig()
	if err := cfg.ApplyAll(opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) generate(ctx context.Context, out io.Writer) error {
	g, err := load.Dir(a.cfg.Path(a.cfg.ModelRoot))
	if err != nil {
		return err
	}
	cfg, err := a.genConfig()
	if err != nil {
		return err
	}
	res, err := gen.Run(ctx, g, cfg)
	if res != nil {
		printResult(out, res)
	}
	return err
}

func printResult(out io.Writer, res *gen.Result) {
	m := res.Metrics
	color.New(color.FgGreen).Fprintf(out, "Generated %d files", len(res.Files))
	fmt.Fprintf(out, " (%d written, %d unchanged", m.FilesWritten, m.FilesUnchanged)
	if m.FilesFailed > 0 {
		color.New(color.FgRed).Fprintf(out, ", %d failed", m.FilesFailed)
	}
	fmt.Fprintln(out, ")")
	for _, f := range res.Removed {
		color.New(color.FgYellow).Fprintf(out, "Removed %s\n", f)
	}
}

// watchModel generates once, then again after every change of the model files
// until interrupted. Generation errors are reported and do not stop the
// watch.
func (a *app) watchModel(ctx context.Context, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.generate(ctx, out); err != nil {
		a.logger.Error("generation failed", "error", err)
	}
	root := a.cfg.Path(a.cfg.ModelRoot)
	w, err := watch.New(root, func(ctx context.Context, changed []string) error {
		a.logger.Info("model changed", "files", changed)
		return a.generate(ctx, out)
	}, watch.WithLogger(a.logger))
	if err != nil {
		return err
	}
	color.New(color.FgCyan).Fprintf(out, "Watching %s\n", root)
	return w.Run(ctx)
}
