package main

import (
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/modelgen/cmd/modelgen/internal/config"
)

// app holds the state shared by the commands once the configuration is
// loaded.
type app struct {
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "modelgen",
		Short: "Generate code from YAML model files",
		Long: `modelgen reads the model files of a project and generates the sources
of every target configured in modelgen.yaml.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.FileName, "configuration file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	cmd.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newImportCmd(a),
	)
	return cmd
}

// load reads the configuration and sets up the logger, writing to w.
func (a *app) load(w io.Writer) error {
	if a.noColor {
		color.NoColor = true
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	a.cfg = cfg
	a.logger = slog.New(h)
	return nil
}
