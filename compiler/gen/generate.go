package gen

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/modelgen/compiler/model"
)

// Result summarizes a generation run.
type Result struct {
	RunID   string
	Files   []string
	Removed []string
	Metrics WriterMetrics
}

// Run executes every configured generator over the graph.
//
// Configuration problems (missing target, unknown features, domains without an
// implementation for a generator target, two generators writing the same file)
// abort the run before anything is written. Failures of individual files are
// collected and returned together once all other files have been written.
func Run(ctx context.Context, g *model.Graph, cfg *Config) (*Result, error) {
	if cfg == nil || cfg.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory in config")
	}
	if len(cfg.Generators) == 0 {
		return nil, NewConfigError("Generators", nil, "no generator configured")
	}
	res := &Result{RunID: uuid.NewString()}
	log := cfg.logger().With("run", res.RunID)
	start := time.Now()

	if err := cleanupDisabled(cfg); err != nil {
		return nil, err
	}
	batches, err := plan(g, cfg)
	if err != nil {
		return nil, err
	}
	for _, b := range batches {
		for _, t := range b.tasks {
			res.Files = append(res.Files, t.Path)
		}
	}

	w := NewWriter(cfg.Target).
		WithWorkers(cfg.Workers).
		WithLogger(log).
		WithGoImports(cfg.HasFeature(FeatureGoImports.Name))
	var errs []error
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Debug("running generator", "generator", b.name, "files", len(b.tasks))
		if err := w.Write(ctx, b.name, b.tasks); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			errs = append(errs, err)
		}
	}
	res.Files = SortedUnique(res.Files...)
	res.Metrics = w.Metrics()

	if cfg.HasFeature(FeatureLockFile.Name) && cfg.LockFile != "" {
		removed, err := updateLockFile(cfg, res.Files)
		if err != nil {
			errs = append(errs, err)
		}
		res.Removed = removed
	}

	log.Info("generation completed",
		"files", len(res.Files),
		"written", res.Metrics.FilesWritten,
		"unchanged", res.Metrics.FilesUnchanged,
		"failed", res.Metrics.FilesFailed,
		"removed", len(res.Removed),
		"duration", time.Since(start),
	)
	return res, errors.Join(errs...)
}

// Check runs every generator of cfg without writing anything: files are
// rendered in memory. It returns the files a Run would write.
func Check(ctx context.Context, g *model.Graph, cfg *Config) ([]string, error) {
	if cfg == nil || len(cfg.Generators) == 0 {
		return nil, NewConfigError("Generators", nil, "no generator configured")
	}
	batches, err := plan(g, cfg)
	if err != nil {
		return nil, err
	}
	var (
		files []string
		errs  []error
	)
	for _, b := range batches {
		for _, t := range b.tasks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			files = append(files, t.Path)
			if _, err := t.Render(); err != nil {
				errs = append(errs, NewGenerationError(b.name, t.Path, "render", err))
			}
		}
	}
	return SortedUnique(files...), errors.Join(errs...)
}

type batch struct {
	name  string
	tasks []Task
}

// plan validates the graph against the generators of cfg and lists their
// tasks. Two generators must not produce the same file.
func plan(g *model.Graph, cfg *Config) ([]batch, error) {
	g = g.WithLegacyRoleNames(cfg.HasFeature(FeatureLegacyRoleNames.Name))
	if err := g.CheckInheritance(); err != nil {
		return nil, err
	}
	gens := make([]Generator, len(cfg.Generators))
	for i, gen := range cfg.Generators {
		for _, h := range cfg.Hooks {
			gen = h(gen)
		}
		gens[i] = gen
	}
	if err := validateDomains(g, gens); err != nil {
		return nil, err
	}
	var (
		batches []batch
		owners  = make(map[string]string)
	)
	for _, gen := range gens {
		var tags []string
		if tf, ok := gen.(TagFilter); ok {
			tags = tf.Tags()
		}
		tasks, err := gen.Tasks(NewContext(g, cfg, tags...))
		if err != nil {
			return nil, NewGenerationError(gen.Name(), "", "list tasks", err)
		}
		for i := range tasks {
			t := &tasks[i]
			t.Path = path.Clean(t.Path)
			if prev, ok := owners[t.Path]; ok {
				return nil, NewConfigError("Generators", t.Path, "file generated by both "+prev+" and "+gen.Name())
			}
			owners[t.Path] = gen.Name()
		}
		batches = append(batches, batch{name: gen.Name(), tasks: tasks})
	}
	return batches, nil
}

// validateDomains checks that every domain implements the target of each generator.
func validateDomains(g *model.Graph, gens []Generator) error {
	var targets []string
	for _, gen := range gens {
		if dt, ok := gen.(DomainTarget); ok && dt.DomainTarget() != "" {
			targets = append(targets, dt.DomainTarget())
		}
	}
	if len(targets) == 0 || g.Domains == nil {
		return nil
	}
	if err := g.Domains.Validate(SortedUnique(targets...)...); err != nil {
		return fmt.Errorf("%w: %w", NewConfigError("Domains", targets, "incomplete domain implementations"), err)
	}
	return nil
}

// updateLockFile removes files of the previous run that were not generated
// again and records the current files.
func updateLockFile(cfg *Config, files []string) ([]string, error) {
	lockPath := filepath.Join(cfg.Target, cfg.LockFile)
	lf, err := ReadLockFile(lockPath)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, stale := range lf.Stale(files) {
		full := filepath.Join(cfg.Target, filepath.FromSlash(stale))
		if err := remove(filepath.Dir(full), filepath.Base(full)); err != nil {
			return removed, err
		}
		cfg.logger().Info("removed stale file", "file", stale)
		removed = append(removed, stale)
	}
	lf.Files = files
	return removed, lf.Write(lockPath)
}
