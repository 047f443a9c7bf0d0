package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Writer renders tasks in parallel and writes their output atomically.
// A failing task leaves its previous file untouched and does not stop the others.
type Writer struct {
	root    string
	workers int
	format  bool
	logger  *slog.Logger

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics *WriterMetrics
	written []string
}

// WriterMetrics tracks generation performance
type WriterMetrics struct {
	FilesWritten   int
	FilesUnchanged int
	FilesFailed    int
	TotalBytes     int64
	RenderTime     int64 // nanoseconds
	FormatTime     int64 // nanoseconds
	WriteTime      int64 // nanoseconds
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{
		root:    dir,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithGoImports formats .go files with goimports before writing them.
func (w *Writer) WithGoImports(enabled bool) *Writer {
	w.format = enabled
	return w
}

// WithLogger sets the logger.
func (w *Writer) WithLogger(l *slog.Logger) *Writer {
	if l != nil {
		w.logger = l
	}
	return w
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// Written returns the paths of the files written or found up to date, sorted.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := slices.Clone(w.written)
	slices.Sort(out)
	return out
}

// Write runs the tasks of one generator. Task failures are joined in the
// returned error; cancellation of ctx stops pending tasks.
func (w *Writer) Write(ctx context.Context, generator string, tasks []Task) error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	eg := new(errgroup.Group)
	eg.SetLimit(w.workers)
	for _, task := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := w.run(task); err != nil {
				w.logger.Error("file generation failed", "generator", generator, "file", task.Path, "error", err)
				gerr := NewGenerationError(generator, task.Path, "", err)
				gerr.Unit = task.Unit
				mu.Lock()
				errs = append(errs, gerr)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (w *Writer) run(task Task) (err error) {
	defer func() {
		if err != nil {
			w.mu.Lock()
			w.metrics.FilesFailed++
			w.mu.Unlock()
		}
	}()

	start := time.Now()
	content, err := task.Render()
	if err != nil {
		return err
	}
	renderTime := time.Since(start)

	full := filepath.Join(w.root, filepath.FromSlash(task.Path))
	start = time.Now()
	if w.format && strings.HasSuffix(task.Path, ".go") {
		formatted, ferr := imports.Process(full, content, nil)
		if ferr != nil {
			return fmt.Errorf("format %s: %w", task.Path, ferr)
		}
		content = formatted
	}
	formatTime := time.Since(start)

	start = time.Now()
	changed, err := writeAtomic(full, content)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, task.Path)
	w.metrics.RenderTime += int64(renderTime)
	w.metrics.FormatTime += int64(formatTime)
	w.metrics.WriteTime += int64(time.Since(start))
	if changed {
		w.metrics.FilesWritten++
		w.metrics.TotalBytes += int64(len(content))
	} else {
		w.metrics.FilesUnchanged++
	}
	return nil
}

// writeAtomic writes content to a temporary file in the destination directory
// and renames it over path. Files with identical content are left untouched.
func writeAtomic(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("create temporary file for %s: %w", path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(name)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return false, err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return false, fmt.Errorf("rename %s: %w", path, err)
	}
	return true, nil
}
