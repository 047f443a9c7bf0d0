// Package golang generates Go types from the model: a struct per class,
// a typed enumeration per enum key and an interface per endpoint file.
package golang

import (
	"bytes"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

// Options configures the generator.
type Options struct {
	// Tags restricts the classes and endpoints in scope.
	Tags []string
	// Root is the directory of the generated packages.
	Root string
	// ImportPath is the Go import path of Root.
	ImportPath string
	// DBTags adds db struct tags holding the column of persistent fields.
	DBTags bool
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "model"
	}
	if o.ImportPath == "" {
		o.ImportPath = o.Root
	}
}

// Generator renders Go files.
type Generator struct {
	opts Options
}

// New returns a Go generator.
func New(opts Options) *Generator {
	opts.defaults()
	return &Generator{opts: opts}
}

// Name implements gen.Generator.
func (*Generator) Name() string { return "golang" }

// DomainTarget implements gen.DomainTarget.
func (*Generator) DomainTarget() string { return domain.TargetGo }

// Tags implements gen.TagFilter.
func (g *Generator) Tags() []string { return g.opts.Tags }

// Tasks implements gen.Generator.
func (g *Generator) Tasks(gc *gen.Context) ([]gen.Task, error) {
	w := &writer{Options: g.opts, gc: gc, graph: gc.Graph}
	var tasks []gen.Task
	for _, c := range gc.Classes {
		tasks = append(tasks, gen.Task{
			Path:   w.file(c.Namespace, c.Name),
			Unit:   c.Name,
			Render: func() ([]byte, error) { return w.class(c) },
		})
	}
	for _, f := range gc.EndpointFiles() {
		tasks = append(tasks, gen.Task{
			Path:   w.file(f.Namespace, f.Name),
			Unit:   f.Name,
			Render: func() ([]byte, error) { return w.service(f) },
		})
	}
	return tasks, nil
}

type writer struct {
	Options
	gc    *gen.Context
	graph *model.Graph
}

func (w *writer) dir(ns model.Namespace) string {
	return ns.ModuleKebab()
}

func (w *writer) file(ns model.Namespace, name string) string {
	return path.Join(w.Root, w.dir(ns), naming.ToSnakeCase(name)+".go")
}

// pkgPath returns the import path of the package of ns.
func (w *writer) pkgPath(ns model.Namespace) string {
	return path.Join(w.ImportPath, w.dir(ns))
}

func pkgName(ns model.Namespace) string {
	dir := ns.ModuleKebab()
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[i+1:]
	}
	if dir = strings.ReplaceAll(dir, "-", ""); dir == "" {
		return "model"
	}
	return dir
}

func (w *writer) newFile(ns model.Namespace) *jen.File {
	f := jen.NewFilePathName(w.pkgPath(ns), pkgName(ns))
	for _, l := range strings.Split(strings.TrimRight(w.gc.Header(), "\n"), "\n") {
		f.HeaderComment(l)
	}
	return f
}

func render(f *jen.File) ([]byte, error) {
	var b bytes.Buffer
	if err := f.Render(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// doc returns the doc comment of a declaration named name.
func doc(name, comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return name + "."
	}
	return name + " is " + naming.ToFirstLower(comment)
}
