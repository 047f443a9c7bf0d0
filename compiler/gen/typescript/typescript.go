// Package typescript generates TypeScript definitions, reference lists and
// API clients from the model.
package typescript

import (
	"path"
	"strings"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

// EntityMode selects how classes are rendered.
type EntityMode int

const (
	// Typed renders an entity type and a typed entity description per class.
	Typed EntityMode = iota
	// Untyped renders an interface and an untyped entity description.
	Untyped
	// Plain renders interfaces only.
	Plain
)

// ReferenceMode selects how reference classes are rendered.
type ReferenceMode int

const (
	// Definition renders a reference definition (value and label keys).
	Definition ReferenceMode = iota
	// Values renders the list of reference values.
	Values
)

// Options configures the generator.
type Options struct {
	// Tags restricts the classes and endpoints in scope.
	Tags []string
	// ModelRoot is the directory of definition and reference files.
	ModelRoot string
	// APIRoot is the directory of API client files. Empty disables clients.
	APIRoot string
	// DomainPath is the module declaring domain objects. A path starting
	// with "@" is a package, anything else is relative to the target root.
	DomainPath string
	// EntityTypesPath is the package providing the entity helper types.
	EntityTypesPath string
	// FetchPath is the package providing fetch.
	FetchPath string
	// Mode selects the class rendering.
	Mode EntityMode
	// References selects the reference rendering.
	References ReferenceMode
	// TranslateProperties renders resource keys instead of labels.
	TranslateProperties bool
	// Comments adds property comments to entity descriptions.
	Comments bool
}

func (o *Options) defaults() {
	if o.ModelRoot == "" {
		o.ModelRoot = "model"
	}
	if o.DomainPath == "" {
		o.DomainPath = "domains"
	}
	if o.EntityTypesPath == "" {
		o.EntityTypesPath = "@focus4/stores"
	}
	if o.FetchPath == "" {
		o.FetchPath = "@focus4/core"
	}
}

// Generator renders TypeScript files.
type Generator struct {
	opts Options
}

// New returns a TypeScript generator.
func New(opts Options) *Generator {
	opts.defaults()
	return &Generator{opts: opts}
}

// Name implements gen.Generator.
func (*Generator) Name() string { return "typescript" }

// DomainTarget implements gen.DomainTarget.
func (*Generator) DomainTarget() string { return domain.TargetTS }

// Tags implements gen.TagFilter.
func (g *Generator) Tags() []string { return g.opts.Tags }

// Tasks implements gen.Generator.
func (g *Generator) Tasks(gc *gen.Context) ([]gen.Task, error) {
	splitRefs, err := gc.Config.FeatureEnabled(gen.FeatureTSReferences.Name)
	if err != nil {
		return nil, err
	}
	w := &writer{Options: g.opts, gc: gc, graph: gc.Graph, refs: splitRefs}
	var (
		tasks []gen.Task
		refs  = make(map[string][]*model.Class)
		order []string
	)
	for _, c := range gc.Classes {
		if w.isReference(c) {
			file := w.referencesFile(c.Namespace)
			if _, ok := refs[file]; !ok {
				order = append(order, file)
			}
			refs[file] = append(refs[file], c)
			continue
		}
		tasks = append(tasks, gen.Task{
			Path:   w.classFile(c),
			Unit:   c.Name,
			Render: func() ([]byte, error) { return w.definition(c) },
		})
	}
	for _, file := range order {
		classes := refs[file]
		tasks = append(tasks, gen.Task{
			Path:   file,
			Unit:   classes[0].Namespace.Module + " references",
			Render: func() ([]byte, error) { return w.references(file, classes) },
		})
	}
	if g.opts.APIRoot != "" {
		for _, f := range gc.EndpointFiles() {
			file := w.apiFile(f)
			tasks = append(tasks, gen.Task{
				Path:   file,
				Unit:   f.Name,
				Render: func() ([]byte, error) { return w.api(file, f) },
			})
		}
	}
	return tasks, nil
}

// writer renders the files of one generation context.
type writer struct {
	Options
	gc    *gen.Context
	graph *model.Graph
	refs  bool
}

func (w *writer) isReference(c *model.Class) bool {
	return w.refs && c.Reference
}

func (w *writer) classFile(c *model.Class) string {
	if w.isReference(c) {
		return w.referencesFile(c.Namespace)
	}
	return path.Join(w.ModelRoot, c.Namespace.ModuleKebab(), naming.ToKebabCase(c.Name)+".ts")
}

func (w *writer) referencesFile(ns model.Namespace) string {
	return path.Join(w.ModelRoot, ns.ModuleKebab(), "references.ts")
}

func (w *writer) apiFile(f gen.EndpointFile) string {
	return path.Join(w.APIRoot, f.Namespace.ModuleKebab(), naming.ToKebabCase(f.Name)+".ts")
}

// importPath returns the specifier of target as seen from file. Package
// specifiers are returned unchanged.
func importPath(file, target string) string {
	if strings.HasPrefix(target, "@") {
		return target
	}
	return gen.RelativeImport(file, target)
}

func (w *writer) header(t *gen.Text) {
	t.Comment(0, "//", w.gc.Header())
	t.Blank()
}

func writeImports(t *gen.Text, imports []gen.Import) {
	groups := gen.GroupAndSort(imports)
	for _, g := range groups {
		t.Linef(0, "import {%s} from %q;", strings.Join(g.Names, ", "), g.Path)
	}
	if len(groups) > 0 {
		t.Blank()
	}
}
