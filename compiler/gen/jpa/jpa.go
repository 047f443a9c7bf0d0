// Package jpa generates Java persistence entities, DTOs, enums and Spring
// HTTP interface clients from the model.
package jpa

import (
	"path"
	"strings"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// IdentityMode selects how auto generated keys are produced.
type IdentityMode int

const (
	// Identity relies on identity columns.
	Identity IdentityMode = iota
	// Sequence relies on one sequence per table.
	Sequence
)

// Options configures the generator.
type Options struct {
	// Tags restricts the classes and endpoints in scope.
	Tags []string
	// Root is the source root of generated files.
	Root string
	// Package is the base package of every generated type.
	Package string
	// EntitiesPackage, DtosPackage, EnumsPackage and APIPackage are the
	// sub-packages of persistent classes, other classes, enums and clients.
	EntitiesPackage string
	DtosPackage     string
	EnumsPackage    string
	APIPackage      string
	// Persistence is the root package of the persistence and validation
	// APIs, "jakarta" or "javax".
	Persistence string
	Identity    IdentityMode
	// SequenceStart and SequenceIncrement configure sequences when set.
	SequenceStart     int
	SequenceIncrement int
	// Clients enables HTTP interface clients of endpoints.
	Clients bool
	// AssociationAdders and AssociationRemovers render helpers keeping
	// both sides of bidirectional to-many associations in sync.
	AssociationAdders   bool
	AssociationRemovers bool
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "src/main/java"
	}
	if o.Package == "" {
		o.Package = "app"
	}
	if o.EntitiesPackage == "" {
		o.EntitiesPackage = "entities"
	}
	if o.DtosPackage == "" {
		o.DtosPackage = "dtos"
	}
	if o.EnumsPackage == "" {
		o.EnumsPackage = "enums"
	}
	if o.APIPackage == "" {
		o.APIPackage = "api"
	}
	if o.Persistence == "" {
		o.Persistence = "jakarta"
	}
}

// Generator renders Java files.
type Generator struct {
	opts Options
}

// New returns a JPA generator.
func New(opts Options) *Generator {
	opts.defaults()
	return &Generator{opts: opts}
}

// Name implements gen.Generator.
func (*Generator) Name() string { return "jpa" }

// DomainTarget implements gen.DomainTarget.
func (*Generator) DomainTarget() string { return domain.TargetJava }

// Tags implements gen.TagFilter.
func (g *Generator) Tags() []string { return g.opts.Tags }

// Tasks implements gen.Generator.
func (g *Generator) Tasks(gc *gen.Context) ([]gen.Task, error) {
	w := &writer{Options: g.opts, gc: gc, graph: gc.Graph}
	var tasks []gen.Task
	for _, c := range gc.Classes {
		if c.Abstract {
			gc.Logger.Debug("skipping abstract class", "class", c.Name)
			continue
		}
		for _, key := range w.enumKeys(c) {
			name := c.NamePascal() + w.graph.NamePascal(key)
			tasks = append(tasks, gen.Task{
				Path:   w.file(w.enumPackage(c.Namespace), name),
				Unit:   c.Name,
				Render: func() ([]byte, error) { return w.enum(c, key) },
			})
		}
		tasks = append(tasks, gen.Task{
			Path: w.file(w.classPackage(c), c.NamePascal()),
			Unit: c.Name,
			Render: func() ([]byte, error) {
				if c.IsPersistent {
					return w.entity(c)
				}
				return w.dto(c)
			},
		})
	}
	for _, u := range w.mappersUnits() {
		tasks = append(tasks, gen.Task{
			Path:   w.file(u.pkg, u.name),
			Unit:   u.name,
			Render: func() ([]byte, error) { return w.mappersClass(u) },
		})
	}
	if g.opts.Clients {
		for _, f := range gc.EndpointFiles() {
			tasks = append(tasks, gen.Task{
				Path:   w.file(w.apiPackage(f.Namespace), clientName(f)),
				Unit:   f.Name,
				Render: func() ([]byte, error) { return w.client(f) },
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
}

func (w *writer) file(pkg, name string) string {
	return path.Join(w.Root, strings.ReplaceAll(pkg, ".", "/"), name+".java")
}

func (w *writer) pkg(sub string, ns model.Namespace) string {
	parts := []string{w.Package, sub}
	if ns.Module != "" {
		parts = append(parts, strings.ToLower(ns.Module))
	}
	return strings.Join(parts, ".")
}

func (w *writer) classPackage(c *model.Class) string {
	if c.IsPersistent {
		return w.pkg(w.EntitiesPackage, c.Namespace)
	}
	return w.pkg(w.DtosPackage, c.Namespace)
}

func (w *writer) enumPackage(ns model.Namespace) string {
	return w.pkg(w.EnumsPackage, ns)
}

func (w *writer) apiPackage(ns model.Namespace) string {
	return w.pkg(w.APIPackage, ns)
}

func (w *writer) classImport(c *model.Class) string {
	return w.classPackage(c) + "." + c.NamePascal()
}

// jpa returns the persistence API annotation name.
func (w *writer) jpa(name string) *annotation {
	return newAnnotation(name, w.Persistence+".persistence."+name)
}

func (w *writer) validation(name string) *annotation {
	if name == "Valid" {
		return newAnnotation(name, w.Persistence+".validation.Valid")
	}
	return newAnnotation(name, w.Persistence+".validation.constraints."+name)
}

// enumKeys returns the properties of c rendered as Java enums: its enum
// key and the single-property unique keys whose values are identifiers.
func (w *writer) enumKeys(c *model.Class) []model.Property {
	if !w.gc.CanUseEnums(c, nil) {
		return nil
	}
	keys := []model.Property{w.graph.Property(c.EnumKey)}
	for _, uk := range c.UniqueKeys {
		if len(uk) != 1 || uk[0] == c.EnumKey {
			continue
		}
		if p := w.graph.Property(uk[0]); p != nil && w.gc.CanUseEnums(c, p) {
			keys = append(keys, p)
		}
	}
	return keys
}

// ownProperties returns the properties of c declared in c, its
// ancestors being rendered as Java superclasses.
func (w *writer) ownProperties(c *model.Class) []model.Property {
	var ps []model.Property
	for _, p := range w.gc.Properties(c) {
		if p.Base().Owner.Class == c.ID {
			ps = append(ps, p)
		}
	}
	return ps
}
