package gen

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/syssam/modelgen/compiler/model"
)

// Context is the view of the model given to a generator.
type Context struct {
	Graph  *model.Graph
	Config *Config
	Logger *slog.Logger

	// Classes and Endpoints in scope, in definition order.
	Classes   []*model.Class
	Endpoints []*model.Endpoint

	available []model.ClassID
}

// NewContext returns the context of a generator restricted to tags.
// No tags means the whole model is in scope.
func NewContext(g *model.Graph, cfg *Config, tags ...string) *Context {
	gc := &Context{
		Graph:  g,
		Config: cfg,
		Logger: cfg.logger(),
	}
	for _, c := range g.Classes() {
		if len(tags) == 0 || c.HasTag(tags...) {
			gc.Classes = append(gc.Classes, c)
		}
	}
	for _, e := range g.Endpoints() {
		if len(tags) == 0 || e.HasTag(tags...) {
			gc.Endpoints = append(gc.Endpoints, e)
		}
	}
	gc.available = model.ClassIDs(gc.Classes)
	return gc
}

// Available returns the identifiers of the classes in scope.
func (gc *Context) Available() []model.ClassID {
	return gc.available
}

// Header returns the configured file header.
func (gc *Context) Header() string {
	return gc.Config.header()
}

// Modules returns the distinct modules of the classes in scope, sorted.
func (gc *Context) Modules() []string {
	var mods []string
	for _, c := range gc.Classes {
		if !slices.Contains(mods, c.Namespace.Module) {
			mods = append(mods, c.Namespace.Module)
		}
	}
	slices.Sort(mods)
	return mods
}

// ClassesIn returns the classes in scope declared in module.
func (gc *Context) ClassesIn(module string) []*model.Class {
	var out []*model.Class
	for _, c := range gc.Classes {
		if c.Namespace.Module == module {
			out = append(out, c)
		}
	}
	return out
}

// EndpointFile groups the endpoints declared in one model file.
type EndpointFile struct {
	Namespace model.Namespace
	Name      string
	Endpoints []*model.Endpoint
}

// EndpointFiles groups endpoints in scope by module and file name, sorted.
func (gc *Context) EndpointFiles() []EndpointFile {
	var files []EndpointFile
	for _, e := range gc.Endpoints {
		i := slices.IndexFunc(files, func(f EndpointFile) bool {
			return f.Namespace.Module == e.Namespace.Module && f.Name == e.FileName
		})
		if i < 0 {
			files = append(files, EndpointFile{Namespace: e.Namespace, Name: e.FileName})
			i = len(files) - 1
		}
		files[i].Endpoints = append(files[i].Endpoints, e)
	}
	slices.SortStableFunc(files, func(a, b EndpointFile) int {
		return cmp.Or(
			cmp.Compare(a.Namespace.Module, b.Namespace.Module),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return files
}

// Properties returns the resolved properties of c, reverses limited to the scope.
func (gc *Context) Properties(c *model.Class) []model.Property {
	return gc.Graph.GetProperties(c, gc.available)
}

// CanUseEnums reports whether references to c through p may use generated enums.
func (gc *Context) CanUseEnums(c *model.Class, p model.Property) bool {
	return gc.Graph.CanClassUseEnums(c, gc.available, p)
}

// InScope reports whether the class is part of the generation scope.
func (gc *Context) InScope(id model.ClassID) bool {
	return slices.Contains(gc.available, id)
}
