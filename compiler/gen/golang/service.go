package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/naming"
)

// service renders the interface of the endpoints of one file, one method
// per endpoint.
func (w *writer) service(f gen.EndpointFile) ([]byte, error) {
	file := w.newFile(f.Namespace)
	name := naming.ToPascalCase(f.Name, false, false)

	file.Commentf("%s serves the %s endpoints.", name, f.Namespace.Module)
	file.Type().Id(name).InterfaceFunc(func(g *jen.Group) {
		for i, e := range f.Endpoints {
			if i > 0 {
				g.Line()
			}
			g.Comment(firstNonEmpty(e.Description, e.NamePascal()+"."))
			g.Comment(e.Method + " " + e.Route)
			params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
			for _, p := range w.graph.Properties(e.Params) {
				params = append(params, jen.Id(w.graph.NameCamel(p)).Add(w.goType(p)))
			}
			m := g.Id(e.NamePascal()).Params(params...)
			if ret := w.graph.Property(e.Returns); ret != nil {
				m.Params(w.goType(ret), jen.Error())
			} else {
				m.Error()
			}
		}
	})
	return render(file)
}
