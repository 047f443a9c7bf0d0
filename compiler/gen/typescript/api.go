package typescript

import (
	"fmt"
	"strings"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// api renders the client of the endpoints of one model file.
func (w *writer) api(file string, f gen.EndpointFile) ([]byte, error) {
	t := gen.NewText("    ")
	w.header(t)

	imports := []gen.Import{{Name: "fetch", Path: w.FetchPath}}
	for _, e := range f.Endpoints {
		for _, dep := range w.graph.EndpointDependencies(e, w.gc.Available()) {
			target := w.graph.Class(dep.Target)
			if w.composition(dep.Source) != nil {
				imports = append(imports, gen.Import{Name: target.NamePascal(), Path: importPath(file, w.classFile(target))})
				continue
			}
			if name, ec := w.enumType(dep.Source); ec != nil {
				imports = append(imports, gen.Import{Name: name, Path: importPath(file, w.referencesFile(ec.Namespace))})
			}
		}
	}
	writeImports(t, imports)

	for i, e := range f.Endpoints {
		if i > 0 {
			t.Blank()
		}
		w.endpoint(t, e)
	}
	return t.Bytes(), nil
}

func (w *writer) endpoint(t *gen.Text, e *model.Endpoint) {
	params := w.graph.Properties(e.Params)
	returns := "void"
	if r := w.graph.Property(e.Returns); r != nil {
		returns = w.tsType(r)
	}

	t.Line(0, "/**")
	if e.Description != "" {
		for _, l := range strings.Split(e.Description, "\n") {
			t.Linef(0, " * %s", l)
		}
	}
	for _, p := range params {
		t.Linef(0, " * @param %s %s", w.graph.NameCamel(p), w.graph.Comment(p))
	}
	t.Line(0, " * @param options Fetch options.")
	t.Line(0, " */")

	sig := make([]string, 0, len(params)+1)
	for i, p := range params {
		name, typ := w.graph.NameCamel(p), w.tsType(p)
		switch {
		case w.graph.Required(p):
			sig = append(sig, name+": "+typ)
		case allOptional(w.graph, params[i+1:]):
			sig = append(sig, name+"?: "+typ)
		default:
			sig = append(sig, name+": "+typ+" | undefined")
		}
	}
	sig = append(sig, "options: RequestInit = {}")
	t.Linef(0, "export function %s(%s): Promise<%s> {", e.NameCamel(), strings.Join(sig, ", "), returns)

	var (
		route     = e.Route
		body      string
		query     []string
		multipart []model.Property
	)
	for _, p := range params {
		name := w.graph.NameCamel(p)
		switch {
		case strings.Contains(route, "{"+name+"}"):
			route = strings.ReplaceAll(route, "{"+name+"}", "${"+name+"}")
		case w.isMultipart(p):
			multipart = append(multipart, p)
		case w.isBody(p):
			body = name
		default:
			query = append(query, name)
			multipart = append(multipart, p)
		}
	}

	var opts []string
	if w.hasMultipart(params) {
		t.Line(1, "const body = new FormData();")
		for _, p := range multipart {
			name := w.graph.NameCamel(p)
			t.Linef(1, "if (%s !== undefined) {", name)
			t.Linef(2, "body.append(%q, %s);", name, stringify(w, p, name))
			t.Line(1, "}")
		}
		opts = append(opts, "body")
	} else {
		if body != "" {
			opts = append(opts, "body: "+body)
		}
		if len(query) > 0 {
			opts = append(opts, "query: {"+strings.Join(query, ", ")+"}")
		}
	}
	t.Linef(1, "return fetch(%q, `./%s`, {%s}, options);", strings.ToUpper(e.Method), route, strings.Join(opts, ", "))
	t.Line(0, "}")
}

func stringify(w *writer, p model.Property, name string) string {
	if w.isMultipart(p) {
		return name
	}
	return fmt.Sprintf("String(%s)", name)
}

func allOptional(g *model.Graph, ps []model.Property) bool {
	for _, p := range ps {
		if g.Required(p) {
			return false
		}
	}
	return true
}

func (w *writer) hasMultipart(ps []model.Property) bool {
	for _, p := range ps {
		if w.isMultipart(p) {
			return true
		}
	}
	return false
}

func (w *writer) isMultipart(p model.Property) bool {
	d := w.graph.Domain(p)
	return d != nil && d.IsMultipart
}

// isBody reports whether p is sent as the request body.
func (w *writer) isBody(p model.Property) bool {
	if w.composition(p) != nil {
		return true
	}
	d := w.graph.Domain(p)
	return d != nil && d.BodyParam
}
