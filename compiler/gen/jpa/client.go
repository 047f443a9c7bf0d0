package jpa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

const springAnnotations = "org.springframework.web.bind.annotation."

func clientName(f gen.EndpointFile) string {
	return naming.ToPascalCase(f.Name, false, false) + "Client"
}

// client renders the Spring HTTP interface of the endpoints of one file.
func (w *writer) client(f gen.EndpointFile) ([]byte, error) {
	s := newSource(w.apiPackage(f.Namespace))
	t := s.body
	s.use("org.springframework.http.ResponseEntity")
	t.Linef(0, "public interface %s {", clientName(f))
	for _, e := range f.Endpoints {
		w.clientMethod(s, e)
	}
	t.Line(0, "}")
	return s.bytes(w.gc.Header()), nil
}

func (w *writer) clientMethod(s *source, e *model.Endpoint) {
	t := s.body
	params := w.graph.Properties(e.Params)
	returns := w.graph.Property(e.Returns)

	lines := []string{firstNonEmpty(e.Description, e.Name+".")}
	for _, p := range params {
		lines = append(lines, fmt.Sprintf("@param %s %s", w.graph.NameCamel(p), w.graph.Comment(p)))
	}
	ret := "Void"
	if returns != nil {
		lines = append(lines, "@return "+w.graph.Comment(returns))
		var imports []string
		ret, imports = w.javaType(returns)
		s.use(imports...)
	}
	t.Blank()
	s.doc(1, lines...)

	method := naming.ToPascalCase(strings.ToLower(e.Method), false, false) + "Exchange"
	exchange := newAnnotation(method, "org.springframework.web.service.annotation."+method).attr("", quote(e.Route))
	if returns != nil {
		if d := w.graph.Domain(returns); d != nil && d.MediaType != "" {
			exchange.attr("accept", "{"+quote(d.MediaType)+"}")
		}
	}
	for _, p := range params {
		if d := w.graph.Domain(p); d != nil && d.MediaType != "" {
			exchange.attr("contentType", quote(d.MediaType))
			break
		}
	}
	s.annotate(1, exchange)

	multipart := w.isMultipartEndpoint(params)
	args := make([]string, 0, len(params))
	for _, p := range params {
		name := w.graph.NameCamel(p)
		typ, imports := w.javaType(p)
		s.use(imports...)
		var as []*annotation
		switch {
		case strings.Contains(e.Route, "{"+name+"}"):
			as = append(as, newAnnotation("PathVariable", springAnnotations+"PathVariable").attr("", quote(name)))
		case multipart && w.isBodyPart(p):
			as = append(as, newAnnotation("RequestPart", springAnnotations+"RequestPart").
				attr("", quote(name)).attr("required", strconv.FormatBool(w.graph.Required(p))))
		case w.isBodyPart(p):
			as = append(as, newAnnotation("RequestBody", springAnnotations+"RequestBody"), w.validation("Valid"))
		default:
			as = append(as, newAnnotation("RequestParam", springAnnotations+"RequestParam").
				attr("", quote(name)).attr("required", strconv.FormatBool(w.graph.Required(p))))
		}
		as = append(as, w.domainAnnotations(p)...)
		parts := make([]string, 0, len(as)+1)
		for _, a := range as {
			s.use(a.imports...)
			parts = append(parts, a.String())
		}
		args = append(args, strings.Join(append(parts, typ+" "+name), " "))
	}
	t.Linef(1, "ResponseEntity<%s> %s(%s);", ret, e.NameCamel(), strings.Join(args, ", "))
}

func (w *writer) isMultipartEndpoint(params []model.Property) bool {
	for _, p := range params {
		if d := w.graph.Domain(p); d != nil && d.IsMultipart {
			return true
		}
		if cp := w.composition(p); cp != nil && w.graph.IsMultipart(cp) {
			return true
		}
	}
	return false
}

// isBodyPart reports whether p travels in the request body.
func (w *writer) isBodyPart(p model.Property) bool {
	if w.composition(p) != nil {
		return true
	}
	d := w.graph.Domain(p)
	return d != nil && (d.BodyParam || d.IsMultipart)
}
