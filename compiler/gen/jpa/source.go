package jpa

import (
	"strings"

	"github.com/syssam/modelgen/compiler/gen"
)

// source is a Java compilation unit under construction. Imports are
// collected while the body is written.
type source struct {
	pkg     string
	imports []string
	body    *gen.Text
}

func newSource(pkg string) *source {
	return &source{pkg: pkg, body: gen.NewText("    ")}
}

func (s *source) use(imports ...string) {
	s.imports = append(s.imports, imports...)
}

func (s *source) annotate(level int, as ...*annotation) {
	for _, a := range as {
		s.use(a.imports...)
		s.body.Linef(level, "%s", a.String())
	}
}

// doc writes a Javadoc block.
func (s *source) doc(level int, lines ...string) {
	s.body.Line(level, "/**")
	for _, l := range lines {
		for _, l := range strings.Split(l, "\n") {
			if l = strings.TrimRight(l, " "); l == "" {
				s.body.Line(level, " *")
			} else {
				s.body.Linef(level, " * %s", l)
			}
		}
	}
	s.body.Line(level, " */")
}

// bytes assembles the unit. Imports of the unit's own package and of
// java.lang are dropped.
func (s *source) bytes(header string) []byte {
	t := gen.NewText("    ")
	t.Comment(0, "//", header)
	t.Blank()
	t.Linef(0, "package %s;", s.pkg)
	t.Blank()
	var n int
	for _, imp := range gen.SortedUnique(s.imports...) {
		i := strings.LastIndex(imp, ".")
		if i < 0 || imp[:i] == s.pkg || imp[:i] == "java.lang" {
			continue
		}
		t.Linef(0, "import %s;", imp)
		n++
	}
	if n > 0 {
		t.Blank()
	}
	return append(t.Bytes(), s.body.Bytes()...)
}

type attribute struct {
	key, value string
}

// annotation is a Java annotation and the imports it needs.
type annotation struct {
	name    string
	attrs   []attribute
	imports []string
}

func newAnnotation(name string, imports ...string) *annotation {
	return &annotation{name: name, imports: imports}
}

// attr adds an attribute. An empty key is the "value" attribute.
func (a *annotation) attr(key, value string, imports ...string) *annotation {
	a.attrs = append(a.attrs, attribute{key: key, value: value})
	a.imports = append(a.imports, imports...)
	return a
}

// nested adds an annotation valued attribute.
func (a *annotation) nested(key string, n *annotation) *annotation {
	return a.attr(key, n.String(), n.imports...)
}

func (a *annotation) String() string {
	switch {
	case len(a.attrs) == 0:
		return "@" + a.name
	case len(a.attrs) == 1 && a.attrs[0].key == "":
		return "@" + a.name + "(" + a.attrs[0].value + ")"
	}
	parts := make([]string, len(a.attrs))
	for i, at := range a.attrs {
		key := at.key
		if key == "" {
			key = "value"
		}
		parts[i] = key + " = " + at.value
	}
	return "@" + a.name + "(" + strings.Join(parts, ", ") + ")"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
