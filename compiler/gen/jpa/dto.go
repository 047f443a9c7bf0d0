package jpa

import (
	"fmt"
	"strings"

	"github.com/syssam/modelgen/compiler/model"
)

// dto renders a non persistent class as a plain validated bean.
func (w *writer) dto(c *model.Class) ([]byte, error) {
	s := newSource(w.classPackage(c))
	props := w.ownProperties(c)
	from, to := w.mappers(c)

	s.doc(0, firstNonEmpty(c.Comment, c.Label, c.Name))
	w.declaration(s, c, "class")
	for _, p := range props {
		s.body.Blank()
		lines := []string{firstNonEmpty(w.graph.Comment(p), w.graph.Label(p), w.graph.Name(p))}
		if alp, ok := p.(*model.AliasProperty); ok {
			if orig := w.graph.Property(alp.Property); orig != nil {
				if oc := w.graph.OwnerClass(orig); oc != nil && w.gc.InScope(oc.ID) {
					getter := w.getterName(orig)
					lines = append(lines, fmt.Sprintf("Alias of {@link %s#%s() %s#%s()}", w.classImport(oc), getter, oc.NamePascal(), getter))
				}
			}
		}
		s.doc(1, lines...)
		s.annotate(1, w.domainAnnotations(p)...)
		s.annotate(1, w.validationAnnotations(p)...)
		typ, imports := w.javaType(p)
		def, defImports := w.defaultValue(p)
		s.use(imports...)
		s.use(defImports...)
		s.body.Linef(1, "private %s %s%s;", typ, w.fieldName(p), def)
	}
	if c.Extends.Valid() || len(from) > 0 {
		w.noArgConstructor(s, c)
	}
	w.mapperConstructors(s, c, from)
	for _, p := range props {
		w.getter(s, c, p, 1)
	}
	for _, p := range props {
		w.setter(s, c, p, 1)
	}
	w.toMapperMethods(s, c, to)
	s.body.Line(0, "}")
	return s.bytes(w.gc.Header()), nil
}

func (w *writer) validationAnnotations(p model.Property) []*annotation {
	var as []*annotation
	if w.composition(p) != nil {
		as = append(as, w.validation("Valid"))
	}
	if w.graph.Required(p) && !p.Base().PrimaryKey {
		as = append(as, w.validation("NotNull"))
	}
	return as
}

// enum renders the Java enum of the values of key, a property of c.
func (w *writer) enum(c *model.Class, key model.Property) ([]byte, error) {
	s := newSource(w.enumPackage(c.Namespace))
	t := s.body
	name := c.NamePascal() + w.graph.NamePascal(key)
	label := w.graph.Property(c.DefaultProperty)

	s.doc(0, fmt.Sprintf("Values of {@link %s#%s %s}.", w.classImport(c), w.fieldName(key), w.fieldName(key)))
	t.Linef(0, "public enum %s {", name)
	values := sortedValues(c)
	for i, v := range values {
		doc := v.Name
		if label != nil {
			if l, ok := v.Values[w.graph.Name(label)]; ok {
				doc = l
			}
		}
		sep := ","
		if i == len(values)-1 {
			sep = ""
		}
		if i > 0 {
			t.Blank()
		}
		s.doc(1, strings.TrimSuffix(doc, ".")+".")
		t.Linef(1, "%s%s", v.Values[w.graph.Name(key)], sep)
	}
	t.Line(0, "}")
	return s.bytes(w.gc.Header()), nil
}
