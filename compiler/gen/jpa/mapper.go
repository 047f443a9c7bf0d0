package jpa

import (
	"fmt"
	"strings"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

// mappersUnit is a mappers class: the static mapper methods of the
// classes of one module rendered in one package.
type mappersUnit struct {
	pkg, name string
	classes   []*model.Class
}

// mappersUnits groups the classes having mappers by mappers class, in
// definition order.
func (w *writer) mappersUnits() []*mappersUnit {
	var units []*mappersUnit
	for _, c := range w.gc.Classes {
		if c.Abstract {
			continue
		}
		from, to := w.mappers(c)
		if skipped := len(c.FromMappers) + len(c.ToMappers) - len(from) - len(to); skipped > 0 {
			w.gc.Logger.Debug("skipping mappers out of scope", "class", c.Name, "mappers", skipped)
		}
		if len(from)+len(to) == 0 {
			continue
		}
		pkg, name := w.classPackage(c), w.mappersName(c)
		var u *mappersUnit
		for _, x := range units {
			if x.pkg == pkg && x.name == name {
				u = x
			}
		}
		if u == nil {
			u = &mappersUnit{pkg: pkg, name: name}
			units = append(units, u)
		}
		u.classes = append(u.classes, c)
	}
	return units
}

// mappersName returns the name of the mappers class of the module of c.
func (w *writer) mappersName(c *model.Class) string {
	return naming.ToPascalCase(strings.ReplaceAll(c.Namespace.Module, ".", ""), false, false) + "Mappers"
}

// mappers returns the mappers of c rendered in scope: the classes they
// involve are generated and can be filled through setters.
func (w *writer) mappers(c *model.Class) ([]*model.FromMapper, []*model.ClassMappings) {
	var (
		from []*model.FromMapper
		to   []*model.ClassMappings
	)
	if w.settable(c) {
	next:
		for _, m := range c.FromMappers {
			for _, id := range m.ClassIDs() {
				if !w.generated(id) {
					continue next
				}
			}
			from = append(from, m)
		}
	}
	for _, m := range c.ToMappers {
		if w.generated(m.Class) && w.settable(w.graph.Class(m.Class)) {
			to = append(to, m)
		}
	}
	return from, to
}

func (w *writer) generated(id model.ClassID) bool {
	c := w.graph.Class(id)
	return c != nil && !c.Abstract && w.gc.InScope(id)
}

// settable reports whether instances of c have setters. Entities usable
// as enums are immutable.
func (w *writer) settable(c *model.Class) bool {
	return !c.IsPersistent || !w.gc.CanUseEnums(c, nil)
}

// mapperParams returns the declarations, the names and the Javadoc of
// the parameters of m.
func (w *writer) mapperParams(s *source, m *model.FromMapper) (decls, names, docs []string) {
	for _, p := range m.Params {
		pc := w.graph.Class(p.Class)
		name := naming.ToCamelCase(p.Name, false, false)
		s.use(w.classImport(pc))
		decls = append(decls, pc.NamePascal()+" "+name)
		names = append(names, name)
		docs = append(docs, "@param "+name+" "+firstNonEmpty(p.Comment, fmt.Sprintf("Instance of '%s'.", pc.NamePascal())))
	}
	for _, pm := range m.Properties {
		p := w.graph.Property(pm.Mapped)
		typ, imports := w.javaType(p)
		s.use(imports...)
		name := w.fieldName(p)
		decls = append(decls, typ+" "+name)
		names = append(names, name)
		docs = append(docs, "@param "+name+" "+firstNonEmpty(w.graph.Comment(p), w.graph.Label(p), w.graph.Name(p)))
	}
	return decls, names, docs
}

// mapperConstructors renders a constructor per from mapper of c. They
// delegate to the mappers class.
func (w *writer) mapperConstructors(s *source, c *model.Class, ms []*model.FromMapper) {
	t := s.body
	for _, m := range ms {
		decls, names, docs := w.mapperParams(s, m)
		lines := []string{fmt.Sprintf("Creates a new instance of '%s'.", c.NamePascal())}
		if m.Comment != "" {
			lines = append(lines, m.Comment)
		}
		if len(docs) > 0 {
			lines = append(lines, "")
			lines = append(lines, docs...)
		}
		t.Blank()
		s.doc(1, lines...)
		t.Linef(1, "public %s(%s) {", c.NamePascal(), strings.Join(decls, ", "))
		if c.Extends.Valid() {
			t.Line(2, "super();")
		}
		t.Linef(2, "%s.create%s(%s);", w.mappersName(c), c.NamePascal(), strings.Join(append(names, "this"), ", "))
		t.Line(1, "}")
	}
}

// toMapperMethods renders a method per to mapper of c, delegating to the
// mappers class.
func (w *writer) toMapperMethods(s *source, c *model.Class, ms []*model.ClassMappings) {
	t := s.body
	for _, m := range ms {
		target := w.graph.Class(m.Class)
		s.use(w.classImport(target))
		lines := []string{fmt.Sprintf("Maps '%s' to '%s'.", c.NamePascal(), target.NamePascal())}
		if m.Comment != "" {
			lines = append(lines, m.Comment)
		}
		lines = append(lines, "",
			fmt.Sprintf("@param target Instance of '%s' to fill, a new one is created when null.", target.NamePascal()),
			fmt.Sprintf("@return The instance of '%s'.", target.NamePascal()))
		method := naming.ToCamelCase(m.Name, false, false)
		t.Blank()
		s.doc(1, lines...)
		t.Linef(1, "public %s %s(%s target) {", target.NamePascal(), method, target.NamePascal())
		t.Linef(2, "return %s.%s(this, target);", w.mappersName(c), method)
		t.Line(1, "}")
	}
}

// mappersClass renders the static mapper methods of the classes of u.
func (w *writer) mappersClass(u *mappersUnit) ([]byte, error) {
	s := newSource(u.pkg)
	t := s.body
	s.doc(0, "Mappers of "+u.classes[0].Namespace.Module+".")
	t.Linef(0, "public class %s {", u.name)
	t.Blank()
	t.Linef(1, "private %s() {", u.name)
	t.Line(2, "// Static methods only")
	t.Line(1, "}")
	for _, c := range u.classes {
		s.use(w.classImport(c))
		from, to := w.mappers(c)
		for _, m := range from {
			w.createMethod(s, c, m)
		}
		for _, m := range to {
			w.toMethod(s, c, m)
		}
	}
	t.Line(0, "}")
	return s.bytes(w.gc.Header()), nil
}

// createMethod fills an instance of c from the parameters of m.
func (w *writer) createMethod(s *source, c *model.Class, m *model.FromMapper) {
	t := s.body
	decls, _, docs := w.mapperParams(s, m)
	name := c.NamePascal()
	lines := []string{fmt.Sprintf("Fills an instance of '%s'.", name)}
	if m.Comment != "" {
		lines = append(lines, m.Comment)
	}
	lines = append(lines, "")
	lines = append(lines, docs...)
	lines = append(lines, fmt.Sprintf("@param target Instance of '%s' to fill.", name), "@return The target.")
	t.Blank()
	s.doc(1, lines...)
	t.Linef(1, "public static %s create%s(%s) {", name, name, strings.Join(append(decls, name+" target"), ", "))
	nullCheck(t, "target")

	for _, p := range m.Params {
		param := naming.ToCamelCase(p.Name, false, false)
		t.Blank()
		t.Linef(2, "if (%s != null) {", param)
		w.copyProperties(s, 3, p.Mappings, param, "target", false)
		if p.Required {
			t.Line(2, "} else {")
			t.Linef(3, "throw new IllegalArgumentException(\"%s cannot be null\");", param)
		}
		t.Line(2, "}")
	}
	if len(m.Properties) > 0 {
		t.Blank()
		for _, pm := range m.Properties {
			w.assign(s, 2, w.graph.Property(pm.Mapped), w.graph.Property(pm.Property), w.fieldName(w.graph.Property(pm.Mapped)), "target")
		}
	}
	t.Blank()
	t.Line(2, "return target;")
	t.Line(1, "}")
}

// toMethod fills an instance of the class of m from an instance of c.
func (w *writer) toMethod(s *source, c *model.Class, m *model.ClassMappings) {
	t := s.body
	target := w.graph.Class(m.Class)
	s.use(w.classImport(target))
	method := naming.ToCamelCase(m.Name, false, false)
	lines := []string{fmt.Sprintf("Maps '%s' to '%s'.", c.NamePascal(), target.NamePascal())}
	if m.Comment != "" {
		lines = append(lines, m.Comment)
	}
	lines = append(lines, "",
		fmt.Sprintf("@param source Instance of '%s'.", c.NamePascal()),
		fmt.Sprintf("@param target Instance of '%s' to fill, a new one is created when null.", target.NamePascal()),
		fmt.Sprintf("@return The instance of '%s'.", target.NamePascal()))
	t.Blank()
	s.doc(1, lines...)
	t.Linef(1, "public static %s %s(%s source, %s target) {", target.NamePascal(), method, c.NamePascal(), target.NamePascal())
	nullCheck(t, "source")
	t.Blank()
	t.Line(2, "if (target == null) {")
	t.Linef(3, "target = new %s();", target.NamePascal())
	t.Line(2, "}")
	t.Blank()
	w.copyProperties(s, 2, m.Mappings, "source", "target", true)
	t.Blank()
	t.Line(2, "return target;")
	t.Line(1, "}")
}

func nullCheck(t *gen.Text, name string) {
	t.Linef(2, "if (%s == null) {", name)
	t.Linef(3, "throw new IllegalArgumentException(\"%s cannot be null\");", name)
	t.Line(2, "}")
}

// copyProperties copies the mapped properties from the instance src to
// the instance dst. Mappings run from the mapped class to the class of
// the mapper, or the other way for a to mapper.
func (w *writer) copyProperties(s *source, level int, ms []model.PropertyMapping, src, dst string, to bool) {
	for _, pm := range ms {
		from, into := w.graph.Property(pm.Mapped), w.graph.Property(pm.Property)
		if to {
			from, into = into, from
		}
		w.assign(s, level, from, into, src+"."+w.getterName(from)+"()", dst)
	}
}

// assign sets the property into of dst to expr, the value of from.
// Values of different types are converted between entities and their
// keys; other pairs are skipped with a warning.
func (w *writer) assign(s *source, level int, from, into model.Property, expr, dst string) {
	value, ok := w.convert(s, from, into, expr)
	if !ok {
		ft, _ := w.javaType(from)
		it, _ := w.javaType(into)
		w.gc.Logger.Warn("mapping between incompatible types skipped",
			"from", w.graph.Parent(from).Name+"."+w.graph.Name(from), "type", ft,
			"into", w.graph.Parent(into).Name+"."+w.graph.Name(into), "into_type", it)
		return
	}
	s.body.Linef(level, "%s.%s(%s);", dst, w.setterName(into), value)
}

// convert returns expr, the value of from, as a value of into.
func (w *writer) convert(s *source, from, into model.Property, expr string) (string, bool) {
	ft, _ := w.javaType(from)
	it, imports := w.javaType(into)
	if ft == it {
		return expr, true
	}
	single := func(p model.Property) bool {
		return w.objectAssociation(p) && !association(p).Type.IsToMany()
	}
	switch {
	case single(from) && !w.objectAssociation(into):
		key := w.graph.AssociationKey(association(from))
		if key == nil {
			return "", false
		}
		if kt, _ := w.javaType(key); kt != it {
			return "", false
		}
		return fmt.Sprintf("%s == null ? null : %s.%s()", expr, expr, w.getterName(key)), true
	case single(into) && !w.objectAssociation(from):
		ap := association(into)
		target, key := w.graph.Class(ap.Association), w.graph.AssociationKey(ap)
		if key == nil || !w.gc.CanUseEnums(target, key) {
			return "", false
		}
		if kt, _ := w.javaType(key); kt != ft {
			return "", false
		}
		s.use(imports...)
		return fmt.Sprintf("%s == null ? null : new %s(%s)", expr, target.NamePascal(), expr), true
	}
	return "", false
}
