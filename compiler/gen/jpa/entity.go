package jpa

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

// entity renders the entity of a persistent class. Classes usable as
// enums get a static instance per value and no setters.
func (w *writer) entity(c *model.Class) ([]byte, error) {
	s := newSource(w.classPackage(c))
	t := s.body
	pks := w.graph.PrimaryKey(c)
	composite := len(pks) > 1
	enum := w.gc.CanUseEnums(c, nil)
	props := w.ownProperties(c)
	from, to := w.mappers(c)

	s.doc(0, firstNonEmpty(c.Comment, c.Label, c.Name))
	s.annotate(0, w.classAnnotations(c, composite, enum)...)
	w.declaration(s, c, "class")

	if enum {
		key := w.graph.Property(c.EnumKey)
		name, _ := w.enumName(key)
		s.use(w.enumPackage(c.Namespace) + "." + name)
		t.Blank()
		for _, v := range sortedValues(c) {
			code := v.Values[w.graph.Name(key)]
			s.annotate(1, w.jpa("Transient"))
			t.Linef(1, "public static final %s %s = new %s(%s.%s);", c.NamePascal(), code, c.NamePascal(), name, code)
		}
	}
	for _, p := range props {
		w.field(s, p, composite)
	}
	if composite {
		w.idClass(s, c, pks)
	}

	if enum || c.Extends.Valid() || w.isExtended(c) || len(from) > 0 {
		w.noArgConstructor(s, c)
	}
	if enum {
		w.enumConstructor(s, c, props)
	}
	w.mapperConstructors(s, c, from)
	for _, p := range props {
		w.getter(s, c, p, 1)
	}
	if !enum {
		for _, p := range props {
			w.setter(s, c, p, 1)
		}
		w.syncHelpers(s, c, props)
	}
	w.toMapperMethods(s, c, to)
	t.Line(0, "}")
	return s.bytes(w.gc.Header()), nil
}

func (w *writer) isExtended(c *model.Class) bool {
	return slices.ContainsFunc(w.gc.Classes, func(o *model.Class) bool { return o.Extends == c.ID })
}

func (w *writer) declaration(s *source, c *model.Class, kind string) {
	if parent := w.graph.Class(c.Extends); parent != nil {
		s.use(w.classImport(parent))
		s.body.Linef(0, "public %s %s extends %s {", kind, c.NamePascal(), parent.NamePascal())
		return
	}
	s.body.Linef(0, "public %s %s {", kind, c.NamePascal())
}

func (w *writer) classAnnotations(c *model.Class, composite, enum bool) []*annotation {
	var as []*annotation
	as = append(as, w.jpa("Entity"))
	if w.isExtended(c) {
		as = append(as, w.jpa("Inheritance").attr("strategy", "InheritanceType.JOINED", w.Persistence+".persistence.InheritanceType"))
	}
	table := w.jpa("Table").attr("name", quote(w.graph.ClassSQLName(c)))
	if len(c.UniqueKeys) > 0 {
		table.imports = append(table.imports, w.Persistence+".persistence.UniqueConstraint")
		constraints := make([]string, len(c.UniqueKeys))
		for i, uk := range c.UniqueKeys {
			cols := make([]string, 0, len(uk))
			for _, p := range w.graph.Properties(uk) {
				cols = append(cols, quote(w.graph.SQLName(p)))
			}
			constraints[i] = "\n    @UniqueConstraint(columnNames = {" + strings.Join(cols, ", ") + "})"
		}
		table.attr("uniqueConstraints", "{"+strings.Join(constraints, ",")+"}")
	}
	as = append(as, table)
	if composite {
		as = append(as, w.jpa("IdClass").attr("", c.NamePascal()+"."+c.NamePascal()+"Id.class"))
	}
	if c.Reference {
		strategy := "CacheConcurrencyStrategy.READ_WRITE"
		if enum {
			as = append(as, newAnnotation("Immutable", "org.hibernate.annotations.Immutable"))
			strategy = "CacheConcurrencyStrategy.READ_ONLY"
		}
		as = append(as, newAnnotation("Cache", "org.hibernate.annotations.Cache").
			attr("usage", strategy, "org.hibernate.annotations.CacheConcurrencyStrategy"))
	}
	return as
}

// field renders the field of p in an entity.
func (w *writer) field(s *source, p model.Property, composite bool) {
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

	var as []*annotation
	pk := p.Base().PrimaryKey
	if !pk || !composite {
		as = append(as, w.domainAnnotations(p)...)
	}
	as = append(as, w.persistentAnnotations(p, composite)...)
	s.annotate(1, as...)

	typ, imports := w.javaType(p)
	def, defImports := w.defaultValue(p)
	s.use(imports...)
	s.use(defImports...)
	s.body.Linef(1, "private %s %s%s;", typ, w.fieldName(p), def)
}

// domainAnnotations returns the annotations declared by the Java
// implementation of the domain of p.
func (w *writer) domainAnnotations(p model.Property) []*annotation {
	impl := w.graph.Domain(p).Implementation(domain.TargetJava)
	if impl == nil {
		return nil
	}
	as := make([]*annotation, 0, len(impl.Annotations))
	for _, a := range impl.Annotations {
		as = append(as, newAnnotation(strings.TrimPrefix(a, "@")))
	}
	return as
}

func (w *writer) persistentAnnotations(p model.Property, composite bool) []*annotation {
	var (
		as  []*annotation
		pk  = p.Base().PrimaryKey
		own = w.graph.OwnerClass(p)
	)
	if ap := association(p); ap != nil {
		if !pk || !composite {
			as = append(as, w.associationAnnotations(p, ap)...)
		}
		if ap.Type.IsToMany() {
			if t := w.graph.Class(ap.Association); t != nil {
				if order := w.graph.Property(t.OrderProperty); order != nil {
					if typ, _ := w.javaType(p); strings.Contains(typ, "List") {
						as = append(as, w.jpa("OrderBy").attr("", quote(w.graph.NameByClassCamel(order)+" ASC")))
					}
				}
			}
		}
		if pk {
			as = append(as, w.idAnnotations(own, p, composite)...)
		}
		return as
	}
	if pk {
		as = append(as, w.idAnnotations(own, p, composite)...)
	}
	switch {
	case w.aliasedAssociation(p) != nil:
		as = append(as, w.associationAnnotations(p, w.aliasedAssociation(p))...)
	case w.composition(p) != nil:
		cp := w.composition(p)
		if c := w.graph.Class(cp.Composition); c != nil {
			as = append(as, w.jpa("Convert").attr("converter", c.NamePascal()+"Converter.class", w.classPackage(c)+"."+c.NamePascal()+"Converter"))
		}
		as = append(as, w.column(p))
	case !pk || !composite:
		as = append(as, w.column(p))
	}
	if _, ec := w.enumName(p); ec != nil && w.aliasedAssociation(p) == nil {
		as = append(as, w.jpa("Enumerated").attr("", "EnumType.STRING", w.Persistence+".persistence.EnumType"))
	}
	return as
}

func (w *writer) column(p model.Property) *annotation {
	a := w.jpa("Column").attr("name", quote(w.graph.SQLName(p)))
	if w.graph.Required(p) {
		a.attr("nullable", "false")
	}
	d := w.graph.Domain(p)
	if d == nil {
		if w.composition(p) != nil {
			a.attr("columnDefinition", quote("jsonb"))
		}
		return a
	}
	if d.Length != nil {
		if impl := d.Implementation(domain.TargetJava); impl != nil && strings.EqualFold(impl.Type, "string") {
			a.attr("length", strconv.Itoa(*d.Length))
		} else {
			a.attr("precision", strconv.Itoa(*d.Length))
		}
	}
	if d.Scale != nil {
		a.attr("scale", strconv.Itoa(*d.Scale))
	}
	if impl := d.Implementation(domain.TargetSQL); impl != nil {
		a.attr("columnDefinition", quote(impl.Type))
	}
	return a
}

func (w *writer) idAnnotations(c *model.Class, p model.Property, composite bool) []*annotation {
	var as []*annotation
	if d := w.graph.Domain(p); d != nil && d.AutoGeneratedValue && !composite && c != nil {
		generated := w.jpa("GeneratedValue")
		strategy := w.Persistence + ".persistence.GenerationType"
		switch w.Identity {
		case Sequence:
			seq := quote("SEQ_" + w.graph.ClassSQLName(c))
			generator := w.jpa("SequenceGenerator").attr("sequenceName", seq).attr("name", seq)
			if w.SequenceStart > 0 {
				generator.attr("initialValue", strconv.Itoa(w.SequenceStart))
			}
			if w.SequenceIncrement > 0 {
				generator.attr("allocationSize", strconv.Itoa(w.SequenceIncrement))
			}
			as = append(as, generator)
			generated.attr("strategy", "GenerationType.SEQUENCE", strategy).attr("generator", seq)
		default:
			generated.attr("strategy", "GenerationType.IDENTITY", strategy)
		}
		as = append(as, generated)
	}
	return append(as, w.jpa("Id"))
}

// associationAnnotations maps the association ap carried by p.
func (w *writer) associationAnnotations(p model.Property, ap *model.AssociationProperty) []*annotation {
	target := w.graph.Class(ap.Association)
	own := w.graph.OwnerClass(p)
	if target == nil || own == nil {
		return nil
	}
	fetch := func(a *annotation) *annotation {
		return a.attr("fetch", "FetchType.LAZY", w.Persistence+".persistence.FetchType")
	}
	cascade := w.Persistence + ".persistence.CascadeType"
	fk := quote(w.graph.SQLName(p))

	switch ap.Type {
	case model.ManyToOne:
		a := fetch(w.jpa("ManyToOne")).
			attr("optional", strconv.FormatBool(!w.graph.Required(p))).
			attr("targetEntity", target.NamePascal()+".class", w.classImport(target))
		return []*annotation{a, w.joinColumn(fk, w.associationKeyColumn(ap))}
	case model.OneToOne:
		a := fetch(w.jpa("OneToOne")).
			attr("cascade", "CascadeType.ALL", cascade).
			attr("optional", strconv.FormatBool(!w.graph.Required(p)))
		return []*annotation{a, w.joinColumn(fk, w.associationKeyColumn(ap)).attr("unique", "true")}
	case model.OneToMany:
		a := w.jpa("OneToMany")
		if rp, ok := p.(*model.ReverseAssociationProperty); ok {
			a.attr("cascade", "{CascadeType.PERSIST, CascadeType.MERGE}", cascade)
			fetch(a).attr("mappedBy", quote(w.graph.NameByClassCamel(w.graph.Property(rp.ReverseProperty))))
			return []*annotation{a}
		}
		fetch(a.attr("cascade", "CascadeType.ALL", cascade))
		if own.Namespace.RootModule() == target.Namespace.RootModule() {
			a.attr("mappedBy", quote(own.NameCamel()+naming.ToPascalCase(ap.Role, false, false)))
			return []*annotation{a}
		}
		pk := quote(w.primaryKeyColumn(own))
		return []*annotation{w.joinColumn(pk, pk), a}
	case model.ManyToMany:
		a := fetch(w.jpa("ManyToMany"))
		if !w.gc.CanUseEnums(target, nil) {
			a.attr("cascade", "{CascadeType.PERSIST, CascadeType.MERGE}", cascade)
		}
		if rp, ok := p.(*model.ReverseAssociationProperty); ok {
			a.attr("mappedBy", quote(w.graph.NameByClassCamel(w.graph.Property(rp.ReverseProperty))))
			return []*annotation{a}
		}
		role := ""
		if ap.Role != "" {
			role = "_" + naming.ToConstantCase(ap.Role)
		}
		table := w.jpa("JoinTable").
			attr("name", quote(w.graph.ClassSQLName(own)+"_"+w.graph.ClassSQLName(target)+role)).
			nested("joinColumns", w.jpa("JoinColumn").attr("name", quote(w.primaryKeyColumn(own)+role))).
			nested("inverseJoinColumns", w.jpa("JoinColumn").attr("name", fk))
		return []*annotation{a, table}
	}
	return nil
}

func (w *writer) joinColumn(name, referenced string) *annotation {
	a := w.jpa("JoinColumn").attr("name", name)
	if referenced != "" {
		a.attr("referencedColumnName", referenced)
	}
	return a
}

func (w *writer) associationKeyColumn(ap *model.AssociationProperty) string {
	if key := w.graph.AssociationKey(ap); key != nil {
		return quote(w.graph.SQLName(key))
	}
	return ""
}

func (w *writer) primaryKeyColumn(c *model.Class) string {
	if pks := w.graph.PrimaryKey(c); len(pks) > 0 {
		return w.graph.SQLName(pks[0])
	}
	return ""
}

// idClass renders the inner class of a composite primary key.
func (w *writer) idClass(s *source, c *model.Class, pks []model.Property) {
	t := s.body
	name := c.NamePascal() + "Id"
	t.Blank()
	t.Linef(1, "public static class %s {", name)
	for _, pk := range pks {
		t.Blank()
		as := w.domainAnnotations(pk)
		if ap := association(pk); ap != nil {
			as = append(as, w.associationAnnotations(pk, ap)...)
		} else {
			as = append(as, w.column(pk))
		}
		s.annotate(2, as...)
		typ, imports := w.javaType(pk)
		s.use(imports...)
		t.Linef(2, "private %s %s;", typ, w.fieldName(pk))
	}
	for _, pk := range pks {
		w.getter(s, c, pk, 2)
		w.setter(s, c, pk, 2)
	}

	var (
		nullable []string
		equals   []string
		hashes   []string
	)
	for _, pk := range pks {
		f, cmp := w.fieldName(pk), w.keyAccessor(pk)
		equals = append(equals, fmt.Sprintf("Objects.equals(this.%s%s, oId.%s%s)", f, cmp, f, cmp))
		if cmp != "" {
			nullable = append(nullable, fmt.Sprintf("this.%s == null || oId.%s == null", f, f))
			hashes = append(hashes, fmt.Sprintf("%s == null ? null : %s%s", f, f, cmp))
		} else {
			hashes = append(hashes, f)
		}
	}
	s.use("java.util.Objects")
	t.Blank()
	t.Line(2, "@Override")
	t.Line(2, "public boolean equals(Object o) {")
	t.Line(3, "if (o == this) {")
	t.Line(4, "return true;")
	t.Line(3, "}")
	t.Blank()
	t.Line(3, "if (o == null || this.getClass() != o.getClass()) {")
	t.Line(4, "return false;")
	t.Line(3, "}")
	t.Blank()
	t.Linef(3, "%s oId = (%s) o;", name, name)
	if len(nullable) > 0 {
		t.Blank()
		t.Linef(3, "if (%s) {", strings.Join(nullable, " || "))
		t.Line(4, "return false;")
		t.Line(3, "}")
	}
	t.Blank()
	t.Linef(3, "return %s;", strings.Join(equals, "\n"+strings.Repeat("    ", 4)+"&& "))
	t.Line(2, "}")
	t.Blank()
	t.Line(2, "@Override")
	t.Line(2, "public int hashCode() {")
	t.Linef(3, "return Objects.hash(%s);", strings.Join(hashes, ", "))
	t.Line(2, "}")
	t.Line(1, "}")
}

// keyAccessor returns the call reading the key of an entity valued
// primary key part, or "" for scalar parts.
func (w *writer) keyAccessor(pk model.Property) string {
	ap := association(pk)
	if ap == nil || !w.objectAssociation(pk) {
		return ""
	}
	key := w.graph.AssociationKey(ap)
	if key == nil {
		return ""
	}
	return "." + w.getterName(key) + "()"
}

func (w *writer) noArgConstructor(s *source, c *model.Class) {
	s.body.Blank()
	s.doc(1, "No arg constructor.")
	s.body.Linef(1, "public %s() {", c.NamePascal())
	if c.Extends.Valid() {
		s.body.Line(2, "super();")
	} else {
		s.body.Line(2, "// No arg constructor")
	}
	s.body.Line(1, "}")
}

// enumConstructor renders the constructor of an enum entity from its key,
// filling the other fields from the reference values.
func (w *writer) enumConstructor(s *source, c *model.Class, props []model.Property) {
	t := s.body
	key := w.graph.Property(c.EnumKey)
	typ, _ := w.javaType(key)
	field := w.fieldName(key)
	t.Blank()
	s.doc(1, "Enum constructor.", "@param "+field+" Code of the instance.")
	t.Linef(1, "public %s(%s %s) {", c.NamePascal(), typ, field)
	if c.Extends.Valid() {
		t.Line(2, "super();")
	}
	t.Linef(2, "this.%s = %s;", field, field)
	if len(props) > 1 {
		t.Linef(2, "switch (%s) {", field)
		for _, v := range sortedValues(c) {
			t.Linef(2, "case %s:", v.Values[w.graph.Name(key)])
			for _, p := range props {
				if p == key {
					continue
				}
				raw, ok := v.Values[w.graph.Name(p)]
				if !ok {
					raw = "null"
				}
				lit, imports := w.enumValue(p, raw)
				s.use(imports...)
				t.Linef(3, "this.%s = %s;", w.fieldName(p), lit)
			}
			t.Line(3, "break;")
		}
		t.Line(2, "}")
	}
	t.Line(1, "}")
}

// enumValue renders a reference value of p. Associations to enum
// entities use the static instance of the associated class.
func (w *writer) enumValue(p model.Property, v string) (string, []string) {
	if v == "null" {
		return v, nil
	}
	if w.objectAssociation(p) {
		ap := association(p)
		target := w.graph.Class(ap.Association)
		if w.gc.CanUseEnums(target, w.graph.AssociationKey(ap)) {
			return target.NamePascal() + "." + v, []string{w.classImport(target)}
		}
		return "null", nil
	}
	return w.literal(p, v)
}

func (w *writer) getter(s *source, c *model.Class, p model.Property, level int) {
	t := s.body
	field := w.fieldName(p)
	typ, _ := w.javaType(p)
	t.Blank()
	s.doc(level, "Getter for "+field+".", "", fmt.Sprintf("@return value of {@link %s#%s %s}.", w.classImport(c), field, field))
	t.Linef(level, "public %s %s() {", typ, w.getterName(p))
	if impl, ok := newable[genericBase(typ)]; ok && c.IsPersistent {
		s.use("java.util." + impl)
		t.Linef(level+1, "if (this.%s == null) {", field)
		t.Linef(level+2, "this.%s = new %s<>();", field, impl)
		t.Line(level+1, "}")
	}
	t.Linef(level+1, "return this.%s;", field)
	t.Line(level, "}")
}

func (w *writer) setter(s *source, c *model.Class, p model.Property, level int) {
	t := s.body
	field := w.fieldName(p)
	typ, _ := w.javaType(p)
	t.Blank()
	s.doc(level, fmt.Sprintf("Set the value of {@link %s#%s %s}.", w.classImport(c), field, field), "@param "+field+" value to set")
	t.Linef(level, "public void %s(%s %s) {", w.setterName(p), typ, field)
	t.Linef(level+1, "this.%s = %s;", field, field)
	t.Line(level, "}")
}

// syncHelpers renders the adders and removers of the bidirectional
// to-many associations of c.
func (w *writer) syncHelpers(s *source, c *model.Class, props []model.Property) {
	if !w.AssociationAdders && !w.AssociationRemovers {
		return
	}
	t := s.body
	for _, p := range props {
		ap := association(p)
		if ap == nil || !ap.Type.IsToMany() || !w.objectAssociation(p) {
			continue
		}
		other := w.reverseOf(p)
		if other == nil {
			continue
		}
		target := w.graph.Class(ap.Association)
		field, arg := w.fieldName(p), target.NameCamel()
		method := target.NamePascal() + naming.ToPascalCase(ap.Role, false, false)
		otherToMany := association(other).Type.IsToMany()
		if w.AssociationAdders {
			t.Blank()
			s.doc(1, fmt.Sprintf("Add a value to {@link %s#%s %s}.", w.classImport(c), field, field), "@param "+arg+" value to add")
			t.Linef(1, "public void add%s(%s %s) {", method, target.NamePascal(), arg)
			t.Linef(2, "this.%s().add(%s);", w.getterName(p), arg)
			if otherToMany {
				t.Linef(2, "%s.%s().add(this);", arg, w.getterName(other))
			} else {
				t.Linef(2, "%s.%s(this);", arg, w.setterName(other))
			}
			t.Line(1, "}")
		}
		if w.AssociationRemovers {
			t.Blank()
			s.doc(1, fmt.Sprintf("Remove a value from {@link %s#%s %s}.", w.classImport(c), field, field), "@param "+arg+" value to remove")
			t.Linef(1, "public void remove%s(%s %s) {", method, target.NamePascal(), arg)
			t.Linef(2, "this.%s().remove(%s);", w.getterName(p), arg)
			if otherToMany {
				t.Linef(2, "%s.%s().remove(this);", arg, w.getterName(other))
			} else {
				t.Linef(2, "%s.%s(null);", arg, w.setterName(other))
			}
			t.Line(1, "}")
		}
	}
}

// reverseOf returns the other side of a bidirectional association, when
// it is in scope.
func (w *writer) reverseOf(p model.Property) model.Property {
	if rp, ok := p.(*model.ReverseAssociationProperty); ok {
		return w.graph.Property(rp.ReverseProperty)
	}
	ap := association(p)
	target := w.graph.Class(ap.Association)
	for _, tp := range w.gc.Properties(target) {
		if rp, ok := tp.(*model.ReverseAssociationProperty); ok && rp.ReverseProperty == p.Base().ID {
			return rp
		}
	}
	return nil
}

func sortedValues(c *model.Class) []model.ClassValue {
	values := slices.Clone(c.Values)
	slices.SortStableFunc(values, func(a, b model.ClassValue) int { return strings.Compare(a.Name, b.Name) })
	return values
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
