package jpa

import (
	"slices"
	"strings"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

// newable maps collection interfaces to the implementation lazily
// allocated by getters of entities.
var newable = map[string]string{
	"List":       "ArrayList",
	"Set":        "HashSet",
	"Collection": "ArrayList",
}

func association(p model.Property) *model.AssociationProperty {
	switch p := p.(type) {
	case *model.AssociationProperty:
		return p
	case *model.ReverseAssociationProperty:
		return &p.AssociationProperty
	}
	return nil
}

// composition returns the composition carried by p, through an alias.
func (w *writer) composition(p model.Property) *model.CompositionProperty {
	switch p := p.(type) {
	case *model.CompositionProperty:
		return p
	case *model.AliasProperty:
		cp, _ := w.graph.PersistentProperty(p).(*model.CompositionProperty)
		return cp
	}
	return nil
}

// aliasedAssociation returns the association an alias points to.
func (w *writer) aliasedAssociation(p model.Property) *model.AssociationProperty {
	if alp, ok := p.(*model.AliasProperty); ok {
		return association(w.graph.PersistentProperty(alp))
	}
	return nil
}

// key returns the property whose values p holds.
func (w *writer) key(p model.Property) model.Property {
	key := p
	if alp, ok := p.(*model.AliasProperty); ok {
		if key = w.graph.PersistentProperty(alp); key == nil {
			return nil
		}
	}
	if ap := association(key); ap != nil {
		key = w.graph.AssociationKey(ap)
	}
	return key
}

// enumName returns the Java enum holding the values of p, and the class
// declaring it.
func (w *writer) enumName(p model.Property) (string, *model.Class) {
	c := w.graph.EnumKeyClass(p)
	key := w.key(p)
	if c == nil || key == nil || !w.gc.CanUseEnums(c, key) {
		return "", nil
	}
	return c.NamePascal() + w.graph.NamePascal(key), c
}

// objectAssociation reports whether p is an association rendered as a
// reference to the associated entity.
func (w *writer) objectAssociation(p model.Property) bool {
	ap := association(p)
	if ap == nil {
		return false
	}
	owner, target := w.graph.OwnerClass(p), w.graph.Class(ap.Association)
	return owner != nil && owner.IsPersistent && target != nil && target.IsPersistent
}

// javaType returns the Java type of p and the imports it needs.
func (w *writer) javaType(p model.Property) (string, []string) {
	if cp := w.composition(p); cp != nil {
		c := w.graph.Class(cp.Composition)
		if c == nil {
			return "Object", nil
		}
		imports := []string{w.classImport(c)}
		impl := cp.Domain.Implementation(domain.TargetJava)
		if impl != nil {
			imports = append(imports, impl.Imports...)
		}
		return impl.Generic(c.NamePascal()), imports
	}
	if w.objectAssociation(p) {
		ap := association(p)
		target := w.graph.Class(ap.Association)
		imports := []string{w.classImport(target)}
		if ap.Type.IsToMany() {
			return "List<" + target.NamePascal() + ">", append(imports, "java.util.List")
		}
		return target.NamePascal(), imports
	}
	impl := w.graph.Domain(p).Implementation(domain.TargetJava)
	if impl == nil {
		return "Object", nil
	}
	typ, imports := impl.Type, slices.Clone(impl.Imports)
	if name, c := w.enumName(p); c != nil {
		typ = name
		imports = append(imports, w.enumPackage(c.Namespace)+"."+name)
	}
	return impl.Generic(typ), imports
}

// fieldName returns the name of the Java field of p.
func (w *writer) fieldName(p model.Property) string {
	if ap := association(p); ap != nil {
		if t := w.graph.Class(ap.Association); t != nil && !t.IsPersistent {
			return w.graph.NameCamel(p)
		}
	}
	return w.graph.NameByClassCamel(p)
}

func (w *writer) getterName(p model.Property) string {
	prefix := "get"
	if typ, _ := w.javaType(p); typ == "boolean" {
		prefix = "is"
	}
	return prefix + naming.ToFirstUpper(w.fieldName(p))
}

func (w *writer) setterName(p model.Property) string {
	return "set" + naming.ToFirstUpper(w.fieldName(p))
}

// literal renders the value v of p as a Java expression.
func (w *writer) literal(p model.Property, v string) (string, []string) {
	if v == "null" {
		return v, nil
	}
	if name, c := w.enumName(p); c != nil {
		return name + "." + v, []string{w.enumPackage(c.Namespace) + "." + name}
	}
	typ, imports := w.javaType(p)
	switch typ {
	case "String":
		return quote(v), nil
	case "Long", "long":
		return v + "L", nil
	case "BigDecimal":
		return "new BigDecimal(" + quote(v) + ")", imports
	case "Float", "float":
		return v + "f", nil
	}
	return v, nil
}

// defaultValue returns the field initializer of p, if any.
func (w *writer) defaultValue(p model.Property) (string, []string) {
	if w.composition(p) != nil {
		return "", nil
	}
	v, err := w.graph.DefaultValue(p)
	if err != nil || v == "" {
		return "", nil
	}
	if w.objectAssociation(p) {
		ap := association(p)
		target := w.graph.Class(ap.Association)
		key := w.graph.AssociationKey(ap)
		name, ec := w.enumName(key)
		if ec == nil || ap.Type.IsToMany() {
			return "", nil
		}
		return " = new " + target.NamePascal() + "(" + name + "." + v + ")",
			[]string{w.enumPackage(ec.Namespace) + "." + name}
	}
	lit, imports := w.literal(p, v)
	return " = " + lit, imports
}

// genericBase returns the raw type of a generic type, "List" for "List<X>".
func genericBase(typ string) string {
	base, _, _ := strings.Cut(typ, "<")
	return base
}
