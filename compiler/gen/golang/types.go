package golang

import (
	"path"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/model"
)

// typeRef returns the reference to the declared type name of ns.
func (w *writer) typeRef(ns model.Namespace, name string) *jen.Statement {
	return jen.Qual(w.pkgPath(ns), name)
}

// enumType returns the enumeration typing p, if any.
func (w *writer) enumType(p model.Property) (*model.Class, string) {
	c := w.graph.EnumKeyClass(p)
	if c == nil {
		return nil, ""
	}
	key := p
	if alp, ok := p.(*model.AliasProperty); ok {
		key = w.graph.PersistentProperty(alp)
	}
	if ap := association(key); ap != nil {
		key = w.graph.AssociationKey(ap)
	}
	if key == nil || !w.gc.CanUseEnums(c, key) {
		return nil, ""
	}
	return c, c.NamePascal() + w.graph.NamePascal(key)
}

// goType returns the type of the field or parameter p. Optional scalars
// are pointers.
func (w *writer) goType(p model.Property) jen.Code {
	if cp := w.composition(p); cp != nil {
		c := w.graph.Class(cp.Composition)
		if c == nil {
			return jen.Any()
		}
		elem := w.typeRef(c.Namespace, c.NamePascal())
		if w.graph.IsListComposition(cp) {
			return generic(cp.Domain.Implementation(domain.TargetGo), elem)
		}
		return jen.Op("*").Add(elem)
	}
	impl := w.graph.Domain(p).Implementation(domain.TargetGo)
	if impl == nil {
		return jen.Any()
	}
	var base jen.Code
	if c, name := w.enumType(p); c != nil {
		base = w.typeRef(c.Namespace, name)
	} else {
		base = parseType(impl.Type, impl.Imports)
	}
	if impl.GenericType != "" {
		return generic(impl, base)
	}
	if !w.graph.Required(p) && !strings.HasPrefix(impl.Type, "[]") {
		return jen.Op("*").Add(base)
	}
	return base
}

// parseType turns a Go type expression into code, qualifying package
// selectors with the matching import path.
func parseType(typ string, imports []string) *jen.Statement {
	var prefix string
	for {
		switch {
		case strings.HasPrefix(typ, "[]"):
			prefix, typ = prefix+"[]", typ[2:]
			continue
		case strings.HasPrefix(typ, "*"):
			prefix, typ = prefix+"*", typ[1:]
			continue
		}
		break
	}
	var s *jen.Statement
	if i := strings.LastIndex(typ, "."); i > 0 {
		s = jen.Qual(importPath(typ[:i], imports), typ[i+1:])
	} else {
		s = jen.Id(typ)
	}
	if prefix == "" {
		return s
	}
	return jen.Op(prefix).Add(s)
}

func importPath(pkg string, imports []string) string {
	for _, imp := range imports {
		if imp == pkg || path.Base(imp) == pkg {
			return imp
		}
	}
	return pkg
}

// generic wraps elem in the generic type of impl.
func generic(impl *domain.Implementation, elem jen.Code) jen.Code {
	if impl == nil || impl.GenericType == "" {
		return elem
	}
	before, after, ok := strings.Cut(impl.GenericType, "{T}")
	if !ok {
		return parseType(impl.GenericType, impl.Imports)
	}
	var s *jen.Statement
	switch before {
	case "":
		s = jen.Add(elem)
	case "[]":
		s = jen.Index().Add(elem)
	case "*":
		s = jen.Op("*").Add(elem)
	default:
		s = jen.Op(before).Add(elem)
	}
	if after != "" {
		s.Op(after)
	}
	return s
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
	if alp, ok := p.(*model.AliasProperty); ok {
		p = w.graph.PersistentProperty(alp)
	}
	cp, _ := p.(*model.CompositionProperty)
	return cp
}
