package typescript

import (
	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/model"
)

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

// isListComposition reports whether p holds a list of objects.
func (w *writer) isListComposition(p model.Property) bool {
	cp := w.composition(p)
	return cp != nil && cp.Domain != nil && cp.Domain.IsList(domain.TargetTS)
}

// key returns the property whose values p holds: the aliased property,
// the referenced key of an association, or p itself.
func (w *writer) key(p model.Property) model.Property {
	key := p
	if alp, ok := p.(*model.AliasProperty); ok {
		if key = w.graph.PersistentProperty(alp); key == nil {
			return nil
		}
	}
	switch ap := key.(type) {
	case *model.AssociationProperty:
		key = w.graph.AssociationKey(ap)
	case *model.ReverseAssociationProperty:
		key = w.graph.AssociationKey(&ap.AssociationProperty)
	}
	return key
}

// enumType returns the name of the union type of the values of p, and the
// reference class declaring it. It returns a nil class when p does not hold
// enum values.
func (w *writer) enumType(p model.Property) (string, *model.Class) {
	if !w.refs {
		return "", nil
	}
	c := w.graph.EnumKeyClass(p)
	key := w.key(p)
	if c == nil || key == nil || !w.gc.CanUseEnums(c, key) {
		return "", nil
	}
	return c.NamePascal() + w.graph.NamePascal(key), c
}

// tsType returns the TypeScript type of p.
func (w *writer) tsType(p model.Property) string {
	if cp := w.composition(p); cp != nil {
		c := w.graph.Class(cp.Composition)
		if c == nil {
			return "unknown"
		}
		if cp.Domain == nil {
			return c.NamePascal()
		}
		impl := cp.Domain.Implementation(domain.TargetTS)
		if impl == nil {
			return c.NamePascal()
		}
		return impl.Generic(c.NamePascal())
	}
	impl := w.graph.Domain(p).Implementation(domain.TargetTS)
	if impl == nil {
		return "unknown"
	}
	typ := impl.Type
	if name, c := w.enumType(p); c != nil {
		typ = name
	}
	return impl.Generic(typ)
}

// isStringType reports whether values of p are rendered as string literals.
func (w *writer) isStringType(p model.Property) bool {
	impl := w.graph.Domain(w.keyOrSelf(p)).Implementation(domain.TargetTS)
	if impl == nil {
		return true
	}
	return impl.Type != "number" && impl.Type != "boolean"
}

func (w *writer) keyOrSelf(p model.Property) model.Property {
	if k := w.key(p); k != nil {
		return k
	}
	return p
}

// domainName returns the name of the domain object describing p, or ""
// for list compositions and object compositions.
func (w *writer) domainName(p model.Property) string {
	if cp := w.composition(p); cp != nil {
		if cp.Domain == nil || w.isListComposition(p) {
			return ""
		}
		return cp.Domain.Name
	}
	if d := w.graph.Domain(p); d != nil {
		return d.Name
	}
	return ""
}

// required reports whether p must be set by clients. Auto generated keys
// are optional.
func (w *writer) required(p model.Property) bool {
	if !w.graph.Required(p) {
		return false
	}
	pk := p.Base().PrimaryKey
	if alp, ok := p.(*model.AliasProperty); ok && alp.AliasedPrimaryKey {
		pk = true
	}
	d := w.graph.Domain(p)
	return !(pk && d != nil && d.AutoGeneratedValue)
}
