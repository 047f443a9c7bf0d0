package graphql

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// fieldType returns the type of the field or argument p. Compositions are
// typed by the object, or input, type of their class; other properties by
// the graphql implementation of their domain, or by an enum.
func (b *builder) fieldType(owner string, p model.Property, input bool) (*ast.Type, error) {
	var (
		typ    string
		scalar bool
	)
	if cp := b.composition(p); cp != nil {
		c := b.graph.Class(cp.Composition)
		if c == nil {
			return nil, gen.NewModelError(owner, b.graph.Name(p), "composition of an unknown class", nil)
		}
		typ = b.typeName(c, input)
		if b.graph.IsListComposition(cp) {
			typ = list(cp.Domain.Implementation(domain.TargetGraphQL), typ)
		}
	} else {
		d := b.graph.Domain(p)
		impl := d.Implementation(domain.TargetGraphQL)
		if impl == nil || impl.Type == "" {
			return nil, gen.NewModelError(owner, b.graph.Name(p), fmt.Sprintf("domain %s has no graphql implementation", d), nil)
		}
		base := impl.Type
		if name := b.enumType(p); name != "" {
			base = name
		} else {
			scalar = true
		}
		typ = impl.Generic(base)
	}
	t, err := parseType(typ)
	if err != nil {
		return nil, gen.NewModelError(owner, b.graph.Name(p), "graphql type", err)
	}
	if scalar {
		b.use(t.Name())
	}
	if b.graph.Required(p) {
		t.NonNull = true
	}
	return t, nil
}

// enumType returns the enum typing p, or "" when p is not an enum key
// usable in scope.
func (b *builder) enumType(p model.Property) string {
	c := b.graph.EnumKeyClass(p)
	if c == nil {
		return ""
	}
	key := p
	if alp, ok := p.(*model.AliasProperty); ok {
		key = b.graph.PersistentProperty(alp)
	}
	if ap := association(key); ap != nil {
		key = b.graph.AssociationKey(ap)
	}
	if key == nil || !b.gc.CanUseEnums(c, key) {
		return ""
	}
	return b.enumName(c, key)
}

// list wraps elem in the list type of impl, a non-null list by default.
func list(impl *domain.Implementation, elem string) string {
	if impl == nil || impl.GenericType == "" {
		return "[" + elem + "!]"
	}
	return impl.Generic(elem)
}

// parseType parses a type reference such as "[ID!]!".
func parseType(s string) (*ast.Type, error) {
	s = strings.TrimSpace(s)
	nonNull := strings.HasSuffix(s, "!")
	s = strings.TrimSuffix(s, "!")
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		elem, err := parseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &ast.Type{Elem: elem, NonNull: nonNull}, nil
	}
	if !isName(s) {
		return nil, fmt.Errorf("invalid type reference %q", s)
	}
	return &ast.Type{NamedType: s, NonNull: nonNull}, nil
}

// isName reports whether s is a GraphQL name.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
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
func (b *builder) composition(p model.Property) *model.CompositionProperty {
	if alp, ok := p.(*model.AliasProperty); ok {
		p = b.graph.PersistentProperty(alp)
	}
	cp, _ := p.(*model.CompositionProperty)
	return cp
}
