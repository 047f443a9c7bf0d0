package model

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/syssam/modelgen/compiler/domain"
)

// PersistentProperty follows the alias chain of alp down to its first
// non-alias property. It returns nil on a broken or cyclic chain.
func (g *Graph) PersistentProperty(alp *AliasProperty) Property {
	var (
		cur  Property = alp
		seen          = make(map[Property]bool)
	)
	for {
		a, ok := cur.(*AliasProperty)
		if !ok {
			return cur
		}
		if seen[cur] {
			return nil
		}
		seen[cur] = true
		if cur = g.Property(a.Property); cur == nil {
			return nil
		}
	}
}

// AssociationKey returns the key referenced by ap: its explicit property,
// else the first property of the associated class.
func (g *Graph) AssociationKey(ap *AssociationProperty) Property {
	if p := g.Property(ap.Property); p != nil {
		return p
	}
	c := g.Class(ap.Association)
	if c == nil {
		return nil
	}
	if len(c.Properties) > 0 {
		return g.Property(c.Properties[0])
	}
	if ps := g.ExtendedProperties(c); len(ps) > 0 {
		return ps[0]
	}
	return nil
}

// aliasChain calls fn on p and then on every aliased property, until fn
// returns true or the chain ends.
func (g *Graph) aliasChain(p Property, fn func(Property) bool) {
	seen := make(map[Property]bool)
	for p != nil && !seen[p] {
		seen[p] = true
		if fn(p) {
			return
		}
		alp, ok := p.(*AliasProperty)
		if !ok {
			return
		}
		p = g.Property(alp.Property)
	}
}

// Label returns the label of p, aliases inheriting the label of the
// aliased property unless they override it.
func (g *Graph) Label(p Property) string {
	var label string
	g.aliasChain(p, func(p Property) bool {
		label = p.Base().Label
		if label == "" {
			if ap := asAssociation(p); ap != nil {
				if c := g.Class(ap.Association); c != nil {
					label = firstNonEmpty(c.Label, c.Name)
				}
			}
		}
		return label != ""
	})
	return label
}

// Comment returns the comment of p, aliases inheriting the comment of the
// aliased property unless they override it.
func (g *Graph) Comment(p Property) string {
	var comment string
	g.aliasChain(p, func(p Property) bool {
		comment = p.Base().Comment
		return comment != ""
	})
	return comment
}

// Required reports whether p is mandatory. An alias as list is optional
// unless it says otherwise.
func (g *Graph) Required(p Property) bool {
	alp, ok := p.(*AliasProperty)
	if !ok {
		return p.Base().Required
	}
	if alp.RequiredOverride != nil {
		return *alp.RequiredOverride
	}
	if alp.AsList {
		return false
	}
	orig := g.Property(alp.Property)
	if orig == nil || orig == p {
		return alp.Required
	}
	return g.Required(orig)
}

// Domain returns the effective domain of p.
//
// Aliases take the domain of the aliased property (its list form for
// aliases as list). Associations take the domain of the referenced key,
// its list form when the association is to-many.
func (g *Graph) Domain(p Property) *domain.Domain {
	return g.domain(p, make(map[Property]bool))
}

func (g *Graph) domain(p Property, seen map[Property]bool) *domain.Domain {
	if seen[p] {
		return nil
	}
	seen[p] = true
	b := p.Base()
	if b.Domain != nil {
		return b.Domain
	}
	switch p := p.(type) {
	case *AliasProperty:
		orig := g.Property(p.Property)
		if orig == nil {
			return nil
		}
		d := g.domain(orig, seen)
		if p.AsList {
			if ld, err := g.Domains.ResolveAs(d, domain.AsList); err == nil {
				return ld
			}
		}
		return d
	case *AssociationProperty, *ReverseAssociationProperty:
		ap := asAssociation(p)
		key := g.AssociationKey(ap)
		if key == nil {
			return nil
		}
		d := g.domain(key, seen)
		if ap.Type.IsToMany() {
			if ld, err := g.Domains.ResolveAs(d, domain.AsList); err == nil {
				return ld
			}
		}
		return d
	}
	return nil
}

// DefaultValue returns the default value of p. Compositions have no
// default value concept and fail with ErrNoDefaultValue.
func (g *Graph) DefaultValue(p Property) (string, error) {
	if _, ok := p.(*CompositionProperty); ok {
		return "", &ResolutionError{
			Class:    g.Parent(p).Name,
			Property: g.Name(p),
			Message:  "default value requested on a composition",
			Cause:    ErrNoDefaultValue,
		}
	}
	var value string
	g.aliasChain(p, func(p Property) bool {
		value = p.Base().DefaultValue
		return value != ""
	})
	return value, nil
}

// Chain returns c followed by its ancestors, nearest first. The walk is
// iterative and stops on an inheritance cycle.
func (g *Graph) Chain(c *Class) []*Class {
	var (
		chain []*Class
		seen  = make(map[ClassID]bool)
	)
	for c != nil && !seen[c.ID] {
		seen[c.ID] = true
		chain = append(chain, c)
		c = g.Class(c.Extends)
	}
	return chain
}

// CheckInheritance reports the first inheritance cycle of the graph.
func (g *Graph) CheckInheritance() error {
	for _, c := range g.classes {
		seen := map[ClassID]bool{c.ID: true}
		path := []string{c.Name}
		for p := g.Class(c.Extends); p != nil; p = g.Class(p.Extends) {
			path = append(path, p.Name)
			if seen[p.ID] {
				return &ResolutionError{Class: c.Name, Message: "inheritance cycle " + strings.Join(path, " -> ")}
			}
			seen[p.ID] = true
		}
	}
	return nil
}

// ExtendedProperties returns the properties of c and its ancestors,
// inherited ones first. A property redeclared by name in a nearer class
// masks the inherited one.
func (g *Graph) ExtendedProperties(c *Class) []Property {
	chain := g.Chain(c)
	declared := make([]map[string]bool, len(chain))
	for i, cc := range chain {
		declared[i] = make(map[string]bool, len(cc.Properties))
		for _, p := range g.Properties(cc.Properties) {
			declared[i][g.Name(p)] = true
		}
	}
	var ps []Property
	for i := len(chain) - 1; i >= 0; i-- {
	next:
		for _, p := range g.Properties(chain[i].Properties) {
			name := g.Name(p)
			for j := 0; j < i; j++ {
				if declared[j][name] {
					continue next
				}
			}
			ps = append(ps, p)
		}
	}
	return ps
}

// GetProperties returns the effective properties of c: its extended
// properties followed by the reverse side of every to-many association
// targeting c from a class of available, ordered by declaration of the
// originating classes.
func (g *Graph) GetProperties(c *Class, available []ClassID) []Property {
	ps := g.ExtendedProperties(c)
	var reverses []*ReverseAssociationProperty
	for _, id := range g.reverses[c.ID] {
		rp, ok := g.Property(id).(*ReverseAssociationProperty)
		if ok && slices.Contains(available, rp.Association) {
			reverses = append(reverses, rp)
		}
	}
	sort.SliceStable(reverses, func(i, j int) bool {
		return reverses[i].Association < reverses[j].Association
	})
	for _, rp := range reverses {
		ps = append(ps, rp)
	}
	return ps
}

// PrimaryKey returns the primary key properties of c in declaration order,
// or those of its nearest ancestor declaring one. More than one property
// denotes a composite key.
func (g *Graph) PrimaryKey(c *Class) []Property {
	for _, cc := range g.Chain(c) {
		var pks []Property
		for _, p := range g.Properties(cc.Properties) {
			if p.Base().PrimaryKey {
				pks = append(pks, p)
			}
		}
		if len(pks) > 0 {
			return pks
		}
	}
	return nil
}

// singleUniqueKeys returns the properties of the one-property unique keys of c.
func (g *Graph) singleUniqueKeys(c *Class) []PropertyID {
	var ids []PropertyID
	for _, uk := range c.UniqueKeys {
		if len(uk) == 1 {
			ids = append(ids, uk[0])
		}
	}
	return ids
}

// CanClassUseEnums reports whether c can be rendered as a closed set of
// static instances: it is a reference class with an enum key and known
// values, it belongs to available (nil meaning every class), and the
// queried property (the enum key when p is nil) is the enum key or a
// single-property unique key whose values are all valid identifiers.
func (g *Graph) CanClassUseEnums(c *Class, available []ClassID, p Property) bool {
	if c == nil || !c.Reference || !c.EnumKey.Valid() || len(c.Values) == 0 {
		return false
	}
	if available != nil && !slices.Contains(available, c.ID) {
		return false
	}
	if p == nil {
		p = g.Property(c.EnumKey)
	}
	if p == nil {
		return false
	}
	id := p.Base().ID
	if id != c.EnumKey && !slices.Contains(g.singleUniqueKeys(c), id) {
		return false
	}
	name := g.Name(p)
	for _, v := range c.Values {
		code, ok := v.Values[name]
		if !ok || !isEnumIdentifier(code) {
			return false
		}
	}
	return true
}

func isEnumIdentifier(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// CompositionPrimaryKey returns the unique primary key of the composed
// class, falling back to its aliases of primary keys. It returns nil when
// there is no candidate or more than one.
func (g *Graph) CompositionPrimaryKey(cp *CompositionProperty) Property {
	c := g.Class(cp.Composition)
	if c == nil {
		return nil
	}
	ext := g.ExtendedProperties(c)
	var pks []Property
	for _, p := range ext {
		if p.Base().PrimaryKey {
			pks = append(pks, p)
		}
	}
	if len(pks) == 0 {
		for _, p := range ext {
			if alp, ok := p.(*AliasProperty); ok && alp.AliasedPrimaryKey {
				pks = append(pks, p)
			}
		}
	}
	if len(pks) != 1 {
		return nil
	}
	return pks[0]
}

// IsMultipart reports whether the composed class holds a multipart
// property, such as a file upload.
func (g *Graph) IsMultipart(cp *CompositionProperty) bool {
	c := g.Class(cp.Composition)
	if c == nil {
		return false
	}
	for _, p := range g.Properties(c.Properties) {
		if d := g.Domain(p); d != nil && d.IsMultipart {
			return true
		}
	}
	return false
}

// IsRecursive reports whether cp composes its own class.
func (g *Graph) IsRecursive(cp *CompositionProperty) bool {
	return cp.Owner.Class.Valid() && cp.Composition == cp.Owner.Class
}

// IsListComposition reports whether cp holds a list of objects.
func (g *Graph) IsListComposition(cp *CompositionProperty) bool {
	if cp.Domain == nil {
		return false
	}
	for _, impl := range cp.Domain.Implementations {
		if impl.IsList() {
			return true
		}
	}
	return false
}

// CloneWithClassOrEndpoint returns a copy of p owned by class, or by
// endpoint when class is unset. All other attributes are preserved. The
// copy is not registered in the graph; use AddProperty to do so.
func (g *Graph) CloneWithClassOrEndpoint(p Property, class ClassID, endpoint EndpointID) Property {
	owner := Owner{Class: class}
	if !class.Valid() {
		owner = Owner{Endpoint: endpoint}
	}
	switch p := p.(type) {
	case *RegularProperty:
		c := *p
		c.PropertyBase = p.PropertyBase.clone(owner)
		return &c
	case *AliasProperty:
		c := *p
		c.PropertyBase = p.PropertyBase.clone(owner)
		return &c
	case *AssociationProperty:
		c := *p
		c.PropertyBase = p.PropertyBase.clone(owner)
		return &c
	case *CompositionProperty:
		c := *p
		c.PropertyBase = p.PropertyBase.clone(owner)
		return &c
	case *ReverseAssociationProperty:
		c := *p
		c.PropertyBase = p.PropertyBase.clone(owner)
		return &c
	}
	panic(fmt.Sprintf("model: unexpected property type %T", p))
}
