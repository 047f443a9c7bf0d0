package model

import "slices"

// Dependency is an edge from a class or an endpoint to a class it needs.
type Dependency struct {
	// Source is the property inducing the edge, nil for inheritance.
	Source Property
	Target ClassID
	// EnumOnly is set when only the enum type of the target is needed,
	// not the full entity.
	EnumOnly bool
}

// ClassDependencies returns the classes c depends on: its parent, the
// targets of its associations and compositions, and the reference classes
// of its enum-typed properties. available restricts reverse associations
// and enum eligibility as in GetProperties and CanClassUseEnums.
func (g *Graph) ClassDependencies(c *Class, available []ClassID) []Dependency {
	var deps []Dependency
	if g.Class(c.Extends) != nil {
		deps = append(deps, Dependency{Target: c.Extends})
	}
	for _, p := range g.GetProperties(c, available) {
		if d, ok := g.dependency(p, c.ID, available); ok {
			deps = appendDependency(deps, d)
		}
	}
	return deps
}

// EndpointDependencies returns the classes needed by the parameters and
// the result of e.
func (g *Graph) EndpointDependencies(e *Endpoint, available []ClassID) []Dependency {
	var deps []Dependency
	ids := e.Params
	if e.Returns.Valid() {
		ids = append(slices.Clone(ids), e.Returns)
	}
	for _, p := range g.Properties(ids) {
		if d, ok := g.dependency(p, 0, available); ok {
			deps = appendDependency(deps, d)
		}
	}
	return deps
}

func appendDependency(deps []Dependency, d Dependency) []Dependency {
	for _, x := range deps {
		if x.Target == d.Target && x.Source == d.Source {
			return deps
		}
	}
	return append(deps, d)
}

func (g *Graph) dependency(p Property, self ClassID, available []ClassID) (Dependency, bool) {
	switch pp := p.(type) {
	case *CompositionProperty:
		if pp.Composition == self || g.Class(pp.Composition) == nil {
			return Dependency{}, false
		}
		return Dependency{Source: p, Target: pp.Composition}, true
	case *AssociationProperty, *ReverseAssociationProperty:
		ap := asAssociation(pp)
		target := g.Class(ap.Association)
		if target == nil || target.ID == self {
			return Dependency{}, false
		}
		return Dependency{
			Source:   p,
			Target:   target.ID,
			EnumOnly: g.CanClassUseEnums(target, available, g.AssociationKey(ap)),
		}, true
	case *AliasProperty:
		orig := g.PersistentProperty(pp)
		if orig == nil {
			return Dependency{}, false
		}
		if ap := asAssociation(orig); ap != nil {
			target := g.Class(ap.Association)
			if target == nil || target.ID == self {
				return Dependency{}, false
			}
			return Dependency{
				Source:   p,
				Target:   target.ID,
				EnumOnly: g.CanClassUseEnums(target, available, g.AssociationKey(ap)),
			}, true
		}
		return g.enumDependency(p, orig, self, available)
	}
	return Dependency{}, false
}

// enumDependency returns the dependency of p on the reference class
// declaring key, when key enumerates that class.
func (g *Graph) enumDependency(p, key Property, self ClassID, available []ClassID) (Dependency, bool) {
	owner := g.OwnerClass(key)
	if owner == nil || owner.ID == self || !owner.Reference {
		return Dependency{}, false
	}
	id := key.Base().ID
	if id != owner.EnumKey && !slices.Contains(g.singleUniqueKeys(owner), id) {
		return Dependency{}, false
	}
	return Dependency{
		Source:   p,
		Target:   owner.ID,
		EnumOnly: g.CanClassUseEnums(owner, available, key),
	}, true
}

// EnumKeyClass returns the reference class enumerated by the values of p:
// the class of which p, or the property it aliases, is the enum key or a
// single-property unique key. It returns nil for any other property.
func (g *Graph) EnumKeyClass(p Property) *Class {
	key := p
	if alp, ok := p.(*AliasProperty); ok {
		if key = g.PersistentProperty(alp); key == nil {
			return nil
		}
	}
	if ap := asAssociation(key); ap != nil {
		if key = g.AssociationKey(ap); key == nil {
			return nil
		}
	}
	owner := g.OwnerClass(key)
	if owner == nil || !owner.EnumKey.Valid() {
		return nil
	}
	id := key.Base().ID
	if id != owner.EnumKey && !slices.Contains(g.singleUniqueKeys(owner), id) {
		return nil
	}
	return owner
}
