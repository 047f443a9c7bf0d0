package model

import (
	"fmt"
	"slices"
)

// PropertyMapping pairs a property of the class declaring a mapper with
// the property it is copied from or to.
type PropertyMapping struct {
	Property PropertyID
	Mapped   PropertyID
}

// ClassMappings maps the properties of a class onto those of Class. It is
// a parameter of a from mapper, or a to mapper on its own.
type ClassMappings struct {
	// Name is the parameter name of a from mapper parameter, the method
	// name of a to mapper.
	Name     string
	Class    ClassID
	Comment  string
	Required bool
	Mappings []PropertyMapping
}

// FromMapper builds an instance of its class from instances of other
// classes and property parameters.
type FromMapper struct {
	Comment string
	Params  []*ClassMappings
	// Properties holds the property parameters: Mapped is the parameter,
	// owned by the mapper, and Property the property of the class it sets.
	Properties []PropertyMapping
}

// ClassIDs returns the classes of the class parameters of m.
func (m *FromMapper) ClassIDs() []ClassID {
	ids := make([]ClassID, len(m.Params))
	for i, p := range m.Params {
		ids[i] = p.Class
	}
	return ids
}

// MapProperties pairs the properties of c with those of other. A property
// named in explicit is paired with the property of other it names; the
// others are paired with the property of other of the same name and the
// same domain, or aliasing the same property. Names in exclude are left
// out.
func (g *Graph) MapProperties(c, other *Class, explicit map[string]string, exclude []string) ([]PropertyMapping, error) {
	own := g.ExtendedProperties(c)
	theirs := g.ExtendedProperties(other)
	byName := func(ps []Property, name string) Property {
		for _, p := range ps {
			if g.Name(p) == name {
				return p
			}
		}
		return nil
	}
	for name := range explicit {
		if byName(own, name) == nil {
			return nil, &ResolutionError{Class: c.Name, Property: name, Message: fmt.Sprintf("mapping to %s of an unknown property", other.Name)}
		}
	}
	var ms []PropertyMapping
	for _, p := range own {
		name := g.Name(p)
		if slices.Contains(exclude, name) {
			continue
		}
		if target, ok := explicit[name]; ok {
			q := byName(theirs, target)
			if q == nil {
				return nil, &ResolutionError{Class: c.Name, Property: name, Message: fmt.Sprintf("mapped property %s.%s does not exist", other.Name, target)}
			}
			ms = append(ms, PropertyMapping{Property: p.Base().ID, Mapped: q.Base().ID})
			continue
		}
		if q := byName(theirs, name); q != nil && g.compatible(p, q) {
			ms = append(ms, PropertyMapping{Property: p.Base().ID, Mapped: q.Base().ID})
		}
	}
	return ms, nil
}

// compatible reports whether p and q hold the same value: they share
// their domain or resolve to the same persistent property.
func (g *Graph) compatible(p, q Property) bool {
	if pp, qp := g.persistent(p), g.persistent(q); pp != nil && pp == qp {
		return true
	}
	if asAssociation(p) != nil || asAssociation(q) != nil {
		return false
	}
	d := g.Domain(p)
	return d != nil && d == g.Domain(q)
}

func (g *Graph) persistent(p Property) Property {
	if alp, ok := p.(*AliasProperty); ok {
		return g.PersistentProperty(alp)
	}
	return p
}
