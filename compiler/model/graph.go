// Package model is the resolved, immutable form of a model: classes,
// properties, endpoints and decorators linked by id inside a Graph.
package model

import (
	"fmt"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/naming"
)

// Graph is the arena holding every class, property, endpoint and
// decorator of a model. Entities reference each other by id, so mutually
// associated classes do not form ownership cycles.
//
// A graph is built once, then only read: all query methods are safe for
// concurrent use once loading is over.
type Graph struct {
	// Domains resolves the domains referenced by properties.
	Domains *domain.Registry
	// legacyRoleNames switches the role suffix of SQL names from
	// CONSTANT_CASE to the uppercased role with spaces replaced.
	legacyRoleNames bool

	classes    []*Class
	properties []Property
	endpoints  []*Endpoint
	decorators []*Decorator
	byName     map[string]ClassID
	// reverses holds the synthesized reverse associations per target class,
	// in declaration order of their originating associations.
	reverses map[ClassID][]PropertyID
}

// NewGraph returns an empty graph resolving domains with r.
func NewGraph(r *domain.Registry) *Graph {
	if r == nil {
		r, _ = domain.NewRegistry()
	}
	return &Graph{
		Domains:  r,
		byName:   make(map[string]ClassID),
		reverses: make(map[ClassID][]PropertyID),
	}
}

// WithLegacyRoleNames returns a view of g whose SQL names use the legacy
// role suffix when on is set. The view shares the entities of g, which is
// left unchanged; entities added to g afterwards are not seen by the view.
func (g *Graph) WithLegacyRoleNames(on bool) *Graph {
	v := *g
	v.legacyRoleNames = on
	return &v
}

// LegacyRoleNames reports if SQL names of g use the legacy role suffix.
func (g *Graph) LegacyRoleNames() bool { return g.legacyRoleNames }

// AddClass registers c and returns its id.
func (g *Graph) AddClass(c *Class) (ClassID, error) {
	if c.Name == "" {
		return 0, &ResolutionError{Message: "class without name"}
	}
	if _, ok := g.byName[c.Name]; ok {
		return 0, &ResolutionError{Class: c.Name, Message: "class declared twice"}
	}
	g.classes = append(g.classes, c)
	c.ID = ClassID(len(g.classes))
	g.byName[c.Name] = c.ID
	return c.ID, nil
}

// AddEndpoint registers e and returns its id.
func (g *Graph) AddEndpoint(e *Endpoint) EndpointID {
	g.endpoints = append(g.endpoints, e)
	e.ID = EndpointID(len(g.endpoints))
	return e.ID
}

// AddDecorator registers d and returns its id.
func (g *Graph) AddDecorator(d *Decorator) DecoratorID {
	g.decorators = append(g.decorators, d)
	d.ID = DecoratorID(len(g.decorators))
	return d.ID
}

// AddProperty registers p and appends it to the properties of owner
// (the parameters for an endpoint). Adding a to-many association also
// synthesizes its reverse side on the associated class.
func (g *Graph) AddProperty(owner Owner, p Property) (PropertyID, error) {
	id, err := g.register(owner, p)
	if err != nil {
		return 0, err
	}
	switch {
	case owner.Mapper > 0:
		m := g.Class(owner.Class).FromMappers[owner.Mapper-1]
		m.Properties = append(m.Properties, PropertyMapping{Mapped: id})
	case owner.Class.Valid():
		c := g.Class(owner.Class)
		c.Properties = append(c.Properties, id)
	case owner.Endpoint.Valid():
		e := g.Endpoint(owner.Endpoint)
		e.Params = append(e.Params, id)
	case owner.Decorator.Valid():
		d := g.Decorator(owner.Decorator)
		d.Properties = append(d.Properties, id)
	}
	if ap, ok := p.(*AssociationProperty); ok && ap.Type.IsToMany() && owner.Class.Valid() && owner.Mapper == 0 && ap.Association.Valid() {
		g.addReverse(ap)
	}
	return id, nil
}

// SetReturns registers p as the result of the endpoint e.
func (g *Graph) SetReturns(e EndpointID, p Property) (PropertyID, error) {
	id, err := g.register(EndpointOwner(e), p)
	if err != nil {
		return 0, err
	}
	g.Endpoint(e).Returns = id
	return id, nil
}

func (g *Graph) register(owner Owner, p Property) (PropertyID, error) {
	b := p.Base()
	switch {
	case owner.IsZero():
		return 0, &ResolutionError{Property: b.Name, Message: "property without owner"}
	case owner.Class.Valid() && g.Class(owner.Class) == nil,
		owner.Endpoint.Valid() && g.Endpoint(owner.Endpoint) == nil,
		owner.Decorator.Valid() && g.Decorator(owner.Decorator) == nil,
		owner.Mapper > 0 && (!owner.Class.Valid() || owner.Mapper > len(g.Class(owner.Class).FromMappers)):
		return 0, &ResolutionError{Property: b.Name, Message: fmt.Sprintf("unknown owner %+v", owner)}
	}
	g.properties = append(g.properties, p)
	b.ID = PropertyID(len(g.properties))
	b.Owner = owner
	return b.ID, nil
}

func (g *Graph) addReverse(ap *AssociationProperty) {
	origin := g.Class(ap.Owner.Class)
	rp := &ReverseAssociationProperty{
		AssociationProperty: AssociationProperty{
			PropertyBase: PropertyBase{
				Name:    reverseName(origin, ap),
				Label:   firstNonEmpty(origin.Label, origin.Name),
				Comment: fmt.Sprintf("Reverse of %s.%s", origin.Name, ap.Name),
				Trigram: ap.Trigram,
			},
			Association: origin.ID,
			Type:        reverseType(ap.Type),
			Role:        ap.Role,
		},
		ReverseProperty: ap.ID,
	}
	g.properties = append(g.properties, rp)
	rp.ID = PropertyID(len(g.properties))
	rp.Owner = ClassOwner(ap.Association)
	g.reverses[ap.Association] = append(g.reverses[ap.Association], rp.ID)
}

func reverseType(t AssociationType) AssociationType {
	if t == ManyToMany {
		return ManyToMany
	}
	return ManyToOne
}

func reverseName(origin *Class, ap *AssociationProperty) string {
	name := origin.Name
	if ap.Type == ManyToMany {
		name = origin.NamePlural()
	}
	return name + naming.ToPascalCase(ap.Role, false, false)
}

// Class returns the class with the given id, or nil.
func (g *Graph) Class(id ClassID) *Class {
	if !id.Valid() || int(id) > len(g.classes) {
		return nil
	}
	return g.classes[id-1]
}

// ClassByName returns the class with the given name.
func (g *Graph) ClassByName(name string) (*Class, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.Class(id), true
}

// Classes returns all classes in declaration order.
func (g *Graph) Classes() []*Class {
	return g.classes
}

// ClassIDs returns the ids of the given classes.
func ClassIDs(cs []*Class) []ClassID {
	ids := make([]ClassID, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

// Property returns the property with the given id, or nil.
func (g *Graph) Property(id PropertyID) Property {
	if !id.Valid() || int(id) > len(g.properties) {
		return nil
	}
	return g.properties[id-1]
}

// Properties resolves a list of property ids.
func (g *Graph) Properties(ids []PropertyID) []Property {
	ps := make([]Property, 0, len(ids))
	for _, id := range ids {
		if p := g.Property(id); p != nil {
			ps = append(ps, p)
		}
	}
	return ps
}

// Endpoint returns the endpoint with the given id, or nil.
func (g *Graph) Endpoint(id EndpointID) *Endpoint {
	if !id.Valid() || int(id) > len(g.endpoints) {
		return nil
	}
	return g.endpoints[id-1]
}

// Endpoints returns all endpoints in declaration order.
func (g *Graph) Endpoints() []*Endpoint {
	return g.endpoints
}

// Decorator returns the decorator with the given id, or nil.
func (g *Graph) Decorator(id DecoratorID) *Decorator {
	if !id.Valid() || int(id) > len(g.decorators) {
		return nil
	}
	return g.decorators[id-1]
}

// Decorators returns all decorators in declaration order.
func (g *Graph) Decorators() []*Decorator {
	return g.decorators
}

// OwnerClass returns the class owning p, or nil when p belongs to an
// endpoint or a decorator.
func (g *Graph) OwnerClass(p Property) *Class {
	return g.Class(p.Base().Owner.Class)
}

// Container describes the owner of a property, whatever its kind.
type Container struct {
	Name                   string
	Namespace              Namespace
	PreservePropertyCasing bool
}

// NameCamel returns the container name in camelCase.
func (c Container) NameCamel() string { return naming.ToCamelCase(c.Name, false, false) }

// Parent returns the container of p.
func (g *Graph) Parent(p Property) Container {
	o := p.Base().Owner
	if c := g.Class(o.Class); c != nil {
		return Container{Name: c.Name, Namespace: c.Namespace, PreservePropertyCasing: c.PreservePropertyCasing}
	}
	if e := g.Endpoint(o.Endpoint); e != nil {
		return Container{Name: e.Name, Namespace: e.Namespace, PreservePropertyCasing: e.PreservePropertyCasing}
	}
	if d := g.Decorator(o.Decorator); d != nil {
		return Container{Name: d.Name, Namespace: d.Namespace, PreservePropertyCasing: d.PreservePropertyCasing}
	}
	return Container{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
