package model

import (
	"maps"
	"slices"

	"github.com/syssam/modelgen/compiler/domain"
)

// AssociationType is the cardinality of an association.
type AssociationType int

// Association cardinalities.
const (
	ManyToOne AssociationType = iota + 1
	OneToMany
	ManyToMany
	OneToOne
)

var associationTypeNames = [...]string{
	ManyToOne:  "manyToOne",
	OneToMany:  "oneToMany",
	ManyToMany: "manyToMany",
	OneToOne:   "oneToOne",
}

func (t AssociationType) String() string {
	if t > 0 && int(t) < len(associationTypeNames) {
		return associationTypeNames[t]
	}
	return "unknown"
}

// IsToMany reports whether the association holds a collection.
func (t AssociationType) IsToMany() bool {
	return t == OneToMany || t == ManyToMany
}

// ParseAssociationType parses the model notation of a cardinality.
// An empty string defaults to ManyToOne.
func ParseAssociationType(s string) (AssociationType, bool) {
	if s == "" {
		return ManyToOne, true
	}
	for t, name := range associationTypeNames {
		if name != "" && name == s {
			return AssociationType(t), true
		}
	}
	return 0, false
}

// Owner is the exclusive container of a property: a class, an endpoint
// or a decorator. Exactly one of the ids is set, except for the property
// parameters of a from mapper which set Class and Mapper.
type Owner struct {
	Class     ClassID
	Endpoint  EndpointID
	Decorator DecoratorID
	// Mapper is the 1-based index of the from mapper of Class.
	Mapper int
}

// ClassOwner returns an owner for the class c.
func ClassOwner(c ClassID) Owner { return Owner{Class: c} }

// EndpointOwner returns an owner for the endpoint e.
func EndpointOwner(e EndpointID) Owner { return Owner{Endpoint: e} }

// DecoratorOwner returns an owner for the decorator d.
func DecoratorOwner(d DecoratorID) Owner { return Owner{Decorator: d} }

// MapperOwner returns an owner for a property parameter of the n-th
// (1-based) from mapper of the class c.
func MapperOwner(c ClassID, n int) Owner { return Owner{Class: c, Mapper: n} }

// IsZero reports whether no owner is set.
func (o Owner) IsZero() bool {
	return !o.Class.Valid() && !o.Endpoint.Valid() && !o.Decorator.Valid()
}

// Property is a member of a class, an endpoint or a decorator.
// The set of implementations is closed: *RegularProperty, *AliasProperty,
// *AssociationProperty, *CompositionProperty and
// *ReverseAssociationProperty.
type Property interface {
	// Base returns the attributes shared by all variants.
	Base() *PropertyBase
	isProperty()
}

// PropertyBase holds the attributes common to every property variant.
// For aliases, empty values mean "inherited from the aliased property".
type PropertyBase struct {
	ID               PropertyID
	Name             string
	Label            string
	Comment          string
	Required         bool
	Readonly         bool
	PrimaryKey       bool
	Domain           *domain.Domain
	DomainParameters []string
	DefaultValue     string
	Trigram          string
	CustomProperties map[string]string
	Owner            Owner
	// Decorator is set on properties mixed into a class or an endpoint
	// from a decorator. Resource lookups delegate to the decorator's
	// own declaration.
	Decorator DecoratorID
}

// Base implements Property.
func (b *PropertyBase) Base() *PropertyBase { return b }

func (b PropertyBase) clone(owner Owner) PropertyBase {
	b.ID = 0
	b.Owner = owner
	b.DomainParameters = slices.Clone(b.DomainParameters)
	b.CustomProperties = maps.Clone(b.CustomProperties)
	return b
}

// RegularProperty is a scalar field.
type RegularProperty struct {
	PropertyBase
	// UniqueKey marks a single-column unique constraint.
	UniqueKey bool
}

// AliasProperty is a view on a property declared elsewhere.
type AliasProperty struct {
	PropertyBase
	// Property is the aliased property.
	Property PropertyID
	// Prefix and Suffix decorate the aliased name.
	Prefix string
	Suffix string
	// AsList turns the alias of a key into a list of keys.
	AsList bool
	// AliasedPrimaryKey is set when the aliased property is a primary key
	// kept as such by the alias.
	AliasedPrimaryKey bool
	// RequiredOverride overrides the required flag of the aliased property.
	RequiredOverride *bool
}

// AssociationProperty links a class to another one by key.
type AssociationProperty struct {
	PropertyBase
	Association ClassID
	Type        AssociationType
	Role        string
	// Property is the referenced key. When unset, the first property of
	// the associated class is used.
	Property PropertyID
}

// CompositionProperty embeds another class by value. A nil domain denotes
// a single object, a list domain a list of objects.
type CompositionProperty struct {
	PropertyBase
	Composition ClassID
}

// ReverseAssociationProperty is the synthesized inverse side of a to-many
// association, owned by the associated class.
type ReverseAssociationProperty struct {
	AssociationProperty
	// ReverseProperty is the originating association.
	ReverseProperty PropertyID
}

func (*RegularProperty) isProperty()            {}
func (*AliasProperty) isProperty()              {}
func (*AssociationProperty) isProperty()        {}
func (*CompositionProperty) isProperty()        {}
func (*ReverseAssociationProperty) isProperty() {}

var (
	_ Property = (*RegularProperty)(nil)
	_ Property = (*AliasProperty)(nil)
	_ Property = (*AssociationProperty)(nil)
	_ Property = (*CompositionProperty)(nil)
	_ Property = (*ReverseAssociationProperty)(nil)
)

// asAssociation returns the association carried by p, reverse side included.
func asAssociation(p Property) *AssociationProperty {
	switch p := p.(type) {
	case *AssociationProperty:
		return p
	case *ReverseAssociationProperty:
		return &p.AssociationProperty
	}
	return nil
}
