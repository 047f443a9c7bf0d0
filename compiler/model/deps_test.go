package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targets(g *Graph, deps []Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = g.Class(d.Target).Name
	}
	return out
}

func TestClassDependencies(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	statusRef := &AssociationProperty{Association: m.status.ID, Type: ManyToOne}
	m.prop(m.order, statusRef)
	countryRef := &AssociationProperty{Association: m.country.ID, Type: ManyToOne}
	m.prop(m.order, countryRef)
	items := &CompositionProperty{Composition: m.orderLine.ID}
	items.Name = "Items"
	m.prop(m.order, items)
	self := &CompositionProperty{Composition: m.order.ID}
	self.Name = "Parent"
	m.prop(m.order, self)

	t.Run("associations and compositions", func(t *testing.T) {
		deps := g.ClassDependencies(m.order, m.all())
		assert.Equal(t, []string{"OrderLine", "Status", "Country", "OrderLine"}, targets(g, deps))
		assert.Same(t, m.lines, deps[0].Source.(*AssociationProperty))
		assert.False(t, deps[0].EnumOnly)
		assert.True(t, deps[1].EnumOnly)
		assert.False(t, deps[2].EnumOnly)
		assert.Same(t, items, deps[3].Source.(*CompositionProperty))
	})

	t.Run("enum only depends on availability", func(t *testing.T) {
		deps := g.ClassDependencies(m.order, []ClassID{m.order.ID})
		require.Len(t, deps, 4)
		assert.False(t, deps[1].EnumOnly)
	})

	t.Run("inheritance", func(t *testing.T) {
		deps := g.ClassDependencies(m.invoice, m.all())
		require.Len(t, deps, 1)
		assert.Nil(t, deps[0].Source)
		assert.Equal(t, m.document.ID, deps[0].Target)
	})

	t.Run("reverse association", func(t *testing.T) {
		deps := g.ClassDependencies(m.orderLine, m.all())
		assert.Equal(t, []string{"Order"}, targets(g, deps))
		_, ok := deps[0].Source.(*ReverseAssociationProperty)
		assert.True(t, ok)
	})

	t.Run("aliases of enum keys", func(t *testing.T) {
		search := m.class(&Class{Name: "OrderSearch"})
		m.prop(search, &AliasProperty{Property: m.statusCode.ID})
		m.prop(search, &AliasProperty{Property: m.statusCode.ID, AsList: true, Prefix: "All"})
		m.prop(search, &AliasProperty{Property: m.orderLabel.ID})
		m.prop(search, &AliasProperty{Property: statusRef.ID, Prefix: "Current"})

		deps := g.ClassDependencies(search, m.all())
		assert.Equal(t, []string{"Status", "Status", "Status"}, targets(g, deps))
		for _, d := range deps {
			assert.True(t, d.EnumOnly)
		}
	})
}

func TestEndpointDependencies(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	id := g.AddEndpoint(&Endpoint{Name: "searchOrders", Method: "POST", Route: "orders/search"})
	_, err := g.AddProperty(EndpointOwner(id), g.CloneWithClassOrEndpoint(&AliasProperty{Property: m.statusCode.ID}, 0, id))
	require.NoError(t, err)
	criteria := &CompositionProperty{Composition: m.order.ID}
	criteria.Name = "criteria"
	_, err = g.AddProperty(EndpointOwner(id), criteria)
	require.NoError(t, err)
	result := &CompositionProperty{Composition: m.order.ID, PropertyBase: PropertyBase{Domain: m.domain("DO_LIST")}}
	_, err = g.SetReturns(id, result)
	require.NoError(t, err)

	deps := g.EndpointDependencies(g.Endpoint(id), m.all())
	assert.Equal(t, []string{"Status", "Order", "Order"}, targets(g, deps))
	assert.True(t, deps[0].EnumOnly)
	assert.False(t, deps[1].EnumOnly)
	assert.Len(t, g.Endpoint(id).Params, 2)
}

func TestEnumKeyClass(t *testing.T) {
	m := newSampleModel(t)
	g := m.g
	search := m.class(&Class{Name: "OrderSearch"})
	alias := &AliasProperty{Property: m.statusCode.ID}
	m.prop(search, alias)
	ref := &AssociationProperty{Association: m.status.ID}
	m.prop(search, ref)

	assert.Same(t, m.status, g.EnumKeyClass(m.statusCode))
	assert.Same(t, m.status, g.EnumKeyClass(alias))
	assert.Same(t, m.status, g.EnumKeyClass(ref))
	assert.Nil(t, g.EnumKeyClass(m.orderLabel))
	assert.Nil(t, g.EnumKeyClass(m.lines))
}
