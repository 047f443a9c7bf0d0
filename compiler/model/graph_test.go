package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen/compiler/domain"
)

// builder wraps a graph with fail-fast helpers.
type builder struct {
	t *testing.T
	g *Graph
}

func newBuilder(t *testing.T) *builder {
	t.Helper()
	r, err := domain.NewRegistry(
		&domain.Domain{
			Name:      "DO_ID",
			AsDomains: map[string]string{domain.AsList: "DO_ID_LIST"},
			Implementations: map[string]*domain.Implementation{
				domain.TargetSQL: {Type: "int8"},
				domain.TargetTS:  {Type: "number"},
			},
		},
		&domain.Domain{
			Name: "DO_ID_LIST",
			Implementations: map[string]*domain.Implementation{
				domain.TargetTS: {Type: "number", GenericType: "{T}[]"},
			},
		},
		&domain.Domain{
			Name: "DO_LIBELLE",
			Implementations: map[string]*domain.Implementation{
				domain.TargetSQL: {Type: "varchar"},
				domain.TargetTS:  {Type: "string"},
			},
		},
		&domain.Domain{
			Name:      "DO_CODE",
			AsDomains: map[string]string{domain.AsList: "DO_CODE_LIST"},
			Implementations: map[string]*domain.Implementation{
				domain.TargetSQL: {Type: "varchar"},
				domain.TargetTS:  {Type: "string"},
			},
		},
		&domain.Domain{
			Name: "DO_CODE_LIST",
			Implementations: map[string]*domain.Implementation{
				domain.TargetTS: {Type: "string", GenericType: "{T}[]"},
			},
		},
		&domain.Domain{
			Name:        "DO_FILE",
			IsMultipart: true,
			Implementations: map[string]*domain.Implementation{
				domain.TargetTS: {Type: "File"},
			},
		},
		&domain.Domain{
			Name: "DO_LIST",
			Implementations: map[string]*domain.Implementation{
				domain.TargetTS: {Type: "{composition.name}", GenericType: "{T}[]"},
			},
		},
	)
	require.NoError(t, err)
	return &builder{t: t, g: NewGraph(r)}
}

func (b *builder) domain(name string) *domain.Domain {
	b.t.Helper()
	d, err := b.g.Domains.Resolve(name)
	require.NoError(b.t, err)
	return d
}

func (b *builder) class(c *Class) *Class {
	b.t.Helper()
	_, err := b.g.AddClass(c)
	require.NoError(b.t, err)
	return c
}

func (b *builder) prop(c *Class, p Property) Property {
	b.t.Helper()
	_, err := b.g.AddProperty(ClassOwner(c.ID), p)
	require.NoError(b.t, err)
	return p
}

func (b *builder) regular(c *Class, name, domainName string, pk bool) *RegularProperty {
	b.t.Helper()
	p := &RegularProperty{PropertyBase: PropertyBase{
		Name:       name,
		Label:      name,
		Comment:    name + " comment",
		PrimaryKey: pk,
		Required:   pk,
		Domain:     b.domain(domainName),
	}}
	b.prop(c, p)
	return p
}

// sampleModel is the shared fixture:
//
//	Document <- Invoice
//	Order 1-n OrderLine (role Billing)
//	Status, an enum reference class
//	Country, a reference class without enum key
type sampleModel struct {
	*builder
	document, invoice, order, orderLine, status, country *Class

	documentID, invoiceID *RegularProperty
	orderID, orderLabel   *RegularProperty
	orderLineID           *RegularProperty
	statusCode            *RegularProperty
	lines                 *AssociationProperty
}

func newSampleModel(t *testing.T) *sampleModel {
	t.Helper()
	m := &sampleModel{builder: newBuilder(t)}
	m.document = m.class(&Class{Name: "Document", IsPersistent: true, Namespace: Namespace{Module: "Billing"}})
	m.documentID = m.regular(m.document, "DocumentId", "DO_ID", true)
	m.regular(m.document, "Title", "DO_LIBELLE", false)

	m.invoice = m.class(&Class{Name: "Invoice", IsPersistent: true, Extends: m.document.ID, Namespace: Namespace{Module: "Billing"}})
	m.invoiceID = m.regular(m.invoice, "InvoiceDocumentId", "DO_ID", true)
	m.regular(m.invoice, "Title", "DO_LIBELLE", false)
	m.regular(m.invoice, "Amount", "DO_ID", false)

	m.order = m.class(&Class{Name: "Order", Trigram: "ORD", IsPersistent: true, Namespace: Namespace{Module: "Sales.Orders"}})
	m.orderID = m.regular(m.order, "OrderId", "DO_ID", true)
	m.orderLabel = m.regular(m.order, "Label", "DO_LIBELLE", false)

	m.orderLine = m.class(&Class{Name: "OrderLine", Trigram: "OLI", IsPersistent: true, Namespace: Namespace{Module: "Sales.Orders"}})
	m.orderLineID = m.regular(m.orderLine, "OrderLineId", "DO_ID", true)
	m.regular(m.orderLine, "Quantity", "DO_ID", false)

	m.lines = &AssociationProperty{Association: m.orderLine.ID, Type: OneToMany, Role: "Billing"}
	m.prop(m.order, m.lines)

	m.status = m.class(&Class{Name: "Status", Reference: true, IsPersistent: true, Namespace: Namespace{Module: "Sales"}})
	m.statusCode = m.regular(m.status, "Code", "DO_CODE", true)
	m.regular(m.status, "Label", "DO_LIBELLE", false)
	m.status.EnumKey = m.statusCode.ID
	m.status.Values = []ClassValue{
		{Name: "Active", Values: map[string]string{"Code": "ACTIVE", "Label": "Active"}},
		{Name: "Closed", Values: map[string]string{"Code": "CLOSED", "Label": "Closed"}},
	}

	m.country = m.class(&Class{Name: "Country", Reference: true, Namespace: Namespace{Module: "Sales"}})
	m.regular(m.country, "CountryCode", "DO_CODE", true)
	m.country.Values = []ClassValue{{Name: "France", Values: map[string]string{"CountryCode": "FR"}}}
	return m
}

func (m *sampleModel) all() []ClassID {
	return ClassIDs(m.g.Classes())
}

func TestGraphAdd(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	t.Run("ids are assigned in order", func(t *testing.T) {
		assert.Equal(t, ClassID(1), m.document.ID)
		assert.Same(t, m.order, g.Class(m.order.ID))
		c, ok := g.ClassByName("OrderLine")
		require.True(t, ok)
		assert.Same(t, m.orderLine, c)
		_, ok = g.ClassByName("Missing")
		assert.False(t, ok)
		assert.Nil(t, g.Class(0))
		assert.Nil(t, g.Class(42))
		assert.Nil(t, g.Property(0))
	})

	t.Run("duplicate class", func(t *testing.T) {
		_, err := g.AddClass(&Class{Name: "Order"})
		require.Error(t, err)
		assert.True(t, IsResolutionError(err))
	})

	t.Run("property without owner", func(t *testing.T) {
		_, err := g.AddProperty(Owner{}, &RegularProperty{PropertyBase: PropertyBase{Name: "X"}})
		assert.ErrorIs(t, err, ErrResolution)
		_, err = g.AddProperty(ClassOwner(99), &RegularProperty{PropertyBase: PropertyBase{Name: "X"}})
		assert.ErrorIs(t, err, ErrResolution)
	})

	t.Run("owner lists", func(t *testing.T) {
		assert.Equal(t, []PropertyID{m.orderID.ID, m.orderLabel.ID, m.lines.ID}, m.order.Properties)
		assert.Equal(t, ClassOwner(m.order.ID), m.lines.Owner)
	})

	t.Run("endpoint parameters and result", func(t *testing.T) {
		e := &Endpoint{Name: "getOrder", Method: "GET", Route: "orders/{orderId}"}
		id := g.AddEndpoint(e)
		param := g.CloneWithClassOrEndpoint(m.orderID, 0, id)
		_, err := g.AddProperty(EndpointOwner(id), param)
		require.NoError(t, err)
		_, err = g.SetReturns(id, &CompositionProperty{Composition: m.order.ID})
		require.NoError(t, err)
		assert.Len(t, e.Params, 1)
		assert.True(t, e.Returns.Valid())
		assert.Equal(t, "getOrder", g.Parent(param).Name)
	})

	t.Run("decorator properties", func(t *testing.T) {
		id := g.AddDecorator(&Decorator{Name: "Audited"})
		_, err := g.AddProperty(DecoratorOwner(id), &RegularProperty{PropertyBase: PropertyBase{Name: "CreatedAt"}})
		require.NoError(t, err)
		assert.Len(t, g.Decorator(id).Properties, 1)
		assert.Len(t, g.Decorators(), 1)
	})
}

func TestReverseSynthesis(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	reverses := g.reverses[m.orderLine.ID]
	require.Len(t, reverses, 1)
	rp, ok := g.Property(reverses[0]).(*ReverseAssociationProperty)
	require.True(t, ok)
	assert.Equal(t, m.lines.ID, rp.ReverseProperty)
	assert.Equal(t, m.order.ID, rp.Association)
	assert.Equal(t, ManyToOne, rp.Type)
	assert.Equal(t, "OrderBilling", rp.Name)
	assert.Equal(t, ClassOwner(m.orderLine.ID), rp.Owner)
	assert.NotContains(t, m.orderLine.Properties, rp.ID)

	t.Run("many to many", func(t *testing.T) {
		tag := m.class(&Class{Name: "Tag"})
		m.regular(tag, "TagId", "DO_ID", true)
		m.prop(m.order, &AssociationProperty{Association: tag.ID, Type: ManyToMany})
		rp, ok := g.Property(g.reverses[tag.ID][0]).(*ReverseAssociationProperty)
		require.True(t, ok)
		assert.Equal(t, ManyToMany, rp.Type)
		assert.Equal(t, "Orders", rp.Name)
	})

	t.Run("to one has no reverse", func(t *testing.T) {
		m.prop(m.orderLine, &AssociationProperty{Association: m.status.ID, Type: ManyToOne})
		assert.Empty(t, g.reverses[m.status.ID])
	})
}

func TestAssociationType(t *testing.T) {
	tests := []struct {
		input    string
		expected AssociationType
		ok       bool
	}{
		{"", ManyToOne, true},
		{"manyToOne", ManyToOne, true},
		{"oneToMany", OneToMany, true},
		{"manyToMany", ManyToMany, true},
		{"oneToOne", OneToOne, true},
		{"many", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, ok := ParseAssociationType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, typ)
			if ok && tt.input != "" {
				assert.Equal(t, tt.input, typ.String())
			}
		})
	}
	assert.True(t, OneToMany.IsToMany())
	assert.True(t, ManyToMany.IsToMany())
	assert.False(t, ManyToOne.IsToMany())
	assert.Equal(t, "unknown", AssociationType(0).String())
}

func TestNamespace(t *testing.T) {
	n := Namespace{Module: "Sales.OrderManagement"}
	assert.Equal(t, "Sales", n.RootModule())
	assert.Equal(t, "sales.orderManagement", n.ModuleCamel())
	assert.Equal(t, "sales/order-management", n.ModuleKebab())
	assert.Equal(t, "salesordermanagement", n.ModuleFlat())
	assert.Equal(t, "", Namespace{}.ModuleCamel())
}

func TestTags(t *testing.T) {
	c := &Class{Tags: []string{"back", "front"}}
	assert.True(t, c.HasTag())
	assert.True(t, c.HasTag("front"))
	assert.False(t, c.HasTag("batch"))
	e := &Endpoint{}
	assert.False(t, e.HasTag("front"))
}
