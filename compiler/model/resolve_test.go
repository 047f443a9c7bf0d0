package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(g *Graph, ps []Property) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = g.Name(p)
	}
	return out
}

func TestGetProperties(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	t.Run("inherited first and masked by redeclaration", func(t *testing.T) {
		ps := g.GetProperties(m.invoice, m.all())
		assert.Equal(t, []string{"DocumentId", "InvoiceDocumentId", "Title", "Amount"}, names(g, ps))
		assert.Same(t, g.Property(m.invoice.Properties[1]), ps[2])
	})

	t.Run("reverse associations come last", func(t *testing.T) {
		ps := g.GetProperties(m.orderLine, m.all())
		assert.Equal(t, []string{"OrderLineId", "Quantity", "OrderBilling"}, names(g, ps))
		_, ok := ps[2].(*ReverseAssociationProperty)
		assert.True(t, ok)
	})

	t.Run("reverse associations need the originating class", func(t *testing.T) {
		ps := g.GetProperties(m.orderLine, []ClassID{m.orderLine.ID})
		assert.Equal(t, []string{"OrderLineId", "Quantity"}, names(g, ps))
		assert.Len(t, g.GetProperties(m.orderLine, nil), 2)
	})

	t.Run("reverse associations follow class declaration order", func(t *testing.T) {
		cart := m.class(&Class{Name: "Cart"})
		m.regular(cart, "CartId", "DO_ID", true)
		m.prop(cart, &AssociationProperty{Association: m.orderLine.ID, Type: OneToMany})
		m.prop(m.order, &AssociationProperty{Association: m.orderLine.ID, Type: OneToMany, Role: "Shipping"})

		ps := g.GetProperties(m.orderLine, m.all())
		assert.Equal(t, []string{"OrderLineId", "Quantity", "OrderBilling", "OrderShipping", "Cart"}, names(g, ps))
	})

	t.Run("deep inheritance", func(t *testing.T) {
		credit := m.class(&Class{Name: "CreditNote", Extends: m.invoice.ID})
		m.regular(credit, "Amount", "DO_ID", false)
		m.regular(credit, "Reason", "DO_LIBELLE", false)
		ps := g.ExtendedProperties(credit)
		assert.Equal(t, []string{"DocumentId", "InvoiceDocumentId", "Title", "Amount", "Reason"}, names(g, ps))
		assert.Same(t, g.Property(credit.Properties[0]), ps[3])
	})

	t.Run("inheritance cycle terminates", func(t *testing.T) {
		a := m.class(&Class{Name: "A"})
		b := m.class(&Class{Name: "B", Extends: a.ID})
		a.Extends = b.ID
		m.regular(a, "X", "DO_ID", false)
		assert.Len(t, g.Chain(a), 2)
		assert.Len(t, g.ExtendedProperties(b), 1)
		err := g.CheckInheritance()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inheritance cycle A -> B -> A")
	})
}

func TestCheckInheritance(t *testing.T) {
	m := newSampleModel(t)
	assert.NoError(t, m.g.CheckInheritance())
}

func TestPrimaryKey(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	assert.Equal(t, []Property{m.orderID}, g.PrimaryKey(m.order))
	assert.Equal(t, []Property{m.invoiceID}, g.PrimaryKey(m.invoice))

	sub := m.class(&Class{Name: "SubOrder", Extends: m.order.ID})
	m.regular(sub, "Note", "DO_LIBELLE", false)
	assert.Equal(t, []Property{m.orderID}, g.PrimaryKey(sub))

	link := m.class(&Class{Name: "OrderStatus"})
	m.regular(link, "OrderId", "DO_ID", true)
	m.regular(link, "StatusCode", "DO_CODE", true)
	assert.Len(t, g.PrimaryKey(link), 2)
}

func TestCanClassUseEnums(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	t.Run("enum reference class", func(t *testing.T) {
		assert.True(t, g.CanClassUseEnums(m.status, m.all(), nil))
		assert.True(t, g.CanClassUseEnums(m.status, nil, m.statusCode))
	})

	t.Run("reference without enum key", func(t *testing.T) {
		require.NotEmpty(t, m.country.Values)
		assert.False(t, g.CanClassUseEnums(m.country, m.all(), nil))
	})

	t.Run("not a reference", func(t *testing.T) {
		assert.False(t, g.CanClassUseEnums(m.order, m.all(), nil))
		assert.False(t, g.CanClassUseEnums(nil, nil, nil))
	})

	t.Run("class not available", func(t *testing.T) {
		assert.False(t, g.CanClassUseEnums(m.status, []ClassID{m.order.ID}, nil))
	})

	t.Run("property other than a key", func(t *testing.T) {
		label := g.Property(m.status.Properties[1])
		assert.False(t, g.CanClassUseEnums(m.status, nil, label))
		m.status.UniqueKeys = [][]PropertyID{{label.Base().ID}}
		assert.True(t, g.CanClassUseEnums(m.status, nil, label))
		m.status.UniqueKeys = nil
	})

	t.Run("values must be identifiers", func(t *testing.T) {
		values := m.status.Values
		defer func() { m.status.Values = values }()

		m.status.Values = []ClassValue{{Name: "One", Values: map[string]string{"Code": "1ST"}}}
		assert.False(t, g.CanClassUseEnums(m.status, nil, nil))
		m.status.Values = []ClassValue{{Name: "One", Values: map[string]string{"Code": "A-B"}}}
		assert.False(t, g.CanClassUseEnums(m.status, nil, nil))
		m.status.Values = []ClassValue{{Name: "One", Values: map[string]string{}}}
		assert.False(t, g.CanClassUseEnums(m.status, nil, nil))
		m.status.Values = nil
		assert.False(t, g.CanClassUseEnums(m.status, nil, nil))
	})
}

func TestCompositionProperty(t *testing.T) {
	m := newSampleModel(t)
	g := m.g

	t.Run("primary key of the composed class", func(t *testing.T) {
		cp := &CompositionProperty{Composition: m.order.ID}
		m.prop(m.orderLine, cp)
		assert.Same(t, m.orderID, g.CompositionPrimaryKey(cp).(*RegularProperty))
	})

	t.Run("composite key is ambiguous", func(t *testing.T) {
		link := m.class(&Class{Name: "OrderStatus"})
		m.regular(link, "OrderId", "DO_ID", true)
		m.regular(link, "StatusCode", "DO_CODE", true)
		cp := &CompositionProperty{Composition: link.ID}
		m.prop(m.order, cp)
		assert.Nil(t, g.CompositionPrimaryKey(cp))
	})

	t.Run("falls back to aliased primary keys", func(t *testing.T) {
		dto := m.class(&Class{Name: "OrderDto"})
		m.prop(dto, &AliasProperty{Property: m.orderID.ID, AliasedPrimaryKey: true})
		m.prop(dto, &AliasProperty{Property: m.orderLabel.ID})
		cp := &CompositionProperty{Composition: dto.ID}
		m.prop(m.orderLine, cp)
		pk := g.CompositionPrimaryKey(cp)
		require.NotNil(t, pk)
		assert.Equal(t, "OrderId", g.Name(pk))
	})

	t.Run("no key", func(t *testing.T) {
		empty := m.class(&Class{Name: "Empty"})
		m.regular(empty, "Value", "DO_LIBELLE", false)
		cp := &CompositionProperty{Composition: empty.ID}
		m.prop(m.order, cp)
		assert.Nil(t, g.CompositionPrimaryKey(cp))
		assert.Nil(t, g.CompositionPrimaryKey(&CompositionProperty{}))
	})

	t.Run("multipart", func(t *testing.T) {
		upload := m.class(&Class{Name: "Upload"})
		m.regular(upload, "File", "DO_FILE", false)
		assert.True(t, g.IsMultipart(&CompositionProperty{Composition: upload.ID}))
		assert.False(t, g.IsMultipart(&CompositionProperty{Composition: m.order.ID}))
	})

	t.Run("recursive and list", func(t *testing.T) {
		self := &CompositionProperty{Composition: m.order.ID, PropertyBase: PropertyBase{Name: "Children", Domain: m.domain("DO_LIST")}}
		m.prop(m.order, self)
		assert.True(t, g.IsRecursive(self))
		assert.True(t, g.IsListComposition(self))
		single := &CompositionProperty{Composition: m.order.ID, PropertyBase: PropertyBase{Name: "Parent"}}
		m.prop(m.orderLine, single)
		assert.False(t, g.IsRecursive(single))
		assert.False(t, g.IsListComposition(single))
	})

	t.Run("default value is a local failure", func(t *testing.T) {
		cp := &CompositionProperty{Composition: m.order.ID, PropertyBase: PropertyBase{Name: "Order"}}
		m.prop(m.orderLine, cp)
		_, err := g.DefaultValue(cp)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoDefaultValue))
		assert.True(t, errors.Is(err, ErrResolution))
		assert.Contains(t, err.Error(), "OrderLine property Order")

		m.orderLabel.DefaultValue = "none"
		v, err := g.DefaultValue(m.orderLabel)
		require.NoError(t, err)
		assert.Equal(t, "none", v)
	})
}

func TestAliasResolution(t *testing.T) {
	m := newSampleModel(t)
	g := m.g
	search := m.class(&Class{Name: "OrderSearch"})

	t.Run("inherits from the aliased property", func(t *testing.T) {
		alias := &AliasProperty{Property: m.orderID.ID}
		m.prop(search, alias)
		assert.Equal(t, "OrderId", g.Label(alias))
		assert.Equal(t, "OrderId comment", g.Comment(alias))
		assert.True(t, g.Required(alias))
		assert.Equal(t, "DO_ID", g.Domain(alias).Name)
		assert.Same(t, m.orderID, g.PersistentProperty(alias).(*RegularProperty))
	})

	t.Run("overrides", func(t *testing.T) {
		optional := false
		alias := &AliasProperty{Property: m.orderID.ID, RequiredOverride: &optional}
		alias.Label = "Order number"
		alias.Comment = "Searched order"
		alias.Domain = m.domain("DO_LIBELLE")
		m.prop(search, alias)
		assert.Equal(t, "Order number", g.Label(alias))
		assert.Equal(t, "Searched order", g.Comment(alias))
		assert.False(t, g.Required(alias))
		assert.Equal(t, "DO_LIBELLE", g.Domain(alias).Name)
	})

	t.Run("as list", func(t *testing.T) {
		alias := &AliasProperty{Property: m.orderID.ID, AsList: true}
		m.prop(search, alias)
		assert.False(t, g.Required(alias))
		assert.Equal(t, "DO_ID_LIST", g.Domain(alias).Name)
	})

	t.Run("association domain", func(t *testing.T) {
		assert.Equal(t, "DO_ID_LIST", g.Domain(m.lines).Name)
		reverse := g.Property(g.reverses[m.orderLine.ID][0])
		assert.Equal(t, "DO_ID", g.Domain(reverse).Name)
		assert.Equal(t, "Order", g.Label(reverse))
	})
}

func TestCloneWithClassOrEndpoint(t *testing.T) {
	m := newSampleModel(t)
	g := m.g
	m.orderLabel.CustomProperties = map[string]string{"group": "main"}
	m.orderLabel.DomainParameters = []string{"50"}

	t.Run("to class", func(t *testing.T) {
		clone := g.CloneWithClassOrEndpoint(m.orderLabel, m.orderLine.ID, 0)
		c, ok := clone.(*RegularProperty)
		require.True(t, ok)
		assert.NotSame(t, m.orderLabel, c)
		assert.Equal(t, m.orderLabel.Name, c.Name)
		assert.Same(t, m.orderLabel.Domain, c.Domain)
		assert.Equal(t, m.orderLabel.Required, c.Required)
		assert.Equal(t, m.orderLabel.Comment, c.Comment)
		assert.Equal(t, m.orderLabel.DomainParameters, c.DomainParameters)
		assert.Equal(t, m.orderLabel.CustomProperties, c.CustomProperties)
		assert.Equal(t, ClassOwner(m.orderLine.ID), c.Owner)
		assert.Equal(t, ClassOwner(m.order.ID), m.orderLabel.Owner)

		c.CustomProperties["group"] = "other"
		assert.Equal(t, "main", m.orderLabel.CustomProperties["group"])
	})

	t.Run("to endpoint", func(t *testing.T) {
		id := g.AddEndpoint(&Endpoint{Name: "search"})
		clone := g.CloneWithClassOrEndpoint(m.lines, 0, id)
		c, ok := clone.(*AssociationProperty)
		require.True(t, ok)
		assert.Equal(t, EndpointOwner(id), c.Owner)
		assert.Equal(t, m.lines.Association, c.Association)
		assert.Equal(t, m.lines.Role, c.Role)
		assert.Equal(t, m.lines.Type, c.Type)
	})

	t.Run("every variant", func(t *testing.T) {
		reverse := g.Property(g.reverses[m.orderLine.ID][0])
		variants := []Property{
			m.orderID,
			&AliasProperty{Property: m.orderID.ID},
			m.lines,
			&CompositionProperty{Composition: m.order.ID},
			reverse,
		}
		for _, p := range variants {
			clone := g.CloneWithClassOrEndpoint(p, m.status.ID, 0)
			assert.IsType(t, p, clone)
			assert.Equal(t, ClassOwner(m.status.ID), clone.Base().Owner)
			assert.Equal(t, PropertyID(0), clone.Base().ID)
		}
	})
}
