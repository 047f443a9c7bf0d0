package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLName(t *testing.T) {
	m := newSampleModel(t)
	g := m.g
	reverse := g.Property(g.reverses[m.orderLine.ID][0])

	search := m.class(&Class{Name: "OrderSearch", Trigram: "OSE"})
	alias := &AliasProperty{Property: m.orderID.ID}
	m.prop(search, alias)
	aliasOfAlias := &AliasProperty{Property: alias.ID, Prefix: "Min"}
	m.prop(search, aliasOfAlias)
	aliasOfLines := &AliasProperty{Property: m.lines.ID}
	m.prop(search, aliasOfLines)

	tests := []struct {
		name     string
		prop     Property
		expected string
	}{
		{"regular without trigram", m.documentID, "DOCUMENT_ID"},
		{"inherited key drops class name", m.invoiceID, "DOCUMENT_ID"},
		{"regular on subclass", g.Property(m.invoice.Properties[2]), "AMOUNT"},
		{"class trigram", m.orderID, "ORD_ORDER_ID"},
		{"class trigram on field", m.orderLabel, "ORD_LABEL"},
		{"association takes referenced key", m.lines, "OLI_ORDER_LINE_ID_BILLING"},
		{"reverse association", reverse, "ORD_ORDER_ID_BILLING"},
		{"alias resolves to persistent property", alias, "ORD_ORDER_ID"},
		{"alias chain", aliasOfAlias, "ORD_ORDER_ID"},
		{"alias of association", aliasOfLines, "OLI_ORDER_LINE_ID_BILLING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.SQLName(tt.prop))
		})
	}

	t.Run("inherited key matches parent column", func(t *testing.T) {
		assert.Equal(t, g.SQLName(m.documentID), g.SQLName(m.invoiceID))
	})

	t.Run("property trigram wins", func(t *testing.T) {
		p := m.regular(m.order, "Total", "DO_ID", false)
		p.Trigram = "TOT"
		assert.Equal(t, "TOT_TOTAL", g.SQLName(p))
	})

	t.Run("explicit association key", func(t *testing.T) {
		ap := &AssociationProperty{Association: m.order.ID, Type: ManyToOne, Property: m.orderLabel.ID}
		m.prop(m.orderLine, ap)
		assert.Equal(t, "ORD_LABEL", g.SQLName(ap))
	})
}

func TestSQLNameRole(t *testing.T) {
	tests := []struct {
		legacy   bool
		expected string
	}{
		{false, "ORD_ORDER_ID_MAIN_ _BILLING"},
		{true, "ORD_ORDER_ID_MAIN_BILLING"},
	}

	for _, tt := range tests {
		m := newSampleModel(t)
		ap := &AssociationProperty{Association: m.order.ID, Type: ManyToOne, Role: "Main Billing"}
		m.prop(m.orderLine, ap)
		g := m.g.WithLegacyRoleNames(tt.legacy)
		assert.Equal(t, tt.expected, g.SQLName(ap))
		assert.False(t, m.g.LegacyRoleNames())
	}
}

func TestClassSQLName(t *testing.T) {
	m := newSampleModel(t)
	assert.Equal(t, "ORDER_LINE", m.g.ClassSQLName(m.orderLine))
	m.orderLine.SQLName = "T_LINES"
	assert.Equal(t, "T_LINES", m.g.ClassSQLName(m.orderLine))
}

func TestPropertyNames(t *testing.T) {
	m := newSampleModel(t)
	g := m.g
	reverse := g.Property(g.reverses[m.orderLine.ID][0])

	t.Run("regular", func(t *testing.T) {
		assert.Equal(t, "OrderId", g.NamePascal(m.orderID))
		assert.Equal(t, "orderId", g.NameCamel(m.orderID))
		assert.Equal(t, "orderId", g.NameByClassCamel(m.orderID))
	})

	t.Run("uppercase names are normalized", func(t *testing.T) {
		p := m.regular(m.order, "CREATION_DATE", "DO_LIBELLE", false)
		assert.Equal(t, "CreationDate", g.NamePascal(p))
		assert.Equal(t, "creationDate", g.NameCamel(p))
	})

	t.Run("preserved casing", func(t *testing.T) {
		legacy := m.class(&Class{Name: "Legacy", PreservePropertyCasing: true})
		p := m.regular(legacy, "CREATION_DATE", "DO_LIBELLE", false)
		assert.Equal(t, "CREATION_DATE", g.NamePascal(p))
		assert.Equal(t, "CREATION_DATE", g.NameCamel(p))
	})

	t.Run("association", func(t *testing.T) {
		assert.Equal(t, "OrderLinesBilling", g.Name(m.lines))
		assert.Equal(t, "OrderLinesBilling", g.NameByClassPascal(m.lines))
		assert.Equal(t, "orderBilling", g.NameByClassCamel(reverse))
	})

	t.Run("alias", func(t *testing.T) {
		search := m.class(&Class{Name: "OrderSearch"})
		alias := &AliasProperty{Property: m.orderID.ID, Prefix: "Min", Suffix: "Value"}
		m.prop(search, alias)
		assert.Equal(t, "MinOrderIdValue", g.Name(alias))

		outer := &AliasProperty{Property: alias.ID, Prefix: "Last"}
		m.prop(search, outer)
		assert.Equal(t, "LastMinOrderIdValue", g.Name(outer))

		named := &AliasProperty{Property: m.orderID.ID}
		named.Name = "Id"
		m.prop(search, named)
		assert.Equal(t, "Id", g.Name(named))
	})

	t.Run("alias cycle has no name", func(t *testing.T) {
		c := m.class(&Class{Name: "Broken"})
		a := &AliasProperty{}
		m.prop(c, a)
		b := &AliasProperty{Property: a.ID}
		m.prop(c, b)
		a.Property = b.ID
		require.NotPanics(t, func() { assert.Equal(t, "", g.Name(a)) })
		assert.Equal(t, "", g.SQLName(a))
	})
}
