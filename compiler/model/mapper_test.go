package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapProperties(t *testing.T) {
	m := newSampleModel(t)
	g := m.g
	summary := m.class(&Class{Name: "OrderSummary", Namespace: Namespace{Module: "Sales.Orders"}})
	m.regular(summary, "OrderId", "DO_ID", false)
	m.prop(summary, &AliasProperty{Property: m.orderLabel.ID})
	m.regular(summary, "Code", "DO_CODE", false)
	m.regular(summary, "OrderLinesBilling", "DO_ID", false)

	pairs := func(ms []PropertyMapping) []string {
		out := make([]string, len(ms))
		for i, pm := range ms {
			out[i] = g.Name(g.Property(pm.Property)) + "=" + g.Name(g.Property(pm.Mapped))
		}
		return out
	}

	t.Run("same name and domain", func(t *testing.T) {
		ms, err := g.MapProperties(summary, m.order, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"OrderId=OrderId", "Label=Label"}, pairs(ms))

		ms, err = g.MapProperties(m.order, summary, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"OrderId=OrderId", "Label=Label"}, pairs(ms))
	})

	t.Run("explicit and excluded", func(t *testing.T) {
		ms, err := g.MapProperties(summary, m.order, map[string]string{"Code": "Label"}, []string{"OrderId"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Label=Label", "Code=Label"}, pairs(ms))
	})

	t.Run("unknown properties", func(t *testing.T) {
		_, err := g.MapProperties(summary, m.order, map[string]string{"Nope": "Label"}, nil)
		require.Error(t, err)
		assert.True(t, IsResolutionError(err))
		assert.Contains(t, err.Error(), "mapping to Order of an unknown property")

		_, err = g.MapProperties(summary, m.order, map[string]string{"Code": "Nope"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mapped property Order.Nope does not exist")
	})

	t.Run("property parameters belong to their mapper", func(t *testing.T) {
		param := func() *RegularProperty {
			return &RegularProperty{PropertyBase: PropertyBase{Name: "Remark", Domain: m.domain("DO_LIBELLE")}}
		}
		_, err := g.AddProperty(MapperOwner(summary.ID, 1), param())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown owner")

		summary.FromMappers = append(summary.FromMappers, &FromMapper{Params: []*ClassMappings{{Name: "order", Class: m.order.ID}}})
		id, err := g.AddProperty(MapperOwner(summary.ID, 1), param())
		require.NoError(t, err)
		assert.Equal(t, []PropertyMapping{{Mapped: id}}, summary.FromMappers[0].Properties)
		assert.NotContains(t, summary.Properties, id)
		assert.Equal(t, []ClassID{m.order.ID}, summary.FromMappers[0].ClassIDs())
		assert.Equal(t, "OrderSummary", g.Parent(g.Property(id)).Name)
	})
}
