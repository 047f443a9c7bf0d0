package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	files, err := Files("testdata/shop")
	require.NoError(t, err)

	var again []*File
	for _, f := range files {
		out, err := Marshal(f)
		require.NoError(t, err, f.Path)
		g, err := Parse(f.Path, out)
		require.NoError(t, err, f.Path)
		assert.Equal(t, f.Module, g.Module)
		assert.Equal(t, f.Tags, g.Tags)
		require.Len(t, g.Classes, len(f.Classes))
		for i, c := range f.Classes {
			assert.Equal(t, c.Name, g.Classes[i].Name)
			assert.Equal(t, c.Values, g.Classes[i].Values)
			assert.Len(t, g.Classes[i].Properties, len(c.Properties))
		}
		again = append(again, g)
	}

	want, err := Build(files...)
	require.NoError(t, err)
	got, err := Build(again...)
	require.NoError(t, err)
	assert.Len(t, got.Classes(), len(want.Classes()))
	assert.Len(t, got.Endpoints(), len(want.Endpoints()))
}

func TestMarshalOmitsEmpty(t *testing.T) {
	required := false
	out, err := Marshal(&File{
		Module: "Sales",
		Classes: []*Class{{
			Name: "Country",
			Properties: []*Property{
				{Name: "Code", Domain: "DO_CODE", PrimaryKey: true},
				{Name: "Label", Domain: "DO_LIBELLE", Required: &required},
			},
			Values: Values{{Name: "France", Fields: map[string]string{"Code": "FR"}}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, `module: Sales
---
class:
  name: Country
  properties:
    - name: Code
      primaryKey: true
      domain: DO_CODE
    - name: Label
      required: false
      domain: DO_LIBELLE
  values:
    France: {Code: FR}
`, string(out))
}
