package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		&Domain{
			Name:   "DO_LIBELLE",
			Length: intPtr(100),
			Implementations: map[string]*Implementation{
				TargetSQL:  {Type: "varchar"},
				TargetJava: {Type: "String"},
				TargetTS:   {Type: "string"},
			},
		},
		&Domain{
			Name:      "DO_ID",
			AsDomains: map[string]string{AsList: "DO_ID_LIST"},
			Implementations: map[string]*Implementation{
				TargetSQL:  {Type: "int8"},
				TargetJava: {Type: "Long"},
				TargetTS:   {Type: "number"},
			},
		},
		&Domain{
			Name: "DO_ID_LIST",
			Implementations: map[string]*Implementation{
				TargetJava: {Type: "Long", GenericType: "List<{T}>"},
				TargetTS:   {Type: "number", GenericType: "{T}[]"},
			},
		},
		&Domain{
			Name:   "DO_BOOLEEN",
			Length: intPtr(1),
			Implementations: map[string]*Implementation{
				TargetSQL:  {Type: "boolean"},
				TargetJava: {Type: "Boolean"},
				TargetTS:   {Type: "boolean"},
			},
		},
		&Domain{
			Name:   "DO_MONTANT",
			Length: intPtr(12),
			Scale:  intPtr(2),
			Implementations: map[string]*Implementation{
				TargetSQL:  {Type: "numeric"},
				TargetJava: {Type: "BigDecimal", Imports: []string{"java.math.BigDecimal"}},
				TargetTS:   {Type: "number"},
			},
		},
	)
	require.NoError(t, err)
	return r
}

func TestRegistryResolve(t *testing.T) {
	r := testRegistry(t)

	t.Run("found", func(t *testing.T) {
		d, err := r.Resolve("DO_ID")
		require.NoError(t, err)
		assert.Equal(t, "DO_ID", d.Name)
	})

	t.Run("not found", func(t *testing.T) {
		d, err := r.Resolve("DO_UNKNOWN")
		assert.Nil(t, d)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "DO_UNKNOWN")
	})

	t.Run("as list", func(t *testing.T) {
		id, err := r.Resolve("DO_ID")
		require.NoError(t, err)
		list, err := r.ResolveAs(id, AsList)
		require.NoError(t, err)
		assert.Equal(t, "DO_ID_LIST", list.Name)
		assert.True(t, list.IsList(TargetTS))
		assert.True(t, list.IsList(TargetJava))
		assert.False(t, id.IsList(TargetTS))

		_, err = r.ResolveAs(list, AsList)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("all is sorted", func(t *testing.T) {
		var names []string
		for _, d := range r.All() {
			names = append(names, d.Name)
		}
		assert.Equal(t, []string{"DO_BOOLEEN", "DO_ID", "DO_ID_LIST", "DO_LIBELLE", "DO_MONTANT"}, names)
		assert.Equal(t, 5, r.Len())
	})
}

func TestRegistryDuplicate(t *testing.T) {
	_, err := NewRegistry(&Domain{Name: "DO_ID"}, &Domain{Name: "DO_ID"})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestGetImplementation(t *testing.T) {
	r := testRegistry(t)
	list, err := r.Resolve("DO_ID_LIST")
	require.NoError(t, err)

	assert.Nil(t, GetImplementation(list, TargetSQL))
	assert.Nil(t, GetImplementation(nil, TargetSQL))
	impl := GetImplementation(list, TargetTS)
	require.NotNil(t, impl)
	assert.Equal(t, "number[]", impl.Generic(impl.Type))
	assert.Equal(t, "List<Long>", list.Implementation(TargetJava).Generic("Long"))
	assert.Equal(t, "x", (*Implementation)(nil).Generic("x"))
}

func TestLengthApplies(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		domain string
		target string
		length bool
		scale  bool
	}{
		{"DO_LIBELLE", TargetSQL, true, false},
		{"DO_LIBELLE", TargetJava, true, false},
		{"DO_BOOLEEN", TargetSQL, false, false},
		{"DO_MONTANT", TargetSQL, true, true},
		{"DO_MONTANT", TargetJava, true, true},
		{"DO_MONTANT", TargetTS, false, false},
		{"DO_ID", TargetSQL, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"/"+tt.target, func(t *testing.T) {
			d, err := r.Resolve(tt.domain)
			require.NoError(t, err)
			assert.Equal(t, tt.length, d.LengthApplies(tt.target))
			assert.Equal(t, tt.scale, d.ScaleApplies(tt.target))
		})
	}
}

func TestRegistryValidate(t *testing.T) {
	r := testRegistry(t)

	assert.NoError(t, r.Validate(TargetJava, TargetTS))

	err := r.Validate(TargetSQL, TargetJava)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingImplementation))
	var missing *MissingImplementationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "DO_ID_LIST", missing.Domain)
	assert.Equal(t, TargetSQL, missing.Target)

	err = r.Validate(TargetGo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `domain "DO_BOOLEEN" has no implementation for target "go"`)
	assert.Contains(t, err.Error(), `domain "DO_MONTANT" has no implementation for target "go"`)
}
