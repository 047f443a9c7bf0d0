package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewModelError("Order", "Lines", "unknown class", cause)
		err.File = "sales.yml"

		assert.Contains(t, err.Error(), "modelgen: model error in sales.yml")
		assert.Contains(t, err.Error(), "class Order")
		assert.Contains(t, err.Error(), "property Lines")
		assert.Contains(t, err.Error(), "unknown class")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with class only", func(t *testing.T) {
		err := &ModelError{Class: "Order"}
		assert.Contains(t, err.Error(), "class Order")
		assert.NotContains(t, err.Error(), "property")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewModelError("Order", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrInvalidModel", func(t *testing.T) {
		err := NewModelError("Order", "", "", nil)
		assert.True(t, errors.Is(err, ErrInvalidModel))
		assert.True(t, IsModelError(fmt.Errorf("load: %w", err)))
		assert.False(t, IsModelError(errors.New("other")))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Workers", -1, "must be positive")

		assert.Contains(t, err.Error(), "modelgen: config error")
		assert.Contains(t, err.Error(), "Workers")
		assert.Contains(t, err.Error(), "-1")
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Target", nil, "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("helpers", func(t *testing.T) {
		err := NewConfigError("Target", nil, "missing")
		assert.True(t, errors.Is(err, ErrMissingConfig))
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestAssociationError(t *testing.T) {
	t.Run("Error message with both ends", func(t *testing.T) {
		err := NewAssociationError("OrderLine", "Order", "Order", "unknown role", nil)
		assert.Contains(t, err.Error(), "modelgen: association error on property Order")
		assert.Contains(t, err.Error(), "(OrderLine -> Order)")
		assert.Contains(t, err.Error(), "unknown role")
	})

	t.Run("Error message with source only", func(t *testing.T) {
		err := NewAssociationError("OrderLine", "", "", "", errors.New("boom"))
		assert.Contains(t, err.Error(), "from OrderLine")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("helpers", func(t *testing.T) {
		err := NewAssociationError("A", "B", "", "", nil)
		assert.True(t, errors.Is(err, ErrInvalidAssociation))
		assert.True(t, IsAssociationError(err))
	})
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("template failed")
	err := NewGenerationError("jpa", "sales/Order.java", "render", cause)
	err.Unit = "Order"

	assert.Contains(t, err.Error(), "in generator jpa")
	assert.Contains(t, err.Error(), "for Order")
	assert.Contains(t, err.Error(), "(file: sales/Order.java)")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.True(t, IsGenerationError(errors.Join(errors.New("x"), err)))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("Status", "Code", "1A", "enum value is not an identifier")
	assert.Contains(t, err.Error(), "modelgen: validation error on class Status property Code")
	assert.Contains(t, err.Error(), "(value: 1A)")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(NewConfigError("x", nil, "y")))
}
