// Package gen drives code generation from a resolved model graph.
package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidModel indicates a model definition error.
	ErrInvalidModel = errors.New("modelgen: invalid model")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("modelgen: missing configuration")
	// ErrInvalidAssociation indicates an association definition error.
	ErrInvalidAssociation = errors.New("modelgen: invalid association")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("modelgen: code generation failed")
	// ErrValidationFailed indicates a validation failure.
	ErrValidationFailed = errors.New("modelgen: validation failed")
)

// ModelError represents a model definition error.
type ModelError struct {
	File     string // Model file (if known)
	Class    string // Class or endpoint name
	Property string // Property name (if applicable)
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	var b strings.Builder
	b.WriteString("modelgen: model error")
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if e.Class != "" {
		b.WriteString(" on class ")
		b.WriteString(e.Class)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ModelError.
func (e *ModelError) Is(target error) bool {
	return target == ErrInvalidModel
}

// NewModelError creates a new ModelError.
func NewModelError(className, property, message string, cause error) *ModelError {
	return &ModelError{
		Class:    className,
		Property: property,
		Message:  message,
		Cause:    cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("modelgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("modelgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// AssociationError represents an association or composition error.
type AssociationError struct {
	From     string
	To       string
	Property string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *AssociationError) Error() string {
	var b strings.Builder
	b.WriteString("modelgen: association error")
	if e.Property != "" {
		b.WriteString(" on property ")
		b.WriteString(e.Property)
	}
	if e.From != "" && e.To != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.From, e.To)
	} else if e.From != "" {
		b.WriteString(" from ")
		b.WriteString(e.From)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *AssociationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for AssociationError.
func (e *AssociationError) Is(target error) bool {
	return target == ErrInvalidAssociation
}

// NewAssociationError creates a new AssociationError.
func NewAssociationError(from, to, property, message string, cause error) *AssociationError {
	return &AssociationError{
		From:     from,
		To:       to,
		Property: property,
		Message:  message,
		Cause:    cause,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Generator string // "jpa", "typescript", "sql", etc.
	Unit      string // Class, endpoint file or module rendered
	File      string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("modelgen: generation error")
	if e.Generator != "" {
		b.WriteString(" in generator ")
		b.WriteString(e.Generator)
	}
	if e.Unit != "" {
		b.WriteString(" for ")
		b.WriteString(e.Unit)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(generator, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Generator: generator,
		File:      file,
		Message:   message,
		Cause:     cause,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Class    string
	Property string
	Value    any
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("modelgen: validation error")
	if e.Class != "" {
		b.WriteString(" on class ")
		b.WriteString(e.Class)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " (value: %v)", e.Value)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError creates a new ValidationError.
func NewValidationError(className, property string, value any, message string) *ValidationError {
	return &ValidationError{
		Class:    className,
		Property: property,
		Value:    value,
		Message:  message,
	}
}

// IsModelError reports whether the error is a ModelError.
func IsModelError(err error) bool {
	var modelErr *ModelError
	return errors.As(err, &modelErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsAssociationError reports whether the error is an AssociationError.
func IsAssociationError(err error) bool {
	var assocErr *AssociationError
	return errors.As(err, &assocErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsValidationError reports whether the error is a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
