package model

import (
	"errors"
	"strings"
)

var (
	// ErrResolution indicates a malformed model found while resolving it.
	ErrResolution = errors.New("modelgen: resolution failed")
	// ErrNoDefaultValue is returned for properties without a default value
	// concept, such as compositions.
	ErrNoDefaultValue = errors.New("modelgen: property has no default value")
)

// ResolutionError reports an invariant violation of the model graph.
type ResolutionError struct {
	Class    string // Class, endpoint or decorator name
	Property string // Property name (if applicable)
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("modelgen: resolution error")
	if e.Class != "" {
		b.WriteString(" on ")
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
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrResolution.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// IsResolutionError reports whether the error is a ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}
