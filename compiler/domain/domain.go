// Package domain holds the scalar domains of a model and their
// per-target implementations.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Target keys of the implementation map.
const (
	TargetSQL     = "sql"
	TargetJava    = "java"
	TargetTS      = "ts"
	TargetGo      = "go"
	TargetGraphQL = "graphql"
)

// Well known keys of Domain.AsDomains.
const (
	AsList = "list"
)

var (
	// ErrNotFound is returned when a domain name cannot be resolved.
	ErrNotFound = errors.New("modelgen: domain not found")
	// ErrDuplicate is returned when a domain is registered twice.
	ErrDuplicate = errors.New("modelgen: duplicate domain")
	// ErrMissingImplementation indicates a domain without an implementation
	// for a configured target.
	ErrMissingImplementation = errors.New("modelgen: missing domain implementation")
)

// Domain is a named scalar type.
type Domain struct {
	Name               string                     `yaml:"name"`
	Label              string                     `yaml:"label,omitempty"`
	Length             *int                       `yaml:"length,omitempty"`
	Scale              *int                       `yaml:"scale,omitempty"`
	AutoGeneratedValue bool                       `yaml:"autoGeneratedValue,omitempty"`
	IsMultipart        bool                       `yaml:"isMultipart,omitempty"`
	BodyParam          bool                       `yaml:"bodyParam,omitempty"`
	MediaType          string                     `yaml:"mediaType,omitempty"`
	AsDomains          map[string]string          `yaml:"asDomains,omitempty"`
	Implementations    map[string]*Implementation `yaml:"implementations,omitempty"`
}

// Implementation describes how a domain is rendered for one target.
type Implementation struct {
	// Type is the concrete type, e.g. "varchar", "String", "string".
	Type string `yaml:"type"`
	// GenericType wraps the type of a collection, "{T}" being the element
	// type, e.g. "{T}[]" or "List<{T}>".
	GenericType string   `yaml:"genericType,omitempty"`
	Imports     []string `yaml:"imports,omitempty"`
	Annotations []string `yaml:"annotations,omitempty"`
}

// Implementation returns the implementation of d for target, or nil.
// A nil result is valid: a domain need not support every target.
func (d *Domain) Implementation(target string) *Implementation {
	if d == nil {
		return nil
	}
	return d.Implementations[target]
}

// GetImplementation is the nil-safe form of Domain.Implementation.
func GetImplementation(d *Domain, target string) *Implementation {
	return d.Implementation(target)
}

// IsList reports whether the implementation of d for target is a collection.
func (d *Domain) IsList(target string) bool {
	impl := d.Implementation(target)
	if impl == nil {
		return false
	}
	return impl.IsList()
}

// LengthApplies reports whether Length is meaningful for target.
func (d *Domain) LengthApplies(target string) bool {
	impl := d.Implementation(target)
	return d != nil && d.Length != nil && impl != nil && (impl.IsTextual() || impl.IsNumeric())
}

// ScaleApplies reports whether Scale is meaningful for target.
func (d *Domain) ScaleApplies(target string) bool {
	impl := d.Implementation(target)
	return d != nil && d.Scale != nil && impl != nil && impl.IsNumeric()
}

func (d *Domain) String() string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}

var (
	textualHints = []string{"char", "text", "string", "clob"}
	numericHints = []string{"numeric", "decimal", "number(", "money"}
)

// IsTextual reports whether the implementation type holds text.
func (i *Implementation) IsTextual() bool {
	return i != nil && containsAny(strings.ToLower(i.Type), textualHints)
}

// IsNumeric reports whether the implementation type is a fixed
// precision number, for which length and scale apply.
func (i *Implementation) IsNumeric() bool {
	return i != nil && containsAny(strings.ToLower(i.Type), numericHints)
}

// IsList reports whether the generic type wraps a collection.
func (i *Implementation) IsList() bool {
	if i == nil || i.GenericType == "" {
		return false
	}
	g := i.GenericType
	return strings.HasSuffix(g, "[]") || strings.HasPrefix(g, "[") ||
		strings.HasPrefix(g, "List<") || strings.HasPrefix(g, "Set<") || strings.HasPrefix(g, "Collection<")
}

// Generic renders the generic type around elem.
// Without a generic type, elem is returned unchanged.
func (i *Implementation) Generic(elem string) string {
	if i == nil || i.GenericType == "" {
		return elem
	}
	return strings.ReplaceAll(i.GenericType, "{T}", elem)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Registry is a lookup table of domains by name.
type Registry struct {
	domains map[string]*Domain
}

// NewRegistry returns a registry holding the given domains.
func NewRegistry(domains ...*Domain) (*Registry, error) {
	r := &Registry{domains: make(map[string]*Domain, len(domains))}
	for _, d := range domains {
		if err := r.Add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers d.
func (r *Registry) Add(d *Domain) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("%w: unnamed domain", ErrNotFound)
	}
	if r.domains == nil {
		r.domains = make(map[string]*Domain)
	}
	if _, ok := r.domains[d.Name]; ok {
		return fmt.Errorf("%w %q", ErrDuplicate, d.Name)
	}
	r.domains[d.Name] = d
	return nil
}

// Resolve returns the domain with the given name.
func (r *Registry) Resolve(name string) (*Domain, error) {
	if d, ok := r.domains[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// ResolveAs resolves the domain registered under key in d.AsDomains,
// e.g. the list domain of a key domain.
func (r *Registry) ResolveAs(d *Domain, key string) (*Domain, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil domain", ErrNotFound)
	}
	name, ok := d.AsDomains[key]
	if !ok {
		return nil, fmt.Errorf("%w: domain %q has no %q form", ErrNotFound, d.Name, key)
	}
	return r.Resolve(name)
}

// All returns the registered domains sorted by name.
func (r *Registry) All() []*Domain {
	names := make([]string, 0, len(r.domains))
	for name := range r.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	ds := make([]*Domain, len(names))
	for i, name := range names {
		ds[i] = r.domains[name]
	}
	return ds
}

// Len returns the number of registered domains.
func (r *Registry) Len() int {
	return len(r.domains)
}

// MissingImplementationError reports a domain lacking a target implementation.
type MissingImplementationError struct {
	Domain string
	Target string
}

func (e *MissingImplementationError) Error() string {
	return fmt.Sprintf("modelgen: domain %q has no implementation for target %q", e.Domain, e.Target)
}

// Is reports whether target is ErrMissingImplementation.
func (e *MissingImplementationError) Is(target error) bool {
	return target == ErrMissingImplementation
}

// Validate checks that every domain implements every target.
// All missing pairs are reported, in domain then target order.
func (r *Registry) Validate(targets ...string) error {
	targets = slices.Clone(targets)
	sort.Strings(targets)
	var errs []error
	for _, d := range r.All() {
		for _, t := range targets {
			if d.Implementation(t) == nil {
				errs = append(errs, &MissingImplementationError{Domain: d.Name, Target: t})
			}
		}
	}
	return errors.Join(errs...)
}
