package load

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgen/compiler/domain"
)

// File is a parsed model file. A file holds a header document (module,
// tags) followed by class, endpoint, decorator and domain documents.
type File struct {
	Path       string
	App        string
	Module     string
	Tags       []string
	Uses       []string
	Classes    []*Class
	Endpoints  []*Endpoint
	Decorators []*Decorator
	Domains    []*domain.Domain
}

// Name returns the base name of the file without extension.
func (f *File) Name() string {
	name := f.Path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// document is one YAML document of a model file.
type document struct {
	App       string         `yaml:"app,omitempty"`
	Module    string         `yaml:"module,omitempty"`
	Tags      []string       `yaml:"tags,omitempty"`
	Uses      []string       `yaml:"uses,omitempty"`
	Class     *Class         `yaml:"class,omitempty"`
	Endpoint  *Endpoint      `yaml:"endpoint,omitempty"`
	Decorator *Decorator     `yaml:"decorator,omitempty"`
	Domain    *domain.Domain `yaml:"domain,omitempty"`
}

// Class is a class declaration.
type Class struct {
	Name                   string      `yaml:"name,omitempty"`
	Label                  string      `yaml:"label,omitempty"`
	Comment                string      `yaml:"comment,omitempty"`
	Trigram                string      `yaml:"trigram,omitempty"`
	SQLName                string      `yaml:"sqlName,omitempty"`
	PluralName             string      `yaml:"pluralName,omitempty"`
	Extends                string      `yaml:"extends,omitempty"`
	Abstract               bool        `yaml:"abstract,omitempty"`
	Reference              bool        `yaml:"reference,omitempty"`
	Persistent             *bool       `yaml:"persistent,omitempty"`
	PreservePropertyCasing bool        `yaml:"preservePropertyCasing,omitempty"`
	EnumKey                string      `yaml:"enumKey,omitempty"`
	DefaultProperty        string      `yaml:"defaultProperty,omitempty"`
	OrderProperty          string      `yaml:"orderProperty,omitempty"`
	FlagProperty           string      `yaml:"flagProperty,omitempty"`
	Decorators             []string    `yaml:"decorators,omitempty"`
	Tags                   []string    `yaml:"tags,omitempty"`
	Unique                 [][]string  `yaml:"unique,omitempty"`
	Properties             []*Property `yaml:"properties,omitempty"`
	Values                 Values      `yaml:"values,omitempty"`
	Mappers                *Mappers    `yaml:"mappers,omitempty"`
	Line                   int         `yaml:"-"`
}

// Mappers declares the conversions of a class from and to other classes.
type Mappers struct {
	From []*FromMapper    `yaml:"from,omitempty"`
	To   []*ClassMappings `yaml:"to,omitempty"`
}

// FromMapper declares a constructor of the class from its parameters.
type FromMapper struct {
	Comment string         `yaml:"comment,omitempty"`
	Params  []*MapperParam `yaml:"params,omitempty"`
}

// MapperParam is a parameter of a from mapper: either a class whose
// properties are mapped, or a property.
type MapperParam struct {
	ClassMappings `yaml:",inline"`

	Property *Property `yaml:"property,omitempty"`
	// Target is the property set by Property, the property of the same
	// name by default.
	Target string `yaml:"target,omitempty"`
}

// ClassMappings maps the properties of the class onto those of Class.
// Properties are paired by name unless Mappings names the mapped property;
// Exclude leaves properties out.
type ClassMappings struct {
	Class    string            `yaml:"class,omitempty"`
	Name     string            `yaml:"name,omitempty"`
	Comment  string            `yaml:"comment,omitempty"`
	Required *bool             `yaml:"required,omitempty"`
	Mappings map[string]string `yaml:"mappings,omitempty"`
	Exclude  []string          `yaml:"exclude,omitempty"`
}

// UnmarshalYAML records the line of the declaration.
func (c *Class) UnmarshalYAML(n *yaml.Node) error {
	type raw Class
	if err := n.Decode((*raw)(c)); err != nil {
		return err
	}
	c.Line = n.Line
	return nil
}

// Value is a named reference value: property name to value.
type Value struct {
	Name   string
	Fields map[string]string
}

// Values keeps reference values in declaration order.
type Values []Value

// MarshalYAML encodes values as a mapping of value names, one flow
// mapping of fields per value.
func (v Values) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, val := range v {
		fields := &yaml.Node{}
		if err := fields.Encode(val.Fields); err != nil {
			return nil, err
		}
		fields.Style = yaml.FlowStyle
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val.Name}, fields)
	}
	return n, nil
}

// UnmarshalYAML decodes a mapping of value names, keeping their order.
func (v *Values) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: values must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields := make(map[string]string)
		if err := n.Content[i+1].Decode(&fields); err != nil {
			return err
		}
		*v = append(*v, Value{Name: n.Content[i].Value, Fields: fields})
	}
	return nil
}

// Property is a property declaration. Exactly one of Domain (regular),
// Association, Composition and Alias determines its kind.
type Property struct {
	Name             string            `yaml:"name,omitempty"`
	Label            string            `yaml:"label,omitempty"`
	Comment          string            `yaml:"comment,omitempty"`
	Required         *bool             `yaml:"required,omitempty"`
	Readonly         bool              `yaml:"readonly,omitempty"`
	PrimaryKey       bool              `yaml:"primaryKey,omitempty"`
	Unique           bool              `yaml:"unique,omitempty"`
	Domain           string            `yaml:"domain,omitempty"`
	DomainParameters []string          `yaml:"domainParameters,omitempty"`
	DefaultValue     string            `yaml:"defaultValue,omitempty"`
	Trigram          string            `yaml:"trigram,omitempty"`
	CustomProperties map[string]string `yaml:"customProperties,omitempty"`

	Association string `yaml:"association,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Role        string `yaml:"role,omitempty"`
	Key         string `yaml:"property,omitempty"`

	Composition string `yaml:"composition,omitempty"`

	Alias  *Alias `yaml:"alias,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Suffix string `yaml:"suffix,omitempty"`
	As     string `yaml:"as,omitempty"`

	Line int `yaml:"-"`
}

// UnmarshalYAML records the line of the declaration.
func (p *Property) UnmarshalYAML(n *yaml.Node) error {
	type raw Property
	if err := n.Decode((*raw)(p)); err != nil {
		return err
	}
	p.Line = n.Line
	return nil
}

// Kind returns "regular", "association", "composition" or "alias".
func (p *Property) Kind() (string, error) {
	var kinds []string
	if p.Association != "" {
		kinds = append(kinds, "association")
	}
	if p.Composition != "" {
		kinds = append(kinds, "composition")
	}
	if p.Alias != nil {
		kinds = append(kinds, "alias")
	}
	switch len(kinds) {
	case 0:
		if p.Domain == "" {
			return "", fmt.Errorf("property %q has no domain", p.Name)
		}
		return "regular", nil
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("property %q mixes %s", p.Name, strings.Join(kinds, " and "))
	}
}

// Alias selects the aliased properties of a class. Without Property, all
// properties of the class but the excluded ones are aliased.
type Alias struct {
	Class    string   `yaml:"class,omitempty"`
	Property string   `yaml:"property,omitempty"`
	Include  []string `yaml:"include,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty"`
}

// Endpoint is an endpoint declaration.
type Endpoint struct {
	Name                   string      `yaml:"name,omitempty"`
	Method                 string      `yaml:"method,omitempty"`
	Route                  string      `yaml:"route,omitempty"`
	Description            string      `yaml:"description,omitempty"`
	PreservePropertyCasing bool        `yaml:"preservePropertyCasing,omitempty"`
	Decorators             []string    `yaml:"decorators,omitempty"`
	Tags                   []string    `yaml:"tags,omitempty"`
	Params                 []*Property `yaml:"params,omitempty"`
	Returns                *Property   `yaml:"returns,omitempty"`
	Line                   int         `yaml:"-"`
}

// UnmarshalYAML records the line of the declaration.
func (e *Endpoint) UnmarshalYAML(n *yaml.Node) error {
	type raw Endpoint
	if err := n.Decode((*raw)(e)); err != nil {
		return err
	}
	e.Line = n.Line
	return nil
}

// Decorator is a decorator declaration.
type Decorator struct {
	Name                   string      `yaml:"name,omitempty"`
	Description            string      `yaml:"description,omitempty"`
	PreservePropertyCasing bool        `yaml:"preservePropertyCasing,omitempty"`
	Properties             []*Property `yaml:"properties,omitempty"`
	Line                   int         `yaml:"-"`
}

// UnmarshalYAML records the line of the declaration.
func (d *Decorator) UnmarshalYAML(n *yaml.Node) error {
	type raw Decorator
	if err := n.Decode((*raw)(d)); err != nil {
		return err
	}
	d.Line = n.Line
	return nil
}
