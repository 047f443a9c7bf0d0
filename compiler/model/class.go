package model

import (
	"strings"

	"github.com/syssam/modelgen/compiler/naming"
)

// Arena identifiers. The zero value of every id means "none".
type (
	ClassID     int
	PropertyID  int
	EndpointID  int
	DecoratorID int
)

// Valid reports whether the id references an arena slot.
func (id ClassID) Valid() bool { return id > 0 }

// Valid reports whether the id references an arena slot.
func (id PropertyID) Valid() bool { return id > 0 }

// Valid reports whether the id references an arena slot.
func (id EndpointID) Valid() bool { return id > 0 }

// Valid reports whether the id references an arena slot.
func (id DecoratorID) Valid() bool { return id > 0 }

// Namespace places a class or an endpoint in the application modules.
type Namespace struct {
	App    string
	Module string
}

// RootModule returns the first segment of the module path.
func (n Namespace) RootModule() string {
	root, _, _ := strings.Cut(n.Module, ".")
	return root
}

// ModuleCamel returns the module path with every segment camel-cased.
func (n Namespace) ModuleCamel() string {
	return mapModule(n.Module, func(s string) string { return naming.ToCamelCase(s, false, false) })
}

// ModuleKebab returns the module path with every segment kebab-cased,
// joined by slashes. It is used to build file system paths.
func (n Namespace) ModuleKebab() string {
	return strings.ReplaceAll(mapModule(n.Module, naming.ToKebabCase), ".", "/")
}

// ModuleFlat returns the module path without separators, lowercased.
func (n Namespace) ModuleFlat() string {
	return strings.ToLower(strings.ReplaceAll(n.Module, ".", ""))
}

func mapModule(module string, fn func(string) string) string {
	if module == "" {
		return ""
	}
	parts := strings.Split(module, ".")
	for i, p := range parts {
		parts[i] = fn(p)
	}
	return strings.Join(parts, ".")
}

// ClassValue is a static instance of a reference class, its values keyed
// by property name.
type ClassValue struct {
	Name   string
	Values map[string]string
}

// Class is a named container of properties.
type Class struct {
	ID        ClassID
	Name      string
	Label     string
	Comment   string
	Namespace Namespace
	Trigram   string
	// SQLName overrides the table name.
	SQLName string
	// PluralName overrides the plural form used for collections.
	PluralName             string
	Extends                ClassID
	Abstract               bool
	IsPersistent           bool
	Reference              bool
	PreservePropertyCasing bool
	EnumKey                PropertyID
	DefaultProperty        PropertyID
	OrderProperty          PropertyID
	FlagProperty           PropertyID
	Values                 []ClassValue
	UniqueKeys             [][]PropertyID
	Properties             []PropertyID
	Decorators             []DecoratorID
	Tags                   []string
	// FromMappers build an instance of the class from other classes,
	// ToMappers convert an instance into other classes.
	FromMappers []*FromMapper
	ToMappers   []*ClassMappings
}

// NamePascal returns the class name in PascalCase.
func (c *Class) NamePascal() string { return naming.ToPascalCase(c.Name, false, false) }

// NameCamel returns the class name in camelCase.
func (c *Class) NameCamel() string { return naming.ToCamelCase(c.Name, false, false) }

// NamePlural returns the plural class name.
func (c *Class) NamePlural() string {
	if c.PluralName != "" {
		return c.PluralName
	}
	return naming.Plural(c.Name)
}

// HasTag reports whether the class carries one of tags.
// An empty tag list matches every class.
func (c *Class) HasTag(tags ...string) bool {
	return hasTag(c.Tags, tags)
}

// Endpoint is an API operation. Its parameters and result are properties
// owned by the endpoint.
type Endpoint struct {
	ID          EndpointID
	Name        string
	Method      string
	Route       string
	Description string
	Namespace   Namespace
	// FileName groups endpoints into one API file.
	FileName               string
	Params                 []PropertyID
	Returns                PropertyID
	PreservePropertyCasing bool
	Decorators             []DecoratorID
	Tags                   []string
}

// NamePascal returns the endpoint name in PascalCase.
func (e *Endpoint) NamePascal() string { return naming.ToPascalCase(e.Name, false, false) }

// NameCamel returns the endpoint name in camelCase.
func (e *Endpoint) NameCamel() string { return naming.ToCamelCase(e.Name, false, false) }

// HasTag reports whether the endpoint carries one of tags.
// An empty tag list matches every endpoint.
func (e *Endpoint) HasTag(tags ...string) bool {
	return hasTag(e.Tags, tags)
}

// Decorator is a reusable set of properties mixed into classes.
type Decorator struct {
	ID                     DecoratorID
	Name                   string
	Description            string
	Namespace              Namespace
	PreservePropertyCasing bool
	Properties             []PropertyID
}

// NameCamel returns the decorator name in camelCase.
func (d *Decorator) NameCamel() string { return naming.ToCamelCase(d.Name, false, false) }

func hasTag(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
