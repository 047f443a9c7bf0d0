package graphql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// builtins are the scalars of the GraphQL prelude.
var builtins = []string{"Int", "Float", "String", "Boolean", "ID"}

// request is a class waiting for its object or input type.
type request struct {
	class *model.Class
	input bool
}

// builder assembles the schema document. Classes outside the scope are
// added when a composition in scope needs their type.
type builder struct {
	gc    *gen.Context
	graph *model.Graph

	// names maps the declared type names to the class declaring them.
	names   map[string]string
	pending []request
	queued  map[request]bool
	used    []string

	enums, objects, inputs ast.DefinitionList
}

func newBuilder(gc *gen.Context) *builder {
	return &builder{
		gc:     gc,
		graph:  gc.Graph,
		names:  make(map[string]string),
		queued: make(map[request]bool),
	}
}

// document returns the schema: custom scalars, enums, object types, input
// types, then the Query and Mutation roots.
func (b *builder) document() (*ast.SchemaDocument, error) {
	for _, c := range b.gc.Classes {
		for _, key := range b.enumKeys(c) {
			if err := b.enum(c, key); err != nil {
				return nil, err
			}
		}
		b.typeName(c, false)
	}
	query, mutation, err := b.roots()
	if err != nil {
		return nil, err
	}
	for len(b.pending) > 0 {
		r := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.class(r.class, r.input); err != nil {
			return nil, err
		}
	}

	doc := &ast.SchemaDocument{}
	doc.Definitions = append(doc.Definitions, b.scalars()...)
	doc.Definitions = append(doc.Definitions, b.enums...)
	doc.Definitions = append(doc.Definitions, b.objects...)
	doc.Definitions = append(doc.Definitions, b.inputs...)
	for _, root := range []*ast.Definition{query, mutation} {
		if len(root.Fields) > 0 {
			doc.Definitions = append(doc.Definitions, root)
		}
	}
	return doc, nil
}

// declare reserves name for the class c.
func (b *builder) declare(name, class string) error {
	if other, ok := b.names[name]; ok {
		return gen.NewModelError(class, "", fmt.Sprintf("graphql type %s is already declared by %s", name, other), nil)
	}
	b.names[name] = class
	return nil
}

// typeName returns the object or input type of c, queuing its declaration.
func (b *builder) typeName(c *model.Class, input bool) string {
	r := request{class: c, input: input}
	if !b.queued[r] {
		b.queued[r] = true
		b.pending = append(b.pending, r)
	}
	if input {
		return c.NamePascal() + "Input"
	}
	return c.NamePascal()
}

// class declares the object or input type of c.
func (b *builder) class(c *model.Class, input bool) error {
	def := &ast.Definition{
		Kind:        ast.Object,
		Name:        b.typeName(c, input),
		Description: strings.TrimSpace(firstNonEmpty(c.Comment, c.Label)),
	}
	if input {
		def.Kind = ast.InputObject
	}
	if err := b.declare(def.Name, c.Name); err != nil {
		return err
	}
	for _, p := range b.gc.Properties(c) {
		if _, ok := p.(*model.ReverseAssociationProperty); ok {
			continue
		}
		typ, err := b.fieldType(c.Name, p, input)
		if err != nil {
			return err
		}
		def.Fields = append(def.Fields, &ast.FieldDefinition{
			Name:        b.graph.NameCamel(p),
			Description: strings.TrimSpace(b.graph.Comment(p)),
			Type:        typ,
		})
	}
	if len(def.Fields) == 0 {
		return gen.NewModelError(c.Name, "", "graphql types need at least one field", nil)
	}
	if input {
		b.inputs = append(b.inputs, def)
	} else {
		b.objects = append(b.objects, def)
	}
	return nil
}

// roots returns the Query and Mutation types. GET endpoints are queries,
// the others mutations.
func (b *builder) roots() (query, mutation *ast.Definition, err error) {
	query = &ast.Definition{Kind: ast.Object, Name: "Query"}
	mutation = &ast.Definition{Kind: ast.Object, Name: "Mutation"}
	seen := make(map[string]string)
	for _, e := range b.gc.Endpoints {
		name := e.NameCamel()
		if other, ok := seen[name]; ok {
			return nil, nil, gen.NewModelError(e.FileName, e.Name, "graphql field "+name+" is already declared in "+other, nil)
		}
		seen[name] = e.FileName
		field := &ast.FieldDefinition{
			Name:        name,
			Description: strings.TrimSpace(e.Description),
		}
		for _, p := range b.graph.Properties(e.Params) {
			typ, err := b.fieldType(e.Name, p, true)
			if err != nil {
				return nil, nil, err
			}
			field.Arguments = append(field.Arguments, &ast.ArgumentDefinition{
				Name: b.graph.NameCamel(p),
				Type: typ,
			})
		}
		if ret := b.graph.Property(e.Returns); ret != nil {
			if field.Type, err = b.fieldType(e.Name, ret, false); err != nil {
				return nil, nil, err
			}
		} else {
			field.Type = ast.NonNullNamedType("Boolean", nil)
			b.use("Boolean")
		}
		if strings.EqualFold(e.Method, "GET") {
			query.Fields = append(query.Fields, field)
		} else {
			mutation.Fields = append(mutation.Fields, field)
		}
	}
	for _, root := range []*ast.Definition{query, mutation} {
		if len(root.Fields) > 0 {
			if err := b.declare(root.Name, root.Name); err != nil {
				return nil, nil, err
			}
		}
	}
	return query, mutation, nil
}

// enumKeys returns the properties of c rendered as enums.
func (b *builder) enumKeys(c *model.Class) []model.Property {
	if !b.gc.CanUseEnums(c, nil) {
		return nil
	}
	keys := []model.Property{b.graph.Property(c.EnumKey)}
	for _, uk := range c.UniqueKeys {
		if len(uk) != 1 || uk[0] == c.EnumKey {
			continue
		}
		if p := b.graph.Property(uk[0]); p != nil && b.gc.CanUseEnums(c, p) {
			keys = append(keys, p)
		}
	}
	return keys
}

func (b *builder) enumName(c *model.Class, key model.Property) string {
	return c.NamePascal() + b.graph.NamePascal(key)
}

// enum declares the values of key, described by the default property.
func (b *builder) enum(c *model.Class, key model.Property) error {
	def := &ast.Definition{
		Kind:        ast.Enum,
		Name:        b.enumName(c, key),
		Description: firstNonEmpty(strings.TrimSpace(b.graph.Label(key)), b.graph.Name(key)) + " of " + c.NamePascal() + ".",
	}
	if err := b.declare(def.Name, c.Name); err != nil {
		return err
	}
	field := b.graph.Name(key)
	label := b.graph.Property(c.DefaultProperty)
	for _, v := range c.Values {
		ev := &ast.EnumValueDefinition{Name: v.Values[field]}
		if label != nil {
			ev.Description = v.Values[b.graph.Name(label)]
		}
		def.EnumValues = append(def.EnumValues, ev)
	}
	b.enums = append(b.enums, def)
	return nil
}

// scalars declares the named types used by fields that are neither
// built in nor declared.
func (b *builder) scalars() ast.DefinitionList {
	var defs ast.DefinitionList
	for _, name := range b.used {
		if _, ok := b.names[name]; ok || slices.Contains(builtins, name) {
			continue
		}
		b.names[name] = ""
		defs = append(defs, &ast.Definition{Kind: ast.Scalar, Name: name})
	}
	return defs
}

func (b *builder) use(name string) {
	if !slices.Contains(b.used, name) {
		b.used = append(b.used, name)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
