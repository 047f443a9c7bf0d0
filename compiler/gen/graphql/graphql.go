// Package graphql generates a GraphQL schema from the model: an object
// type per class, an enum per enum key, input types for the classes passed
// to endpoints, and the Query and Mutation roots holding the endpoints.
//
// The schema is built as a gqlparser document, formatted, then loaded back
// to make sure it is valid before it is written.
package graphql

import (
	"bytes"
	"path"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
)

// Options configures the generator.
type Options struct {
	// Tags restricts the classes and endpoints in scope.
	Tags []string
	// Root is the directory of the schema.
	Root string
	// File is the name of the schema file.
	File string
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "graphql"
	}
	if o.File == "" {
		o.File = "schema.graphqls"
	}
}

// Generator renders a GraphQL schema.
type Generator struct {
	opts Options
}

// New returns a GraphQL generator.
func New(opts Options) *Generator {
	opts.defaults()
	return &Generator{opts: opts}
}

// Name implements gen.Generator.
func (*Generator) Name() string { return "graphql" }

// DomainTarget implements gen.DomainTarget.
func (*Generator) DomainTarget() string { return domain.TargetGraphQL }

// Tags implements gen.TagFilter.
func (g *Generator) Tags() []string { return g.opts.Tags }

// Tasks implements gen.Generator.
func (g *Generator) Tasks(gc *gen.Context) ([]gen.Task, error) {
	if len(gc.Classes) == 0 && len(gc.Endpoints) == 0 {
		return nil, nil
	}
	doc, err := newBuilder(gc).document()
	if err != nil {
		return nil, err
	}
	file := path.Join(g.opts.Root, g.opts.File)
	return []gen.Task{{
		Path:   file,
		Unit:   "schema",
		Render: func() ([]byte, error) { return render(gc.Header(), file, doc) },
	}}, nil
}

// render formats doc under the header and loads the result back.
func render(header, name string, doc *ast.SchemaDocument) ([]byte, error) {
	t := gen.NewText("  ")
	t.Comment(0, "#", header)
	t.Blank()
	var b bytes.Buffer
	b.WriteString(t.String())
	formatter.NewFormatter(&b).FormatSchemaDocument(doc)
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: b.String()}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
