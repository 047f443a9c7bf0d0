package sql

import (
	"errors"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/dialect"
)

// row is one reference value to insert.
type row struct {
	class  string
	table  *schema.Table
	cols   []*schema.Column
	props  []string
	values []string
}

// values returns the rows of the reference values of the classes in
// scope. Classes referenced by others come first.
func (b *builder) values() []row {
	var (
		rows    []row
		visited = make(map[model.ClassID]bool)
		visit   func(c *model.Class)
	)
	visit = func(c *model.Class) {
		if visited[c.ID] {
			return
		}
		visited[c.ID] = true
		for _, p := range b.mapped(c) {
			if ap := association(p); ap != nil {
				if target := b.graph.Class(ap.Association); target != nil && b.tables[target.ID] != nil {
					visit(target)
				}
			}
		}
		rows = append(rows, b.classRows(c)...)
	}
	for _, c := range b.classes {
		visit(c)
	}
	return rows
}

func (b *builder) classRows(c *model.Class) []row {
	var rows []row
	props := b.mapped(c)
	for _, v := range c.Values {
		r := row{class: c.Name, table: b.tables[c.ID]}
		for _, p := range props {
			name := b.graph.Name(p)
			val, ok := v.Values[name]
			col := b.columns[p.Base().ID]
			if !ok || col == nil {
				continue
			}
			r.cols = append(r.cols, col)
			r.props = append(r.props, name)
			r.values = append(r.values, val)
		}
		if len(r.cols) > 0 {
			rows = append(rows, r)
		}
	}
	return rows
}

// validate reports the values that are no constant of the type of their
// column.
func validate(rows []row) error {
	var errs []error
	for _, r := range rows {
		for i, c := range r.cols {
			v := r.values[i]
			switch c.Type.Type.(type) {
			case *schema.IntegerType, *schema.DecimalType, *schema.FloatType:
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					errs = append(errs, gen.NewValidationError(r.class, r.props[i], v, "not a number"))
				}
			case *schema.BoolType:
				if _, err := strconv.ParseBool(v); err != nil {
					errs = append(errs, gen.NewValidationError(r.class, r.props[i], v, "not a boolean"))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// inserts renders rows as INSERT statements.
func (b *builder) inserts(rows []row) []string {
	stmts := make([]string, len(rows))
	for i, r := range rows {
		cols := make([]string, len(r.cols))
		vals := make([]string, len(r.cols))
		for j, c := range r.cols {
			cols[j] = b.ident(c.Name)
			vals[j] = b.literal(c, r.values[j])
		}
		table := b.ident(r.table.Name)
		if r.table.Schema != nil {
			table = b.ident(r.table.Schema.Name) + "." + table
		}
		stmts[i] = "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(vals, ", ") + ")"
	}
	return stmts
}

func (b *builder) ident(name string) string {
	if b.opts.Dialect == dialect.MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// literal renders v as a constant of the type of c. Numbers and booleans
// are written as is, anything else is quoted.
func (b *builder) literal(c *schema.Column, v string) string {
	switch c.Type.Type.(type) {
	case *schema.IntegerType, *schema.DecimalType, *schema.FloatType:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	case *schema.BoolType:
		if bv, err := strconv.ParseBool(v); err == nil {
			return strings.ToUpper(strconv.FormatBool(bv))
		}
	}
	if b.opts.Dialect == dialect.MySQL {
		v = strings.ReplaceAll(v, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
