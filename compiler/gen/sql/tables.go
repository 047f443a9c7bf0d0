package sql

import (
	"fmt"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
	"github.com/syssam/modelgen/dialect"
)

// builder maps the persistent classes in scope to atlas tables.
type builder struct {
	opts    Options
	gc      *gen.Context
	graph   *model.Graph
	schema  *schema.Schema
	classes []*model.Class
	tables  map[model.ClassID]*schema.Table
	// columns holds the column of each mapped property.
	columns map[model.PropertyID]*schema.Column
}

func newBuilder(gc *gen.Context, opts Options) *builder {
	b := &builder{
		opts:    opts,
		gc:      gc,
		graph:   gc.Graph,
		tables:  make(map[model.ClassID]*schema.Table),
		columns: make(map[model.PropertyID]*schema.Column),
	}
	if opts.Schema != "" {
		b.schema = schema.New(opts.Schema)
	}
	return b
}

// build returns the tables of the persistent classes in scope followed
// by the join tables of many-to-many associations.
func (b *builder) build() ([]*schema.Table, error) {
	var tables []*schema.Table
	for _, c := range b.gc.Classes {
		if !c.IsPersistent {
			continue
		}
		t, err := b.table(c)
		if err != nil {
			return nil, err
		}
		b.classes = append(b.classes, c)
		b.tables[c.ID] = t
		tables = append(tables, t)
	}
	for _, c := range b.classes {
		joins, err := b.references(c)
		if err != nil {
			return nil, err
		}
		tables = append(tables, joins...)
	}
	return tables, nil
}

func (b *builder) newTable(name string) *schema.Table {
	t := schema.NewTable(name)
	if b.schema != nil {
		t.SetSchema(b.schema)
	}
	return t
}

// mapped returns the properties of c stored in its table.
func (b *builder) mapped(c *model.Class) []model.Property {
	var ps []model.Property
	for _, p := range b.gc.Properties(c) {
		if p.Base().Owner.Class != c.ID {
			continue
		}
		if ap := association(p); ap != nil && ap.Type.IsToMany() {
			continue
		}
		ps = append(ps, p)
	}
	return ps
}

func (b *builder) table(c *model.Class) (*schema.Table, error) {
	t := b.newTable(b.graph.ClassSQLName(c))
	if b.opts.Comments && c.Comment != "" {
		t.SetComment(c.Comment)
	}
	var pk []*schema.Column
	for _, p := range b.mapped(c) {
		col, err := b.column(c, p)
		if err != nil {
			return nil, err
		}
		t.AddColumns(col)
		b.columns[p.Base().ID] = col
		if p.Base().PrimaryKey {
			pk = append(pk, col)
		}
	}
	if len(pk) > 0 {
		t.SetPrimaryKey(schema.NewPrimaryKey(pk...))
	}
	if len(pk) == 1 && b.identity(c) {
		if attr := b.identityAttr(); attr != nil {
			pk[0].AddAttrs(attr)
		}
	}
	for _, uk := range c.UniqueKeys {
		var (
			cols  []*schema.Column
			names []string
		)
		for _, id := range uk {
			if col := b.columns[id]; col != nil {
				cols = append(cols, col)
				names = append(names, col.Name)
			}
		}
		if len(cols) > 0 {
			t.AddIndexes(schema.NewUniqueIndex("UK_" + t.Name + "_" + strings.Join(names, "_")).AddColumns(cols...))
		}
	}
	return t, nil
}

// identity reports whether the single primary key of c is generated.
func (b *builder) identity(c *model.Class) bool {
	pks := b.graph.PrimaryKey(c)
	if len(pks) != 1 || association(pks[0]) != nil {
		return false
	}
	d := b.graph.Domain(pks[0])
	return d != nil && d.AutoGeneratedValue
}

func (b *builder) identityAttr() schema.Attr {
	switch b.opts.Dialect {
	case dialect.Postgres:
		id := &postgres.Identity{Generation: "BY DEFAULT"}
		if b.opts.IdentityStart > 0 || b.opts.IdentityIncrement > 0 {
			id.Sequence = &postgres.Sequence{Start: b.opts.IdentityStart, Increment: b.opts.IdentityIncrement}
		}
		return id
	case dialect.MySQL:
		return &mysql.AutoIncrement{V: b.opts.IdentityStart}
	}
	// SQLite only accepts AUTOINCREMENT on INTEGER PRIMARY KEY columns.
	return nil
}

func (b *builder) column(c *model.Class, p model.Property) (*schema.Column, error) {
	name := b.graph.SQLName(p)
	d := b.graph.Domain(p)
	if cp, ok := p.(*model.CompositionProperty); ok {
		d = cp.Domain
	}
	typ, err := b.columnType(d)
	if err != nil {
		return nil, gen.NewModelError(c.Name, b.graph.Name(p), "column type", err)
	}
	col := schema.NewColumn(name).SetType(typ).SetNull(!b.graph.Required(p) && !p.Base().PrimaryKey)
	if b.opts.Comments {
		if comment := b.graph.Comment(p); comment != "" {
			col.SetComment(comment)
		}
	}
	return col, nil
}

// columnType returns the dialect type of d, its length and scale applied.
func (b *builder) columnType(d *domain.Domain) (schema.Type, error) {
	impl := d.Implementation(domain.TargetSQL)
	if impl == nil || impl.Type == "" {
		return nil, fmt.Errorf("domain %s has no sql implementation", d)
	}
	raw := impl.Type
	if d.LengthApplies(domain.TargetSQL) {
		size := strconv.Itoa(*d.Length)
		if d.ScaleApplies(domain.TargetSQL) {
			size += "," + strconv.Itoa(*d.Scale)
		}
		base, array := strings.CutSuffix(raw, "[]")
		raw = base + "(" + size + ")"
		if array {
			raw += "[]"
		}
	}
	raw = normalize(b.opts.Dialect, raw)
	typ, err := parseType(b.opts.Dialect, raw)
	if err != nil {
		return nil, err
	}
	if _, ok := typ.(*schema.UnsupportedType); ok {
		return nil, fmt.Errorf("type %q is not supported by %s", raw, b.opts.Dialect)
	}
	return typ, nil
}

// mysqlTypes maps PostgreSQL type names to their MySQL counterpart.
var mysqlTypes = map[string]string{
	"int2":        "smallint",
	"int4":        "int",
	"int8":        "bigint",
	"serial":      "int",
	"bigserial":   "bigint",
	"bytea":       "longblob",
	"jsonb":       "json",
	"timestamptz": "timestamp",
	"uuid":        "char(36)",
	"varchar":     "varchar(255)",
}

// normalize adapts a type written for PostgreSQL to dialect. Arrays are
// stored as JSON by the dialects without arrays.
func normalize(name, raw string) string {
	if name == dialect.Postgres {
		return raw
	}
	if strings.HasSuffix(raw, "[]") {
		return "json"
	}
	if name == dialect.MySQL {
		if t, ok := mysqlTypes[strings.ToLower(raw)]; ok {
			return t
		}
	}
	return raw
}

func parseType(name, raw string) (schema.Type, error) {
	switch name {
	case dialect.MySQL:
		return mysql.ParseType(raw)
	case dialect.SQLite:
		return sqlite.ParseType(raw)
	default:
		return postgres.ParseType(raw)
	}
}

// references adds the foreign keys of the associations of c and returns
// the join tables of its many-to-many associations.
func (b *builder) references(c *model.Class) ([]*schema.Table, error) {
	t := b.tables[c.ID]
	var joins []*schema.Table
	for _, p := range b.gc.Properties(c) {
		ap := association(p)
		if ap == nil || p.Base().Owner.Class != c.ID {
			continue
		}
		switch {
		case ap.Type == model.ManyToMany:
			if _, reverse := p.(*model.ReverseAssociationProperty); reverse {
				continue
			}
			jt, err := b.joinTable(c, p, ap)
			if err != nil {
				return nil, err
			}
			if jt != nil {
				joins = append(joins, jt)
			}
		case !ap.Type.IsToMany():
			col := b.columns[p.Base().ID]
			ref, refCol := b.target(ap)
			if col == nil || ref == nil {
				continue
			}
			t.AddForeignKeys(schema.NewForeignKey("FK_" + t.Name + "_" + col.Name).
				AddColumns(col).SetRefTable(ref).AddRefColumns(refCol))
			idx := schema.NewIndex("IDX_" + t.Name + "_" + col.Name)
			if ap.Type == model.OneToOne {
				idx = schema.NewUniqueIndex("UK_" + t.Name + "_" + col.Name)
			}
			t.AddIndexes(idx.AddColumns(col))
		}
	}
	return joins, nil
}

// target returns the table and key column referenced by ap, if mapped.
func (b *builder) target(ap *model.AssociationProperty) (*schema.Table, *schema.Column) {
	ref := b.tables[ap.Association]
	key := b.graph.AssociationKey(ap)
	if ref == nil || key == nil {
		return nil, nil
	}
	col := b.columns[key.Base().ID]
	if col == nil {
		return nil, nil
	}
	return ref, col
}

// joinTable maps the many-to-many association p of c. Its columns are the
// key of c, suffixed by the role, and the key of the associated class.
func (b *builder) joinTable(c *model.Class, p model.Property, ap *model.AssociationProperty) (*schema.Table, error) {
	pks := b.graph.PrimaryKey(c)
	target := b.graph.Class(ap.Association)
	ref, refCol := b.target(ap)
	var own *schema.Column
	if len(pks) == 1 {
		own = b.columns[pks[0].Base().ID]
	}
	if own == nil || ref == nil || target == nil {
		reason := "associated class has no table"
		if own == nil {
			reason = "class has no single primary key column"
		}
		b.gc.Logger.Warn("many-to-many association has no join table",
			"class", c.Name, "property", b.graph.Name(p), "reason", reason)
		return nil, nil
	}
	role := ""
	if ap.Role != "" {
		role = "_" + naming.ToConstantCase(ap.Role)
	}
	t := b.newTable(b.graph.ClassSQLName(c) + "_" + b.graph.ClassSQLName(target) + role)
	left := schema.NewColumn(own.Name + role).SetType(own.Type.Type)
	right := schema.NewColumn(b.graph.SQLName(p)).SetType(refCol.Type.Type)
	t.AddColumns(left, right)
	t.SetPrimaryKey(schema.NewPrimaryKey(left, right))
	t.AddForeignKeys(
		schema.NewForeignKey("FK_"+t.Name+"_"+left.Name).AddColumns(left).SetRefTable(b.tables[c.ID]).AddRefColumns(own),
		schema.NewForeignKey("FK_"+t.Name+"_"+right.Name).AddColumns(right).SetRefTable(ref).AddRefColumns(refCol),
	)
	t.AddIndexes(schema.NewIndex("IDX_" + t.Name + "_" + right.Name).AddColumns(right))
	return t, nil
}

func association(p model.Property) *model.AssociationProperty {
	switch p := p.(type) {
	case *model.AssociationProperty:
		return p
	case *model.ReverseAssociationProperty:
		return &p.AssociationProperty
	}
	return nil
}
