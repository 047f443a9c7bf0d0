package importer

import (
	"cmp"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/syssam/modelgen/compiler/load"
	"github.com/syssam/modelgen/compiler/naming"
)

// mapper turns catalog tables into model files.
type mapper struct {
	cfg    *Config
	logger *slog.Logger
	tables map[string]*table
	// classes maps table names to class names.
	classes map[string]string
	// trigrams maps table names to their column prefix.
	trigrams map[string]string
	modules  map[string]string
}

func newMapper(cfg *Config, logger *slog.Logger, tables []*table) *mapper {
	m := &mapper{
		cfg:      cfg,
		logger:   logger,
		tables:   make(map[string]*table),
		classes:  make(map[string]string),
		trigrams: make(map[string]string),
		modules:  make(map[string]string),
	}
	for _, t := range tables {
		if match(cfg.Exclude, t.Name) {
			logger.Debug("table excluded", "table", t.Name)
			continue
		}
		m.tables[t.Name] = t
		m.classes[t.Name] = m.className(t.Name)
		m.trigrams[t.Name] = trigram(t)
		m.modules[t.Name] = m.module(t.Name)
	}
	return m
}

func (m *mapper) className(table string) string {
	for t, name := range m.cfg.ClassNameOverrides {
		if strings.EqualFold(t, table) {
			return name
		}
	}
	return naming.ToPascalCase(strings.ToLower(table), false, false)
}

func (m *mapper) module(table string) string {
	for _, mod := range m.cfg.Modules {
		if match(mod.Tables, table) {
			return mod.Name
		}
	}
	return m.cfg.DefaultModule
}

// trigram returns the prefix shared by the columns of t that are not
// foreign keys, such as "ORD" for ORD_ID and ORD_LABEL, or "" when there
// is none.
func trigram(t *table) string {
	var names []string
	for _, c := range t.Columns {
		if !slices.ContainsFunc(t.Foreign, func(fk *foreignKey) bool { return slices.Contains(fk.Columns, c.Name) }) {
			names = append(names, c.Name)
		}
	}
	if len(names) < 2 {
		return ""
	}
	var prefix string
	for i, name := range names {
		p, _, ok := strings.Cut(name, "_")
		if !ok || len(p) < 2 || len(p) > 4 {
			return ""
		}
		if i == 0 {
			prefix = p
		} else if !strings.EqualFold(p, prefix) {
			return ""
		}
	}
	return strings.ToUpper(prefix)
}

// propertyName strips the trigram of the table from a column name.
func (m *mapper) propertyName(t *table, col string) string {
	if tri := m.trigrams[t.Name]; tri != "" && len(col) > len(tri)+1 {
		col = col[len(tri)+1:]
	}
	return naming.ToPascalCase(strings.ToLower(col), false, false)
}

// files returns one model file per module, ordered by module name.
func (m *mapper) files(values map[string]load.Values) []*load.File {
	byModule := make(map[string]*load.File)
	names := slices.Sorted(func(yield func(string) bool) {
		for name := range m.tables {
			if !yield(name) {
				return
			}
		}
	})
	for _, name := range names {
		mod := m.modules[name]
		f, ok := byModule[mod]
		if !ok {
			f = &load.File{
				Path:   path.Join(m.cfg.OutputDirectory, naming.ToKebabCase(mod)+".yml"),
				App:    m.cfg.App,
				Module: mod,
				Tags:   m.cfg.Tags,
			}
			byModule[mod] = f
		}
		c, uses := m.class(m.tables[name], values[name])
		f.Classes = append(f.Classes, c)
		for _, u := range uses {
			if u != mod && !slices.Contains(f.Uses, u) {
				f.Uses = append(f.Uses, u)
			}
		}
	}
	files := make([]*load.File, 0, len(byModule))
	for _, f := range byModule {
		slices.Sort(f.Uses)
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b *load.File) int { return cmp.Compare(a.Module, b.Module) })
	return files
}

// class maps a table to a class declaration. It returns the modules of
// the associated classes.
func (m *mapper) class(t *table, values load.Values) (*load.Class, []string) {
	c := &load.Class{
		Name:    m.classes[t.Name],
		Comment: t.Comment,
		Trigram: m.trigrams[t.Name],
	}
	if !strings.EqualFold(naming.ToConstantCase(c.Name), t.Name) {
		c.SQLName = t.Name
	}
	var (
		uses       []string
		byColumn   = make(map[string]*load.Property)
		assocs     = m.associations(t)
		extracted  = len(values) > 0
		singleText = len(t.PrimaryKey) == 1 && t.column(t.PrimaryKey[0]) != nil && t.column(t.PrimaryKey[0]).textual()
	)
	for _, col := range t.Columns {
		if ap, ok := assocs[col.Name]; ok {
			c.Properties = append(c.Properties, ap)
			byColumn[col.Name] = ap
			uses = append(uses, m.modules[m.assocTable(t, col.Name)])
			continue
		}
		p := m.property(t, col)
		c.Properties = append(c.Properties, p)
		byColumn[col.Name] = p
		if extracted && c.DefaultProperty == "" && !p.PrimaryKey && col.textual() {
			c.DefaultProperty = p.Name
		}
	}
	for _, u := range t.Unique {
		if len(u) < 2 {
			continue
		}
		var key []string
		for _, col := range u {
			if p, ok := byColumn[col]; ok {
				key = append(key, propertyName(p))
			}
		}
		if len(key) == len(u) {
			c.Unique = append(c.Unique, key)
		}
	}
	if extracted {
		c.Reference = true
		if singleText {
			c.EnumKey = propertyName(byColumn[t.PrimaryKey[0]])
		}
		c.Values = m.valueFields(t, values, byColumn)
	}
	return c, uses
}

// property maps a column to a regular property.
func (m *mapper) property(t *table, col *column) *load.Property {
	unique := slices.ContainsFunc(t.Unique, func(u []string) bool {
		return len(u) == 1 && u[0] == col.Name
	})
	p := &load.Property{
		Name:       m.propertyName(t, col.Name),
		Comment:    col.Comment,
		PrimaryKey: slices.Contains(t.PrimaryKey, col.Name),
		Unique:     unique,
		Domain:     m.domain(col),
	}
	p.Label = label(p.Name)
	if required := !col.Nullable; required != p.PrimaryKey {
		p.Required = &required
	}
	return p
}

// domain returns the domain of the first mapping matching col, or a
// domain named after its type.
func (m *mapper) domain(col *column) string {
	for _, d := range m.cfg.Domains {
		if !strings.EqualFold(d.SQLType, col.Type) {
			continue
		}
		if d.Length != nil && (col.Length == nil || *col.Length != *d.Length) {
			continue
		}
		if d.Scale != nil && (col.Scale == nil || *col.Scale != *d.Scale) {
			continue
		}
		if d.Column != "" && !match([]string{d.Column}, col.Name) {
			continue
		}
		return d.Domain
	}
	name := "DO_" + naming.ToConstantCase(strings.ReplaceAll(col.Type, " ", "_"))
	m.logger.Warn("no domain mapping for column type", "column", col.Name, "type", col.Type, "domain", name)
	return name
}

// associations maps the single column foreign keys of t whose column
// name follows the association naming: the referenced key column,
// followed by an optional role.
func (m *mapper) associations(t *table) map[string]*load.Property {
	assocs := make(map[string]*load.Property)
	for _, fk := range t.Foreign {
		target, ok := m.tables[fk.RefTable]
		switch {
		case !ok:
			m.logger.Warn("foreign key to an excluded table", "table", t.Name, "constraint", fk.Name, "references", fk.RefTable)
			continue
		case len(fk.Columns) != 1:
			m.logger.Warn("composite foreign key imported as columns", "table", t.Name, "constraint", fk.Name)
			continue
		case !slices.Equal(target.PrimaryKey, fk.RefColumns):
			m.logger.Warn("foreign key not referencing a primary key imported as column", "table", t.Name, "constraint", fk.Name)
			continue
		}
		name, ref := fk.Columns[0], fk.RefColumns[0]
		r, ok := role(name, ref)
		if !ok {
			m.logger.Warn("foreign key column not named after the referenced key imported as column", "table", t.Name, "column", name, "references", ref)
			continue
		}
		col := t.column(name)
		if col == nil {
			continue
		}
		typ := "manyToOne"
		if t.unique(name) {
			typ = "oneToOne"
		}
		p := &load.Property{
			Association: m.classes[target.Name],
			Type:        typ,
			Role:        r,
			Comment:     col.Comment,
			PrimaryKey:  slices.Contains(t.PrimaryKey, name),
		}
		p.Label = label(p.Association + r)
		if required := !col.Nullable; required != p.PrimaryKey {
			p.Required = &required
		}
		assocs[name] = p
	}
	return assocs
}

// assocTable returns the table referenced by the association column.
func (m *mapper) assocTable(t *table, col string) string {
	for _, fk := range t.Foreign {
		if len(fk.Columns) == 1 && fk.Columns[0] == col {
			return fk.RefTable
		}
	}
	return ""
}

// role extracts the role of an association column: ORD_ID_PARENT
// referencing ORD_ID plays the role "Parent".
func role(col, ref string) (string, bool) {
	switch {
	case strings.EqualFold(col, ref):
		return "", true
	case len(col) > len(ref)+1 && strings.EqualFold(col[:len(ref)+1], ref+"_"):
		return naming.ToPascalCase(strings.ToLower(col[len(ref)+1:]), false, false), true
	}
	return "", false
}

// valueFields names the extracted rows and keys their fields by property.
func (m *mapper) valueFields(t *table, rows load.Values, byColumn map[string]*load.Property) load.Values {
	var (
		out  load.Values
		seen = make(map[string]bool)
	)
	for i, row := range rows {
		v := load.Value{Fields: make(map[string]string)}
		for col, value := range row.Fields {
			if p, ok := byColumn[col]; ok {
				v.Fields[propertyName(p)] = value
			}
		}
		if len(t.PrimaryKey) == 1 {
			v.Name = naming.ToPascalCase(strings.ToLower(row.Fields[t.PrimaryKey[0]]), false, false)
		}
		if v.Name == "" || seen[v.Name] || !isIdentStart(v.Name) {
			v.Name = fmt.Sprintf("Value%d", i+1)
		}
		seen[v.Name] = true
		out = append(out, v)
	}
	return out
}

// propertyName returns the name of a declaration, derived from the class
// and role for a to-one association.
func propertyName(p *load.Property) string {
	if p.Name == "" && p.Association != "" {
		return p.Association + p.Role
	}
	return p.Name
}

func isIdentStart(s string) bool {
	return s[0] >= 'A' && s[0] <= 'Z'
}

// label humanizes a property name: OrderLine reads "Order line".
func label(name string) string {
	return naming.ToFirstUpper(strings.ReplaceAll(strings.ToLower(naming.ToSnakeCase(name)), "_", " "))
}
