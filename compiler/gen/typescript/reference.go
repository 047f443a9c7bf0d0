package typescript

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// references renders the reference file of a module.
func (w *writer) references(file string, classes []*model.Class) ([]byte, error) {
	classes = slices.Clone(classes)
	slices.SortStableFunc(classes, func(a, b *model.Class) int { return cmp.Compare(a.NameCamel(), b.NameCamel()) })

	t := gen.NewText("    ")
	w.header(t)

	self := importPath(file, file)
	var imports []gen.Import
	for _, c := range classes {
		for _, imp := range w.classImports(file, c) {
			if imp.Path != self {
				imports = append(imports, imp)
			}
		}
	}
	writeImports(t, imports)

	for i, c := range classes {
		if i > 0 {
			t.Blank()
		}
		w.unions(t, c)
		w.flags(t, c)
		w.referenceInterface(t, c)
		if w.References == Values {
			w.referenceValues(t, c)
		} else {
			w.referenceDefinition(t, c)
		}
	}
	return t.Bytes(), nil
}

// unions renders the union types of the enum key and the single-property
// unique keys of c.
func (w *writer) unions(t *gen.Text, c *model.Class) {
	key := w.graph.Property(c.EnumKey)
	if key == nil {
		return
	}
	if !c.Extends.Valid() {
		t.Linef(0, "export type %s%s = %s;", c.NamePascal(), w.graph.NamePascal(key), w.union(c, key))
	}
	for _, uk := range c.UniqueKeys {
		if len(uk) != 1 || uk[0] == c.EnumKey {
			continue
		}
		p := w.graph.Property(uk[0])
		if p == nil || !w.graph.Required(p) {
			continue
		}
		t.Linef(0, "export type %s%s = %s;", c.NamePascal(), w.graph.NamePascal(p), w.union(c, p))
	}
}

func (w *writer) union(c *model.Class, p model.Property) string {
	name := w.graph.Name(p)
	values := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if s, ok := v.Values[name]; ok {
			values = append(values, w.literal(p, s))
		}
	}
	slices.Sort(values)
	return strings.Join(values, " | ")
}

// flags renders the binary flags of c.
func (w *writer) flags(t *gen.Text, c *model.Class) {
	flag := w.graph.Property(c.FlagProperty)
	if flag == nil {
		return
	}
	name := w.graph.Name(flag)
	var lines []string
	for _, v := range c.Values {
		n, err := strconv.Atoi(v.Values[name])
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = 0b%b", v.Name, n))
	}
	t.Linef(0, "export enum %sFlag {", c.NamePascal())
	for i, l := range lines {
		if i < len(lines)-1 {
			l += ","
		}
		t.Linef(1, "%s", l)
	}
	t.Line(0, "}")
}

func (w *writer) referenceInterface(t *gen.Text, c *model.Class) {
	if parent := w.graph.Class(c.Extends); parent != nil {
		t.Linef(0, "export interface %s extends %s {", c.NamePascal(), parent.NamePascal())
	} else {
		t.Linef(0, "export interface %s {", c.NamePascal())
	}
	for _, p := range w.graph.Properties(c.Properties) {
		opt := "?"
		if w.graph.Required(p) || p.Base().PrimaryKey {
			opt = ""
		}
		t.Linef(1, "%s%s: %s;", w.graph.NameCamel(p), opt, w.tsType(p))
	}
	t.Line(0, "}")
}

func (w *writer) referenceDefinition(t *gen.Text, c *model.Class) {
	var valueKey, labelKey string
	if p := w.graph.Property(c.EnumKey); p != nil {
		valueKey = w.graph.NameCamel(p)
	} else if pks := w.graph.PrimaryKey(c); len(pks) == 1 {
		valueKey = w.graph.NameCamel(pks[0])
	}
	if p := w.graph.Property(c.DefaultProperty); p != nil {
		labelKey = w.graph.NameCamel(p)
	} else {
		labelKey = valueKey
	}
	t.Linef(0, "export const %s = {type: {} as %s, valueKey: %q, labelKey: %q} as const;", c.NameCamel(), c.NamePascal(), valueKey, labelKey)
}

func (w *writer) referenceValues(t *gen.Text, c *model.Class) {
	props := w.graph.Properties(c.Properties)
	t.Linef(0, "export const %sList: %s[] = [", c.NameCamel(), c.NamePascal())
	for _, v := range c.Values {
		var fields []string
		for _, p := range props {
			s, ok := v.Values[w.graph.Name(p)]
			if !ok || s == "null" {
				continue
			}
			fields = append(fields, w.graph.NameCamel(p)+": "+w.literal(p, s))
		}
		t.Linef(1, "{%s},", strings.Join(fields, ", "))
	}
	t.Line(0, "];")
}
