package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/model"
	"github.com/syssam/modelgen/compiler/naming"
)

// class renders the struct of c, preceded by its enumerations.
func (w *writer) class(c *model.Class) ([]byte, error) {
	f := w.newFile(c.Namespace)
	name := c.NamePascal()

	f.Comment(doc(name, firstNonEmpty(c.Comment, c.Label)))
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		if parent := w.graph.Class(c.Extends); parent != nil {
			g.Add(w.typeRef(parent.Namespace, parent.NamePascal()))
		}
		for _, p := range w.fields(c) {
			if comment := w.graph.Comment(p); comment != "" {
				g.Comment(comment)
			}
			g.Id(w.graph.NamePascal(p)).Add(w.goType(p)).Tag(w.tags(c, p))
		}
	})
	for _, key := range w.enumKeys(c) {
		w.enum(f, c, key)
	}
	return render(f)
}

// fields returns the properties declared by c. Ancestors are embedded and
// reverse associations are left to the owning side.
func (w *writer) fields(c *model.Class) []model.Property {
	var ps []model.Property
	for _, p := range w.gc.Properties(c) {
		if _, ok := p.(*model.ReverseAssociationProperty); ok {
			continue
		}
		if p.Base().Owner.Class == c.ID {
			ps = append(ps, p)
		}
	}
	return ps
}

func (w *writer) tags(c *model.Class, p model.Property) map[string]string {
	json := w.graph.NameCamel(p)
	if !w.graph.Required(p) {
		json += ",omitempty"
	}
	tags := map[string]string{"json": json}
	if w.DBTags && c.IsPersistent && w.column(p) {
		tags["db"] = w.graph.SQLName(p)
	}
	return tags
}

// column reports whether p is stored in a column of its table.
func (w *writer) column(p model.Property) bool {
	if w.composition(p) != nil {
		return false
	}
	if ap := association(p); ap != nil {
		return !ap.Type.IsToMany()
	}
	return true
}

// enumKeys returns the properties of c rendered as enumerations.
func (w *writer) enumKeys(c *model.Class) []model.Property {
	if !w.gc.CanUseEnums(c, nil) {
		return nil
	}
	keys := []model.Property{w.graph.Property(c.EnumKey)}
	for _, uk := range c.UniqueKeys {
		if len(uk) != 1 || uk[0] == c.EnumKey {
			continue
		}
		if p := w.graph.Property(uk[0]); p != nil && w.gc.CanUseEnums(c, p) {
			keys = append(keys, p)
		}
	}
	return keys
}

// enum renders the type of the values of key, its constants, and the
// Values and IsValid helpers.
func (w *writer) enum(f *jen.File, c *model.Class, key model.Property) {
	var (
		name   = c.NamePascal() + w.graph.NamePascal(key)
		impl   = w.graph.Domain(key).Implementation(domain.TargetGo)
		field  = w.graph.Name(key)
		label  = w.graph.Property(c.DefaultProperty)
		consts []jen.Code
	)
	underlying := jen.String()
	if impl != nil && impl.Type != "" {
		underlying = parseType(impl.Type, impl.Imports)
	}

	f.Commentf("%s is the %s of %s.", name, naming.ToFirstLower(firstNonEmpty(w.graph.Label(key), field)), c.NamePascal())
	f.Type().Id(name).Add(underlying)
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range c.Values {
			id := name + naming.ToPascalCase(v.Name, false, false)
			consts = append(consts, jen.Id(id))
			if label != nil {
				if l := v.Values[w.graph.Name(label)]; l != "" {
					g.Comment(id + " is " + l + ".")
				}
			}
			g.Id(id).Id(name).Op("=").Add(literal(impl, v.Values[field]))
		}
	})

	f.Commentf("%sValues returns every %s.", name, name)
	f.Func().Id(name + "Values").Params().Index().Id(name).Block(
		jen.Return(jen.Index().Id(name).Values(consts...)),
	)

	f.Commentf("IsValid reports whether v is a known %s.", name)
	f.Func().Params(jen.Id("v").Id(name)).Id("IsValid").Params().Bool().Block(
		jen.Switch(jen.Id("v")).Block(
			jen.Case(consts...).Block(jen.Return(jen.True())),
		),
		jen.Return(jen.False()),
	)
}

// literal renders value as a constant of the implementation type.
func literal(impl *domain.Implementation, value string) jen.Code {
	if impl == nil || impl.Type == "" || impl.Type == "string" {
		return jen.Lit(value)
	}
	return jen.Id(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
