package load

import (
	"cmp"

	"github.com/syssam/modelgen/compiler/model"
)

// buildMappers resolves the mappers of every class. It runs once all
// classes are built, since mappings pair inherited properties too.
func (b *builder) buildMappers() {
	for _, c := range b.g.Classes() {
		cd, ok := b.classes[c.Name]
		if !ok || cd.decl.Mappers == nil {
			continue
		}
		f, decl := cd.file, cd.decl
		for _, fd := range decl.Mappers.From {
			m := &model.FromMapper{Comment: fd.Comment}
			c.FromMappers = append(c.FromMappers, m)
			n := len(c.FromMappers)
			names := make(map[string]bool)
			for _, pd := range fd.Params {
				var name string
				switch {
				case pd.Property != nil && pd.Class != "":
					b.fail(f, pd.Property.Line, decl.Name, pd.Class, "mapper parameter is both a class and a property")
					continue
				case pd.Property != nil:
					if name = b.propertyParam(cd, n, pd); name == "" {
						continue
					}
				default:
					cm, ok := b.classMappings(cd, &pd.ClassMappings, false)
					if !ok {
						continue
					}
					m.Params = append(m.Params, cm)
					name = cm.Name
				}
				if names[name] {
					b.fail(f, decl.Line, decl.Name, name, "duplicate mapper parameter %q", name)
				}
				names[name] = true
			}
		}
		names := make(map[string]bool)
		for _, td := range decl.Mappers.To {
			cm, ok := b.classMappings(cd, td, true)
			if !ok {
				continue
			}
			if names[cm.Name] {
				b.fail(f, decl.Line, decl.Name, "", "duplicate to mapper %q", cm.Name)
				continue
			}
			names[cm.Name] = true
			c.ToMappers = append(c.ToMappers, cm)
		}
	}
}

// classMappings resolves a class parameter of a from mapper, or a to
// mapper. Parameters are named after their class and to mappers after
// "to" and their class, unless named.
func (b *builder) classMappings(cd *classDecl, decl *ClassMappings, to bool) (*model.ClassMappings, bool) {
	other, ok := b.classes[decl.Class]
	if !ok {
		b.fail(cd.file, cd.decl.Line, cd.decl.Name, "", "mapper of unknown class %q", decl.Class)
		return nil, false
	}
	ms, err := b.g.MapProperties(cd.class, other.class, decl.Mappings, decl.Exclude)
	if err != nil {
		b.fail(cd.file, cd.decl.Line, cd.decl.Name, "", "%v", err)
		return nil, false
	}
	cm := &model.ClassMappings{
		Name:     decl.Name,
		Class:    other.class.ID,
		Comment:  decl.Comment,
		Required: true,
		Mappings: ms,
	}
	if decl.Required != nil {
		cm.Required = *decl.Required
	}
	if cm.Name == "" {
		cm.Name = other.class.NameCamel()
		if to {
			cm.Name = "to" + other.class.NamePascal()
		}
	}
	return cm, true
}

// propertyParam adds the property parameter pd to the n-th from mapper of
// the class and returns its name, or "" on error.
func (b *builder) propertyParam(cd *classDecl, n int, pd *MapperParam) string {
	f, decl := cd.file, cd.decl
	ps, ok := b.property(f, decl.Name, pd.Property)
	if !ok {
		return ""
	}
	if len(ps) != 1 {
		b.fail(f, pd.Property.Line, decl.Name, pd.Property.Name, "a mapper parameter is a single property")
		return ""
	}
	p := ps[0]
	if _, err := b.g.AddProperty(model.MapperOwner(cd.class.ID, n), p); err != nil {
		b.fail(f, pd.Property.Line, decl.Name, pd.Property.Name, "%v", err)
		return ""
	}
	name := b.g.Name(p)
	target := cmp.Or(pd.Target, name)
	m := cd.class.FromMappers[n-1]
	for _, tp := range b.g.ExtendedProperties(cd.class) {
		if b.g.Name(tp) == target {
			m.Properties[len(m.Properties)-1].Property = tp.Base().ID
			return name
		}
	}
	b.fail(f, pd.Property.Line, decl.Name, name, "mapper parameter sets unknown property %q", target)
	return ""
}
