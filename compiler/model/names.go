package model

import (
	"strings"

	"github.com/syssam/modelgen/compiler/naming"
)

// Name returns the effective name of p. Aliases without an explicit name
// take the name of the aliased property between their prefix and suffix;
// associations without one are named after the associated class and role.
func (g *Graph) Name(p Property) string {
	b := p.Base()
	if b.Name != "" {
		return b.Name
	}
	switch p := p.(type) {
	case *AliasProperty:
		var (
			prefix, suffix string
			cur            Property = p
			seen                    = make(map[Property]bool)
		)
		for {
			alp, ok := cur.(*AliasProperty)
			if !ok || seen[cur] {
				break
			}
			seen[cur] = true
			prefix += alp.Prefix
			suffix = alp.Suffix + suffix
			if cur = g.Property(alp.Property); cur == nil {
				return ""
			}
			if name := cur.Base().Name; name != "" {
				return prefix + name + suffix
			}
		}
		if _, ok := cur.(*AliasProperty); ok {
			return ""
		}
		return prefix + g.Name(cur) + suffix
	case *AssociationProperty:
		return g.associationName(p)
	case *ReverseAssociationProperty:
		return g.associationName(&p.AssociationProperty)
	}
	return ""
}

func (g *Graph) associationName(ap *AssociationProperty) string {
	c := g.Class(ap.Association)
	if c == nil {
		return naming.ToPascalCase(ap.Role, false, false)
	}
	name := c.Name
	if ap.Type.IsToMany() {
		name = c.NamePlural()
	}
	return name + naming.ToPascalCase(ap.Role, false, false)
}

// NamePascal returns the name of p in PascalCase, unless its container
// preserves property casing.
func (g *Graph) NamePascal(p Property) string {
	if g.Parent(p).PreservePropertyCasing {
		return g.Name(p)
	}
	return naming.ToPascalCase(g.Name(p), false, true)
}

// NameCamel returns the name of p in camelCase, unless its container
// preserves property casing.
func (g *Graph) NameCamel(p Property) string {
	if g.Parent(p).PreservePropertyCasing {
		return g.Name(p)
	}
	return naming.ToCamelCase(g.Name(p), false, true)
}

// NameByClassPascal returns the name of p as seen from the associated
// class for associations, and NamePascal otherwise.
func (g *Graph) NameByClassPascal(p Property) string {
	if ap := asAssociation(p); ap != nil {
		return naming.ToPascalCase(g.associationName(ap), false, true)
	}
	return g.NamePascal(p)
}

// NameByClassCamel is the camelCase form of NameByClassPascal.
func (g *Graph) NameByClassCamel(p Property) string {
	return naming.ToFirstLower(g.NameByClassPascal(p))
}

// ClassSQLName returns the table name of c.
func (g *Graph) ClassSQLName(c *Class) string {
	if c.SQLName != "" {
		return c.SQLName
	}
	return naming.ToConstantCase(c.Name)
}

// SQLName returns the column name of p.
//
// Aliases resolve to their persistent property. Associations take the
// column name of the referenced key, trigram stripped. The primary key of
// a class extending another one drops the class name, so that it maps the
// column of the parent key. The result is prefixed by the trigram of the
// property, else of the referenced key, else of the owning class, and
// suffixed by the association role.
func (g *Graph) SQLName(p Property) string {
	return g.sqlName(p, make(map[Property]bool))
}

func (g *Graph) sqlName(p Property, seen map[Property]bool) string {
	if seen[p] {
		return ""
	}
	seen[p] = true

	prop := p
	if alp, ok := p.(*AliasProperty); ok {
		if pp := g.PersistentProperty(alp); pp != nil {
			prop = pp
		}
	}
	ap := asAssociation(prop)
	if ap == nil {
		if alp, ok := prop.(*AliasProperty); ok {
			ap = asAssociation(g.Property(alp.Property))
		}
	}

	var (
		apPk        Property
		apPkTrigram string
	)
	if ap != nil {
		apPk = g.AssociationKey(ap)
		if apPk != nil {
			apPkTrigram = apPk.Base().Trigram
			if apPkTrigram == "" {
				if c := g.OwnerClass(apPk); c != nil {
					apPkTrigram = c.Trigram
				}
			}
		}
	}

	b := prop.Base()
	owner := g.OwnerClass(prop)
	var name string
	switch {
	case ap != nil:
		if apPk != nil {
			name = g.sqlName(apPk, seen)
			if apPkTrigram != "" {
				name = strings.ReplaceAll(name, apPkTrigram+"_", "")
			}
		}
	case owner != nil && owner.Extends.Valid() && b.PrimaryKey:
		name = naming.ToConstantCase(strings.ReplaceAll(g.Name(prop), owner.Name, ""))
	default:
		name = naming.ToConstantCase(g.Name(prop))
	}

	prefix := b.Trigram
	if prefix == "" {
		if apPk != nil {
			prefix = apPkTrigram
		} else if owner != nil {
			prefix = owner.Trigram
		}
	}
	if strings.TrimSpace(prefix) != "" {
		prefix += "_"
	} else {
		prefix = ""
	}

	var suffix string
	if ap != nil && ap.Role != "" {
		if g.legacyRoleNames {
			suffix = "_" + strings.ToUpper(strings.ReplaceAll(ap.Role, " ", "_"))
		} else {
			suffix = "_" + naming.ToConstantCase(ap.Role)
		}
	}
	return prefix + name + suffix
}
