package typescript

import (
	"strings"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// entry kinds of entity descriptions.
const (
	kindField         = "field"
	kindObject        = "object"
	kindList          = "list"
	kindRecursiveList = "recursive-list"
)

func (w *writer) entryKind(c *model.Class, p model.Property) string {
	cp := w.composition(p)
	switch {
	case cp == nil:
		return kindField
	case cp.Domain == nil:
		return kindObject
	case w.isListComposition(p) && cp.Composition == c.ID:
		return kindRecursiveList
	case w.isListComposition(p):
		return kindList
	}
	return kindField
}

// definition renders the definition file of a class.
func (w *writer) definition(c *model.Class) ([]byte, error) {
	file := w.classFile(c)
	props := w.gc.Properties(c)
	t := gen.NewText("    ")
	w.header(t)

	var imports []gen.Import
	if w.Mode == Typed {
		imports = append(imports, gen.Import{Name: "EntityToType", Path: w.EntityTypesPath})
		for _, p := range props {
			name := "FieldEntry2"
			switch w.entryKind(c, p) {
			case kindObject:
				name = "ObjectEntry"
			case kindList:
				name = "ListEntry"
			case kindRecursiveList:
				name = "RecursiveListEntry"
			}
			imports = append(imports, gen.Import{Name: name, Path: w.EntityTypesPath})
		}
	}
	if w.Mode != Plain {
		for _, p := range props {
			if name := w.domainName(p); name != "" {
				imports = append(imports, gen.Import{Name: name, Path: importPath(file, w.DomainPath)})
			}
		}
	}
	imports = append(imports, w.classImports(file, c)...)
	writeImports(t, imports)

	name := c.NamePascal()
	parent := w.graph.Class(c.Extends)
	switch w.Mode {
	case Typed:
		t.Linef(0, "export type %s = EntityToType<%sEntityType>;", name, name)
		if parent != nil {
			t.Linef(0, "export interface %sEntityType extends %sEntityType {", name, parent.NamePascal())
		} else {
			t.Linef(0, "export interface %sEntityType {", name)
		}
	default:
		if parent != nil {
			t.Linef(0, "export interface %s extends %s {", name, parent.NamePascal())
		} else {
			t.Linef(0, "export interface %s {", name)
		}
	}
	for _, p := range props {
		if w.Mode != Typed {
			t.Linef(1, "%s?: %s;", w.graph.NameCamel(p), w.tsType(p))
			continue
		}
		var entry string
		switch w.entryKind(c, p) {
		case kindObject:
			entry = "ObjectEntry<" + w.composed(p).NamePascal() + "EntityType>"
		case kindRecursiveList:
			entry = "RecursiveListEntry"
		case kindList:
			entry = "ListEntry<" + w.composed(p).NamePascal() + "EntityType>"
		default:
			entry = "FieldEntry2<typeof " + w.domainName(p) + ", " + w.tsType(p) + ">"
		}
		t.Linef(1, "%s: %s;", w.graph.NameCamel(p), entry)
	}
	t.Line(0, "}")

	if w.Mode != Plain {
		t.Blank()
		if err := w.entity(t, c, props); err != nil {
			return nil, err
		}
	}
	return t.Bytes(), nil
}

func (w *writer) composed(p model.Property) *model.Class {
	if cp := w.composition(p); cp != nil {
		return w.graph.Class(cp.Composition)
	}
	return nil
}

// entity renders the entity description constant of c.
func (w *writer) entity(t *gen.Text, c *model.Class, props []model.Property) error {
	name := c.NamePascal()
	if w.Mode == Typed {
		t.Linef(0, "export const %sEntity: %sEntityType = {", name, name)
	} else {
		t.Linef(0, "export const %sEntity = {", name)
	}
	if parent := w.graph.Class(c.Extends); parent != nil {
		t.Linef(1, "...%sEntity,", parent.NamePascal())
	}
	for i, p := range props {
		kind := w.entryKind(c, p)
		t.Linef(1, "%s: {", w.graph.NameCamel(p))
		t.Linef(2, "type: %q,", kind)
		switch kind {
		case kindField:
			t.Linef(2, "name: %q,", w.graph.NameCamel(p))
			t.Linef(2, "domain: %s,", w.domainName(p))
			if v, err := w.graph.DefaultValue(p); err == nil && v != "" {
				t.Linef(2, "defaultValue: %s,", w.literal(p, v))
			}
			if err := w.fieldInfo(t, p); err != nil {
				return err
			}
		case kindObject, kindList:
			t.Linef(2, "entity: %sEntity", w.composed(p).NamePascal())
		}
		if i < len(props)-1 {
			t.Line(1, "},")
		} else {
			t.Line(1, "}")
		}
	}
	if w.Mode == Typed {
		t.Line(0, "};")
	} else {
		t.Line(0, "} as const;")
	}
	return nil
}

func (w *writer) fieldInfo(t *gen.Text, p model.Property) error {
	t.Linef(2, "isRequired: %t,", w.required(p))
	label := w.graph.Label(p)
	if w.TranslateProperties {
		key, err := w.graph.ResourceKey(p)
		if err != nil {
			return err
		}
		label = key
	}
	if !w.Comments {
		t.Linef(2, "label: %q", label)
		return nil
	}
	t.Linef(2, "label: %q,", label)
	comment := w.graph.Comment(p)
	if w.TranslateProperties {
		key, err := w.graph.CommentResourceKey(p)
		if err != nil {
			return err
		}
		comment = key
	}
	t.Linef(2, "comment: %q", comment)
	return nil
}

// literal renders a value of p as a TypeScript literal.
func (w *writer) literal(p model.Property, v string) string {
	if w.isStringType(p) {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

// classImports returns the imports of the classes c depends on.
func (w *writer) classImports(file string, c *model.Class) []gen.Import {
	var imports []gen.Import
	for _, dep := range w.graph.ClassDependencies(c, w.gc.Available()) {
		target := w.graph.Class(dep.Target)
		switch {
		case dep.Source == nil:
			imports = append(imports, w.objectImports(file, target, true)...)
		case w.composition(dep.Source) != nil:
			whole := w.isListComposition(dep.Source) || w.composition(dep.Source).Domain == nil
			imports = append(imports, w.objectImports(file, target, whole)...)
		default:
			if name, ec := w.enumType(dep.Source); ec != nil {
				imports = append(imports, gen.Import{Name: name, Path: importPath(file, w.referencesFile(ec.Namespace))})
			}
		}
	}
	return imports
}

// objectImports imports the type of target, and its entity description
// when entity is set and the mode renders them.
func (w *writer) objectImports(file string, target *model.Class, entity bool) []gen.Import {
	p := importPath(file, w.classFile(target))
	name := target.NamePascal()
	switch {
	case !entity || w.Mode == Plain || w.isReference(target):
		return []gen.Import{{Name: name, Path: p}}
	case w.Mode == Typed:
		return []gen.Import{{Name: name + "Entity", Path: p}, {Name: name + "EntityType", Path: p}}
	}
	return []gen.Import{{Name: name + "Entity", Path: p}, {Name: name, Path: p}}
}
