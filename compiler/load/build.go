package load

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// builder turns parsed files into a graph.
type builder struct {
	g          *model.Graph
	classes    map[string]*classDecl
	decorators map[string]model.DecoratorID
	keys       []keyFixup
	errs       []error
}

type classDecl struct {
	file  *File
	decl  *Class
	class *model.Class
}

// keyFixup resolves an explicit association key once every class is built.
type keyFixup struct {
	owner string
	decl  *Property
	prop  *model.AssociationProperty
}

// Build builds the graph of the given files. All declaration errors are
// reported together; the graph is only returned when there are none.
func Build(files ...*File) (*model.Graph, error) {
	reg, err := domain.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		for _, d := range f.Domains {
			if err := reg.Add(d); err != nil {
				return nil, &gen.ModelError{File: f.Path, Message: "domain " + d.Name, Cause: err}
			}
		}
	}

	b := &builder{
		g:          model.NewGraph(reg),
		classes:    make(map[string]*classDecl),
		decorators: make(map[string]model.DecoratorID),
	}
	b.addClasses(files)
	if err := b.err(); err != nil {
		return nil, err
	}
	if err := b.g.CheckInheritance(); err != nil {
		return nil, &gen.ModelError{Message: "invalid inheritance", Cause: err}
	}
	b.addDecorators(files)
	if err := b.err(); err != nil {
		return nil, err
	}
	b.buildClasses()
	b.buildMappers()
	b.resolveKeys()
	b.addEndpoints(files)
	if err := b.err(); err != nil {
		return nil, err
	}
	return b.g, nil
}

func (b *builder) err() error {
	return errors.Join(b.errs...)
}

func (b *builder) fail(f *File, line int, class, property, format string, args ...any) {
	file := f.Path
	if line > 0 {
		file = fmt.Sprintf("%s:%d", f.Path, line)
	}
	b.errs = append(b.errs, &gen.ModelError{File: file, Class: class, Property: property, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) addClasses(files []*File) {
	for _, f := range files {
		for _, decl := range f.Classes {
			c := &model.Class{
				Name:                   decl.Name,
				Label:                  decl.Label,
				Comment:                decl.Comment,
				Namespace:              model.Namespace{App: f.App, Module: f.Module},
				Trigram:                decl.Trigram,
				SQLName:                decl.SQLName,
				PluralName:             decl.PluralName,
				Abstract:               decl.Abstract,
				Reference:              decl.Reference,
				PreservePropertyCasing: decl.PreservePropertyCasing,
				Tags:                   mergeTags(f.Tags, decl.Tags),
			}
			if _, err := b.g.AddClass(c); err != nil {
				b.fail(f, decl.Line, decl.Name, "", "%v", err)
				continue
			}
			b.classes[decl.Name] = &classDecl{file: f, decl: decl, class: c}
		}
	}
	for _, c := range b.g.Classes() {
		cd, ok := b.classes[c.Name]
		if !ok || cd.decl.Extends == "" {
			continue
		}
		parent, ok := b.classes[cd.decl.Extends]
		if !ok {
			b.fail(cd.file, cd.decl.Line, cd.decl.Name, "", "unknown parent class %q", cd.decl.Extends)
			continue
		}
		cd.class.Extends = parent.class.ID
	}
}

func (b *builder) addDecorators(files []*File) {
	for _, f := range files {
		for _, decl := range f.Decorators {
			if _, ok := b.decorators[decl.Name]; ok {
				b.fail(f, decl.Line, "", "", "duplicate decorator %q", decl.Name)
				continue
			}
			id := b.g.AddDecorator(&model.Decorator{
				Name:                   decl.Name,
				Description:            decl.Description,
				Namespace:              model.Namespace{App: f.App, Module: f.Module},
				PreservePropertyCasing: decl.PreservePropertyCasing,
			})
			b.decorators[decl.Name] = id
			for _, pd := range decl.Properties {
				if pd.Alias != nil {
					b.fail(f, pd.Line, decl.Name, pd.Name, "aliases are not supported in decorators")
					continue
				}
				ps, ok := b.property(f, decl.Name, pd)
				if !ok {
					continue
				}
				for _, p := range ps {
					p.Base().Decorator = id
					if _, err := b.g.AddProperty(model.DecoratorOwner(id), p); err != nil {
						b.fail(f, pd.Line, decl.Name, pd.Name, "%v", err)
					}
				}
			}
		}
	}
}

// buildClasses adds class properties, parents and aliased classes first.
func (b *builder) buildClasses() {
	order, cycle := b.buildOrder()
	if len(cycle) > 0 {
		cd := b.classes[cycle[0]]
		b.fail(cd.file, cd.decl.Line, cd.decl.Name, "", "alias cycle between %s", strings.Join(cycle, ", "))
		return
	}
	for _, cd := range order {
		b.buildClass(cd)
	}
}

// buildOrder sorts classes so that parent classes and aliased classes come
// first, keeping the declaration order otherwise. Inheritance cycles are
// left to the resolver; classes left in an alias cycle are returned by name.
func (b *builder) buildOrder() ([]*classDecl, []string) {
	var decls []*classDecl
	for _, c := range b.g.Classes() {
		if cd, ok := b.classes[c.Name]; ok {
			decls = append(decls, cd)
		}
	}
	aliases := make(map[string][]string, len(decls))
	for _, cd := range decls {
		for _, pd := range cd.decl.Properties {
			if pd.Alias != nil && pd.Alias.Class != cd.decl.Name && !slices.Contains(aliases[cd.decl.Name], pd.Alias.Class) {
				if _, ok := b.classes[pd.Alias.Class]; ok {
					aliases[cd.decl.Name] = append(aliases[cd.decl.Name], pd.Alias.Class)
				}
			}
		}
	}
	var (
		order []*classDecl
		added = make(map[string]bool, len(decls))
	)
	ready := func(cd *classDecl, withParent bool) bool {
		if p := cd.decl.Extends; withParent && p != "" && p != cd.decl.Name && b.classes[p] != nil && !added[p] {
			return false
		}
		for _, d := range aliases[cd.decl.Name] {
			if !added[d] {
				return false
			}
		}
		return true
	}
	pass := func(withParent bool) bool {
		progress := false
		for _, cd := range decls {
			if !added[cd.decl.Name] && ready(cd, withParent) {
				order = append(order, cd)
				added[cd.decl.Name] = true
				progress = true
			}
		}
		return progress
	}
	for len(order) < len(decls) {
		if pass(true) || pass(false) {
			continue
		}
		var cycle []string
		for _, cd := range decls {
			if !added[cd.decl.Name] {
				cycle = append(cycle, cd.decl.Name)
			}
		}
		return order, cycle
	}
	return order, nil
}

func (b *builder) buildClass(cd *classDecl) {
	f, decl, c := cd.file, cd.decl, cd.class
	owner := model.ClassOwner(c.ID)
	for _, pd := range decl.Properties {
		ps, ok := b.property(f, decl.Name, pd)
		if !ok {
			continue
		}
		for _, p := range ps {
			if _, err := b.g.AddProperty(owner, p); err != nil {
				b.fail(f, pd.Line, decl.Name, pd.Name, "%v", err)
			}
		}
	}
	for _, name := range decl.Decorators {
		id, ok := b.decorators[name]
		if !ok {
			b.fail(f, decl.Line, decl.Name, "", "unknown decorator %q", name)
			continue
		}
		c.Decorators = append(c.Decorators, id)
		for _, p := range b.g.Properties(b.g.Decorator(id).Properties) {
			if _, err := b.g.AddProperty(owner, b.g.CloneWithClassOrEndpoint(p, c.ID, 0)); err != nil {
				b.fail(f, decl.Line, decl.Name, b.g.Name(p), "%v", err)
			}
		}
	}

	lookup := func(field, name string) model.PropertyID {
		if name == "" {
			return 0
		}
		for _, p := range b.g.ExtendedProperties(c) {
			if b.g.Name(p) == name {
				return p.Base().ID
			}
		}
		b.fail(f, decl.Line, decl.Name, name, "unknown %s property", field)
		return 0
	}
	c.EnumKey = lookup("enum key", decl.EnumKey)
	c.DefaultProperty = lookup("default", decl.DefaultProperty)
	c.OrderProperty = lookup("order", decl.OrderProperty)
	c.FlagProperty = lookup("flag", decl.FlagProperty)
	for _, uk := range decl.Unique {
		var ids []model.PropertyID
		for _, name := range uk {
			if id := lookup("unique key", name); id.Valid() {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			c.UniqueKeys = append(c.UniqueKeys, ids)
		}
	}
	for _, p := range b.g.Properties(c.Properties) {
		if rp, ok := p.(*model.RegularProperty); ok && rp.UniqueKey {
			c.UniqueKeys = append(c.UniqueKeys, []model.PropertyID{rp.ID})
		}
	}

	names := make(map[string]bool)
	for _, p := range b.g.ExtendedProperties(c) {
		names[b.g.Name(p)] = true
	}
	for _, v := range decl.Values {
		cv := model.ClassValue{Name: v.Name, Values: v.Fields}
		for key := range v.Fields {
			if !names[key] {
				b.fail(f, decl.Line, decl.Name, key, "value %q sets an unknown property", v.Name)
			}
		}
		c.Values = append(c.Values, cv)
	}

	if decl.Persistent != nil {
		c.IsPersistent = *decl.Persistent
	} else {
		c.IsPersistent = len(b.g.PrimaryKey(c)) > 0
	}
}

// property converts a declaration into one property, or several for an
// alias of many properties.
func (b *builder) property(f *File, owner string, pd *Property) ([]model.Property, bool) {
	kind, err := pd.Kind()
	if err != nil {
		b.fail(f, pd.Line, owner, pd.Name, "%v", err)
		return nil, false
	}
	base := model.PropertyBase{
		Name:             pd.Name,
		Label:            pd.Label,
		Comment:          pd.Comment,
		Readonly:         pd.Readonly,
		PrimaryKey:       pd.PrimaryKey,
		DomainParameters: pd.DomainParameters,
		DefaultValue:     pd.DefaultValue,
		Trigram:          pd.Trigram,
		CustomProperties: pd.CustomProperties,
	}
	if pd.Required != nil {
		base.Required = *pd.Required
	} else {
		base.Required = pd.PrimaryKey
	}
	if pd.Domain != "" {
		d, err := b.g.Domains.Resolve(pd.Domain)
		if err != nil {
			b.fail(f, pd.Line, owner, pd.Name, "%v", err)
			return nil, false
		}
		base.Domain = d
	}

	switch kind {
	case "regular":
		return []model.Property{&model.RegularProperty{PropertyBase: base, UniqueKey: pd.Unique}}, true

	case "association":
		target, ok := b.classes[pd.Association]
		if !ok {
			b.errs = append(b.errs, gen.NewAssociationError(owner, pd.Association, pd.Name, "unknown class", nil))
			return nil, false
		}
		t, ok := model.ParseAssociationType(pd.Type)
		if !ok {
			b.errs = append(b.errs, gen.NewAssociationError(owner, pd.Association, pd.Name, fmt.Sprintf("unknown association type %q", pd.Type), nil))
			return nil, false
		}
		ap := &model.AssociationProperty{PropertyBase: base, Association: target.class.ID, Type: t, Role: pd.Role}
		if pd.Key != "" {
			b.keys = append(b.keys, keyFixup{owner: owner, decl: pd, prop: ap})
		}
		return []model.Property{ap}, true

	case "composition":
		target, ok := b.classes[pd.Composition]
		if !ok {
			b.errs = append(b.errs, gen.NewAssociationError(owner, pd.Composition, pd.Name, "unknown composed class", nil))
			return nil, false
		}
		if base.Name == "" {
			base.Name = target.decl.Name
		}
		return []model.Property{&model.CompositionProperty{PropertyBase: base, Composition: target.class.ID}}, true
	}

	return b.alias(f, owner, pd, base)
}

func (b *builder) alias(f *File, owner string, pd *Property, base model.PropertyBase) ([]model.Property, bool) {
	target, ok := b.classes[pd.Alias.Class]
	if !ok {
		b.fail(f, pd.Line, owner, pd.Name, "alias of unknown class %q", pd.Alias.Class)
		return nil, false
	}
	var props []model.Property
	for _, p := range b.g.ExtendedProperties(target.class) {
		name := b.g.Name(p)
		switch {
		case pd.Alias.Property != "" && name != pd.Alias.Property:
		case len(pd.Alias.Include) > 0 && !slices.Contains(pd.Alias.Include, name):
		case slices.Contains(pd.Alias.Exclude, name):
		default:
			props = append(props, p)
		}
	}
	if len(props) == 0 {
		b.fail(f, pd.Line, owner, pd.Name, "alias of %s selects no property", pd.Alias.Class)
		return nil, false
	}
	if len(props) > 1 && (pd.Name != "" || pd.Label != "" || pd.Comment != "") {
		b.fail(f, pd.Line, owner, pd.Name, "name, label and comment overrides need a single aliased property")
		return nil, false
	}

	out := make([]model.Property, 0, len(props))
	for _, p := range props {
		alp := &model.AliasProperty{
			PropertyBase:      base,
			Property:          p.Base().ID,
			Prefix:            pd.Prefix,
			Suffix:            pd.Suffix,
			AsList:            pd.As == domain.AsList,
			AliasedPrimaryKey: pd.PrimaryKey,
		}
		if pd.Required != nil {
			req := *pd.Required
			alp.RequiredOverride = &req
		}
		out = append(out, alp)
	}
	return out, true
}

func (b *builder) resolveKeys() {
	for _, k := range b.keys {
		target := b.g.Class(k.prop.Association)
		found := false
		for _, p := range b.g.ExtendedProperties(target) {
			if b.g.Name(p) == k.decl.Key {
				k.prop.Property = p.Base().ID
				found = true
				break
			}
		}
		if !found {
			b.errs = append(b.errs, gen.NewAssociationError(k.owner, target.Name, k.decl.Name,
				fmt.Sprintf("unknown key property %q", k.decl.Key), nil))
		}
	}
}

func (b *builder) addEndpoints(files []*File) {
	for _, f := range files {
		for _, decl := range f.Endpoints {
			e := &model.Endpoint{
				Name:                   decl.Name,
				Method:                 strings.ToUpper(decl.Method),
				Route:                  decl.Route,
				Description:            decl.Description,
				Namespace:              model.Namespace{App: f.App, Module: f.Module},
				FileName:               f.Name(),
				PreservePropertyCasing: decl.PreservePropertyCasing,
				Tags:                   mergeTags(f.Tags, decl.Tags),
			}
			if e.Method == "" {
				e.Method = "GET"
			}
			id := b.g.AddEndpoint(e)
			for _, pd := range decl.Params {
				ps, ok := b.property(f, decl.Name, pd)
				if !ok {
					continue
				}
				for _, p := range ps {
					if _, err := b.g.AddProperty(model.EndpointOwner(id), p); err != nil {
						b.fail(f, pd.Line, decl.Name, pd.Name, "%v", err)
					}
				}
			}
			for _, name := range decl.Decorators {
				did, ok := b.decorators[name]
				if !ok {
					b.fail(f, decl.Line, decl.Name, "", "unknown decorator %q", name)
					continue
				}
				e.Decorators = append(e.Decorators, did)
				for _, p := range b.g.Properties(b.g.Decorator(did).Properties) {
					if _, err := b.g.AddProperty(model.EndpointOwner(id), b.g.CloneWithClassOrEndpoint(p, 0, id)); err != nil {
						b.fail(f, decl.Line, decl.Name, b.g.Name(p), "%v", err)
					}
				}
			}
			if decl.Returns != nil {
				ps, ok := b.property(f, decl.Name, decl.Returns)
				if !ok {
					continue
				}
				if len(ps) != 1 {
					b.fail(f, decl.Returns.Line, decl.Name, decl.Returns.Name, "an endpoint returns a single property")
					continue
				}
				if _, err := b.g.SetReturns(id, ps[0]); err != nil {
					b.fail(f, decl.Returns.Line, decl.Name, decl.Returns.Name, "%v", err)
				}
			}
		}
	}
}

func mergeTags(fileTags, tags []string) []string {
	out := slices.Clone(fileTags)
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
