// Package i18n generates translation bundles of the labels, comments and
// reference values of the model, one bundle per root module and language.
package i18n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/model"
)

// Format selects the bundle syntax.
type Format int

const (
	// JSON renders plain JSON documents.
	JSON Format = iota
	// TS renders TypeScript modules exporting the bundle, plus an index.
	TS
)

// Catalog holds the translations of resource keys per language.
type Catalog map[string]map[string]string

// Options configures the generator.
type Options struct {
	// Tags restricts the classes and endpoints in scope.
	Tags []string
	// Root is the directory of bundles.
	Root string
	// Langs lists the generated languages. The first one is the language
	// of the model labels.
	Langs []string
	Format Format
	// TranslateReferences adds the labels of reference values.
	TranslateReferences bool
	// Translations are looked up for languages other than the first one.
	// Missing entries fall back to the model labels.
	Translations Catalog
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "i18n"
	}
	if len(o.Langs) == 0 {
		o.Langs = []string{"en"}
	}
}

// Generator renders translation bundles.
type Generator struct {
	opts Options
}

// New returns an i18n generator.
func New(opts Options) *Generator {
	opts.defaults()
	return &Generator{opts: opts}
}

// Name implements gen.Generator.
func (*Generator) Name() string { return "i18n" }

// Tags implements gen.TagFilter.
func (g *Generator) Tags() []string { return g.opts.Tags }

// Tasks implements gen.Generator.
func (g *Generator) Tasks(gc *gen.Context) ([]gen.Task, error) {
	langs, err := canonical(g.opts.Langs)
	if err != nil {
		return nil, err
	}
	catalog := make(Catalog, len(g.opts.Translations))
	for lang, entries := range g.opts.Translations {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, gen.NewConfigError("i18n.translations", lang, err.Error())
		}
		catalog[tag.String()] = entries
	}

	entries, err := collect(gc, g.opts.TranslateReferences)
	if err != nil {
		return nil, err
	}
	modules := rootModules(entries)
	comments, err := gc.Config.FeatureEnabled(gen.FeatureCommentResources.Name)
	if err != nil {
		return nil, err
	}
	w := &writer{Options: g.opts, gc: gc}

	var tasks []gen.Task
	for i, lang := range langs {
		translate := func(e entry) string {
			if i == 0 {
				return e.label
			}
			if s, ok := catalog[lang][e.key]; ok {
				return s
			}
			return e.label
		}
		var names []string
		for _, m := range modules {
			tasks = append(tasks, w.bundle(lang, m, m, entries, false, translate))
			names = append(names, m)
			if comments && i == 0 {
				tasks = append(tasks, w.bundle(lang, m, m+"Comments", entries, true, nil))
			}
		}
		if g.opts.Format == TS && len(names) > 0 {
			tasks = append(tasks, w.index(lang, names, comments && i == 0))
		}
	}
	return tasks, nil
}

// canonical validates language tags and returns their canonical form.
func canonical(langs []string) ([]string, error) {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, gen.NewConfigError("i18n.langs", l, err.Error())
		}
		if s := tag.String(); !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// entry is one translatable text: a label, a comment or a reference value.
type entry struct {
	key     string
	label   string
	comment bool
}

// collect returns the entries of the classes and endpoints in scope, one
// per resource key.
func collect(gc *gen.Context, references bool) ([]entry, error) {
	var (
		g       = gc.Graph
		entries []entry
		seen    = make(map[string]bool)
	)
	add := func(e entry) {
		id := e.key
		if e.comment {
			id = "#" + id
		}
		if !seen[id] {
			seen[id] = true
			entries = append(entries, e)
		}
	}
	visit := func(p model.Property) error {
		if !translatable(g, p) {
			return nil
		}
		key, err := g.ResourceKey(p)
		if err != nil {
			return err
		}
		add(entry{key: key, label: firstNonEmpty(g.Label(p), g.Name(p))})
		key, err = g.CommentResourceKey(p)
		if err != nil {
			return err
		}
		comment := strings.ReplaceAll(strings.TrimSpace(g.Comment(p)), "\n", " ")
		add(entry{key: strings.TrimPrefix(key, "comments."), label: firstNonEmpty(comment, g.Name(p)), comment: true})
		return nil
	}

	for _, c := range gc.Classes {
		for _, p := range g.Properties(c.Properties) {
			if err := visit(p); err != nil {
				return nil, err
			}
		}
		if !references || !c.Reference || len(c.Values) == 0 {
			continue
		}
		label := g.Property(c.DefaultProperty)
		if label == nil {
			continue
		}
		prefix := c.Namespace.ModuleCamel() + "." + c.NameCamel() + ".values."
		for _, v := range c.Values {
			if s, ok := v.Values[g.Name(label)]; ok {
				add(entry{key: prefix + v.Name, label: s})
			}
		}
	}
	for _, e := range gc.Endpoints {
		ids := e.Params
		if e.Returns.Valid() {
			ids = append(slices.Clone(ids), e.Returns)
		}
		for _, p := range g.Properties(ids) {
			if err := visit(p); err != nil {
				return nil, err
			}
		}
	}
	return entries, nil
}

// translatable reports whether p carries a label of its own: compositions
// are labelled by their class and reverse associations are synthesized.
func translatable(g *model.Graph, p model.Property) bool {
	switch p := p.(type) {
	case *model.CompositionProperty, *model.ReverseAssociationProperty:
		return false
	case *model.AliasProperty:
		_, ok := g.PersistentProperty(p).(*model.CompositionProperty)
		return !ok
	}
	return true
}

func rootModules(entries []entry) []string {
	var mods []string
	for _, e := range entries {
		root, _, _ := strings.Cut(e.key, ".")
		if !slices.Contains(mods, root) {
			mods = append(mods, root)
		}
	}
	slices.Sort(mods)
	return mods
}

type writer struct {
	Options
	gc *gen.Context
}

func (w *writer) file(lang, name string) string {
	ext := ".json"
	if w.Format == TS {
		ext = ".ts"
	}
	return path.Join(w.Root, lang, name+ext)
}

// bundle renders the entries of one root module. The root module itself
// is the bundle and does not appear as a key.
func (w *writer) bundle(lang, module, name string, entries []entry, comments bool, translate func(entry) string) gen.Task {
	file := w.file(lang, name)
	return gen.Task{
		Path: file,
		Unit: module,
		Render: func() ([]byte, error) {
			tree := make(map[string]any)
			for _, e := range entries {
				root, rest, _ := strings.Cut(e.key, ".")
				if root != module || e.comment != comments {
					continue
				}
				text := e.label
				if translate != nil {
					text = translate(e)
				}
				if err := insert(tree, strings.Split(rest, "."), text); err != nil {
					return nil, fmt.Errorf("%s: %w", e.key, err)
				}
			}
			body, err := marshal(tree)
			if err != nil {
				return nil, err
			}
			if w.Format == JSON {
				return body, nil
			}
			var b bytes.Buffer
			writeHeader(&b, w.gc.Header())
			fmt.Fprintf(&b, "export const %s = %s;\n", name, bytes.TrimSuffix(body, []byte("\n")))
			return b.Bytes(), nil
		},
	}
}

// index renders the TypeScript module gathering the bundles of a language.
func (w *writer) index(lang string, modules []string, comments bool) gen.Task {
	return gen.Task{
		Path: path.Join(w.Root, lang, "index.ts"),
		Unit: lang,
		Render: func() ([]byte, error) {
			var b bytes.Buffer
			writeHeader(&b, w.gc.Header())
			for _, m := range modules {
				fmt.Fprintf(&b, "import {%s} from \"./%s\";\n", m, m)
				if comments {
					fmt.Fprintf(&b, "import {%sComments} from \"./%sComments\";\n", m, m)
				}
			}
			fmt.Fprintf(&b, "\nexport const all = {%s};\n", strings.Join(modules, ", "))
			if comments {
				pairs := make([]string, len(modules))
				for i, m := range modules {
					pairs[i] = m + ": " + m + "Comments"
				}
				fmt.Fprintf(&b, "export const allComments = {%s};\n", strings.Join(pairs, ", "))
			}
			return b.Bytes(), nil
		},
	}
}

func writeHeader(b *bytes.Buffer, header string) {
	for _, l := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
		b.WriteString(strings.TrimRight("// "+l, " "))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

// insert sets the leaf at keys, creating intermediate nodes.
func insert(tree map[string]any, keys []string, text string) error {
	for _, k := range keys[:len(keys)-1] {
		switch node := tree[k].(type) {
		case nil:
			next := make(map[string]any)
			tree[k] = next
			tree = next
		case map[string]any:
			tree = node
		default:
			return fmt.Errorf("key %q is both a text and a group", k)
		}
	}
	leaf := keys[len(keys)-1]
	if _, ok := tree[leaf].(map[string]any); ok {
		return fmt.Errorf("key %q is both a text and a group", leaf)
	}
	tree[leaf] = text
	return nil
}

// marshal renders tree with sorted keys, four spaces indentation and no
// HTML escaping.
func marshal(tree map[string]any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
