package gen

import (
	"cmp"
	"path"
	"slices"
	"strings"
)

// Import is a named import of a generated file.
type Import struct {
	Name string
	Path string
}

// ImportGroup lists the names imported from one path.
type ImportGroup struct {
	Path  string
	Names []string
}

// GroupAndSort groups imports by path. Paths and names are deduplicated and
// sorted ordinally so that emitted files are stable across runs.
func GroupAndSort(imports []Import) []ImportGroup {
	var groups []ImportGroup
	for _, imp := range imports {
		i := slices.IndexFunc(groups, func(g ImportGroup) bool { return g.Path == imp.Path })
		if i < 0 {
			groups = append(groups, ImportGroup{Path: imp.Path})
			i = len(groups) - 1
		}
		if imp.Name != "" && !slices.Contains(groups[i].Names, imp.Name) {
			groups[i].Names = append(groups[i].Names, imp.Name)
		}
	}
	for i := range groups {
		slices.Sort(groups[i].Names)
	}
	slices.SortFunc(groups, func(a, b ImportGroup) int { return cmp.Compare(a.Path, b.Path) })
	return groups
}

// SortedUnique returns values deduplicated, without empty entries, ordinally sorted.
func SortedUnique(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RelativeImport returns the module specifier of file to as seen from file from.
// Both are slash separated paths relative to the same root. The extension of
// to is dropped.
func RelativeImport(from, to string) string {
	to = strings.TrimSuffix(to, path.Ext(to))
	fromParts := splitDir(path.Dir(from))
	toParts := splitDir(path.Dir(to))
	n := 0
	for n < len(fromParts) && n < len(toParts) && fromParts[n] == toParts[n] {
		n++
	}
	var b strings.Builder
	if n == len(fromParts) {
		b.WriteString("./")
	} else {
		b.WriteString(strings.Repeat("../", len(fromParts)-n))
	}
	for _, p := range toParts[n:] {
		b.WriteString(p)
		b.WriteByte('/')
	}
	b.WriteString(path.Base(to))
	return b.String()
}

func splitDir(dir string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}
