package gen

import (
	"fmt"
	"strings"
)

// Text accumulates the lines of a generated text file. Go files are built
// with jennifer; the other targets use Text.
type Text struct {
	b      strings.Builder
	indent string
}

// NewText returns an empty file indented by indent per level.
func NewText(indent string) *Text {
	return &Text{indent: indent}
}

// Line writes s as one line at the given indentation level. An empty s
// writes an empty line.
func (t *Text) Line(level int, s string) {
	if s != "" {
		t.b.WriteString(strings.Repeat(t.indent, level))
		t.b.WriteString(s)
	}
	t.b.WriteByte('\n')
}

// Linef is like Line with a format.
func (t *Text) Linef(level int, format string, args ...any) {
	t.Line(level, fmt.Sprintf(format, args...))
}

// Blank writes an empty line, unless the file is empty or already ends
// with one.
func (t *Text) Blank() {
	s := t.b.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	t.b.WriteByte('\n')
}

// Comment writes a line comment per line of text, using prefix ("//", "--", "#").
func (t *Text) Comment(level int, prefix, text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		t.Line(level, strings.TrimRight(prefix+" "+l, " "))
	}
}

// Bytes returns the content of the file.
func (t *Text) Bytes() []byte {
	return []byte(t.b.String())
}

// String returns the content of the file.
func (t *Text) String() string {
	return t.b.String()
}
