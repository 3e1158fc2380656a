// Package outline extracts titled items such as functions, headings and
// marks from a buffer and normalizes their nesting depth.
package outline

import (
	"strings"

	"hlkit/internal/grammar"
	"hlkit/internal/textrange"
)

// SeparatorTitle is the title every separator item carries.
const SeparatorTitle = "-"

// Indent is either a raw leading-whitespace string or a depth. Only
// depths take part in normalization.
type Indent struct {
	Raw      string
	level    int
	hasLevel bool
}

func RawIndent(s string) Indent { return Indent{Raw: s} }

func LevelIndent(n int) Indent { return Indent{level: n, hasLevel: true} }

func (i Indent) Level() (int, bool) { return i.level, i.hasLevel }

// Prefix renders the indent for display with width spaces per level.
func (i Indent) Prefix(width int) string {
	if i.hasLevel {
		return strings.Repeat(" ", i.level*width)
	}
	return i.Raw
}

type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
}

type Item struct {
	Title  string
	Range  textrange.Range
	Kind   grammar.OutlineKind
	Indent Indent
	Style  Style
}

func Separator(r textrange.Range, indent Indent) Item {
	return Item{Title: SeparatorTitle, Range: r, Kind: grammar.OutlineSeparator, Indent: indent}
}

func (it Item) IsSeparator() bool { return it.Kind == grammar.OutlineSeparator }
