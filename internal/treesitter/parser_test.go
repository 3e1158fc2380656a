package treesitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/outline"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
)

func language(t *testing.T, name string) *Language {
	t.Helper()
	l, ok := DefaultRegistry().Get(name)
	require.True(t, ok, name)
	return l
}

// byText maps each highlighted substring to its category.
func byText(text []rune, hs []highlight.Highlight) map[string]grammar.Category {
	out := map[string]grammar.Category{}
	for _, h := range hs {
		out[string(text[h.Range.Start:h.Range.End])] = h.Cat
	}
	return out
}

func TestParseGo(t *testing.T) {
	text := []rune("package main\n\n// héllo\nfunc run() int {\n\ts := \"ß\"\n\treturn 42\n}\n")
	p := NewParser(language(t, "go"))

	hs, err := p.Parse(context.Background(), text, textrange.Range{End: len(text)})
	require.NoError(t, err)
	got := byText(text, hs)

	require.Equal(t, grammar.Keywords, got["package"])
	require.Equal(t, grammar.Comments, got["// héllo"])
	require.Equal(t, grammar.Keywords, got["func"])
	require.Equal(t, grammar.Commands, got["run"])
	require.Equal(t, grammar.Strings, got[`"ß"`])
	require.Equal(t, grammar.Numbers, got["42"])

	for i := 1; i < len(hs); i++ {
		require.LessOrEqual(t, hs[i-1].Range.End, hs[i].Range.Start)
	}
}

func TestParseClipsToRange(t *testing.T) {
	text := []rune("// one\n// two\n")
	p := NewParser(language(t, "Go"))

	hs, err := p.Parse(context.Background(), text, textrange.Range{Start: 3, End: 10})
	require.NoError(t, err)
	require.Equal(t, []highlight.Highlight{
		{Cat: grammar.Comments, Range: textrange.Range{Start: 3, End: 6}},
		{Cat: grammar.Comments, Range: textrange.Range{Start: 7, End: 10}},
	}, hs)

	none, err := p.Parse(context.Background(), text, textrange.Range{Start: 5, End: 5})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestParseJSONKeys(t *testing.T) {
	text := []rune(`{"a": 1, "b": [true, null, "x"]}`)
	p := NewParser(language(t, "json"))

	hs, err := p.Parse(context.Background(), text, textrange.Range{End: len(text)})
	require.NoError(t, err)
	got := byText(text, hs)

	require.Equal(t, grammar.Attributes, got[`"a"`])
	require.Equal(t, grammar.Attributes, got[`"b"`])
	require.Equal(t, grammar.Numbers, got["1"])
	require.Equal(t, grammar.Values, got["true"])
	require.Equal(t, grammar.Values, got["null"])
	require.Equal(t, grammar.Strings, got[`"x"`])
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewParser(language(t, "go"))
	_, err := p.Parse(ctx, []rune("package main\n"), textrange.Range{End: 13})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOutlineLevels(t *testing.T) {
	text := []rune(`{"server": {"host": "h", "port": 1}, "debug": false}`)
	p := NewParser(language(t, "json"))

	items, err := p.Outline(context.Background(), text)
	require.NoError(t, err)

	var titles []string
	var levels []int
	for _, it := range items {
		titles = append(titles, it.Title)
		lvl, ok := it.Indent.Level()
		require.True(t, ok)
		levels = append(levels, lvl)
		require.Equal(t, grammar.OutlineValue, it.Kind)
	}
	require.Equal(t, []string{"server", "host", "port", "debug"}, titles)
	require.Equal(t, []int{0, 1, 1, 0}, levels)
	require.Equal(t, textrange.Range{Start: 1, End: 9}, items[0].Range)

	normalized := outline.Normalize(items, outline.DefaultPolicy)
	require.Len(t, normalized, 4)
}

func TestOutlineGo(t *testing.T) {
	text := []rune("package p\n\ntype T struct{}\n\nfunc (T) M() {}\n\nfunc F() {}\n")
	p := NewParser(language(t, "go"))

	items, err := p.Outline(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "T", items[0].Title)
	require.Equal(t, grammar.OutlineContainer, items[0].Kind)
	require.Equal(t, "M", items[1].Title)
	require.Equal(t, "F", items[2].Title)
	require.Equal(t, grammar.OutlineFunction, items[2].Kind)
}

func TestCompiler(t *testing.T) {
	reg := DefaultRegistry()
	fallback := func(g grammar.Grammar) syntaxctl.Syntax {
		return syntaxctl.Syntax{Name: g.Name, Parser: highlight.Empty{}}
	}
	compile := Compiler(reg, fallback)

	s := compile(grammar.Grammar{Name: "Go"})
	require.IsType(t, &Parser{}, s.Parser)
	require.NotNil(t, s.Outliner)

	plain := compile(grammar.Grammar{Name: "Markdown"})
	require.Equal(t, highlight.Empty{}, plain.Parser)
	require.Nil(t, plain.Outliner)
}

func TestRegistryGrammars(t *testing.T) {
	reg := DefaultRegistry()
	names := map[string]bool{}
	for _, g := range reg.Grammars() {
		names[g.Name] = true
		require.NotEmpty(t, g.FileMap.Extensions, g.Name)
	}
	require.True(t, names["Zig"])
	require.True(t, names["JSON"])

	_, ok := reg.Get("zig")
	require.True(t, ok)
}
