package nestable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hlkit/internal/grammar"
	"hlkit/internal/textrange"
)

func resolve(t *testing.T, tokens map[Token]grammar.Category, source string, rule EscapeRule) map[grammar.Category][]string {
	t.Helper()
	text := []rune(source)
	got, err := Resolve(context.Background(), tokens, text, textrange.Range{Start: 0, End: len(text)}, rule)
	require.NoError(t, err)

	out := map[grammar.Category][]string{}
	for cat, ranges := range got {
		for _, r := range ranges {
			out[cat] = append(out[cat], string(text[r.Start:r.End]))
		}
	}
	return out
}

func TestFromHighlight(t *testing.T) {
	tok, ok := FromHighlight(grammar.Highlight{Begin: "/*", End: ptr("*/"), IsMultiline: true})
	require.True(t, ok)
	require.Equal(t, Pair("/*", "*/", true, true), tok)

	_, ok = FromHighlight(grammar.Word("todo"))
	require.False(t, ok)

	_, ok = FromHighlight(grammar.Pair("begin", "end"))
	require.False(t, ok)

	_, ok = FromHighlight(grammar.Highlight{Begin: `"`, End: ptr(`"`), IsRegex: true})
	require.False(t, ok)
}

func TestInlineComments(t *testing.T) {
	tokens := map[Token]grammar.Category{Inline("#", false): grammar.Comments}

	got := resolve(t, tokens, "a # x\nb # y\n", Backslash)
	require.Equal(t, []string{"# x", "# y"}, got[grammar.Comments])

	got = resolve(t, tokens, "it#s # real", Backslash)
	require.Equal(t, []string{"# real"}, got[grammar.Comments])
}

func TestInlineCommentsLeadingOnly(t *testing.T) {
	tokens := map[Token]grammar.Category{Inline("#", true): grammar.Comments}

	got := resolve(t, tokens, "  # one\nnot a comment # mid\n# two\n", Backslash)
	require.Equal(t, []string{"# one", "# two"}, got[grammar.Comments])
}

func TestLeadingOnlyCountsScanStartAsLineStart(t *testing.T) {
	tokens := map[Token]grammar.Category{Inline("//", true): grammar.Comments}
	text := []rune("x // a\n// b")

	got, err := Resolve(context.Background(), tokens, text, textrange.Range{Start: 2, End: len(text)}, Backslash)
	require.NoError(t, err)
	require.Equal(t, []textrange.Range{{Start: 2, End: 6}, {Start: 7, End: 11}}, got[grammar.Comments])
}

func TestOneRuneInlineDelimiters(t *testing.T) {
	tests := []struct {
		name    string
		leading bool
		source  string
		scan    textrange.Range
		want    []string
	}{
		{name: "glued to a word", source: "a#b #c", want: []string{"#c"}},
		{name: "after a tab", source: "a\t#b", want: []string{"#b"}},
		{name: "leading after indent", leading: true, source: "x\n  #a\nb #c\n#d", want: []string{"#a", "#d"}},
		{name: "leading glued is dropped", leading: true, source: "x\n#a\nb#c", want: []string{"#a"}},
		{name: "scan starts on the delimiter", source: "ab#c", scan: textrange.Range{Start: 2, End: 4}, want: []string{"#c"}},
		{name: "leading scan starts on the delimiter", leading: true, source: "ab#c\nd #e", scan: textrange.Range{Start: 2, End: 9}, want: []string{"#c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text := []rune(tc.source)
			scan := tc.scan
			if scan.IsEmpty() {
				scan = textrange.Range{End: len(text)}
			}
			got, err := Resolve(context.Background(), map[Token]grammar.Category{Inline("#", tc.leading): grammar.Comments}, text, scan, Backslash)
			require.NoError(t, err)

			var comments []string
			for _, r := range got[grammar.Comments] {
				comments = append(comments, string(text[r.Start:r.End]))
			}
			require.Equal(t, tc.want, comments)
		})
	}
}

func TestSymmetricPairs(t *testing.T) {
	tokens := map[Token]grammar.Category{Pair("'", "'", false, true): grammar.Strings}

	tests := []struct {
		name   string
		source string
		rule   EscapeRule
		want   []string
	}{
		{name: "plain", source: "a 'x' 'y'", rule: Backslash, want: []string{"'x'", "'y'"}},
		{name: "doubled delimiter", source: "a 'x''y' 'z'", rule: DoubleDelimiter, want: []string{"'x''y'", "'z'"}},
		{name: "several doubled runs", source: "a 'x''''y''z' b", rule: DoubleDelimiter, want: []string{"'x''''y''z'"}},
		{name: "backslash escaped", source: `'a\'b' 'c'`, rule: Backslash, want: []string{`'a\'b'`, "'c'"}},
		{name: "escaped backslash", source: `'a\\' 'c'`, rule: Backslash, want: []string{`'a\\'`, "'c'"}},
		{name: "unterminated on its line", source: "'a\nb'", rule: Backslash, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resolve(t, tokens, tc.source, tc.rule)
			require.Equal(t, tc.want, got[grammar.Strings])
		})
	}
}

func TestPairsDoNotCrossLines(t *testing.T) {
	tokens := map[Token]grammar.Category{
		Pair("/*", "*/", false, true): grammar.Comments,
		Pair("'", "'", false, true):   grammar.Strings,
	}

	got := resolve(t, tokens, "/* a\n'x' 'y\n*/ b\n/* ok */\nz'", Backslash)
	require.Equal(t, []string{"/* ok */"}, got[grammar.Comments])
	require.Equal(t, []string{"'x'"}, got[grammar.Strings])
}

func TestNesting(t *testing.T) {
	nesting := map[Token]grammar.Category{Pair("<-", "->", false, true): grammar.Comments}
	got := resolve(t, nesting, "<-foo<-bar->->", Backslash)
	require.Equal(t, []string{"<-foo<-bar->->"}, got[grammar.Comments])

	flat := map[Token]grammar.Category{Pair("<-", "->", false, false): grammar.Comments}
	got = resolve(t, flat, "<-foo<-bar->->", Backslash)
	require.Equal(t, []string{"<-foo<-bar->"}, got[grammar.Comments])

	block := map[Token]grammar.Category{Pair("/*", "*/", true, true): grammar.Comments}
	got = resolve(t, block, "/* a /* b */ c */ d */", Backslash)
	require.Equal(t, []string{"/* a /* b */ c */"}, got[grammar.Comments])
}

func TestEscapes(t *testing.T) {
	tokens := map[Token]grammar.Category{Inline("//", false): grammar.Comments}
	source := "\\// not a comment\n// real"

	got := resolve(t, tokens, source, Backslash)
	require.Equal(t, []string{"// real"}, got[grammar.Comments])

	got = resolve(t, tokens, source, None)
	require.Len(t, got[grammar.Comments], 2)
}

func TestLongerTokenWins(t *testing.T) {
	tokens := map[Token]grammar.Category{
		Pair(`"`, `"`, false, true):         grammar.Strings,
		Pair(`"""`, `"""`, true, true):      grammar.Comments,
		Inline("#", false):                  grammar.Comments,
		Pair("/*", "*/", true, true):        grammar.Comments,
		Pair("{", "}", true, true):          grammar.Values,
		Pair("[", "]", false, true):         grammar.Attributes,
		Pair("<<", ">>", false, true):       grammar.Types,
		Pair("<<<", ">>>", false, true):     grammar.Variables,
		Pair("<<<<", ">>>>", false, true):   grammar.Characters,
		Pair("<<<<<", ">>>>>", false, true): grammar.Numbers,
	}

	got := resolve(t, tokens, `"""doc "x" """ "y"`, Backslash)
	require.Equal(t, []string{`"""doc "x" """`}, got[grammar.Comments])
	require.Equal(t, []string{`"y"`}, got[grammar.Strings])
}

func TestStringShadowsComment(t *testing.T) {
	tokens := map[Token]grammar.Category{
		Pair(`"`, `"`, false, true):  grammar.Strings,
		Pair("/*", "*/", true, true): grammar.Comments,
	}

	got := resolve(t, tokens, `if "a/*b*/c" end`, Backslash)
	require.Equal(t, []string{`"a/*b*/c"`}, got[grammar.Strings])
	require.Empty(t, got[grammar.Comments])
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text := []rune("'a'")
	_, err := Resolve(ctx, map[Token]grammar.Category{Pair("'", "'", false, true): grammar.Strings}, text, textrange.Range{End: 3}, Backslash)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseEscapeRule(t *testing.T) {
	for _, rule := range []EscapeRule{Backslash, None, DoubleDelimiter} {
		got, err := ParseEscapeRule(rule.String())
		require.NoError(t, err)
		require.Equal(t, rule, got)
	}
	got, err := ParseEscapeRule("")
	require.NoError(t, err)
	require.Equal(t, Backslash, got)

	_, err = ParseEscapeRule("quotes")
	require.Error(t, err)
}

func ptr(s string) *string { return &s }
