package grammar

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, cat := range Categories {
		got, err := ParseCategory(cat.String())
		require.NoError(t, err)
		require.Equal(t, cat, got)
	}

	got, err := ParseCategory(" Strings ")
	require.NoError(t, err)
	require.Equal(t, Strings, got)

	_, err = ParseCategory("operators")
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, Err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "category", de.Field)
}

func TestSanitized(t *testing.T) {
	g := Grammar{
		FileMap: FileMap{Extensions: []string{"", "go"}},
		Highlights: map[Category][]Highlight{
			Keywords: {Word("if"), {}, Word("Else"), Word("end")},
			Types:    {{}},
		},
		Outlines: []Outline{{Pattern: "b"}, {}, {Pattern: "A"}},
		Comments: Comment{
			Inlines: []InlineComment{{Begin: ""}, {Begin: "//"}},
			Blocks:  []BlockComment{{Begin: "/*"}, {Begin: "/*", End: "*/"}},
		},
	}

	s := g.Sanitized()
	require.Equal(t, []string{"go"}, s.FileMap.Extensions)
	require.Equal(t, []Highlight{Word("Else"), Word("end"), Word("if")}, s.Highlights[Keywords])
	require.NotContains(t, s.Highlights, Types)
	require.Equal(t, []Outline{{Pattern: "A"}, {Pattern: "b"}}, s.Outlines)
	require.Equal(t, []InlineComment{{Begin: "//"}}, s.Comments.Inlines)
	require.Equal(t, []BlockComment{{Begin: "/*", End: "*/"}}, s.Comments.Blocks)

	// the receiver is untouched
	require.Len(t, g.Highlights[Keywords], 4)
	require.Len(t, g.Outlines, 3)
}

func TestCompletionWords(t *testing.T) {
	g := Grammar{Highlights: map[Category][]Highlight{
		Keywords: {Word(" if "), Pair("begin", "end"), Regex(`\w+`)},
		Types:    {Word("int"), Word("")},
	}}

	words := g.CompletionWords()
	require.Len(t, words, 2)
	require.Equal(t, "if", words[0].Text)
	require.Equal(t, Keywords, *words[0].Type)
	require.Equal(t, "int", words[1].Text)
	require.Equal(t, Types, *words[1].Type)

	g.Completions = []CompletionWord{{Text: "only"}}
	require.Equal(t, []CompletionWord{{Text: "only"}}, g.CompletionWords())
}

func TestValidate(t *testing.T) {
	g := Grammar{
		Highlights: map[Category][]Highlight{
			Keywords: {Word("if"), Word("if"), Pair("if", "fi")},
			Types:    {Word("if")},
			Strings:  {{Begin: "(", IsRegex: true}, {Begin: "a", End: strPtr("["), IsRegex: true}},
		},
		Outlines: []Outline{{Pattern: ""}, {Pattern: "[z"}, {Pattern: `^def`}, {Pattern: `^def`, Template: "$0"}},
		Comments: Comment{Blocks: []BlockComment{{Begin: "/*"}, {End: "-->"}, {Begin: "{-", End: "-}"}}},
	}

	errs := Validate(g)
	require.Len(t, errs, 8)

	count := func(target error) int {
		n := 0
		for _, err := range errs {
			if errors.Is(err, target) {
				n++
			}
		}
		return n
	}
	require.Equal(t, 2, count(ErrDuplicated))
	require.Equal(t, 3, count(ErrInvalidRegularExpression))
	require.Equal(t, 1, count(ErrEmptyPattern))
	require.Equal(t, 2, count(ErrUnbalancedBlockCommentDelimiters))
	require.Equal(t, 8, count(ErrInvalid))

	require.Equal(t, "keywords", errs[0].Location)
	require.Equal(t, RoleBegin, errs[0].Role)
	require.Equal(t, "if", errs[0].String)

	require.Equal(t, RoleEnd, errs[2].Role)
	require.Equal(t, "[", errs[2].String)
	require.Contains(t, errs[2].Error(), "strings end string")

	require.Equal(t, "outline", errs[5].Location)
	require.ErrorIs(t, errs[5], ErrDuplicated)
	require.Equal(t, "^def", errs[5].String)

	require.Empty(t, Validate(Grammar{Highlights: map[Category][]Highlight{Keywords: {Word("a")}}}))
}

const legacyYAML = `
kind: code
keywords:
  - beginString: if
  - beginString: end
strings:
  - beginString: '"'
    endString: '"'
numbers:
  - beginString: '\b\d+\b'
    regularExpression: true
outlineMenu:
  - beginString: '^func (\w+)'
    keyString: '$1()'
    bold: true
commentDelimiters:
  inlineDelimiter: '//'
  beginDelimiter: '/*'
  endDelimiter: '*/'
completions:
  - keyString: func
extensions:
  - keyString: go
  - keyString: ''
interpreters:
  - keyString: gorun
metadata:
  author: someone
`

func TestDecodeYAML(t *testing.T) {
	g, err := DecodeYAML("Go", []byte(legacyYAML))
	require.NoError(t, err)

	require.Equal(t, "Go", g.Name)
	require.Equal(t, KindCode, g.Kind)
	require.Equal(t, []Highlight{Word("if"), Word("end")}, g.Highlights[Keywords])
	require.Equal(t, []Highlight{Pair(`"`, `"`)}, g.Highlights[Strings])
	require.True(t, g.Highlights[Numbers][0].IsRegex)
	require.Equal(t, []Outline{{Pattern: `^func (\w+)`, Template: "$1()", Bold: true}}, g.Outlines)
	require.Equal(t, []InlineComment{{Begin: "//"}}, g.Comments.Inlines)
	require.Equal(t, []BlockComment{{Begin: "/*", End: "*/"}}, g.Comments.Blocks)
	require.Equal(t, []CompletionWord{{Text: "func"}}, g.Completions)
	require.Equal(t, []string{"go"}, g.FileMap.Extensions)
	require.Equal(t, []string{"gorun"}, g.FileMap.Interpreters)
	require.Equal(t, "someone", g.Metadata.Author)

	out, err := EncodeYAML(g)
	require.NoError(t, err)
	again, err := DecodeYAML("Go", out)
	require.NoError(t, err)
	require.Equal(t, g, again)
}

func TestDecodeYAMLErrors(t *testing.T) {
	_, err := DecodeYAML("bad", []byte("keywords: [\n"))
	require.ErrorIs(t, err, ErrDecode)

	_, err = DecodeYAML("bad", []byte("outlineMenu:\n  - beginString: x\n    kind: chapter\n"))
	require.ErrorIs(t, err, ErrDecode)
}

const packageTOML = `
kind = "code"

[fileMap]
extensions = ["sql"]

[[highlights.keywords]]
beginString = "select"
ignoreCase = true

[[highlights.strings]]
beginString = "'"
endString = "'"

[[outlines]]
beginString = '^-- MARK: (.+)'
keyString = "$1"
kind = "mark"

[[commentDelimiters.inlines]]
begin = "--"

[[commentDelimiters.inlines]]
begin = "#"
leadingOnly = false

[[commentDelimiters.blocks]]
begin = "/*"
end = "*/"

[[completions]]
text = "select"
type = "keywords"
`

func TestDecodeTOML(t *testing.T) {
	g, err := DecodeTOML("SQL", []byte(packageTOML))
	require.NoError(t, err)

	require.Equal(t, KindCode, g.Kind)
	require.Equal(t, []string{"sql"}, g.FileMap.Extensions)
	require.Equal(t, []Highlight{{Begin: "select", IgnoreCase: true}}, g.Highlights[Keywords])
	require.Equal(t, []Highlight{Pair("'", "'")}, g.Highlights[Strings])
	require.Equal(t, OutlineMark, g.Outlines[0].Kind)
	require.Equal(t, []InlineComment{{Begin: "--", LeadingOnly: true}, {Begin: "#"}}, g.Comments.Inlines)
	require.Equal(t, []BlockComment{{Begin: "/*", End: "*/"}}, g.Comments.Blocks)
	require.Len(t, g.Completions, 1)
	require.Equal(t, Keywords, *g.Completions[0].Type)

	out, err := EncodeTOML(g)
	require.NoError(t, err)
	again, err := DecodeTOML("SQL", out)
	require.NoError(t, err)
	require.Equal(t, g, again)
}

func TestDecodeTOMLUnknownCategory(t *testing.T) {
	_, err := DecodeTOML("x", []byte("[[highlights.operators]]\nbeginString = \"+\"\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Go.yaml"), []byte(legacyYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sql.toml"), []byte(packageTOML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("keywords: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("#"), 0o644))

	gs, err := LoadDir(dir)
	require.ErrorIs(t, err, ErrDecode)
	require.Len(t, gs, 2)
	require.Equal(t, "Go", gs[0].Name)
	require.Equal(t, "sql", gs[1].Name)

	_, err = Load(filepath.Join(dir, "README.md"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func strPtr(s string) *string { return &s }
