package grammar

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type keyString struct {
	KeyString string `yaml:"keyString"`
}

func keyStrings(in []keyString) []string {
	var out []string
	for _, k := range in {
		if k.KeyString != "" {
			out = append(out, k.KeyString)
		}
	}
	return out
}

func toKeyStrings(in []string) []keyString {
	if len(in) == 0 {
		return nil
	}
	out := make([]keyString, len(in))
	for i, s := range in {
		out[i] = keyString{KeyString: s}
	}
	return out
}

const (
	legacyInline     = "inlineDelimiter"
	legacyBlockBegin = "beginDelimiter"
	legacyBlockEnd   = "endDelimiter"
)

// yamlDoc is the flat single-file layout older grammars were shipped in.
type yamlDoc struct {
	Kind Kind `yaml:"kind,omitempty"`

	Keywords   []Highlight `yaml:"keywords,omitempty"`
	Commands   []Highlight `yaml:"commands,omitempty"`
	Types      []Highlight `yaml:"types,omitempty"`
	Attributes []Highlight `yaml:"attributes,omitempty"`
	Variables  []Highlight `yaml:"variables,omitempty"`
	Values     []Highlight `yaml:"values,omitempty"`
	Numbers    []Highlight `yaml:"numbers,omitempty"`
	Strings    []Highlight `yaml:"strings,omitempty"`
	Characters []Highlight `yaml:"characters,omitempty"`
	Comments   []Highlight `yaml:"comments,omitempty"`

	Outlines          []Outline         `yaml:"outlineMenu,omitempty"`
	CommentDelimiters map[string]string `yaml:"commentDelimiters,omitempty"`
	Completions       []keyString       `yaml:"completions,omitempty"`

	Extensions   []keyString `yaml:"extensions,omitempty"`
	Filenames    []keyString `yaml:"filenames,omitempty"`
	Interpreters []keyString `yaml:"interpreters,omitempty"`

	Metadata Metadata `yaml:"metadata,omitempty"`
}

func (d *yamlDoc) slots() map[Category]*[]Highlight {
	return map[Category]*[]Highlight{
		Keywords:   &d.Keywords,
		Commands:   &d.Commands,
		Types:      &d.Types,
		Attributes: &d.Attributes,
		Variables:  &d.Variables,
		Values:     &d.Values,
		Numbers:    &d.Numbers,
		Strings:    &d.Strings,
		Characters: &d.Characters,
		Comments:   &d.Comments,
	}
}

// DecodeYAML reads the legacy single-file format.
func DecodeYAML(name string, data []byte) (Grammar, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Grammar{}, fmt.Errorf("%s: %w (%w)", name, err, ErrDecode)
	}

	g := Grammar{
		Name:       name,
		Kind:       doc.Kind,
		Highlights: map[Category][]Highlight{},
		Outlines:   doc.Outlines,
		FileMap: FileMap{
			Extensions:   keyStrings(doc.Extensions),
			Filenames:    keyStrings(doc.Filenames),
			Interpreters: keyStrings(doc.Interpreters),
		},
		Metadata: doc.Metadata,
	}
	if g.Kind == "" {
		g.Kind = KindGeneral
	}
	for cat, rules := range doc.slots() {
		if len(*rules) > 0 {
			g.Highlights[cat] = *rules
		}
	}
	for _, w := range keyStrings(doc.Completions) {
		g.Completions = append(g.Completions, CompletionWord{Text: w})
	}
	if inline, ok := doc.CommentDelimiters[legacyInline]; ok && inline != "" {
		g.Comments.Inlines = []InlineComment{{Begin: inline}}
	}
	begin, hasBegin := doc.CommentDelimiters[legacyBlockBegin]
	end, hasEnd := doc.CommentDelimiters[legacyBlockEnd]
	if hasBegin || hasEnd {
		g.Comments.Blocks = []BlockComment{{Begin: begin, End: end}}
	}

	if err := checkOutlineKinds(g.Outlines); err != nil {
		return Grammar{}, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

// EncodeYAML writes g in the legacy format. Only the first inline and block
// comment delimiters survive.
func EncodeYAML(g Grammar) ([]byte, error) {
	doc := yamlDoc{
		Kind:         g.Kind,
		Outlines:     g.Outlines,
		Completions:  toKeyStrings(completionTexts(g.Completions)),
		Extensions:   toKeyStrings(g.FileMap.Extensions),
		Filenames:    toKeyStrings(g.FileMap.Filenames),
		Interpreters: toKeyStrings(g.FileMap.Interpreters),
		Metadata:     g.Metadata,
	}
	for cat, slot := range doc.slots() {
		*slot = g.Highlights[cat]
	}
	if len(g.Comments.Inlines) > 0 || len(g.Comments.Blocks) > 0 {
		doc.CommentDelimiters = map[string]string{}
		if len(g.Comments.Inlines) > 0 {
			doc.CommentDelimiters[legacyInline] = g.Comments.Inlines[0].Begin
		}
		if len(g.Comments.Blocks) > 0 {
			doc.CommentDelimiters[legacyBlockBegin] = g.Comments.Blocks[0].Begin
			doc.CommentDelimiters[legacyBlockEnd] = g.Comments.Blocks[0].End
		}
	}

	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w (%w)", err, ErrEncode)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w (%w)", err, ErrEncode)
	}
	return buf.Bytes(), nil
}

type tomlInline struct {
	Begin       string `toml:"begin"`
	LeadingOnly *bool  `toml:"leadingOnly,omitempty"`
}

type tomlComment struct {
	Inlines []tomlInline   `toml:"inlines,omitempty"`
	Blocks  []BlockComment `toml:"blocks,omitempty"`
}

// tomlDoc is the current format. Highlights are keyed by category name.
type tomlDoc struct {
	Kind              Kind                   `toml:"kind,omitempty"`
	FileMap           FileMap                `toml:"fileMap,omitempty"`
	Highlights        map[string][]Highlight `toml:"highlights,omitempty"`
	Outlines          []Outline              `toml:"outlines,omitempty"`
	CommentDelimiters tomlComment            `toml:"commentDelimiters,omitempty"`
	Completions       []CompletionWord       `toml:"completions,omitempty"`
	Metadata          Metadata               `toml:"metadata,omitempty"`
}

// DecodeTOML reads the current format. An inline comment without an
// explicit leadingOnly flag is leading-only.
func DecodeTOML(name string, data []byte) (Grammar, error) {
	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Grammar{}, fmt.Errorf("%s: %w (%w)", name, err, ErrDecode)
	}

	g := Grammar{
		Name:        name,
		Kind:        doc.Kind,
		FileMap:     doc.FileMap,
		Highlights:  map[Category][]Highlight{},
		Outlines:    doc.Outlines,
		Completions: doc.Completions,
		Metadata:    doc.Metadata,
	}
	if g.Kind == "" {
		g.Kind = KindGeneral
	}
	for key, rules := range doc.Highlights {
		cat, err := ParseCategory(key)
		if err != nil {
			return Grammar{}, fmt.Errorf("%s: %w", name, err)
		}
		g.Highlights[cat] = rules
	}
	for _, in := range doc.CommentDelimiters.Inlines {
		leading := true
		if in.LeadingOnly != nil {
			leading = *in.LeadingOnly
		}
		g.Comments.Inlines = append(g.Comments.Inlines, InlineComment{Begin: in.Begin, LeadingOnly: leading})
	}
	g.Comments.Blocks = doc.CommentDelimiters.Blocks

	if err := checkOutlineKinds(g.Outlines); err != nil {
		return Grammar{}, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

// EncodeTOML writes g in the current format.
func EncodeTOML(g Grammar) ([]byte, error) {
	doc := tomlDoc{
		Kind:        g.Kind,
		FileMap:     g.FileMap,
		Outlines:    g.Outlines,
		Completions: g.Completions,
		Metadata:    g.Metadata,
	}
	if len(g.Highlights) > 0 {
		doc.Highlights = make(map[string][]Highlight, len(g.Highlights))
		for _, cat := range Categories {
			if rules := g.Highlights[cat]; len(rules) > 0 {
				doc.Highlights[cat.String()] = rules
			}
		}
	}
	for _, in := range g.Comments.Inlines {
		leading := in.LeadingOnly
		doc.CommentDelimiters.Inlines = append(doc.CommentDelimiters.Inlines, tomlInline{Begin: in.Begin, LeadingOnly: &leading})
	}
	doc.CommentDelimiters.Blocks = g.Comments.Blocks

	buf := &bytes.Buffer{}
	enc := toml.NewEncoder(buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w (%w)", err, ErrEncode)
	}
	return buf.Bytes(), nil
}

func checkOutlineKinds(outlines []Outline) error {
	for _, o := range outlines {
		if o.Kind == "" {
			continue
		}
		if err := new(OutlineKind).UnmarshalText([]byte(o.Kind)); err != nil {
			return err
		}
	}
	return nil
}

func completionTexts(words []CompletionWord) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Text)
	}
	return out
}
