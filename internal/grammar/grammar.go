// Package grammar describes a syntax definition: per-category highlight
// rules, comment delimiters, outline patterns and file associations.
//
// A Grammar is a plain value. Loading, validating and sanitizing never
// mutate the receiver.
package grammar

type Kind string

const (
	KindGeneral Kind = "general"
	KindCode    Kind = "code"
)

type FileMap struct {
	Extensions   []string `yaml:"extensions,omitempty" toml:"extensions,omitempty"`
	Filenames    []string `yaml:"filenames,omitempty" toml:"filenames,omitempty"`
	Interpreters []string `yaml:"interpreters,omitempty" toml:"interpreters,omitempty"`
}

// Highlight is one rule. A nil End with IsRegex unset is a plain word.
type Highlight struct {
	Begin       string  `yaml:"beginString" toml:"beginString"`
	End         *string `yaml:"endString,omitempty" toml:"endString,omitempty"`
	IsRegex     bool    `yaml:"regularExpression,omitempty" toml:"regularExpression,omitempty"`
	IgnoreCase  bool    `yaml:"ignoreCase,omitempty" toml:"ignoreCase,omitempty"`
	IsMultiline bool    `yaml:"isMultiline,omitempty" toml:"isMultiline,omitempty"`
	Description string  `yaml:"description,omitempty" toml:"description,omitempty"`
}

func Word(w string) Highlight { return Highlight{Begin: w} }

func Pair(begin, end string) Highlight { return Highlight{Begin: begin, End: &end} }

func Regex(pattern string) Highlight { return Highlight{Begin: pattern, IsRegex: true} }

func (h Highlight) EndString() string {
	if h.End == nil {
		return ""
	}
	return *h.End
}

func (h Highlight) IsEmpty() bool {
	return h.Begin == "" && h.EndString() == "" && h.Description == ""
}

type OutlineKind string

const (
	OutlineContainer OutlineKind = "container"
	OutlineFunction  OutlineKind = "function"
	OutlineValue     OutlineKind = "value"
	OutlineHeading   OutlineKind = "heading"
	OutlineMark      OutlineKind = "mark"
	OutlineReference OutlineKind = "reference"
	OutlineSeparator OutlineKind = "separator"
)

var OutlineKinds = []OutlineKind{
	OutlineContainer,
	OutlineFunction,
	OutlineValue,
	OutlineHeading,
	OutlineMark,
	OutlineReference,
	OutlineSeparator,
}

func (k *OutlineKind) UnmarshalText(b []byte) error {
	v := OutlineKind(b)
	if v == "" {
		*k = ""
		return nil
	}
	for _, known := range OutlineKinds {
		if v == known {
			*k = v
			return nil
		}
	}
	return &DecodeError{Field: "kind", Value: string(b)}
}

type Outline struct {
	Pattern     string      `yaml:"beginString" toml:"beginString"`
	Template    string      `yaml:"keyString,omitempty" toml:"keyString,omitempty"`
	IgnoreCase  bool        `yaml:"ignoreCase,omitempty" toml:"ignoreCase,omitempty"`
	Kind        OutlineKind `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Bold        bool        `yaml:"bold,omitempty" toml:"bold,omitempty"`
	Italic      bool        `yaml:"italic,omitempty" toml:"italic,omitempty"`
	Underline   bool        `yaml:"underline,omitempty" toml:"underline,omitempty"`
	Description string      `yaml:"description,omitempty" toml:"description,omitempty"`
}

func (o Outline) IsEmpty() bool { return o.Pattern == "" && o.Description == "" }

type InlineComment struct {
	Begin       string `yaml:"begin" toml:"begin"`
	LeadingOnly bool   `yaml:"leadingOnly,omitempty" toml:"leadingOnly,omitempty"`
}

type BlockComment struct {
	Begin string `yaml:"begin" toml:"begin"`
	End   string `yaml:"end" toml:"end"`
}

type Comment struct {
	Inlines []InlineComment `yaml:"inlines,omitempty" toml:"inlines,omitempty"`
	Blocks  []BlockComment  `yaml:"blocks,omitempty" toml:"blocks,omitempty"`
}

func (c Comment) IsEmpty() bool { return len(c.Inlines) == 0 && len(c.Blocks) == 0 }

type CompletionWord struct {
	Text string    `yaml:"text" toml:"text"`
	Type *Category `yaml:"type,omitempty" toml:"type,omitempty"`
}

type Metadata struct {
	Version         string `yaml:"version,omitempty" toml:"version,omitempty"`
	LastModified    string `yaml:"lastModified,omitempty" toml:"lastModified,omitempty"`
	DistributionURL string `yaml:"distributionURL,omitempty" toml:"distributionURL,omitempty"`
	Author          string `yaml:"author,omitempty" toml:"author,omitempty"`
	License         string `yaml:"license,omitempty" toml:"license,omitempty"`
	Description     string `yaml:"description,omitempty" toml:"description,omitempty"`
}

type Grammar struct {
	// Name comes from the file the grammar was loaded from.
	Name string

	Kind        Kind
	FileMap     FileMap
	Highlights  map[Category][]Highlight
	Outlines    []Outline
	Comments    Comment
	Completions []CompletionWord
	Metadata    Metadata
}

// None is the grammar used for documents without an association.
var None = Grammar{Name: "None", Kind: KindCode}

// IsEmpty reports whether g produces neither highlights nor outline items.
func (g Grammar) IsEmpty() bool {
	for _, rules := range g.Highlights {
		if len(rules) > 0 {
			return false
		}
	}
	return len(g.Outlines) == 0 && g.Comments.IsEmpty()
}

// Clone returns a deep copy of g.
func (g Grammar) Clone() Grammar {
	out := g
	out.FileMap = FileMap{
		Extensions:   cloneStrings(g.FileMap.Extensions),
		Filenames:    cloneStrings(g.FileMap.Filenames),
		Interpreters: cloneStrings(g.FileMap.Interpreters),
	}
	if g.Highlights != nil {
		out.Highlights = make(map[Category][]Highlight, len(g.Highlights))
		for cat, rules := range g.Highlights {
			out.Highlights[cat] = append([]Highlight(nil), rules...)
		}
	}
	out.Outlines = append([]Outline(nil), g.Outlines...)
	out.Comments = Comment{
		Inlines: append([]InlineComment(nil), g.Comments.Inlines...),
		Blocks:  append([]BlockComment(nil), g.Comments.Blocks...),
	}
	out.Completions = append([]CompletionWord(nil), g.Completions...)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
