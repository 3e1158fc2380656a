package treesitter

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	bashlang "github.com/smacker/go-tree-sitter/bash"
	clang "github.com/smacker/go-tree-sitter/c"
	cpplang "github.com/smacker/go-tree-sitter/cpp"
	golang "github.com/smacker/go-tree-sitter/golang"
	python "github.com/smacker/go-tree-sitter/python"
	rust "github.com/smacker/go-tree-sitter/rust"
	toml "github.com/smacker/go-tree-sitter/toml"
	tsxlang "github.com/smacker/go-tree-sitter/typescript/tsx"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
	yaml "github.com/smacker/go-tree-sitter/yaml"
	tszig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tsjson "github.com/tree-sitter/tree-sitter-json/bindings/go"

	"hlkit/internal/grammar"
)

// Declaration describes a node type that becomes an outline item.
type Declaration struct {
	Kind grammar.OutlineKind
	// NameField is the child field holding the item title.
	NameField string
}

type Language struct {
	Name    string
	FileMap grammar.FileMap

	lang *sitter.Language

	functionContext map[string]bool
	typeContext     map[string]bool

	// node types whose "key" field is a mapping key
	keyContext   map[string]bool
	declarations map[string]Declaration
}

// Grammar returns a grammar carrying only the language's name and file
// associations, for registering with a lang.Registry.
func (l *Language) Grammar() grammar.Grammar {
	return grammar.Grammar{Name: l.Name, Kind: grammar.KindCode, FileMap: l.FileMap}
}

// Registry holds the languages a host enables. Names match grammar names
// case-insensitively.
type Registry struct {
	langs map[string]*Language
}

func NewRegistry(langs ...*Language) *Registry {
	r := &Registry{langs: make(map[string]*Language, len(langs))}
	for _, l := range langs {
		r.langs[strings.ToLower(l.Name)] = l
	}
	return r
}

func (r *Registry) Get(name string) (*Language, bool) {
	l, ok := r.langs[strings.ToLower(name)]
	return l, ok
}

func (r *Registry) Languages() []*Language {
	out := make([]*Language, 0, len(r.langs))
	for _, l := range r.langs {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *Language) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Grammars returns Language.Grammar for every registered language.
func (r *Registry) Grammars() []grammar.Grammar {
	var out []grammar.Grammar
	for _, l := range r.Languages() {
		out = append(out, l.Grammar())
	}
	return out
}

func fileMap(exts []string, names []string, interps []string) grammar.FileMap {
	return grammar.FileMap{Extensions: exts, Filenames: names, Interpreters: interps}
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

var (
	function  = func(field string) Declaration { return Declaration{Kind: grammar.OutlineFunction, NameField: field} }
	container = func(field string) Declaration { return Declaration{Kind: grammar.OutlineContainer, NameField: field} }
	value     = func(field string) Declaration { return Declaration{Kind: grammar.OutlineValue, NameField: field} }
	heading   = func(field string) Declaration { return Declaration{Kind: grammar.OutlineHeading, NameField: field} }
)

// DefaultRegistry enables every bundled language.
func DefaultRegistry() *Registry {
	jsDecls := map[string]Declaration{
		"function_declaration":   function("name"),
		"method_definition":      function("name"),
		"class_declaration":      container("name"),
		"interface_declaration":  container("name"),
		"type_alias_declaration": container("name"),
	}
	jsFunctions := set("function_declaration", "method_definition", "call_expression", "member_expression")
	tsTypes := set("interface_declaration", "type_alias_declaration", "type_annotation", "class_declaration")

	return NewRegistry(
		&Language{
			Name:            "Go",
			FileMap:         fileMap([]string{"go"}, []string{"go.mod"}, nil),
			lang:            golang.GetLanguage(),
			functionContext: set("function_declaration", "method_declaration", "call_expression", "selector_expression"),
			typeContext:     set("type_spec", "type_declaration", "parameter_declaration", "var_declaration"),
			declarations: map[string]Declaration{
				"function_declaration": function("name"),
				"method_declaration":   function("name"),
				"type_spec":            container("name"),
			},
		},
		&Language{
			Name:            "Rust",
			FileMap:         fileMap([]string{"rs"}, nil, nil),
			lang:            rust.GetLanguage(),
			functionContext: set("function_item", "call_expression", "field_expression"),
			typeContext:     set("struct_item", "enum_item", "trait_item", "type_item"),
			declarations: map[string]Declaration{
				"function_item": function("name"),
				"struct_item":   container("name"),
				"enum_item":     container("name"),
				"trait_item":    container("name"),
				"impl_item":     container("type"),
				"mod_item":      container("name"),
			},
		},
		&Language{
			Name:            "Python",
			FileMap:         fileMap([]string{"py", "pyw"}, nil, []string{"python", "python3"}),
			lang:            python.GetLanguage(),
			functionContext: set("function_definition", "call"),
			typeContext:     set("class_definition"),
			declarations: map[string]Declaration{
				"function_definition": function("name"),
				"class_definition":    container("name"),
			},
		},
		&Language{
			Name:            "JavaScript",
			FileMap:         fileMap([]string{"js", "jsx", "mjs", "cjs"}, nil, []string{"node"}),
			lang:            tslang.GetLanguage(),
			functionContext: jsFunctions,
			typeContext:     set("class_declaration", "type_annotation"),
			declarations:    jsDecls,
		},
		&Language{
			Name:            "TypeScript",
			FileMap:         fileMap([]string{"ts"}, nil, []string{"deno", "ts-node"}),
			lang:            tslang.GetLanguage(),
			functionContext: jsFunctions,
			typeContext:     tsTypes,
			declarations:    jsDecls,
		},
		&Language{
			Name:            "TSX",
			FileMap:         fileMap([]string{"tsx"}, nil, nil),
			lang:            tsxlang.GetLanguage(),
			functionContext: jsFunctions,
			typeContext:     tsTypes,
			declarations:    jsDecls,
		},
		&Language{
			Name:         "YAML",
			FileMap:      fileMap([]string{"yaml", "yml"}, nil, nil),
			lang:         yaml.GetLanguage(),
			keyContext:   set("block_mapping_pair", "flow_pair"),
			declarations: map[string]Declaration{"block_mapping_pair": value("key")},
		},
		&Language{
			Name:    "TOML",
			FileMap: fileMap([]string{"toml"}, []string{"Cargo.toml"}, nil),
			lang:    toml.GetLanguage(),
			declarations: map[string]Declaration{
				"table":               heading(""),
				"table_array_element": heading(""),
			},
		},
		&Language{
			Name:         "JSON",
			FileMap:      fileMap([]string{"json", "jsonc", "json5"}, []string{"package-lock.json"}, nil),
			lang:         sitter.NewLanguage(tsjson.Language()),
			keyContext:   set("pair"),
			declarations: map[string]Declaration{"pair": value("key")},
		},
		&Language{
			Name:            "Bash",
			FileMap:         fileMap([]string{"sh", "bash", "zsh"}, []string{".bashrc", ".zshrc"}, []string{"sh", "bash", "zsh"}),
			lang:            bashlang.GetLanguage(),
			functionContext: set("function_definition", "command_name"),
			declarations:    map[string]Declaration{"function_definition": function("name")},
		},
		&Language{
			Name:            "C",
			FileMap:         fileMap([]string{"c", "h"}, nil, nil),
			lang:            clang.GetLanguage(),
			functionContext: set("function_declarator", "call_expression"),
			declarations:    map[string]Declaration{"struct_specifier": container("name")},
		},
		&Language{
			Name:            "C++",
			FileMap:         fileMap([]string{"cpp", "cc", "cxx", "hpp", "hh"}, nil, nil),
			lang:            cpplang.GetLanguage(),
			functionContext: set("function_declarator", "call_expression"),
			declarations: map[string]Declaration{
				"struct_specifier":     container("name"),
				"class_specifier":      container("name"),
				"namespace_definition": container("name"),
			},
		},
		&Language{
			Name:            "Zig",
			FileMap:         fileMap([]string{"zig", "zon"}, nil, nil),
			lang:            sitter.NewLanguage(tszig.Language()),
			functionContext: set("function_declaration", "call_expression"),
			declarations:    map[string]Declaration{"function_declaration": function("name")},
		},
	)
}
