// Package lang associates documents with grammars by file name, extension
// and shebang interpreter.
package lang

import (
	"path/filepath"
	"slices"
	"strings"

	"hlkit/internal/grammar"
)

type MatchKind string

const (
	ByFilename    MatchKind = "filename"
	ByExtension   MatchKind = "extension"
	ByInterpreter MatchKind = "interpreter"
)

// Conflict records a key claimed by more than one grammar. The first
// registered grammar keeps it.
type Conflict struct {
	Kind    MatchKind
	Key     string
	Winner  string
	Ignored string
}

// Registry is built by the host once grammars are loaded. It is not safe
// for concurrent mutation.
type Registry struct {
	grammars  map[string]grammar.Grammar
	mappings  map[MatchKind]map[string]string
	conflicts []Conflict
}

func NewRegistry(gs ...grammar.Grammar) *Registry {
	r := &Registry{
		grammars: make(map[string]grammar.Grammar),
		mappings: map[MatchKind]map[string]string{
			ByFilename:    {},
			ByExtension:   {},
			ByInterpreter: {},
		},
	}
	for _, g := range gs {
		r.Add(g)
	}
	return r
}

// Add registers g, replacing a grammar of the same name.
func (r *Registry) Add(g grammar.Grammar) {
	r.grammars[g.Name] = g
	r.claim(ByFilename, g.Name, g.FileMap.Filenames, func(s string) string { return s })
	r.claim(ByExtension, g.Name, g.FileMap.Extensions, normalizeExtension)
	r.claim(ByInterpreter, g.Name, g.FileMap.Interpreters, strings.TrimSpace)
}

func (r *Registry) claim(kind MatchKind, name string, keys []string, norm func(string) string) {
	m := r.mappings[kind]
	for _, key := range keys {
		key = norm(key)
		if key == "" {
			continue
		}
		owner, ok := m[key]
		switch {
		case !ok:
			m[key] = name
		case owner != name:
			r.conflicts = append(r.conflicts, Conflict{Kind: kind, Key: key, Winner: owner, Ignored: name})
		}
	}
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func (r *Registry) Get(name string) (grammar.Grammar, bool) {
	g, ok := r.grammars[name]
	return g, ok
}

// Names returns the registered grammar names sorted case-insensitively.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.grammars))
	for name := range r.grammars {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}

func (r *Registry) Conflicts() []Conflict { return slices.Clone(r.conflicts) }

func (r *Registry) Len() int { return len(r.grammars) }

// ForPath finds a grammar by exact file name, then by extension.
func (r *Registry) ForPath(path string) (grammar.Grammar, MatchKind, bool) {
	base := filepath.Base(path)
	if name, ok := r.mappings[ByFilename][base]; ok {
		return r.grammars[name], ByFilename, true
	}

	// "archive.tar.gz" tries "tar.gz" before "gz"; a leading dot is
	// part of the name
	for i := 1; i < len(base); i++ {
		if base[i] != '.' {
			continue
		}
		if name, ok := r.mappings[ByExtension][normalizeExtension(base[i+1:])]; ok {
			return r.grammars[name], ByExtension, true
		}
	}
	return grammar.Grammar{}, "", false
}

// ForShebang finds a grammar by the interpreter named on a "#!" line.
func (r *Registry) ForShebang(firstLine string) (grammar.Grammar, bool) {
	interp, ok := Interpreter(firstLine)
	if !ok {
		return grammar.Grammar{}, false
	}
	m := r.mappings[ByInterpreter]
	if name, ok := m[interp]; ok {
		return r.grammars[name], true
	}
	// python3.12 → python
	if trimmed := strings.TrimRight(interp, "0123456789."); trimmed != interp {
		if name, ok := m[trimmed]; ok {
			return r.grammars[name], true
		}
	}
	return grammar.Grammar{}, false
}

// Detect picks the grammar for a document, falling back to grammar.None.
func (r *Registry) Detect(path, firstLine string) grammar.Grammar {
	if g, _, ok := r.ForPath(path); ok {
		return g
	}
	if g, ok := r.ForShebang(firstLine); ok {
		return g
	}
	return grammar.None
}

// Interpreter returns the program a shebang line runs, looking through
// /usr/bin/env and its flags.
func Interpreter(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#!")
	if !ok {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}

	prog := filepath.Base(fields[0])
	if prog == "env" {
		prog = ""
		for _, f := range fields[1:] {
			if strings.HasPrefix(f, "-") || strings.Contains(f, "=") {
				continue
			}
			prog = filepath.Base(f)
			break
		}
	}
	return prog, prog != ""
}
