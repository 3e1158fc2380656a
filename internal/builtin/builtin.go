// Package builtin ships the grammars available without a grammar directory.
package builtin

import (
	"embed"
	"errors"
	"io/fs"
	"path"

	"hlkit/internal/grammar"
)

//go:embed grammars
var files embed.FS

// Grammars decodes every bundled grammar, sorted by name.
func Grammars() ([]grammar.Grammar, error) {
	entries, err := fs.ReadDir(files, "grammars")
	if err != nil {
		return nil, err
	}

	var (
		out  []grammar.Grammar
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() || !grammar.IsGrammarFile(e.Name()) {
			continue
		}
		p := path.Join("grammars", e.Name())
		data, err := files.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g, err := grammar.Decode(p, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, g)
	}
	return out, errors.Join(errs...)
}
