package treesitter

import (
	"hlkit/internal/grammar"
	"hlkit/internal/syntaxctl"
)

// Compiler highlights with tree-sitter when reg knows the grammar's
// language and defers to fallback otherwise. A grammar's own outline
// rules take precedence over declaration outlines.
func Compiler(reg *Registry, fallback syntaxctl.Compiler) syntaxctl.Compiler {
	return func(g grammar.Grammar) syntaxctl.Syntax {
		s := fallback(g)
		l, ok := reg.Get(g.Name)
		if !ok {
			return s
		}

		p := NewParser(l)
		s.Parser = p
		if len(s.Extractors) == 0 {
			s.Outliner = p.Outline
		}
		return s
	}
}
