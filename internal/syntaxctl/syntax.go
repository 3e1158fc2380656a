package syntaxctl

import (
	"context"

	"go.uber.org/zap"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/nestable"
	"hlkit/internal/outline"
)

// Syntax is a compiled grammar: what a controller runs for each pass.
type Syntax struct {
	Name       string
	Parser     highlight.Parser
	Extractors []*outline.Extractor

	// Outliner replaces Extractors when set.
	Outliner func(ctx context.Context, text []rune) ([]outline.Item, error)
}

// Compiler turns a grammar into a Syntax. Hosts swap it to add caching or
// a different highlight backend.
type Compiler func(grammar.Grammar) Syntax

// RegexCompiler compiles g with the regex backend. Rules that fail to
// compile are logged and skipped.
func RegexCompiler(log *zap.Logger, escape nestable.EscapeRule) Compiler {
	return func(g grammar.Grammar) Syntax {
		extractors, errs := outline.Compile(g)
		for _, err := range errs {
			log.Debug("drop outline rule", zap.String("grammar", g.Name), zap.Error(err))
		}
		return Syntax{
			Name:       g.Name,
			Parser:     highlight.Compile(g, highlight.WithLogger(log), highlight.WithEscapeRule(escape)),
			Extractors: extractors,
		}
	}
}

func (s Syntax) highlightsNothing() bool {
	if s.Parser == nil {
		return true
	}
	e, ok := s.Parser.(interface{ IsEmpty() bool })
	return ok && e.IsEmpty()
}

// OutlinesNothing reports whether s has no outline source.
func (s Syntax) OutlinesNothing() bool {
	return s.Outliner == nil && len(s.Extractors) == 0
}

// Outline extracts the unnormalized outline of text.
func (s Syntax) Outline(ctx context.Context, text []rune) ([]outline.Item, error) {
	if s.Outliner != nil {
		return s.Outliner(ctx, text)
	}
	return outline.Extract(ctx, s.Extractors, text)
}
