package highlight

import (
	"go.uber.org/zap"

	"hlkit/internal/grammar"
	"hlkit/internal/matcher"
	"hlkit/internal/nestable"
)

type Option func(*options)

type options struct {
	log    *zap.Logger
	escape nestable.EscapeRule
}

// WithLogger receives the rules dropped while compiling.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithEscapeRule(r nestable.EscapeRule) Option {
	return func(o *options) { o.escape = r }
}

// Compile builds the parser for g. Rules that fail to compile are dropped.
//
// Per category, a symbolic begin/end rule becomes a nestable token unless
// an earlier category already claimed it; plain words fold into one regex
// per case sensitivity; everything else becomes its own matcher. Comment
// delimiters are registered last and override earlier claims.
func Compile(g grammar.Grammar, opts ...Option) *RegexParser {
	o := options{log: zap.NewNop(), escape: nestable.Backslash}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With(zap.String("grammar", g.Name))

	p := &RegexParser{
		extractors: map[grammar.Category][]matcher.Matcher{},
		nestables:  map[nestable.Token]grammar.Category{},
		escape:     o.escape,
	}

	for _, cat := range grammar.Categories {
		var (
			ms          []matcher.Matcher
			words       []string
			foldedWords []string
		)
		for _, rule := range g.Highlights[cat] {
			if tok, ok := nestable.FromHighlight(rule); ok {
				if _, claimed := p.nestables[tok]; !claimed {
					p.nestables[tok] = cat
					continue
				}
			}
			if !rule.IsRegex && rule.End == nil {
				if rule.Begin == "" {
					continue
				}
				if rule.IgnoreCase {
					foldedWords = append(foldedWords, rule.Begin)
				} else {
					words = append(words, rule.Begin)
				}
				continue
			}

			m, err := ruleMatcher(rule)
			if err != nil {
				log.Debug("drop highlight rule",
					zap.Stringer("category", cat),
					zap.String("begin", rule.Begin),
					zap.Error(err))
				continue
			}
			ms = append(ms, m)
		}

		for _, bucket := range []struct {
			words      []string
			ignoreCase bool
		}{{words, false}, {foldedWords, true}} {
			if len(bucket.words) == 0 {
				continue
			}
			m, err := matcher.Words(bucket.words, bucket.ignoreCase)
			if err != nil {
				log.Debug("drop word list", zap.Stringer("category", cat), zap.Error(err))
				continue
			}
			ms = append(ms, m)
		}

		if len(ms) > 0 {
			p.extractors[cat] = ms
		}
	}

	for _, b := range g.Comments.Blocks {
		if b.Begin == "" || b.End == "" {
			continue
		}
		p.nestables[nestable.Pair(b.Begin, b.End, true, true)] = grammar.Comments
	}
	for _, in := range g.Comments.Inlines {
		if in.Begin == "" {
			continue
		}
		p.nestables[nestable.Inline(in.Begin, in.LeadingOnly)] = grammar.Comments
	}

	log.Debug("compiled grammar",
		zap.Int("extractors", p.matcherCount()),
		zap.Int("nestables", len(p.nestables)))
	return p
}

func ruleMatcher(rule grammar.Highlight) (matcher.Matcher, error) {
	switch {
	case rule.IsRegex && rule.End != nil:
		return matcher.BeginEndRegex(rule.Begin, *rule.End, rule.IgnoreCase, rule.IsMultiline)
	case rule.IsRegex:
		return matcher.Regex(rule.Begin, rule.IgnoreCase, rule.IsMultiline)
	default:
		return matcher.BeginEndString(rule.Begin, rule.EndString(), rule.IgnoreCase, rule.IsMultiline), nil
	}
}
