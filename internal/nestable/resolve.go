package nestable

import (
	"context"
	"sort"
	"unicode"

	"hlkit/internal/grammar"
	"hlkit/internal/matcher"
	"hlkit/internal/textrange"
)

type role uint8

const (
	roleBegin role = 1 << iota
	roleEnd
)

type item struct {
	cat   grammar.Category
	token Token
	role  role
	rng   textrange.Range
}

// Resolve pairs the delimiter occurrences of tokens inside scan and returns
// the resulting spans per category. A begin without a matching end is
// dropped. Spans never overlap each other.
func Resolve(ctx context.Context, tokens map[Token]grammar.Category, text []rune, scan textrange.Range, rule EscapeRule) (map[grammar.Category][]textrange.Range, error) {
	scan = scan.Clamp(len(text))

	items, err := collect(ctx, tokens, text, scan)
	if err != nil {
		return nil, err
	}
	if rule == Backslash {
		kept := items[:0]
		for _, it := range items {
			if !isEscaped(text, it.rng.Start) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].rng.Start != items[j].rng.Start {
			return items[i].rng.Start < items[j].rng.Start
		}
		return items[i].rng.Len() > items[j].rng.Len()
	})
	if len(items) == 0 {
		return map[grammar.Category][]textrange.Range{}, nil
	}

	p := pairer{text: text, scan: scan, items: items, rule: rule, lastLineEnd: -1}
	return p.run(ctx)
}

func collect(ctx context.Context, tokens map[Token]grammar.Category, text []rune, scan textrange.Range) ([]item, error) {
	ordered := make([]Token, 0, len(tokens))
	for t := range tokens {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := tokens[ordered[i]], tokens[ordered[j]]
		if ci != cj {
			return ci < cj
		}
		return ordered[i].less(ordered[j])
	})

	var items []item
	for _, t := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cat := tokens[t]

		if t.Inline {
			var begins []textrange.Range
			if t.LeadingOnly {
				begins = leadingOccurrences(text, []rune(t.Begin), scan)
			} else {
				found, err := matcher.String(t.Begin, false).Ranges(ctx, text, scan)
				if err != nil {
					return nil, err
				}
				begins = found
			}
			for _, r := range begins {
				// a one-rune delimiter glued to a word is not a boundary
				if r.Len() <= 1 && r.Start > scan.Start && !unicode.IsSpace(text[r.Start-1]) {
					continue
				}
				lineEnd := textrange.LineContentsEnd(text, r.End)
				items = append(items,
					item{cat: cat, token: t, role: roleBegin, rng: r},
					item{cat: cat, token: t, role: roleEnd, rng: textrange.Range{Start: lineEnd, End: lineEnd}},
				)
			}
			continue
		}

		begins, err := matcher.String(t.Begin, false).Ranges(ctx, text, scan)
		if err != nil {
			return nil, err
		}
		if t.Begin == t.End {
			for _, r := range begins {
				items = append(items, item{cat: cat, token: t, role: roleBegin | roleEnd, rng: r})
			}
			continue
		}
		for _, r := range begins {
			items = append(items, item{cat: cat, token: t, role: roleBegin, rng: r})
		}
		ends, err := matcher.String(t.End, false).Ranges(ctx, text, scan)
		if err != nil {
			return nil, err
		}
		for _, r := range ends {
			items = append(items, item{cat: cat, token: t, role: roleEnd, rng: r})
		}
	}
	return items, nil
}

// leadingOccurrences finds delimiter preceded only by spaces on its line.
// The start of scan counts as a line start.
func leadingOccurrences(text, delim []rune, scan textrange.Range) []textrange.Range {
	if len(delim) == 0 {
		return nil
	}
	var out []textrange.Range
	lineStart := scan.Start
	for lineStart < scan.End {
		i := lineStart
		for i < scan.End && text[i] == ' ' {
			i++
		}
		if textrange.IndexOf(text, delim, i, min(i+len(delim), scan.End)) == i {
			out = append(out, textrange.Range{Start: i, End: i + len(delim)})
		}
		lineStart = textrange.LineEnd(text, i)
	}
	return out
}

func isEscaped(text []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

type pairer struct {
	text        []rune
	scan        textrange.Range
	items       []item
	rule        EscapeRule
	lastLineEnd int
}

func (p *pairer) run(ctx context.Context) (map[grammar.Category][]textrange.Range, error) {
	out := map[grammar.Category][]textrange.Range{}
	seek := p.scan.Start

	for index := 0; index < len(p.items); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		begin := p.items[index]
		index++
		if begin.role&roleBegin == 0 || begin.rng.Start < seek {
			continue
		}

		end, ok := p.findEnd(begin, index)
		if !ok {
			continue
		}
		span := textrange.Range{Start: begin.rng.Start, End: p.items[end].rng.End}
		out[begin.cat] = append(out[begin.cat], span)
		seek = span.End
		index = end
	}
	return out, nil
}

// findEnd returns the index of the end item closing begin, searching from
// index onward. Offsets count every item, not only those of begin's token.
func (p *pairer) findEnd(begin item, index int) (int, bool) {
	doubled := p.rule == DoubleDelimiter && begin.token.singleSamePair()
	depth := 0
	skip := 0

	for offset, pos := range p.items[index:] {
		if pos.token != begin.token {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}

		upper := p.upperBound(begin)
		if pos.rng.Start > upper {
			return 0, false
		}

		if pos.role&roleEnd != 0 {
			if doubled {
				for _, next := range p.items[index+offset+1:] {
					if next.token != pos.token || next.rng.Start > upper || next.rng.Start != pos.rng.Start+1+skip {
						break
					}
					skip++
				}
				if skip%2 == 0 {
					return index + offset + skip, true
				}
				continue
			}
			if depth == 0 {
				return index + offset, true
			}
			depth--
			continue
		}
		if begin.token.Nesting {
			depth++
		}
	}
	return 0, false
}

// upperBound is the last location an end of begin may start at. Line
// ends are cached across begins on the same line.
func (p *pairer) upperBound(begin item) int {
	if begin.token.Multiline {
		return p.scan.End
	}
	if p.lastLineEnd >= 0 && begin.rng.End <= p.lastLineEnd {
		return p.lastLineEnd
	}
	p.lastLineEnd = textrange.LineContentsEnd(p.text, begin.rng.End)
	return p.lastLineEnd
}
