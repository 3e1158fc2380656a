// Package matcher finds the ranges of one highlight construct in a rune
// buffer. Matcher is a closed set of kinds selected by a tag; callers
// never see the concrete search strategy.
package matcher

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"

	"hlkit/internal/textrange"
)

type Range = textrange.Range

type Kind int

const (
	// KindString finds literal occurrences. Nestable tokens use it.
	KindString Kind = iota
	KindRegex
	KindBeginEndString
	KindBeginEndRegex
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindRegex:
		return "regex"
	case KindBeginEndString:
		return "begin-end-string"
	case KindBeginEndRegex:
		return "begin-end-regex"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MatchTimeout bounds a single regex match attempt.
var MatchTimeout = 5 * time.Second

type Matcher struct {
	Kind Kind

	begin      []rune
	end        []rune
	ignoreCase bool
	multiline  bool

	beginRe *regexp2.Regexp
	endRe   *regexp2.Regexp
}

func String(s string, ignoreCase bool) Matcher {
	return Matcher{Kind: KindString, begin: foldNeedle(s, ignoreCase), ignoreCase: ignoreCase}
}

func BeginEndString(begin, end string, ignoreCase, multiline bool) Matcher {
	return Matcher{
		Kind:       KindBeginEndString,
		begin:      foldNeedle(begin, ignoreCase),
		end:        foldNeedle(end, ignoreCase),
		ignoreCase: ignoreCase,
		multiline:  multiline,
	}
}

// Regex matches pattern with anchors at line boundaries. With multiline
// set, '.' also matches newlines.
func Regex(pattern string, ignoreCase, multiline bool) (Matcher, error) {
	re, err := CompileRegex(pattern, ignoreCase, multiline)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{Kind: KindRegex, beginRe: re, ignoreCase: ignoreCase, multiline: multiline}, nil
}

// BeginEndRegex pairs a begin pattern with the first end match after it.
// Without multiline the end must be on the begin's line.
func BeginEndRegex(begin, end string, ignoreCase, multiline bool) (Matcher, error) {
	beginRe, err := CompileRegex(begin, ignoreCase, false)
	if err != nil {
		return Matcher{}, err
	}
	endRe, err := CompileRegex(end, ignoreCase, false)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{
		Kind:       KindBeginEndRegex,
		beginRe:    beginRe,
		endRe:      endRe,
		ignoreCase: ignoreCase,
		multiline:  multiline,
	}, nil
}

// CompileRegex compiles pattern with the option set every highlight and
// outline pattern shares.
func CompileRegex(pattern string, ignoreCase, dotAll bool) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.Multiline)
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	if dotAll {
		opts |= regexp2.Singleline
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// Ranges returns the ranges of the construct inside scan, in order.
func (m Matcher) Ranges(ctx context.Context, text []rune, scan Range) ([]Range, error) {
	scan = scan.Clamp(len(text))
	switch m.Kind {
	case KindString:
		return m.literalRanges(ctx, text, scan)
	case KindRegex:
		return m.regexRanges(ctx, text, scan)
	case KindBeginEndString:
		return m.beginEndStringRanges(ctx, text, scan)
	case KindBeginEndRegex:
		return m.beginEndRegexRanges(ctx, text, scan)
	default:
		return nil, fmt.Errorf("unknown matcher kind %v", m.Kind)
	}
}

func (m Matcher) literalRanges(ctx context.Context, text []rune, scan Range) ([]Range, error) {
	var out []Range
	loc := scan.Start
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i := m.index(text, m.begin, loc, scan.End)
		if i < 0 {
			return out, nil
		}
		loc = i + len(m.begin)
		out = append(out, Range{Start: i, End: loc})
	}
}

// regexRanges matches against the whole text so lookaround and anchors see
// past scan; results are clipped to it.
func (m Matcher) regexRanges(ctx context.Context, text []rune, scan Range) ([]Range, error) {
	if scan.IsEmpty() {
		return nil, nil
	}

	var out []Range
	match, err := m.beginRe.FindRunesMatchStartingAt(text, scan.Start)
	for match != nil && match.Index < scan.End {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if match.Length > 0 {
			out = append(out, Range{Start: match.Index, End: min(match.Index+match.Length, scan.End)})
		}
		match, err = m.beginRe.FindNextMatch(match)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m Matcher) beginEndStringRanges(ctx context.Context, text []rune, scan Range) ([]Range, error) {
	var out []Range
	loc := scan.Start
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		begin := m.index(text, m.begin, loc, scan.End)
		if begin < 0 {
			return out, nil
		}
		loc = begin + len(m.begin)

		upper := scan.End
		if !m.multiline {
			upper = min(upper, textrange.LineContentsEnd(text, loc))
		}
		end := m.index(text, m.end, loc, upper)
		if end < 0 {
			return out, nil
		}
		loc = end + len(m.end)
		out = append(out, Range{Start: begin, End: loc})
	}
}

// beginEndRegexRanges drops a begin without an end and resumes one rune
// after it; the begin is not retried against later ends.
func (m Matcher) beginEndRegexRanges(ctx context.Context, text []rune, scan Range) ([]Range, error) {
	var out []Range
	loc := scan.Start
	for loc < scan.End {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		begin, err := m.beginRe.FindRunesMatchStartingAt(text, loc)
		if err != nil {
			return nil, err
		}
		if begin == nil || begin.Index >= scan.End {
			break
		}
		beginEnd := begin.Index + begin.Length
		searchStart := max(beginEnd, begin.Index+1)

		upper := scan.End
		if !m.multiline {
			upper = min(upper, textrange.LineContentsEnd(text, beginEnd))
		}
		if searchStart > upper {
			loc = searchStart
			continue
		}

		end, err := m.endRe.FindRunesMatchStartingAt(text[:upper], searchStart)
		if err != nil {
			return nil, err
		}
		if end == nil {
			loc = searchStart
			continue
		}
		endEnd := end.Index + end.Length
		loc = max(endEnd, end.Index+1)
		out = append(out, Range{Start: begin.Index, End: max(beginEnd, endEnd)})
	}
	return out, nil
}

func (m Matcher) index(text []rune, needle []rune, from, limit int) int {
	if !m.ignoreCase {
		return textrange.IndexOf(text, needle, from, limit)
	}
	if len(needle) == 0 {
		return -1
	}
	limit = min(limit, len(text))
	for i := max(from, 0); i+len(needle) <= limit; i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(text[i+j]) != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func foldNeedle(s string, ignoreCase bool) []rune {
	r := []rune(s)
	if !ignoreCase {
		return r
	}
	for i := range r {
		r[i] = unicode.ToLower(r[i])
	}
	return r
}
