// Package nestable pairs delimiter occurrences such as quotes and comments
// into well-formed spans.
package nestable

import (
	"fmt"
	"strings"
	"unicode"

	"hlkit/internal/grammar"
)

// Token is either an inline delimiter running to the end of its line or a
// begin/end pair. Tokens are compared by value.
type Token struct {
	Begin string
	End   string

	Inline      bool
	LeadingOnly bool
	Multiline   bool
	Nesting     bool
}

func Inline(delimiter string, leadingOnly bool) Token {
	return Token{Begin: delimiter, Inline: true, LeadingOnly: leadingOnly}
}

func Pair(begin, end string, multiline, nesting bool) Token {
	return Token{Begin: begin, End: end, Multiline: multiline, Nesting: nesting}
}

// FromHighlight returns the pair token for a non-regex rule whose begin and
// end are both free of letters and digits.
func FromHighlight(h grammar.Highlight) (Token, bool) {
	if h.IsRegex || h.End == nil {
		return Token{}, false
	}
	if !isSymbol(h.Begin) || !isSymbol(*h.End) {
		return Token{}, false
	}
	return Pair(h.Begin, *h.End, h.IsMultiline, true), true
}

func isSymbol(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
	})
}

func (t Token) singleSamePair() bool {
	return !t.Inline && t.Begin == t.End && len([]rune(t.Begin)) == 1
}

func (t Token) String() string {
	if t.Inline {
		if t.LeadingOnly {
			return fmt.Sprintf("inline(%q, leading)", t.Begin)
		}
		return fmt.Sprintf("inline(%q)", t.Begin)
	}
	return fmt.Sprintf("pair(%q, %q)", t.Begin, t.End)
}

// less orders tokens for deterministic collection.
func (t Token) less(o Token) bool {
	if t.Inline != o.Inline {
		return !t.Inline
	}
	if t.Begin != o.Begin {
		return t.Begin < o.Begin
	}
	if t.End != o.End {
		return t.End < o.End
	}
	if t.LeadingOnly != o.LeadingOnly {
		return !t.LeadingOnly
	}
	if t.Multiline != o.Multiline {
		return !t.Multiline
	}
	return !t.Nesting && o.Nesting
}

// EscapeRule decides which delimiter occurrences are literal.
type EscapeRule int

const (
	// Backslash ignores delimiters preceded by an odd number of backslashes.
	Backslash EscapeRule = iota
	None
	// DoubleDelimiter treats a doubled one-rune symmetric delimiter as a
	// literal inside the span.
	DoubleDelimiter
)

func (r EscapeRule) String() string {
	switch r {
	case Backslash:
		return "backslash"
	case None:
		return "none"
	case DoubleDelimiter:
		return "double"
	default:
		return fmt.Sprintf("escape(%d)", int(r))
	}
}

func ParseEscapeRule(s string) (EscapeRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "backslash":
		return Backslash, nil
	case "none":
		return None, nil
	case "double", "doubledelimiter", "double-delimiter":
		return DoubleDelimiter, nil
	default:
		return 0, fmt.Errorf("unknown escape rule %q", s)
	}
}
