// Package fuzzy scores subsequence matches of a query against short
// titles such as outline items and workspace symbols.
package fuzzy

import (
	"strings"
	"unicode"
)

// Query is a prepared search string.
type Query struct {
	raw   []rune
	lower []rune
	// smart case: an upper-case rune in the query rewards exact case
	caseSensitive bool
}

func NewQuery(s string) Query {
	raw := []rune(strings.TrimSpace(s))
	q := Query{raw: raw, lower: make([]rune, len(raw))}
	for i, r := range raw {
		q.lower[i] = lower(r)
		if unicode.IsUpper(r) {
			q.caseSensitive = true
		}
	}
	return q
}

func (q Query) IsEmpty() bool { return len(q.lower) == 0 }

func (q Query) String() string { return string(q.raw) }

// Match reports whether every query rune appears in text in order,
// ignoring case.
func (q Query) Match(text string) bool {
	_, ok := q.Score(text)
	return ok
}

// Score ranks text against q. Runes at word starts, consecutive runes and
// short texts score higher. An empty query matches everything with 0.
func (q Query) Score(text string) (int, bool) {
	if q.IsEmpty() {
		return 0, true
	}

	var qi, score, caseHits, n int
	var prev rune
	last := -2
	for _, raw := range text {
		r := lower(raw)
		if qi < len(q.lower) && r == q.lower[qi] {
			bonus := 10
			if n == 0 || isBoundary(prev) {
				bonus += 8
			}
			if last+1 == n {
				bonus += 6
			}
			if q.caseSensitive && raw == q.raw[qi] {
				bonus += 4
				caseHits++
			}
			score += bonus
			last = n
			qi++
		}
		prev = r
		n++
	}
	if qi != len(q.lower) {
		return 0, false
	}

	if extra := n - len(q.lower); extra > 0 {
		score -= extra
	}
	if n < 40 {
		score += 40 - n
	}
	return score + caseHits*3, true
}

// Positions returns the rune indices of text matched by q, or nil.
func (q Query) Positions(text string) []int {
	if q.IsEmpty() {
		return nil
	}
	out := make([]int, 0, len(q.lower))
	i := 0
	for _, raw := range text {
		if len(out) == len(q.lower) {
			break
		}
		if lower(raw) == q.lower[len(out)] {
			out = append(out, i)
		}
		i++
	}
	if len(out) != len(q.lower) {
		return nil
	}
	return out
}

func lower(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return r + ('a' - 'A')
	case r <= unicode.MaxASCII:
		return r
	default:
		return unicode.ToLower(r)
	}
}

func isBoundary(r rune) bool {
	switch r {
	case '_', '-', '/', '.', ':', '(', ' ':
		return true
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
