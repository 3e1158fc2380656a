package matcher

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const identifierRunes = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// WordsPattern folds plain words into one pattern. A word only matches
// when it is not glued to an identifier rune or to any rune that appears
// in the words themselves. Longer words come first in the alternation.
func WordsPattern(words []string) string {
	set := make(map[rune]struct{}, len(identifierRunes))
	for _, r := range identifierRunes {
		set[r] = struct{}{}
	}
	for _, w := range words {
		for _, r := range w {
			set[r] = struct{}{}
		}
	}
	runes := make([]rune, 0, len(set))
	for r := range set {
		if unicode.IsSpace(r) {
			continue
		}
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	boundary := QuoteLiteral(string(runes))

	sorted := append([]string(nil), words...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = QuoteLiteral(w)
	}

	return "(?<![" + boundary + "])(?:" + strings.Join(quoted, "|") + ")(?![" + boundary + "])"
}

// Words compiles a plain word list into a single regex matcher.
func Words(words []string, ignoreCase bool) (Matcher, error) {
	return Regex(WordsPattern(words), ignoreCase, false)
}

// QuoteLiteral escapes ASCII punctuation and symbols. Other runes are
// never metacharacters, and escaping a word rune such as a combining mark
// is a syntax error, so they stay as they are. The result is literal both
// inside and outside a character class.
func QuoteLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if r >= utf8.RuneSelf || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return b.String()
}
