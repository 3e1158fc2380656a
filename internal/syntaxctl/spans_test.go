package syntaxctl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/textrange"
)

func span(cat grammar.Category, start, end int) highlight.Highlight {
	return highlight.Highlight{Cat: cat, Range: textrange.Range{Start: start, End: end}}
}

func TestParseRange(t *testing.T) {
	text := []rune("aaa\nbbb\nccc\nddd\n")
	r := func(s, e int) textrange.Range { return textrange.Range{Start: s, End: e} }

	tests := []struct {
		name    string
		dirty   textrange.Range
		applied []highlight.Highlight
		minimum int
		want    textrange.Range
	}{
		{"whole dirty", r(0, 16), nil, 0, r(0, 16)},
		{"short buffer", r(5, 6), nil, 16, r(0, 16)},
		{"line bounds", r(5, 6), nil, 0, r(4, 8)},
		{"empty dirty", r(9, 9), nil, 0, r(8, 12)},
		{"span crossing both bounds", r(5, 6), []highlight.Highlight{span(grammar.Comments, 2, 10)}, 0, r(2, 10)},
		{"span ending at bound", r(5, 6), []highlight.Highlight{span(grammar.Strings, 0, 4)}, 0, r(4, 8)},
		{
			name:  "touching spans join",
			dirty: r(9, 10),
			applied: []highlight.Highlight{
				span(grammar.Comments, 6, 9),
				span(grammar.Comments, 9, 14),
			},
			want: r(6, 14),
		},
		{
			name:  "different categories do not join",
			dirty: r(9, 10),
			applied: []highlight.Highlight{
				span(grammar.Strings, 6, 8),
				span(grammar.Comments, 8, 9),
			},
			want: r(8, 12),
		},
		{"near the head starts at zero", r(5, 6), nil, 12, r(0, 8)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, parseRange(text, tc.dirty, tc.applied, tc.minimum))
		})
	}
}

func TestReplaceSpans(t *testing.T) {
	applied := []highlight.Highlight{
		span(grammar.Keywords, 0, 2),
		span(grammar.Comments, 3, 9),
		span(grammar.Strings, 10, 12),
		span(grammar.Numbers, 14, 15),
	}
	fresh := []highlight.Highlight{span(grammar.Values, 6, 8), span(grammar.Strings, 10, 11)}

	got := replaceSpans(applied, textrange.Range{Start: 5, End: 13}, fresh)
	require.Equal(t, []highlight.Highlight{
		span(grammar.Keywords, 0, 2),
		span(grammar.Comments, 3, 5),
		span(grammar.Values, 6, 8),
		span(grammar.Strings, 10, 11),
		span(grammar.Numbers, 14, 15),
	}, got)
}

func TestShiftSpans(t *testing.T) {
	applied := []highlight.Highlight{
		span(grammar.Keywords, 0, 2),
		span(grammar.Comments, 3, 9),
		span(grammar.Strings, 10, 12),
	}

	// two runes inserted at 5
	require.Equal(t, []highlight.Highlight{
		span(grammar.Keywords, 0, 2),
		span(grammar.Comments, 3, 11),
		span(grammar.Strings, 12, 14),
	}, shiftSpans(applied, textrange.Range{Start: 5, End: 7}, 2))

	// [8,11) deleted
	require.Equal(t, []highlight.Highlight{
		span(grammar.Keywords, 0, 2),
		span(grammar.Comments, 3, 8),
		span(grammar.Strings, 8, 9),
	}, shiftSpans(applied, textrange.Range{Start: 8, End: 8}, -3))

	// [0,3) replaced by one rune
	require.Equal(t, []highlight.Highlight{
		span(grammar.Comments, 1, 7),
		span(grammar.Strings, 8, 10),
	}, shiftSpans(applied, textrange.Range{Start: 0, End: 1}, -2))
}
