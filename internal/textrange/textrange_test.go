package textrange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineBounds(t *testing.T) {
	text := []rune("ab\ncde\n\nf")

	tests := []struct {
		name        string
		i           int
		start       int
		end         int
		contentsEnd int
		lineNumber  int
	}{
		{name: "first line", i: 1, start: 0, end: 3, contentsEnd: 2, lineNumber: 1},
		{name: "at terminator", i: 2, start: 0, end: 3, contentsEnd: 2, lineNumber: 1},
		{name: "second line", i: 4, start: 3, end: 7, contentsEnd: 6, lineNumber: 2},
		{name: "empty line", i: 7, start: 7, end: 8, contentsEnd: 7, lineNumber: 3},
		{name: "last line", i: 8, start: 8, end: 9, contentsEnd: 9, lineNumber: 4},
		{name: "end of text", i: 9, start: 8, end: 9, contentsEnd: 9, lineNumber: 4},
	}

	lines := NewLines(text)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.lineNumber, lines.Number(tc.i))
			require.Equal(t, tc.start, LineStart(text, tc.i))
			require.Equal(t, tc.end, LineEnd(text, tc.i))
			require.Equal(t, tc.contentsEnd, LineContentsEnd(text, tc.i))
			require.Equal(t, tc.lineNumber, LineNumber(text, tc.i))
		})
	}
}

func TestLinesMatchLineNumber(t *testing.T) {
	for _, source := range []string{"", "\n", "a", "a\n", "\n\nx\ny\n\n", "one\ntwo\nthree"} {
		text := []rune(source)
		lines := NewLines(text)
		for i := -1; i <= len(text); i++ {
			require.Equal(t, LineNumber(text, i), lines.Number(i), "%q at %d", source, i)
		}
	}
}

func TestLineRange(t *testing.T) {
	text := []rune("ab\ncde\nfg")

	require.Equal(t, Range{0, 3}, LineRange(text, Range{1, 1}))
	require.Equal(t, Range{0, 7}, LineRange(text, Range{1, 4}))
	require.Equal(t, Range{3, 7}, LineRange(text, Range{3, 7}))
	require.Equal(t, Range{7, 9}, LineRange(text, Range{8, 9}))
}

func TestRangeOperations(t *testing.T) {
	a := New(5, 2)
	require.Equal(t, Range{2, 5}, a)
	require.Equal(t, 3, a.Len())
	require.True(t, a.Contains(2))
	require.False(t, a.Contains(5))
	require.True(t, a.Touches(Range{5, 6}))
	require.False(t, a.Intersects(Range{5, 6}))
	require.Equal(t, Range{2, 8}, a.Union(Range{6, 8}))

	got, ok := a.Intersection(Range{4, 9})
	require.True(t, ok)
	require.Equal(t, Range{4, 5}, got)

	_, ok = a.Intersection(Range{7, 9})
	require.False(t, ok)

	require.Equal(t, Range{0, 4}, Range{-2, 7}.Clamp(4))
	require.Equal(t, Range{5, 8}, a.Shift(3))
}
