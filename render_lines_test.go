package main

import (
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/textrange"
)

func hl(cat grammar.Category, start, end int) highlight.Highlight {
	return highlight.Highlight{Cat: cat, Range: textrange.Range{Start: start, End: end}}
}

func TestLineSpansSplitsAtNewlines(t *testing.T) {
	text := []rune("/* a\nb */ x\n\ny")
	got := lineSpans(text, []highlight.Highlight{
		hl(grammar.Comments, 0, 9),
		hl(grammar.Values, 10, 11),
		hl(grammar.Keywords, 13, 14),
	})

	want := [][]highlight.Highlight{
		{hl(grammar.Comments, 0, 4)},
		{hl(grammar.Comments, 0, 4), hl(grammar.Values, 5, 6)},
		nil,
		{hl(grammar.Keywords, 0, 1)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lineSpans = %v, want %v", got, want)
	}
}

func TestLineSpansTrailingNewline(t *testing.T) {
	got := lineSpans([]rune("a\n"), nil)
	if len(got) != 2 {
		t.Fatalf("len(lineSpans) = %d, want 2", len(got))
	}
}

func TestClipSpans(t *testing.T) {
	spans := []highlight.Highlight{hl(grammar.Strings, 0, 4), hl(grammar.Keywords, 6, 8)}
	got := clipSpans(spans, 3, 7)
	want := []highlight.Highlight{hl(grammar.Strings, 0, 1), hl(grammar.Keywords, 3, 4)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("clipSpans = %v, want %v", got, want)
	}
}

func plainStyle(grammar.Category) (lipgloss.Style, bool) { return lipgloss.NewStyle(), true }

func TestRenderTokenLineExpandsTabs(t *testing.T) {
	line := []rune("\tif\tx")
	out := ansi.Strip(renderTokenLine(line, []highlight.Highlight{hl(grammar.Keywords, 1, 3)}, plainStyle, false, nil))
	if out != "    if  x" {
		t.Fatalf("renderTokenLine = %q", out)
	}
}

func TestRenderCursorLine(t *testing.T) {
	line := []rune("abc")
	for cursor, want := range []string{"abc", "abc", "abc", "abc "} {
		out := ansi.Strip(renderCursorLine(line, nil, plainStyle, cursor))
		if out != want {
			t.Fatalf("cursor %d: renderCursorLine = %q, want %q", cursor, out, want)
		}
	}

	out := ansi.Strip(renderCursorLine([]rune("a\tb"), nil, plainStyle, 1))
	if out != "a   b" {
		t.Fatalf("tab under cursor = %q", out)
	}
}

func TestWriteHighlighted(t *testing.T) {
	var b strings.Builder
	text := []rune("if a\n\nend")
	if err := writeHighlighted(&b, text, []highlight.Highlight{hl(grammar.Keywords, 0, 2)}, plainStyle, true); err != nil {
		t.Fatal(err)
	}
	if got := ansi.Strip(b.String()); got != "1 if a\n2 \n3 end\n" {
		t.Fatalf("writeHighlighted = %q", got)
	}
}

func TestWriteSpans(t *testing.T) {
	var b strings.Builder
	text := []rune("say \"hi\"")
	if err := writeSpans(&b, text, []highlight.Highlight{hl(grammar.Strings, 4, 8)}); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "strings[4,8)\t\"\\\"hi\\\"\"\n" {
		t.Fatalf("writeSpans = %q", got)
	}
}

func TestLineOffset(t *testing.T) {
	text := []rune("ab\ncd\n")
	for n, want := range map[int]int{1: 0, 2: 3, 3: 6, 9: 6} {
		if got := lineOffset(text, n); got != want {
			t.Fatalf("lineOffset(%d) = %d, want %d", n, got, want)
		}
	}
}
