package main

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// truncateText shortens plain text to maxWidth cells, flattening control
// whitespace first.
func truncateText(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// truncateANSI is truncateText for strings that already carry styling.
func truncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return ansi.Truncate(s, maxWidth, "")
	}
	return ansi.Truncate(s, maxWidth, "…")
}

func utf8RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

func padRightANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// shouldUseIncrementalFilter reports whether the previous filter result can
// be narrowed instead of filtering the whole outline again: the query only
// grew and the outline did not change underneath it.
func shouldUseIncrementalFilter(current []rune, previous []rune, itemN int, previousItemN int) bool {
	if len(previous) == 0 || len(current) <= len(previous) {
		return false
	}
	if itemN != previousItemN {
		return false
	}
	return slices.Equal(current[:len(previous)], previous)
}

func copyRunesReuse(dst []rune, src []rune) []rune {
	if len(src) == 0 {
		return nil
	}
	if cap(dst) < len(src) {
		dst = make([]rune, len(src))
	} else {
		dst = dst[:len(src)]
	}
	copy(dst, src)
	return dst
}

func runesEqual(a []rune, b []rune) bool {
	return slices.Equal(a, b)
}
