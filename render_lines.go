package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hlkit/internal/candidate"
	"hlkit/internal/fuzzy"
	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/outline"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
)

const tabWidth = 4

func renderLocationLine(path string, line int, col int, width int, selected bool, query fuzzy.Query) string {
	loc, fileStart, fileEnd := formatLocationWithVisibleFilename(path, line, col, width)
	runes := []rune(loc)
	if len(runes) == 0 {
		return ""
	}

	dirStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathDir))
	fileStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathFile))
	suffixStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathMeta))
	if selected {
		dirStyle = dirStyle.Background(lipgloss.Color(appTheme.SelectionBG))
		fileStyle = fileStyle.Background(lipgloss.Color(appTheme.SelectionBG))
		suffixStyle = suffixStyle.Background(lipgloss.Color(appTheme.SelectionBG))
	}

	emphasis := buildEmphasisMask(len(runes), query.Positions(loc))

	partAt := func(i int) int {
		if i < fileStart {
			return 0
		}
		if i < fileEnd {
			return 1
		}
		return 2
	}

	var b strings.Builder
	for i := 0; i < len(runes); {
		part := partAt(i)
		baseStyle := suffixStyle
		switch part {
		case 0:
			baseStyle = dirStyle
		case 1:
			baseStyle = fileStyle
		}
		emph := emphasisAt(emphasis, i)
		j := i + 1
		for j < len(runes) {
			if emphasisAt(emphasis, j) != emph {
				break
			}
			if partAt(j) != part {
				break
			}
			j++
		}
		style := baseStyle
		if emph {
			style = style.Bold(true).Underline(true)
		}
		b.WriteString(style.Render(string(runes[i:j])))
		i = j
	}

	return b.String()
}

func formatLocationWithVisibleFilename(path string, line int, col int, width int) (string, int, int) {
	suffix := fmt.Sprintf(":%d:%d", line, col)
	base := filepath.Base(path)
	dir := filepath.Dir(path)
	if dir == "." {
		dir = ""
	}
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	baseSuffix := base + suffix
	baseSuffixW := lipgloss.Width(baseSuffix)
	if width <= 0 {
		return "", 0, 0
	}

	if baseSuffixW >= width {
		tr := truncateText(baseSuffix, width)
		fileEnd := utf8RuneCount(tr)
		fileLen := min(utf8RuneCount(base), fileEnd)
		return tr, 0, fileLen
	}

	availDir := width - baseSuffixW
	dirVisible := dir
	if lipgloss.Width(dirVisible) > availDir {
		dirVisible = truncateText(dirVisible, availDir)
	}

	loc := dirVisible + baseSuffix
	loc = truncateText(loc, width)
	fileStart := utf8RuneCount(dirVisible)
	fileEnd := fileStart + utf8RuneCount(base)
	locLen := utf8RuneCount(loc)
	if fileStart > locLen {
		fileStart = locLen
	}
	if fileEnd > locLen {
		fileEnd = locLen
	}
	return loc, fileStart, fileEnd
}

// lineSpans cuts hs at line boundaries. Each entry holds the spans of one
// line, relative to its start, terminator excluded.
func lineSpans(text []rune, hs []highlight.Highlight) [][]highlight.Highlight {
	var out [][]highlight.Highlight
	next := 0
	for start := 0; start <= len(text); {
		end := textrange.LineContentsEnd(text, start)
		line := textrange.Range{Start: start, End: end}

		var spans []highlight.Highlight
		for next < len(hs) && hs[next].Range.End <= line.Start {
			next++
		}
		for i := next; i < len(hs) && hs[i].Range.Start < line.End; i++ {
			if r, ok := hs[i].Range.Intersection(line); ok && !r.IsEmpty() {
				spans = append(spans, highlight.Highlight{Cat: hs[i].Cat, Range: r.Shift(-start)})
			}
		}
		out = append(out, spans)

		if end == len(text) {
			break
		}
		start = end + 1
	}
	return out
}

// renderTokenLine draws one line. spans are relative to the line and
// sorted; runes outside them use the text colour. Tabs are expanded.
func renderTokenLine(line []rune, spans []highlight.Highlight, style syntaxctl.StyleFunc, selected bool, positions []int) string {
	out, _ := renderTokens(line, spans, style, selected, positions, 0)
	return out
}

// renderCursorLine draws line with the cell at cursor reversed.
func renderCursorLine(line []rune, spans []highlight.Highlight, style syntaxctl.StyleFunc, cursor int) string {
	cursor = clamp(cursor, 0, len(line))
	head, col := renderTokens(line[:cursor], clipSpans(spans, 0, cursor), style, false, nil, 0)

	cell := " "
	cat, styled := grammar.Category(0), false
	if cursor < len(line) {
		cell = string(line[cursor])
		if line[cursor] == '\t' {
			cell = strings.Repeat(" ", tabWidth-col%tabWidth)
		}
		for _, sp := range spans {
			if sp.Range.Contains(cursor) {
				cat, styled = sp.Cat, true
				break
			}
		}
	}
	cellStyle := tokenStyle(nil, 0, false)
	if styled {
		cellStyle = tokenStyle(style, cat, false)
	}
	col += utf8RuneCount(cell)

	if cursor >= len(line) {
		return head + cellStyle.Reverse(true).Render(cell)
	}
	tail, _ := renderTokens(line[cursor+1:], clipSpans(spans, cursor+1, len(line)), style, false, nil, col)
	return head + cellStyle.Reverse(true).Render(cell) + tail
}

// clipSpans keeps the parts of spans inside [lo, hi), relative to lo.
func clipSpans(spans []highlight.Highlight, lo, hi int) []highlight.Highlight {
	window := textrange.Range{Start: lo, End: hi}
	var out []highlight.Highlight
	for _, sp := range spans {
		if r, ok := sp.Range.Intersection(window); ok && !r.IsEmpty() {
			out = append(out, highlight.Highlight{Cat: sp.Cat, Range: r.Shift(-lo)})
		}
	}
	return out
}

// renderTokens renders line starting at display column col and returns
// the column after it.
func renderTokens(line []rune, spans []highlight.Highlight, style syntaxctl.StyleFunc, selected bool, positions []int, col int) (string, int) {
	if len(line) == 0 {
		return "", col
	}

	emphasis := buildEmphasisMask(len(line), positions)

	var b strings.Builder
	write := func(start, end int, st lipgloss.Style) {
		for i := start; i < end; {
			emph := emphasisAt(emphasis, i)
			j := i + 1
			for j < end && emphasisAt(emphasis, j) == emph {
				j++
			}
			s := st
			if emph {
				s = s.Bold(true).Underline(true)
			}
			var chunk strings.Builder
			for _, r := range line[i:j] {
				if r == '\t' {
					n := tabWidth - col%tabWidth
					chunk.WriteString(strings.Repeat(" ", n))
					col += n
					continue
				}
				chunk.WriteRune(r)
				col++
			}
			b.WriteString(s.Render(chunk.String()))
			i = j
		}
	}

	pos := 0
	for _, span := range spans {
		start := clamp(span.Range.Start, pos, len(line))
		end := clamp(span.Range.End, start, len(line))
		if start > pos {
			write(pos, start, tokenStyle(nil, span.Cat, selected))
		}
		if end > start {
			write(start, end, tokenStyle(style, span.Cat, selected))
		}
		pos = end
	}
	if pos < len(line) {
		write(pos, len(line), tokenStyle(nil, 0, selected))
	}

	return b.String(), col
}

// tokenStyle resolves the style of cat. A nil style func means plain text.
func tokenStyle(style syntaxctl.StyleFunc, cat grammar.Category, selected bool) lipgloss.Style {
	base := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Text))
	if style != nil {
		if s, ok := style(cat); ok {
			base = s
		}
	}
	if selected {
		base = base.Background(lipgloss.Color(appTheme.SelectionBG))
	}
	return base
}

func lineNumberStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted))
}

func buildEmphasisMask(runeLen int, positions []int) []bool {
	if runeLen <= 0 || len(positions) == 0 {
		return nil
	}
	mask := make([]bool, runeLen)
	for _, pos := range positions {
		if pos >= 0 && pos < runeLen {
			mask[pos] = true
		}
	}
	return mask
}

func emphasisAt(mask []bool, idx int) bool {
	return idx >= 0 && idx < len(mask) && mask[idx]
}

func renderOutlineTitle(it outline.Item, q fuzzy.Query, selected bool) string {
	style := outlineItemStyle(it)
	if selected {
		style = style.Background(lipgloss.Color(appTheme.SelectionBG))
	}
	runes := []rune(it.Title)
	emphasis := buildEmphasisMask(len(runes), q.Positions(it.Title))

	var b strings.Builder
	for i := 0; i < len(runes); {
		emph := emphasisAt(emphasis, i)
		j := i + 1
		for j < len(runes) && emphasisAt(emphasis, j) == emph {
			j++
		}
		s := style
		if emph {
			s = s.Bold(true).Underline(true)
		}
		b.WriteString(s.Render(string(runes[i:j])))
		i = j
	}
	return b.String()
}

var kindLabels = map[grammar.OutlineKind]string{
	grammar.OutlineContainer: "type",
	grammar.OutlineFunction:  "func",
	grammar.OutlineValue:     "val ",
	grammar.OutlineHeading:   "head",
	grammar.OutlineMark:      "mark",
	grammar.OutlineReference: "ref ",
}

func renderSymbol(c candidate.Candidate, q fuzzy.Query) string {
	label, ok := kindLabels[c.Kind]
	if !ok {
		label = "    "
	}
	tag := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Dim)).Render(label)
	return tag + " " + renderOutlineTitle(outline.Item{Title: c.Key, Kind: c.Kind}, q, false)
}
