package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hlkit/internal/fuzzy"
	"hlkit/internal/textrange"
)

const footerHelp = "ctrl+s save  ctrl+f filter outline  ctrl+n/ctrl+p next/prev item  ctrl+o toggle outline  ctrl+q quit"

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	body := m.renderText()
	if m.showOutline {
		sep := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Dim)).
			Render(strings.TrimSuffix(strings.Repeat("│\n", m.view.Height), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, sep, m.renderOutline())
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m model) renderHeader() string {
	if m.filterFocused {
		return padRightANSI(m.filter.View(), m.width)
	}

	name := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathFile)).Bold(true).Render(filepath.Base(m.path))
	parts := []string{name}
	if m.changed {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Accent)).Render("[+]"))
	}
	meta := lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.PathMeta))
	line := textrange.LineNumber(m.text, m.cursor)
	col := m.cursor - textrange.LineStart(m.text, m.cursor) + 1
	parts = append(parts, meta.Render(fmt.Sprintf("%d:%d", line, col)), meta.Render(m.syntaxName))
	if it, ok := m.items.ItemAt(m.cursor); ok && !it.IsSeparator() {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Header)).Render("› "+it.Title))
	}

	switch {
	case m.errMsg != "":
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Error)).Render(m.errMsg))
	case m.status != "":
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Muted)).Render(m.status))
	}
	return truncateANSI(strings.Join(parts, "  "), m.width)
}

// renderText draws the visible lines with a line number gutter and feeds
// them through the viewport.
func (m model) renderText() string {
	spans := lineSpans(m.text, m.highlights)
	cursorLine := textrange.LineNumber(m.text, m.cursor) - 1
	gutter := len(fmt.Sprint(len(spans)))

	var b strings.Builder
	start := 0
	for i := 0; i < m.offset && start < len(m.text); i++ {
		start = textrange.LineEnd(m.text, start)
	}
	for i := m.offset; i < m.offset+m.view.Height && i < len(spans); i++ {
		end := textrange.LineContentsEnd(m.text, start)
		line := m.text[start:end]

		num := lineNumberStyle()
		if i == cursorLine {
			num = num.Foreground(lipgloss.Color(appTheme.Accent))
		}
		b.WriteString(num.Render(fmt.Sprintf("%*d ", gutter, i+1)))
		if i == cursorLine {
			b.WriteString(renderCursorLine(line, spans[i], categoryStyle, m.cursor-start))
		} else {
			b.WriteString(renderTokenLine(line, spans[i], categoryStyle, false, nil))
		}
		b.WriteByte('\n')
		start = textrange.LineEnd(m.text, end)
	}

	view := m.view
	view.SetContent(strings.TrimSuffix(b.String(), "\n"))
	return view.View()
}

func (m model) renderOutline() string {
	style := lipgloss.NewStyle().Width(outlinePaneWidth).Height(m.view.Height)
	if len(m.filtered) == 0 {
		msg := "no outline"
		if m.filter.Value() != "" {
			msg = "no matches"
		}
		return style.Foreground(lipgloss.Color(appTheme.Muted)).Render(msg)
	}

	q := fuzzy.NewQuery(m.filter.Value())
	current := -1
	if m.filterFocused {
		current = m.outlineCursor
	} else if it, ok := m.filtered.ItemAt(m.cursor); ok {
		for i := range m.filtered {
			if m.filtered[i].Range == it.Range && m.filtered[i].Title == it.Title {
				current = i
				break
			}
		}
	}

	first := 0
	if current >= m.view.Height {
		first = current - m.view.Height + 1
	}
	var rows []string
	for i := first; i < len(m.filtered) && len(rows) < m.view.Height; i++ {
		it := m.filtered[i]
		if it.IsSeparator() {
			rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Dim)).
				Render(strings.Repeat("─", outlinePaneWidth)))
			continue
		}
		row := it.Indent.Prefix(2) + renderOutlineTitle(it, q, i == current)
		rows = append(rows, truncateANSI(row, outlinePaneWidth))
	}
	return style.Render(strings.Join(rows, "\n"))
}

func (m model) renderFooter() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Dim)).Render(truncateText(footerHelp, m.width))
}
