package outline

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"github.com/sourcegraph/conc/pool"

	"hlkit/internal/grammar"
	"hlkit/internal/matcher"
	"hlkit/internal/textrange"
)

// separatorTemplate marks a separator rule in grammars without kinds.
const separatorTemplate = "-"

type Extractor struct {
	rule grammar.Outline
	re   *regexp2.Regexp
}

func NewExtractor(rule grammar.Outline) (*Extractor, error) {
	re, err := matcher.CompileRegex(rule.Pattern, rule.IgnoreCase, false)
	if err != nil {
		return nil, err
	}
	return &Extractor{rule: rule, re: re}, nil
}

func (e *Extractor) Rule() grammar.Outline { return e.rule }

func (e *Extractor) separator() bool {
	return e.rule.Kind == grammar.OutlineSeparator || e.rule.Template == separatorTemplate
}

func (e *Extractor) needsLines() bool {
	return strings.Contains(e.rule.Template, "$LN")
}

// Items runs the rule over the whole buffer.
func (e *Extractor) Items(ctx context.Context, text []rune) ([]Item, error) {
	var lines textrange.Lines
	if e.needsLines() {
		lines = textrange.NewLines(text)
	}
	return e.items(ctx, text, lines)
}

func (e *Extractor) items(ctx context.Context, text []rune, lines textrange.Lines) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Item
	m, err := e.re.FindRunesMatchStartingAt(text, 0)
	for ; m != nil && err == nil; m, err = e.re.FindNextMatch(m) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := textrange.Range{Start: m.Index, End: m.Index + m.Length}

		if e.separator() {
			out = append(out, Separator(r, RawIndent("")))
			continue
		}
		if r.IsEmpty() {
			continue
		}

		title := string(text[r.Start:r.End])
		if e.rule.Template != "" {
			title = expand(e.rule.Template, m, lines)
		}
		indent, title := splitIndent(title)
		title = collapseSpaces(title)
		if title == "" {
			continue
		}
		out = append(out, Item{
			Title:  title,
			Range:  r,
			Kind:   e.rule.Kind,
			Indent: RawIndent(indent),
			Style:  Style{Bold: e.rule.Bold, Italic: e.rule.Italic, Underline: e.rule.Underline},
		})
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// expand substitutes $0 to $9 with capture groups and $LN with the
// one-based line number of the match.
func expand(template string, m *regexp2.Match, lines textrange.Lines) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next >= '0' && next <= '9':
			if g := m.GroupByNumber(int(next - '0')); g != nil && len(g.Captures) > 0 {
				b.WriteString(g.String())
			}
			i++
		case strings.HasPrefix(template[i+1:], "LN"):
			b.WriteString(strconv.Itoa(lines.Number(m.Index)))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func splitIndent(s string) (indent, rest string) {
	rest = strings.TrimLeftFunc(s, unicode.IsSpace)
	return s[:len(s)-len(rest)], rest
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Extract runs every extractor concurrently and returns their items
// sorted by location. Items at the same location keep extractor order.
func Extract(ctx context.Context, extractors []*Extractor, text []rune) ([]Item, error) {
	if len(extractors) == 0 {
		return nil, nil
	}

	// line starts are shared by every rule that expands $LN
	var lines textrange.Lines
	for _, e := range extractors {
		if e.needsLines() {
			lines = textrange.NewLines(text)
			break
		}
	}

	p := pool.NewWithResults[[]Item]().WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, e := range extractors {
		p.Go(func(ctx context.Context) ([]Item, error) {
			return e.items(ctx, text, lines)
		})
	}
	parts, err := p.Wait()
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, part := range parts {
		items = append(items, part...)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Range.Start < items[j].Range.Start })
	return items, nil
}

// Compile builds the extractors of g, skipping rules that fail to compile.
func Compile(g grammar.Grammar) ([]*Extractor, []error) {
	var (
		out  []*Extractor
		errs []error
	)
	for _, rule := range g.Outlines {
		e, err := NewExtractor(rule)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, e)
	}
	return out, errs
}
