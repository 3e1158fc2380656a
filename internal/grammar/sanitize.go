package grammar

import (
	"sort"
	"strings"
)

// Sanitized returns a copy without empty entries and with rules sorted
// case-insensitively, the form grammars are saved in.
func (g Grammar) Sanitized() Grammar {
	out := g.Clone()

	out.FileMap.Extensions = dropEmpty(out.FileMap.Extensions)
	out.FileMap.Filenames = dropEmpty(out.FileMap.Filenames)
	out.FileMap.Interpreters = dropEmpty(out.FileMap.Interpreters)

	for cat, rules := range out.Highlights {
		kept := rules[:0]
		for _, rule := range rules {
			if !rule.IsEmpty() {
				kept = append(kept, rule)
			}
		}
		if len(kept) == 0 {
			delete(out.Highlights, cat)
			continue
		}
		sort.SliceStable(kept, func(i, j int) bool {
			return lessFold(kept[i].Begin, kept[j].Begin)
		})
		out.Highlights[cat] = kept
	}

	outlines := out.Outlines[:0]
	for _, o := range out.Outlines {
		if !o.IsEmpty() {
			outlines = append(outlines, o)
		}
	}
	sort.SliceStable(outlines, func(i, j int) bool {
		return lessFold(outlines[i].Pattern, outlines[j].Pattern)
	})
	out.Outlines = outlines

	inlines := out.Comments.Inlines[:0]
	for _, c := range out.Comments.Inlines {
		if c.Begin != "" {
			inlines = append(inlines, c)
		}
	}
	out.Comments.Inlines = inlines

	blocks := out.Comments.Blocks[:0]
	for _, c := range out.Comments.Blocks {
		if c.Begin != "" && c.End != "" {
			blocks = append(blocks, c)
		}
	}
	out.Comments.Blocks = blocks

	completions := out.Completions[:0]
	for _, w := range out.Completions {
		if w.Text != "" {
			completions = append(completions, w)
		}
	}
	sort.SliceStable(completions, func(i, j int) bool {
		return lessFold(completions[i].Text, completions[j].Text)
	})
	out.Completions = completions

	return out
}

// CompletionWords returns the explicit completion list, or every plain
// word rule when the grammar has none.
func (g Grammar) CompletionWords() []CompletionWord {
	var explicit []CompletionWord
	for _, w := range g.Completions {
		if w.Text != "" {
			explicit = append(explicit, w)
		}
	}
	if len(explicit) > 0 {
		return explicit
	}

	var words []CompletionWord
	for _, cat := range Categories {
		for _, rule := range g.Highlights[cat] {
			if rule.End != nil || rule.IsRegex {
				continue
			}
			text := strings.TrimSpace(rule.Begin)
			if text == "" {
				continue
			}
			words = append(words, CompletionWord{Text: text, Type: &cat})
		}
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Text < words[j].Text })
	return words
}

func dropEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
