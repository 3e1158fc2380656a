package syntaxctl

import (
	"sort"

	"hlkit/internal/highlight"
	"hlkit/internal/textrange"
)

// parseRange widens dirty to the range a highlight pass has to scan.
// Short buffers and whole-buffer edits are always scanned completely.
// Otherwise the range grows to whole lines, then to any applied span
// crossing either bound.
func parseRange(text []rune, dirty textrange.Range, applied []highlight.Highlight, minimum int) textrange.Range {
	whole := textrange.Range{Start: 0, End: len(text)}
	if dirty == whole || len(text) <= minimum {
		return whole
	}

	r := textrange.LineRange(text, dirty)
	if r.Start > 0 {
		if span, ok := effectiveRange(applied, r.Start); ok {
			r.Start = span.Start
		}
	}
	if r.End < whole.End {
		if span, ok := effectiveRange(applied, r.End); ok {
			r.End = span.End
		}
	}
	if r.End < minimum {
		r.Start = 0
	}
	return r
}

// effectiveRange returns the run of one category covering pos, joining
// spans that touch.
func effectiveRange(hs []highlight.Highlight, pos int) (textrange.Range, bool) {
	i := sort.Search(len(hs), func(i int) bool { return hs[i].Range.End > pos })
	if i == len(hs) || !hs[i].Range.Contains(pos) {
		return textrange.Range{}, false
	}
	cat := hs[i].Cat
	r := hs[i].Range
	for j := i - 1; j >= 0 && hs[j].Cat == cat && hs[j].Range.End == r.Start; j-- {
		r.Start = hs[j].Range.Start
	}
	for j := i + 1; j < len(hs) && hs[j].Cat == cat && hs[j].Range.Start == r.End; j++ {
		r.End = hs[j].Range.End
	}
	return r, true
}

// replaceSpans drops everything applied inside rng, keeping the parts of
// spans sticking out of it, then inserts fresh.
func replaceSpans(applied []highlight.Highlight, rng textrange.Range, fresh []highlight.Highlight) []highlight.Highlight {
	out := make([]highlight.Highlight, 0, len(applied)+len(fresh))
	for _, h := range applied {
		if !h.Range.Intersects(rng) {
			out = append(out, h)
			continue
		}
		if h.Range.Start < rng.Start {
			out = append(out, highlight.Highlight{Cat: h.Cat, Range: textrange.Range{Start: h.Range.Start, End: rng.Start}})
		}
		if h.Range.End > rng.End {
			out = append(out, highlight.Highlight{Cat: h.Cat, Range: textrange.Range{Start: rng.End, End: h.Range.End}})
		}
	}
	out = append(out, fresh...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}

// shiftSpans moves applied spans to follow an edit. Text replaced by the
// edit loses its category; inserted text extends a span that encloses it.
func shiftSpans(applied []highlight.Highlight, edited textrange.Range, delta int) []highlight.Highlight {
	oldEnd := edited.End - delta
	remap := func(p, inside int) int {
		switch {
		case p <= edited.Start:
			return p
		case p >= oldEnd:
			return p + delta
		default:
			return inside
		}
	}

	out := applied[:0:0]
	for _, h := range applied {
		r := textrange.Range{
			Start: remap(h.Range.Start, edited.End),
			End:   remap(h.Range.End, edited.Start),
		}
		if r.IsEmpty() {
			continue
		}
		out = append(out, highlight.Highlight{Cat: h.Cat, Range: r})
	}
	return out
}
