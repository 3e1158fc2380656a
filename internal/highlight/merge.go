package highlight

import (
	"sort"

	"hlkit/internal/grammar"
	"hlkit/internal/textrange"
)

// Merge flattens possibly overlapping ranges into sorted, non-overlapping
// highlights. Categories are applied from comments down to keywords and
// each one only keeps what a later category has not claimed. The covered
// positions equal the union of the input.
func Merge(byCat map[grammar.Category][]textrange.Range) []Highlight {
	var (
		out     []Highlight
		claimed []textrange.Range
	)
	for i := len(grammar.Categories) - 1; i >= 0; i-- {
		cat := grammar.Categories[i]
		own := normalize(byCat[cat])
		if len(own) == 0 {
			continue
		}
		for _, r := range subtract(own, claimed) {
			out = append(out, Highlight{Cat: cat, Range: r})
		}
		claimed = union(claimed, own)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}

// normalize sorts rs and joins overlapping or touching ranges. Empty
// ranges are dropped.
func normalize(rs []textrange.Range) []textrange.Range {
	if len(rs) == 0 {
		return nil
	}
	sorted := make([]textrange.Range, 0, len(rs))
	for _, r := range rs {
		if !r.IsEmpty() {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := sorted[:0]
	for _, r := range sorted {
		if n := len(out); n > 0 && r.Start <= out[n-1].End {
			out[n-1].End = max(out[n-1].End, r.End)
			continue
		}
		out = append(out, r)
	}
	return out
}

// subtract removes the claimed positions from own. Both are normalized.
func subtract(own, claimed []textrange.Range) []textrange.Range {
	var out []textrange.Range
	j := 0
	for _, r := range own {
		start := r.Start
		for j < len(claimed) && claimed[j].End <= start {
			j++
		}
		for k := j; k < len(claimed) && claimed[k].Start < r.End; k++ {
			if claimed[k].Start > start {
				out = append(out, textrange.Range{Start: start, End: claimed[k].Start})
			}
			start = max(start, claimed[k].End)
		}
		if start < r.End {
			out = append(out, textrange.Range{Start: start, End: r.End})
		}
	}
	return out
}

func union(a, b []textrange.Range) []textrange.Range {
	all := make([]textrange.Range, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return normalize(all)
}
