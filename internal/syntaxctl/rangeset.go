package syntaxctl

import (
	"sort"

	"hlkit/internal/textrange"
)

// EditedRangeSet records the regions of a buffer changed since the last
// completed highlight pass. Ranges are kept sorted and disjoint, and
// always refer to the current text.
type EditedRangeSet struct {
	ranges []textrange.Range
}

// NewEditedRangeSet starts with the whole of r dirty.
func NewEditedRangeSet(r textrange.Range) EditedRangeSet {
	var s EditedRangeSet
	s.Reset(r)
	return s
}

// Append records an edit that left edited in the new text and changed the
// buffer length by delta.
func (s *EditedRangeSet) Append(edited textrange.Range, delta int) {
	oldEnd := edited.End - delta
	remap := func(p, inside int) int {
		switch {
		case p < edited.Start:
			return p
		case p >= oldEnd:
			return p + delta
		default:
			return inside
		}
	}

	next := make([]textrange.Range, 0, len(s.ranges)+1)
	for _, r := range s.ranges {
		next = append(next, textrange.Range{
			Start: remap(r.Start, edited.Start),
			End:   remap(r.End, edited.End),
		})
	}
	next = append(next, edited)
	s.ranges = coalesce(next)
}

// Reset replaces every recorded range with r.
func (s *EditedRangeSet) Reset(r textrange.Range) {
	s.ranges = []textrange.Range{r}
}

func (s *EditedRangeSet) Clear() { s.ranges = nil }

func (s *EditedRangeSet) IsEmpty() bool { return len(s.ranges) == 0 }

func (s *EditedRangeSet) Ranges() []textrange.Range {
	return append([]textrange.Range(nil), s.ranges...)
}

// Range is the smallest range covering every recorded edit.
func (s *EditedRangeSet) Range() (textrange.Range, bool) {
	if len(s.ranges) == 0 {
		return textrange.Range{}, false
	}
	return textrange.Range{Start: s.ranges[0].Start, End: s.ranges[len(s.ranges)-1].End}, true
}

func coalesce(rs []textrange.Range) []textrange.Range {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })
	out := rs[:0]
	for _, r := range rs {
		if r.End < r.Start {
			r.End = r.Start
		}
		if n := len(out); n > 0 && out[n-1].Touches(r) {
			out[n-1] = out[n-1].Union(r)
			continue
		}
		out = append(out, r)
	}
	return out
}
