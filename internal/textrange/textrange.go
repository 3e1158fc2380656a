// Package textrange holds half-open rune ranges and the line arithmetic
// the highlighter and outline passes share.
package textrange

import "fmt"

// Range is a half-open interval [Start, End) of rune indices.
type Range struct {
	Start int
	End   int
}

func New(start, end int) Range {
	if end < start {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) IsEmpty() bool { return r.End <= r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// Contains reports whether i lies inside r.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// ContainsRange reports whether o lies entirely inside r.
func (r Range) ContainsRange(o Range) bool { return o.Start >= r.Start && o.End <= r.End }

// Touches reports whether r and o overlap or share a bound.
func (r Range) Touches(o Range) bool { return r.Start <= o.End && o.Start <= r.End }

// Intersects reports whether r and o share at least one index.
func (r Range) Intersects(o Range) bool { return r.Start < o.End && o.Start < r.End }

func (r Range) Union(o Range) Range {
	return Range{Start: min(r.Start, o.Start), End: max(r.End, o.End)}
}

func (r Range) Intersection(o Range) (Range, bool) {
	out := Range{Start: max(r.Start, o.Start), End: min(r.End, o.End)}
	if out.End < out.Start {
		return Range{}, false
	}
	return out, true
}

func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// Clamp limits r to [0, length).
func (r Range) Clamp(length int) Range {
	start := min(max(r.Start, 0), length)
	end := min(max(r.End, start), length)
	return Range{Start: start, End: end}
}
