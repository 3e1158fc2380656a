package outline

import (
	"slices"

	"hlkit/internal/grammar"
)

// Policy controls how Normalize compacts indent levels.
type Policy struct {
	// SectionMarkerKinds never move the depth of the items after them.
	SectionMarkerKinds []grammar.OutlineKind

	// AdjustSectionMarkerDepth pins a marker to the deepest of the item
	// before it, its own level and the next non-marker item.
	AdjustSectionMarkerDepth bool

	// FlattenLevels puts every item with a level at depth 0.
	FlattenLevels bool
}

var DefaultPolicy = Policy{SectionMarkerKinds: []grammar.OutlineKind{grammar.OutlineSeparator}}

func (p Policy) IsSectionMarker(kind grammar.OutlineKind) bool {
	return kind != "" && slices.Contains(p.SectionMarkerKinds, kind)
}

// Normalize rewrites every level so nesting steps by one without gaps.
// Items without a level are returned untouched. The input is not modified.
func Normalize(items []Item, p Policy) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	if p.FlattenLevels {
		for i := range out {
			if _, ok := out[i].Indent.Level(); ok {
				out[i].Indent = LevelIndent(0)
			}
		}
		return out
	}

	next := make([]*int, len(items))
	if p.AdjustSectionMarkerDepth {
		var nearest *int
		for i := len(items) - 1; i >= 0; i-- {
			next[i] = nearest
			if !p.IsSectionMarker(items[i].Kind) {
				nearest = nil
				if d, ok := items[i].Indent.Level(); ok {
					nearest = &d
				}
			}
		}
	}

	var stack []int
	for i, item := range items {
		depth, ok := item.Indent.Level()
		if !ok {
			continue
		}

		if !p.IsSectionMarker(item.Kind) {
			out[i].Indent = LevelIndent(normalizeDepth(depth, &stack))
			continue
		}

		if p.AdjustSectionMarkerDepth {
			if len(stack) > 0 {
				depth = max(depth, stack[len(stack)-1])
			}
			if next[i] != nil {
				depth = max(depth, *next[i])
			}
		}
		scratch := slices.Clone(stack)
		out[i].Indent = LevelIndent(normalizeDepth(depth, &scratch))
	}
	return out
}

func normalizeDepth(depth int, stack *[]int) int {
	s := *stack
	switch {
	case len(s) == 0 || depth > s[len(s)-1]:
		s = append(s, depth)
	case depth < s[len(s)-1]:
		for len(s) > 0 && s[len(s)-1] > depth {
			s = s[:len(s)-1]
		}
		if len(s) == 0 {
			s = append(s, depth)
		} else {
			s[len(s)-1] = depth
		}
	}
	*stack = s
	return len(s) - 1
}
