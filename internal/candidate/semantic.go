package candidate

import (
	"strings"

	"hlkit/internal/grammar"
	"hlkit/internal/outline"
)

// Kind scores break ties between equal fuzzy matches: declarations of
// types and callables come before document structure and bookmarks.
const (
	containerScore int16 = 400
	functionScore  int16 = 320
	headingScore   int16 = 260
	valueScore     int16 = 200
	markScore      int16 = 140
	referenceScore int16 = 80

	// levelPenalty is taken once per nesting level, up to maxPenaltyLevels.
	levelPenalty     int16 = 30
	maxPenaltyLevels       = 4
)

func candidateSemanticScore(cand *Candidate) int16 {
	if cand == nil {
		return 0
	}
	if cand.SemanticScore != 0 {
		return cand.SemanticScore
	}
	return semanticScore(cand.Kind, cand.Level)
}

// semanticScore ranks an outline item by its kind, with nested items
// below top-level items of the same kind. Kinds without a score rank 0.
func semanticScore(kind grammar.OutlineKind, level int) int16 {
	base := kindScore(kind)
	if base == 0 {
		return 0
	}
	return base - int16(min(max(level, 0), maxPenaltyLevels))*levelPenalty
}

func kindScore(kind grammar.OutlineKind) int16 {
	switch kind {
	case grammar.OutlineContainer:
		return containerScore
	case grammar.OutlineFunction:
		return functionScore
	case grammar.OutlineHeading:
		return headingScore
	case grammar.OutlineValue:
		return valueScore
	case grammar.OutlineMark:
		return markScore
	case grammar.OutlineReference:
		return referenceScore
	default:
		return 0
	}
}

// nestingDepths returns how deep each item sits in a normalized outline.
// Level indents give the depth directly. A raw indent nests under the
// closest earlier item whose indent is a strict prefix of it.
func nestingDepths(items []outline.Item) []int {
	out := make([]int, len(items))
	var stack []string
	for i, it := range items {
		if it.IsSeparator() {
			continue
		}
		if level, ok := it.Indent.Level(); ok {
			out[i] = level
			continue
		}
		raw := it.Indent.Raw
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(raw) > len(top) && strings.HasPrefix(raw, top) {
				break
			}
			stack = stack[:len(stack)-1]
		}
		out[i] = len(stack)
		stack = append(stack, raw)
	}
	return out
}
