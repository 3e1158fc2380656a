// Package highlight turns a grammar into a parser producing sorted,
// non-overlapping category spans for a range of a buffer.
package highlight

import (
	"context"
	"fmt"

	"hlkit/internal/grammar"
	"hlkit/internal/textrange"
)

type Highlight struct {
	Cat   grammar.Category
	Range textrange.Range
}

func (h Highlight) String() string {
	return fmt.Sprintf("%s%s", h.Cat, h.Range)
}

// Parser produces the highlights inside rng. The result is sorted by start
// and pairwise non-overlapping. Implementations are safe for concurrent use.
type Parser interface {
	Parse(ctx context.Context, text []rune, rng textrange.Range) ([]Highlight, error)
}

// Empty never highlights anything.
type Empty struct{}

func (Empty) Parse(context.Context, []rune, textrange.Range) ([]Highlight, error) {
	return nil, nil
}

func (Empty) IsEmpty() bool { return true }

// ByCategory groups highlights by category, keeping order.
func ByCategory(hs []Highlight) map[grammar.Category][]textrange.Range {
	out := make(map[grammar.Category][]textrange.Range)
	for _, h := range hs {
		out[h.Cat] = append(out[h.Cat], h.Range)
	}
	return out
}
