package highlight

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"hlkit/internal/grammar"
	"hlkit/internal/matcher"
	"hlkit/internal/nestable"
	"hlkit/internal/textrange"
)

// RegexParser is an immutable compiled grammar. One Parse call scans with
// every matcher concurrently, plus one task for the nestable tokens.
type RegexParser struct {
	extractors map[grammar.Category][]matcher.Matcher
	nestables  map[nestable.Token]grammar.Category
	escape     nestable.EscapeRule
	workers    int
}

// Extractors returns the matchers per category. The result must not be
// modified.
func (p *RegexParser) Extractors() map[grammar.Category][]matcher.Matcher { return p.extractors }

func (p *RegexParser) matcherCount() int {
	n := 0
	for _, ms := range p.extractors {
		n += len(ms)
	}
	return n
}

// Nestables returns the nestable tokens and their categories. The result
// must not be modified.
func (p *RegexParser) Nestables() map[nestable.Token]grammar.Category { return p.nestables }

func (p *RegexParser) EscapeRule() nestable.EscapeRule { return p.escape }

func (p *RegexParser) IsEmpty() bool {
	return len(p.extractors) == 0 && len(p.nestables) == 0
}

// WithWorkers returns a copy of p limited to n concurrent scans. n <= 0
// means no limit.
func (p *RegexParser) WithWorkers(n int) *RegexParser {
	cp := *p
	cp.workers = n
	return &cp
}

type partial map[grammar.Category][]textrange.Range

func (p *RegexParser) Parse(ctx context.Context, text []rune, rng textrange.Range) ([]Highlight, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	rng = rng.Clamp(len(text))

	tasks := pool.NewWithResults[partial]()
	if p.workers > 0 {
		tasks = tasks.WithMaxGoroutines(p.workers)
	}
	scans := tasks.WithContext(ctx).WithCancelOnError().WithFirstError()

	cats := make([]grammar.Category, 0, len(p.extractors))
	for cat := range p.extractors {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, cat := range cats {
		for _, m := range p.extractors[cat] {
			scans.Go(func(ctx context.Context) (partial, error) {
				ranges, err := m.Ranges(ctx, text, rng)
				if err != nil {
					return nil, err
				}
				return partial{cat: ranges}, nil
			})
		}
	}
	if len(p.nestables) > 0 {
		scans.Go(func(ctx context.Context) (partial, error) {
			return nestable.Resolve(ctx, p.nestables, text, rng, p.escape)
		})
	}

	parts, err := scans.Wait()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := map[grammar.Category][]textrange.Range{}
	for _, part := range parts {
		for cat, ranges := range part {
			merged[cat] = append(merged[cat], ranges...)
		}
	}
	return Merge(merged), nil
}
