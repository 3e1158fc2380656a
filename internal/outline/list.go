package outline

import (
	"sort"

	"hlkit/internal/fuzzy"
	"hlkit/internal/textrange"
)

// List is a published outline, sorted by location.
type List []Item

// ItemAt returns the last non-separator item starting at or before loc.
func (l List) ItemAt(loc int) (Item, bool) {
	i := l.upperBound(loc)
	for i--; i >= 0; i-- {
		if !l[i].IsSeparator() {
			return l[i], true
		}
	}
	return Item{}, false
}

// Previous returns the non-separator item before the one containing r.
func (l List) Previous(r textrange.Range) (Item, bool) {
	cur, ok := l.ItemAt(r.Start)
	if !ok {
		return Item{}, false
	}
	i := sort.Search(len(l), func(i int) bool { return l[i].Range.Start >= cur.Range.Start })
	for i--; i >= 0; i-- {
		if !l[i].IsSeparator() {
			return l[i], true
		}
	}
	return Item{}, false
}

// Next returns the first non-separator item starting after r.
func (l List) Next(r textrange.Range) (Item, bool) {
	for i := l.upperBound(r.End); i < len(l); i++ {
		if !l[i].IsSeparator() {
			return l[i], true
		}
	}
	return Item{}, false
}

// Filter keeps the items whose title fuzzily matches query. An empty
// query keeps everything, separators included.
func (l List) Filter(query string) List {
	q := fuzzy.NewQuery(query)
	if q.IsEmpty() {
		return l
	}
	var out List
	for _, it := range l {
		if !it.IsSeparator() && q.Match(it.Title) {
			out = append(out, it)
		}
	}
	return out
}

// upperBound is the index of the first item starting after loc.
func (l List) upperBound(loc int) int {
	return sort.Search(len(l), func(i int) bool { return l[i].Range.Start > loc })
}
