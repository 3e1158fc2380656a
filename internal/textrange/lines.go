package textrange

import "sort"

// Lines are terminated by '\n'. Buffers are normalized before they reach
// the engine, so '\r' is ordinary content.

// LineStart returns the index of the first rune of the line containing i.
func LineStart(text []rune, i int) int {
	i = min(max(i, 0), len(text))
	for i > 0 && text[i-1] != '\n' {
		i--
	}
	return i
}

// LineEnd returns the index just past the terminator of the line
// containing i, or len(text) on the last line.
func LineEnd(text []rune, i int) int {
	i = min(max(i, 0), len(text))
	for i < len(text) {
		if text[i] == '\n' {
			return i + 1
		}
		i++
	}
	return i
}

// LineContentsEnd returns the index of the terminator of the line
// containing i, or len(text) on the last line.
func LineContentsEnd(text []rune, i int) int {
	i = min(max(i, 0), len(text))
	for i < len(text) && text[i] != '\n' {
		i++
	}
	return i
}

// LineRange expands r to the whole lines it touches, terminators included.
// An empty range at the start of a line still yields that line.
func LineRange(text []rune, r Range) Range {
	start := LineStart(text, r.Start)
	end := r.End
	if end > r.Start && end > 0 && end <= len(text) && text[end-1] == '\n' {
		return Range{Start: start, End: end}
	}
	return Range{Start: start, End: LineEnd(text, end)}
}

// LineNumber returns the one-based line number of index i.
func LineNumber(text []rune, i int) int {
	i = min(max(i, 0), len(text))
	n := 1
	for _, r := range text[:i] {
		if r == '\n' {
			n++
		}
	}
	return n
}

// Lines holds the start index of every line, for repeated line number
// lookups in one buffer.
type Lines []int

func NewLines(text []rune) Lines {
	starts := Lines{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Number is LineNumber for the buffer l was built from.
func (l Lines) Number(i int) int {
	i = max(i, 0)
	return sort.Search(len(l), func(j int) bool { return l[j] > i })
}

// IndexOf returns the first index >= from where needle occurs in text
// before limit, or -1.
func IndexOf(text []rune, needle []rune, from, limit int) int {
	if len(needle) == 0 {
		return -1
	}
	limit = min(limit, len(text))
	for i := max(from, 0); i+len(needle) <= limit; i++ {
		if text[i] != needle[0] {
			continue
		}
		match := true
		for j := 1; j < len(needle); j++ {
			if text[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
