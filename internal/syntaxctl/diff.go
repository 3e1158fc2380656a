package syntaxctl

import (
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"hlkit/internal/textrange"
)

// EditBetween reports the region of next that differs from prev and the
// change in length, as Invalidate expects them. ok is false when the
// texts are equal.
func EditBetween(prev, next string) (edited textrange.Range, delta int, ok bool) {
	if prev == next {
		return textrange.Range{}, 0, false
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 200 * time.Millisecond
	diffs := dmp.DiffMain(prev, next, false)

	start, end, pos := -1, 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffInsert:
			if start < 0 {
				start = pos
			}
			pos += n
			end = pos
		case diffmatchpatch.DiffDelete:
			if start < 0 {
				start = pos
			}
			end = max(end, pos)
		}
	}
	if start < 0 {
		return textrange.Range{}, 0, false
	}

	delta = utf8.RuneCountInString(next) - utf8.RuneCountInString(prev)
	return textrange.Range{Start: start, End: end}, delta, true
}
