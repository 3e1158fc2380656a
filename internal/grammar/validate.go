package grammar

import (
	"fmt"
	"sort"

	"hlkit/internal/matcher"
)

type Role string

const (
	RoleNone  Role = ""
	RoleBegin Role = "begin"
	RoleEnd   Role = "end"
)

// ValidationError is one lint finding. Code is one of the ErrInvalid
// sentinels; Location is a category name, "outline" or "comment".
type ValidationError struct {
	Code     error
	Location string
	Role     Role
	String   string
}

func (e *ValidationError) Error() string {
	where := e.Location
	if e.Role != RoleNone {
		where += " " + string(e.Role) + " string"
	}
	return fmt.Sprintf("%s %q: %v", where, e.String, e.Code)
}

func (e *ValidationError) Unwrap() error { return e.Code }

// Validate lints g. The same rule may appear in different categories; an
// outline pattern may appear once.
func Validate(g Grammar) []*ValidationError {
	var errs []*ValidationError

	for _, cat := range Categories {
		rules := append([]Highlight(nil), g.Highlights[cat]...)
		sort.SliceStable(rules, func(i, j int) bool {
			if rules[i].Begin != rules[j].Begin {
				return rules[i].Begin < rules[j].Begin
			}
			if rules[i].EndString() != rules[j].EndString() {
				return rules[i].EndString() < rules[j].EndString()
			}
			return rules[i].End == nil && rules[j].End != nil
		})

		for i, rule := range rules {
			if i > 0 && sameTerm(rules[i-1], rule) {
				errs = append(errs, &ValidationError{Code: ErrDuplicated, Location: cat.String(), Role: RoleBegin, String: rule.Begin})
				continue
			}
			if !rule.IsRegex {
				continue
			}
			if _, err := matcher.CompileRegex(rule.Begin, rule.IgnoreCase, false); err != nil {
				errs = append(errs, &ValidationError{Code: ErrInvalidRegularExpression, Location: cat.String(), Role: RoleBegin, String: rule.Begin})
			}
			if rule.End != nil {
				if _, err := matcher.CompileRegex(*rule.End, rule.IgnoreCase, false); err != nil {
					errs = append(errs, &ValidationError{Code: ErrInvalidRegularExpression, Location: cat.String(), Role: RoleEnd, String: *rule.End})
				}
			}
		}
	}

	seen := make(map[string]bool, len(g.Outlines))
	for _, o := range g.Outlines {
		if o.Pattern == "" {
			errs = append(errs, &ValidationError{Code: ErrEmptyPattern, Location: "outline"})
			continue
		}
		if seen[o.Pattern] {
			errs = append(errs, &ValidationError{Code: ErrDuplicated, Location: "outline", String: o.Pattern})
			continue
		}
		seen[o.Pattern] = true
		if _, err := matcher.CompileRegex(o.Pattern, o.IgnoreCase, false); err != nil {
			errs = append(errs, &ValidationError{Code: ErrInvalidRegularExpression, Location: "outline", String: o.Pattern})
		}
	}

	for _, b := range g.Comments.Blocks {
		switch {
		case b.Begin != "" && b.End == "":
			errs = append(errs, &ValidationError{Code: ErrUnbalancedBlockCommentDelimiters, Location: "comment", Role: RoleBegin, String: b.Begin})
		case b.Begin == "" && b.End != "":
			errs = append(errs, &ValidationError{Code: ErrUnbalancedBlockCommentDelimiters, Location: "comment", Role: RoleEnd, String: b.End})
		}
	}

	return errs
}

func sameTerm(a, b Highlight) bool {
	if a.Begin != b.Begin {
		return false
	}
	if (a.End == nil) != (b.End == nil) {
		return false
	}
	return a.End == nil || *a.End == *b.End
}
