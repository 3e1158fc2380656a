package grammar

import (
	"fmt"
	"strings"
)

// Category is a lexical classification. Later categories win overlaps.
type Category int

const (
	Keywords Category = iota
	Commands
	Types
	Attributes
	Variables
	Values
	Numbers
	Strings
	Characters
	Comments
)

var Categories = []Category{
	Keywords,
	Commands,
	Types,
	Attributes,
	Variables,
	Values,
	Numbers,
	Strings,
	Characters,
	Comments,
}

var categoryNames = [...]string{
	Keywords:   "keywords",
	Commands:   "commands",
	Types:      "types",
	Attributes: "attributes",
	Variables:  "variables",
	Values:     "values",
	Numbers:    "numbers",
	Strings:    "strings",
	Characters: "characters",
	Comments:   "comments",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) Valid() bool { return c >= Keywords && c <= Comments }

func ParseCategory(v string) (Category, error) {
	name := strings.TrimSpace(strings.ToLower(v))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, &DecodeError{Field: "category", Value: v}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d (%w)", int(c), ErrEncode)
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
