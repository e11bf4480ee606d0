package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Category represents the rule set a run was performed under
type Category string

const (
	// CategoryP requires a P rank, the most restrictive rule set
	CategoryP Category = "P"
	// CategoryAny only requires finishing without taking damage
	CategoryAny Category = "Any"
	// CategoryNoMo forbids movement abilities and is unrelated to P and Any
	CategoryNoMo Category = "NoMo"
)

// Categories returns all categories in selector order
func Categories() []Category {
	return []Category{CategoryAny, CategoryP, CategoryNoMo}
}

// ParseCategory parses a category name
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryP, CategoryAny, CategoryNoMo:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (expected P, Any or NoMo)", s)
}

// Qualifies reports whether a run of category c belongs on the selected
// category's leaderboard. A P run also counts as an Any run.
func (c Category) Qualifies(selected Category) bool {
	return c == selected || (selected == CategoryAny && c == CategoryP)
}

// Covers reports whether a run of category c can be composed of runs of
// category part, i.e. part is at least as restrictive as c.
func (c Category) Covers(part Category) bool {
	return part.Qualifies(c)
}

// Label returns the display label used on leaderboard pages
func (c Category) Label() string {
	switch c {
	case CategoryAny:
		return "Any%"
	case CategoryP:
		return "P Rank"
	}
	return string(c)
}

// rank orders categories for the final ranking tie-break, most restrictive first
func (c Category) rank() int {
	switch c {
	case CategoryP:
		return 0
	case CategoryAny:
		return 1
	}
	return 2
}

// CompareCategory orders P before Any before NoMo
func CompareCategory(a, b Category) int {
	return a.rank() - b.rank()
}

// UnmarshalYAML decodes and validates a category
func (c *Category) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseCategory(node.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
