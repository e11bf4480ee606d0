package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Difficulty represents the in-game difficulty a run was played on.
// Values are ordered from easiest to hardest.
type Difficulty int

const (
	Harmless Difficulty = iota
	Lenient
	Standard
	Violent
	Brutal
	UltrakillMustDie
)

var difficultyNames = []string{
	Harmless:         "Harmless",
	Lenient:          "Lenient",
	Standard:         "Standard",
	Violent:          "Violent",
	Brutal:           "Brutal",
	UltrakillMustDie: "UltrakillMustDie",
}

// Difficulties returns all difficulties, easiest first
func Difficulties() []Difficulty {
	return []Difficulty{Harmless, Lenient, Standard, Violent, Brutal, UltrakillMustDie}
}

// ParseDifficulty parses a difficulty name
// "Passive" is accepted as the old name of Harmless
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "Passive" {
		return Harmless, nil
	}
	for i, name := range difficultyNames {
		if name == s {
			return Difficulty(i), nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// String returns the difficulty name
func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// UnmarshalYAML decodes a difficulty from its name
func (d *Difficulty) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDifficulty(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
