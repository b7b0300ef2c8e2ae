package check

import (
	"strings"

	"golang.org/x/text/cases"
)

// Core attributes.
const (
	Strength     = "strength"
	Dexterity    = "dexterity"
	Constitution = "constitution"
	Intelligence = "intelligence"
	Wisdom       = "wisdom"
	Charisma     = "charisma"
)

// DefaultAttribute governs any skill not in the table.
const DefaultAttribute = Intelligence

var skillAttributes = map[string]string{
	"athletics":       Strength,
	"climbing":        Strength,
	"swimming":        Strength,
	"lifting":         Strength,
	"acrobatics":      Dexterity,
	"sleight_of_hand": Dexterity,
	"stealth":         Dexterity,
	"lockpicking":     Dexterity,
	"endurance":       Constitution,
	"arcana":          Intelligence,
	"history":         Intelligence,
	"investigation":   Intelligence,
	"nature":          Intelligence,
	"religion":        Intelligence,
	"animal_handling": Wisdom,
	"insight":         Wisdom,
	"medicine":        Wisdom,
	"perception":      Wisdom,
	"survival":        Wisdom,
	"deception":       Charisma,
	"intimidation":    Charisma,
	"performance":     Charisma,
	"persuasion":      Charisma,
	"seduction":       Charisma,
}

// NormalizeSkill folds case and maps spaces and hyphens to underscores.
func NormalizeSkill(skill string) string {
	s := cases.Fold().String(strings.TrimSpace(skill))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// GoverningAttribute returns the attribute a skill keys off. Lookup is case
// insensitive; unknown skills default to intelligence. Attribute names map
// to themselves so a raw attribute check resolves cleanly.
func GoverningAttribute(skill string) string {
	key := NormalizeSkill(skill)
	if attr, ok := skillAttributes[key]; ok {
		return attr
	}
	if IsAttribute(key) {
		return key
	}
	return DefaultAttribute
}

// IsAttribute reports whether name is one of the six core attributes.
func IsAttribute(name string) bool {
	switch NormalizeSkill(name) {
	case Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma:
		return true
	}
	return false
}

// IsKnownSkill reports whether skill is in the skill table or names an
// attribute directly.
func IsKnownSkill(skill string) bool {
	key := NormalizeSkill(skill)
	if _, ok := skillAttributes[key]; ok {
		return true
	}
	return IsAttribute(key)
}
