package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoverningAttribute(t *testing.T) {
	tests := []struct {
		skill string
		want  string
	}{
		{"stealth", Dexterity},
		{"Stealth", Dexterity},
		{"PERSUASION", Charisma},
		{"athletics", Strength},
		{"Sleight of Hand", Dexterity},
		{"animal-handling", Wisdom},
		{"perception", Wisdom},
		{"wisdom", Wisdom},
		{"basket_weaving", Intelligence},
		{"", Intelligence},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			assert.Equal(t, tt.want, GoverningAttribute(tt.skill))
		})
	}
}

func TestIsKnownSkill(t *testing.T) {
	assert.True(t, IsKnownSkill("Sleight of Hand"))
	assert.True(t, IsKnownSkill("animal-handling"))
	assert.True(t, IsKnownSkill("WISDOM"))
	assert.False(t, IsKnownSkill("basket weaving"))

	assert.True(t, IsAttribute("Charisma"))
	assert.False(t, IsAttribute("stealth"))
}
