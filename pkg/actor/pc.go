// Package actor holds player-character sheets. Runtime hit points, armour
// class and attribute scores live on a d20.Actor built from the sheet.
package actor

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/branch-engine/pkg/check"
)

// ErrNilSpec is returned when building a PC without a sheet.
var ErrNilSpec = errors.New("spec cannot be nil")

// Stats5e represents the six core ability scores
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		check.Strength:     s.Strength,
		check.Dexterity:    s.Dexterity,
		check.Constitution: s.Constitution,
		check.Intelligence: s.Intelligence,
		check.Wisdom:       s.Wisdom,
		check.Charisma:     s.Charisma,
	}
}

func isCoreStat(key string) bool {
	switch key {
	case check.Strength, check.Dexterity, check.Constitution,
		check.Intelligence, check.Wisdom, check.Charisma:
		return true
	}
	return false
}

// PCSpec is the serializable sheet for a Player Character.
// Skills holds per-skill bonuses (proficiency, expertise) keyed by
// normalized skill name.
type PCSpec struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Class           string         `json:"class,omitempty"`
	Level           int            `json:"level,omitempty"`
	Pronouns        string         `json:"pronouns,omitempty"`
	Description     string         `json:"description,omitempty"`
	Stats           Stats5e        `json:"stats"`
	HP              int            `json:"hp,omitempty"`     // Current HP (for serialization)
	MaxHP           int            `json:"max_hp,omitempty"` // Maximum HP
	AC              int            `json:"ac,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Skills          map[string]int `json:"skills,omitempty"`
	Inventory       []string       `json:"inventory,omitempty"`
}

// PC is the runtime representation of a Player Character
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor // Built at runtime from PCSpec
}

// NewPCFromSpec creates a PC from a PCSpec
// This is the preferred way to construct PCs after loading from storage
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, ErrNilSpec
	}
	a, err := buildActor(spec)
	if err != nil {
		return nil, err
	}
	return &PC{Spec: spec, Actor: a}, nil
}

func buildActor(spec *PCSpec) (*d20.Actor, error) {
	// Core stats plus normalized skill bonuses
	allAttrs := spec.Stats.ToAttributes()
	skills := make(map[string]int, len(spec.Skills))
	for k, v := range spec.Skills {
		key := check.NormalizeSkill(k)
		if isCoreStat(key) {
			continue
		}
		skills[key] = v
	}
	maps.Copy(allAttrs, skills)
	spec.Skills = skills

	a, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	// Set current HP if different from max
	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := a.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return a, nil
}

// LoadPC loads a PC from a JSON file and builds its d20.Actor.
// The filename (without .json extension) overrides any ID in the JSON
func LoadPC(path string) (*PC, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PC file: %w", err)
	}

	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}

	// Filename overrides any ID in the JSON
	spec.ID = strings.TrimSuffix(filepath.Base(path), ".json")

	return NewPCFromSpec(&spec)
}

// Score returns the raw ability score, 10 when unknown.
func (pc *PC) Score(attribute string) int {
	if pc == nil || pc.Actor == nil {
		return 10
	}
	if v, ok := pc.Actor.Attribute(attribute); ok {
		return v
	}
	return 10
}

// AttributeModifier is floor((score-10)/2).
func (pc *PC) AttributeModifier(attribute string) int {
	d := pc.Score(attribute) - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// SkillBonus returns the sheet's bonus for skill, without the governing
// attribute. Attribute names have no bonus.
func (pc *PC) SkillBonus(skill string) int {
	if pc == nil || pc.Actor == nil {
		return 0
	}
	key := check.NormalizeSkill(skill)
	if isCoreStat(key) {
		return 0
	}
	if v, ok := pc.Actor.Attribute(key); ok {
		return v
	}
	return 0
}

// SkillModifier is the full check bonus for skill: the governing
// attribute's modifier plus the skill bonus.
func (pc *PC) SkillModifier(skill string) int {
	return pc.AttributeModifier(check.GoverningAttribute(skill)) + pc.SkillBonus(skill)
}

// CombatBonus sums the sheet's combat modifiers.
func (pc *PC) CombatBonus() int {
	if pc == nil || pc.Actor == nil {
		return 0
	}
	total := 0
	for _, mod := range pc.Actor.GetCombatModifiers() {
		total += mod.Value
	}
	return total
}

// MarshalJSON converts PC back to PCSpec format for API responses
// Reads current runtime state from the Actor
func (pc *PC) MarshalJSON() ([]byte, error) {
	if pc == nil {
		return []byte("null"), nil
	}
	if pc.Actor == nil {
		return json.Marshal(pc.Spec)
	}

	resp := *pc.Spec
	resp.HP = pc.Actor.HP()
	resp.MaxHP = pc.Actor.MaxHP()
	resp.AC = pc.Actor.AC()
	resp.Stats = Stats5e{
		Strength:     pc.Score(check.Strength),
		Dexterity:    pc.Score(check.Dexterity),
		Constitution: pc.Score(check.Constitution),
		Intelligence: pc.Score(check.Intelligence),
		Wisdom:       pc.Score(check.Wisdom),
		Charisma:     pc.Score(check.Charisma),
	}

	resp.CombatModifiers = make(map[string]int)
	for _, mod := range pc.Actor.GetCombatModifiers() {
		resp.CombatModifiers[mod.Reason] = mod.Value
	}

	resp.Skills = make(map[string]int, len(pc.Spec.Skills))
	for key := range pc.Spec.Skills {
		if v, ok := pc.Actor.Attribute(key); ok {
			resp.Skills[key] = v
		}
	}

	return json.Marshal(resp)
}

// UnmarshalJSON reconstructs a PC from JSON and rebuilds its Actor
func (pc *PC) UnmarshalJSON(data []byte) error {
	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}
	a, err := buildActor(&spec)
	if err != nil {
		return fmt.Errorf("failed to rebuild actor: %w", err)
	}
	pc.Spec = &spec
	pc.Actor = a
	return nil
}
