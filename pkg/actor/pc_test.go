package actor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func rogueSpec() *PCSpec {
	return &PCSpec{
		ID:    "vex",
		Name:  "Vex",
		Class: "Rogue",
		Level: 3,
		Stats: Stats5e{
			Strength:     8,
			Dexterity:    17,
			Constitution: 12,
			Intelligence: 14,
			Wisdom:       13,
			Charisma:     10,
		},
		HP:    14,
		MaxHP: 20,
		AC:    15,
		CombatModifiers: map[string]int{
			"dexterity":   3,
			"proficiency": 2,
		},
		Skills: map[string]int{
			"Stealth":         4,
			"sleight of hand": 2,
			"athletics":       1,
		},
	}
}

func TestStats5e_ToAttributes(t *testing.T) {
	stats := Stats5e{Strength: 16, Dexterity: 14, Constitution: 15, Intelligence: 10, Wisdom: 12, Charisma: 8}
	attrs := stats.ToAttributes()

	tests := []struct {
		key      string
		expected int
	}{
		{"strength", 16},
		{"dexterity", 14},
		{"constitution", 15},
		{"intelligence", 10},
		{"wisdom", 12},
		{"charisma", 8},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := attrs[tt.key]; got != tt.expected {
				t.Errorf("ToAttributes()[%q] = %d, want %d", tt.key, got, tt.expected)
			}
		})
	}
}

func TestNewPCFromSpec(t *testing.T) {
	pc, err := NewPCFromSpec(rogueSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec() error = %v", err)
	}
	if pc.Actor.HP() != 14 {
		t.Errorf("Actor.HP() = %d, want 14", pc.Actor.HP())
	}
	if pc.Actor.MaxHP() != 20 {
		t.Errorf("Actor.MaxHP() = %d, want 20", pc.Actor.MaxHP())
	}
	if _, ok := pc.Spec.Skills["sleight_of_hand"]; !ok {
		t.Errorf("skills not normalized: %v", pc.Spec.Skills)
	}
}

func TestNewPCFromSpec_Nil(t *testing.T) {
	if _, err := NewPCFromSpec(nil); err != ErrNilSpec {
		t.Errorf("NewPCFromSpec(nil) error = %v, want %v", err, ErrNilSpec)
	}
}

func TestPC_AttributeModifier(t *testing.T) {
	pc, err := NewPCFromSpec(rogueSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec() error = %v", err)
	}

	tests := []struct {
		attr string
		want int
	}{
		{"strength", -1},
		{"dexterity", 3},
		{"constitution", 1},
		{"intelligence", 2},
		{"wisdom", 1},
		{"charisma", 0},
		{"luck", 0},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			if got := pc.AttributeModifier(tt.attr); got != tt.want {
				t.Errorf("AttributeModifier(%q) = %d, want %d", tt.attr, got, tt.want)
			}
		})
	}
}

func TestPC_AttributeModifier_FloorsOddScores(t *testing.T) {
	spec := rogueSpec()
	spec.Stats.Strength = 7
	spec.Stats.Charisma = 1
	pc, err := NewPCFromSpec(spec)
	if err != nil {
		t.Fatalf("NewPCFromSpec() error = %v", err)
	}
	if got := pc.AttributeModifier("strength"); got != -2 {
		t.Errorf("AttributeModifier(strength 7) = %d, want -2", got)
	}
	if got := pc.AttributeModifier("charisma"); got != -5 {
		t.Errorf("AttributeModifier(charisma 1) = %d, want -5", got)
	}
}

func TestPC_SkillModifiers(t *testing.T) {
	pc, err := NewPCFromSpec(rogueSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec() error = %v", err)
	}

	tests := []struct {
		skill     string
		bonus     int
		fullBonus int
	}{
		{"stealth", 4, 7},
		{"Sleight of Hand", 2, 5},
		{"athletics", 1, 0},
		{"perception", 0, 1},
		{"dexterity", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			if got := pc.SkillBonus(tt.skill); got != tt.bonus {
				t.Errorf("SkillBonus(%q) = %d, want %d", tt.skill, got, tt.bonus)
			}
			if got := pc.SkillModifier(tt.skill); got != tt.fullBonus {
				t.Errorf("SkillModifier(%q) = %d, want %d", tt.skill, got, tt.fullBonus)
			}
		})
	}
}

func TestPC_CombatBonus(t *testing.T) {
	pc, err := NewPCFromSpec(rogueSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec() error = %v", err)
	}
	if got := pc.CombatBonus(); got != 5 {
		t.Errorf("CombatBonus() = %d, want 5", got)
	}

	var empty *PC
	if got := empty.CombatBonus(); got != 0 {
		t.Errorf("nil CombatBonus() = %d, want 0", got)
	}
}

func TestLoadPC(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test_rogue.json")

	spec := rogueSpec()
	spec.ID = "should_be_overridden"
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Failed to marshal test PC: %v", err)
	}
	if err := os.WriteFile(testFile, data, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	pc, err := LoadPC(testFile)
	if err != nil {
		t.Fatalf("LoadPC() error = %v", err)
	}
	if pc.Spec.ID != "test_rogue" {
		t.Errorf("PC.Spec.ID = %q, want %q", pc.Spec.ID, "test_rogue")
	}
	if pc.SkillBonus("stealth") != 4 {
		t.Errorf("SkillBonus(stealth) = %d, want 4", pc.SkillBonus("stealth"))
	}
}

func TestLoadPC_Errors(t *testing.T) {
	tempDir := t.TempDir()

	if _, err := LoadPC(filepath.Join(tempDir, "missing.json")); err == nil {
		t.Error("LoadPC() with nonexistent file should return error")
	}

	invalid := filepath.Join(tempDir, "invalid.json")
	if err := os.WriteFile(invalid, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if _, err := LoadPC(invalid); err == nil {
		t.Error("LoadPC() with invalid JSON should return error")
	}

	// MaxHP must be positive for the d20 actor
	bad := filepath.Join(tempDir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name":"Bad","max_hp":0,"ac":10}`), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if _, err := LoadPC(bad); err == nil {
		t.Error("LoadPC() with invalid actor data should return error")
	}
}

func TestPC_JSONRoundTrip(t *testing.T) {
	pc, err := NewPCFromSpec(rogueSpec())
	if err != nil {
		t.Fatalf("NewPCFromSpec() error = %v", err)
	}
	data, err := json.Marshal(pc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back PC
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Actor.HP() != 14 {
		t.Errorf("HP after round trip = %d, want 14", back.Actor.HP())
	}
	if back.SkillModifier("stealth") != 7 {
		t.Errorf("SkillModifier(stealth) after round trip = %d, want 7", back.SkillModifier("stealth"))
	}
	if back.Spec.CombatModifiers["proficiency"] != 2 {
		t.Errorf("combat modifiers lost: %v", back.Spec.CombatModifiers)
	}
}
