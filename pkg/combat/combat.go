// Package combat resolves d20 attack, damage and initiative rolls.
package combat

import (
	"fmt"

	"github.com/jwebster45206/branch-engine/pkg/dice"
)

var d20 = dice.Expression{Count: 1, Sides: 20}

// AttackResult is the outcome of one attack roll.
type AttackResult struct {
	Roll         dice.RollResult `json:"roll"`
	AttackBonus  int             `json:"attack_bonus"`
	TargetAC     int             `json:"target_ac"`
	Hit          bool            `json:"hit"`
	CriticalHit  bool            `json:"critical_hit"`
	CriticalMiss bool            `json:"critical_miss"`
}

// DamageResult is the outcome of a damage roll.
type DamageResult struct {
	Roll       dice.RollResult `json:"roll"`
	DamageType string          `json:"damage_type,omitempty"`
	Critical   bool            `json:"critical"`
}

// Total returns the damage dealt, floored at zero.
func (d DamageResult) Total() int {
	if d.Roll.Total < 0 {
		return 0
	}
	return d.Roll.Total
}

// InitiativeResult is an initiative roll.
type InitiativeResult struct {
	Roll     dice.RollResult `json:"roll"`
	Modifier int             `json:"modifier"`
	Score    int             `json:"score"`
}

// Attack rolls 1d20+attackBonus against targetAC. A natural 20 always hits
// and is a critical hit; a natural 1 always misses and is a critical miss.
func Attack(roller *dice.Roller, targetAC, attackBonus int, adv dice.Advantage) AttackResult {
	roll := roller.RollWithAdvantage(d20.WithModifier(attackBonus), adv)

	res := AttackResult{
		Roll:        roll,
		AttackBonus: attackBonus,
		TargetAC:    targetAC,
	}
	switch {
	case roll.IsNaturalMax():
		res.Hit = true
		res.CriticalHit = true
	case roll.IsNaturalMin():
		res.CriticalMiss = true
	default:
		res.Hit = roll.Total >= targetAC
	}
	return res
}

// Damage rolls notation plus bonus. On a critical hit only the die count is
// doubled; the flat modifier is applied once.
func Damage(roller *dice.Roller, notation string, bonus int, isCritical bool, damageType string) (DamageResult, error) {
	base, err := dice.Parse(notation)
	if err != nil {
		return DamageResult{}, fmt.Errorf("damage notation: %w", err)
	}
	// checked before doubling so the count cannot overflow
	if isCritical && base.Count > dice.MaxRollDice/2 {
		return DamageResult{}, fmt.Errorf("damage notation: %w", &dice.ParseError{
			Input:  notation,
			Reason: fmt.Sprintf("a critical doubles %d dice past the %d die cap", base.Count, dice.MaxRollDice),
		})
	}
	expr := DamageExpression(base, bonus, isCritical)
	if err := expr.CheckRollable(); err != nil {
		return DamageResult{}, fmt.Errorf("damage notation: %w", err)
	}
	return DamageResult{
		Roll:       roller.Roll(expr),
		DamageType: damageType,
		Critical:   isCritical,
	}, nil
}

// DamageExpression returns the expression actually rolled for a hit. base
// must already be within half of dice.MaxRollDice when isCritical is set.
func DamageExpression(base dice.Expression, bonus int, isCritical bool) dice.Expression {
	expr := base.WithModifier(base.Modifier + bonus)
	if isCritical {
		expr = expr.WithCount(base.Count * 2)
	}
	return expr
}

// Initiative rolls 1d20 plus a dexterity-derived modifier.
func Initiative(roller *dice.Roller, dexModifier int, adv dice.Advantage) InitiativeResult {
	roll := roller.RollWithAdvantage(d20.WithModifier(dexModifier), adv)
	return InitiativeResult{
		Roll:     roll,
		Modifier: dexModifier,
		Score:    roll.Total,
	}
}
