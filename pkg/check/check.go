// Package check resolves 2d10 bell-curve skill checks and saving throws.
//
// Skill checks roll two ten-sided dice, so advantage and disadvantage never
// apply to them. Combat rolls use a single d20 and do honour advantage; the
// asymmetry is intentional.
package check

import "github.com/jwebster45206/branch-engine/pkg/dice"

const (
	// AutoSuccessBase is the threshold offset: DC <= AutoSuccessBase+modifier
	// succeeds without rolling.
	AutoSuccessBase = 10
	// ExpectedRoll is the mean of 2d10, used for the virtual margin of an
	// automatic success.
	ExpectedRoll = 11
)

var checkDice = dice.Expression{Count: 2, Sides: 10}

// Result is the outcome of a skill check or saving throw.
type Result struct {
	DC              int              `json:"dc"`
	Modifier        int              `json:"modifier"`
	Success         bool             `json:"success"`
	Margin          int              `json:"margin"`
	CriticalSuccess bool             `json:"critical_success"`
	CriticalFailure bool             `json:"critical_failure"`
	Advantage       dice.Advantage   `json:"advantage"`
	Tier            Tier             `json:"tier"`
	AutoSuccess     bool             `json:"auto_success"`
	Roll            *dice.RollResult `json:"roll,omitempty"`
}

// Total returns the rolled total, or the virtual total of an automatic
// success.
func (r Result) Total() int {
	return r.DC + r.Margin
}

// Make resolves a skill check against dc.
func Make(roller *dice.Roller, dc, attributeModifier, skillModifier int, adv dice.Advantage) Result {
	total := attributeModifier + skillModifier

	if dc <= AutoSuccessBase+total {
		margin := ExpectedRoll + total - dc
		return Result{
			DC:          dc,
			Modifier:    total,
			Success:     true,
			Margin:      margin,
			Advantage:   adv,
			Tier:        TierFor(margin),
			AutoSuccess: true,
		}
	}

	roll := roller.RollWithAdvantage(checkDice.WithModifier(total), adv)
	return FromRoll(dc, roll, adv)
}

// SavingThrow is a check with no skill component.
func SavingThrow(roller *dice.Roller, dc, saveModifier int, adv dice.Advantage) Result {
	return Make(roller, dc, saveModifier, 0, adv)
}

// FromRoll evaluates an already rolled 2d10 check against dc. Criticals set
// their flags but do not override success.
func FromRoll(dc int, roll dice.RollResult, adv dice.Advantage) Result {
	margin := roll.Total - dc
	return Result{
		DC:              dc,
		Modifier:        roll.Modifier,
		Success:         roll.Total >= dc,
		Margin:          margin,
		CriticalSuccess: roll.IsDoubleMax(),
		CriticalFailure: roll.IsDoubleMin(),
		Advantage:       adv,
		Tier:            TierFor(margin),
		Roll:            &roll,
	}
}
