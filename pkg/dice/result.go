package dice

import (
	"fmt"
	"strings"
)

// RollResult holds the full audit trail of one roll.
//
// Total == sum(Dice) + Modifier. Discarded is set only when advantage or
// disadvantage dropped a die.
type RollResult struct {
	Expression Expression `json:"expression"`
	Dice       []int      `json:"dice"`
	Modifier   int        `json:"modifier"`
	Total      int        `json:"total"`
	Discarded  *int       `json:"discarded,omitempty"`
	Advantage  Advantage  `json:"advantage"`
}

// Natural returns the sum of the kept dice, without the modifier.
func (r RollResult) Natural() int {
	sum := 0
	for _, d := range r.Dice {
		sum += d
	}
	return sum
}

// IsNaturalMax reports a single d20 showing 20.
func (r RollResult) IsNaturalMax() bool {
	return r.Expression.Sides == 20 && len(r.Dice) == 1 && r.Dice[0] == 20
}

// IsNaturalMin reports a single d20 showing 1.
func (r RollResult) IsNaturalMin() bool {
	return r.Expression.Sides == 20 && len(r.Dice) == 1 && r.Dice[0] == 1
}

// IsDoubleMax reports a 2d10 roll with both dice showing 10.
func (r RollResult) IsDoubleMax() bool {
	return r.Expression.Sides == 10 && len(r.Dice) == 2 && r.Dice[0] == 10 && r.Dice[1] == 10
}

// IsDoubleMin reports a 2d10 roll with both dice showing 1.
func (r RollResult) IsDoubleMin() bool {
	return r.Expression.Sides == 10 && len(r.Dice) == 2 && r.Dice[0] == 1 && r.Dice[1] == 1
}

// String renders an audit line such as "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	var sb strings.Builder
	sb.WriteString(r.Expression.String())
	sb.WriteString(" → ")
	sb.WriteString(fmt.Sprintf("%v", r.Dice))
	if r.Discarded != nil {
		sb.WriteString(fmt.Sprintf(" (dropped %d, %s)", *r.Discarded, r.Advantage))
	}
	sb.WriteString(fmt.Sprintf(" %+d = %d", r.Modifier, r.Total))
	return sb.String()
}
