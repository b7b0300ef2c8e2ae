// Package contest resolves opposed d20 rolls between two parties.
//
// The initiator acts; the responder resists. Exact ties go to the responder
// so the status quo holds.
package contest

import (
	"github.com/jwebster45206/branch-engine/pkg/dice"
)

var d20 = dice.Expression{Count: 1, Sides: 20}

// Winner names the side that won a contest.
type Winner string

const (
	InitiatorWins Winner = "initiator"
	ResponderWins Winner = "responder"
)

// Participant is one side of a contest.
type Participant struct {
	Name      string         `json:"name"`
	Skill     string         `json:"skill"`
	Modifier  int            `json:"modifier"`
	Advantage dice.Advantage `json:"advantage"`
}

// Side is one participant's rolled half of a contest.
type Side struct {
	Participant
	Roll  dice.RollResult `json:"roll"`
	Total int             `json:"total"`
}

// Result is a resolved contest. Margin is positive when the initiator is
// ahead.
type Result struct {
	Initiator Side   `json:"initiator"`
	Responder Side   `json:"responder"`
	Winner    Winner `json:"winner"`
	Margin    int    `json:"margin"`
}

// InitiatorWon reports whether the acting side prevailed.
func (r Result) InitiatorWon() bool {
	return r.Winner == InitiatorWins
}

// Resolve rolls both sides and compares totals.
func Resolve(roller *dice.Roller, initiator, responder Participant) Result {
	a := roller.RollWithAdvantage(d20.WithModifier(initiator.Modifier), initiator.Advantage)
	b := roller.RollWithAdvantage(d20.WithModifier(responder.Modifier), responder.Advantage)
	return Compare(
		Side{Participant: initiator, Roll: a, Total: a.Total},
		Side{Participant: responder, Roll: b, Total: b.Total},
	)
}

// Compare decides a contest from two rolled sides.
func Compare(initiator, responder Side) Result {
	res := Result{
		Initiator: initiator,
		Responder: responder,
		Margin:    initiator.Total - responder.Total,
		Winner:    ResponderWins,
	}
	if initiator.Total > responder.Total {
		res.Winner = InitiatorWins
	}
	return res
}
