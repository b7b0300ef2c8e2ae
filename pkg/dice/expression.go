// Package dice parses dice notation and rolls dice against an injected
// random source.
package dice

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidNotation is matched by every error returned from Parse.
var ErrInvalidNotation = errors.New("invalid dice notation")

// MaxRollDice caps how many dice a single roll may draw. Parse accepts any
// count; the rolling entry points reject expressions above the cap.
const MaxRollDice = 1000

var notationPattern = regexp.MustCompile(`(?i)^\s*(\d*)d(\d+)\s*([+-]\s*\d+)?\s*$`)

// Expression is a parsed dice expression such as "2d6+3".
type Expression struct {
	Count    int `json:"count"`
	Sides    int `json:"sides"`
	Modifier int `json:"modifier"`
}

// ParseError describes why a notation string was rejected.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid dice notation %q: %s", e.Input, e.Reason)
}

// Is reports ErrInvalidNotation so callers can use errors.Is.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidNotation
}

// Parse parses notation of the form [count]d<sides>[±modifier].
// The count defaults to 1 when omitted. Matching is case-insensitive and
// whitespace around the modifier sign is tolerated.
func Parse(notation string) (Expression, error) {
	if strings.TrimSpace(notation) == "" {
		return Expression{}, &ParseError{Input: notation, Reason: "empty notation"}
	}

	m := notationPattern.FindStringSubmatch(notation)
	if m == nil {
		return Expression{}, &ParseError{Input: notation, Reason: "expected [count]d<sides>[+/-modifier]"}
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, &ParseError{Input: notation, Reason: "count out of range"}
		}
		count = n
	}
	if count < 1 {
		return Expression{}, &ParseError{Input: notation, Reason: "count must be at least 1"}
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, &ParseError{Input: notation, Reason: "sides out of range"}
	}
	if sides < 1 {
		return Expression{}, &ParseError{Input: notation, Reason: "sides must be at least 1"}
	}

	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(strings.Join(strings.Fields(m[3]), ""))
		if err != nil {
			return Expression{}, &ParseError{Input: notation, Reason: "modifier out of range"}
		}
	}

	return Expression{Count: count, Sides: sides, Modifier: modifier}, nil
}

// CheckRollable returns a ParseError when e draws more than MaxRollDice dice.
func (e Expression) CheckRollable() error {
	if e.Count > MaxRollDice {
		return &ParseError{Input: e.String(), Reason: fmt.Sprintf("at most %d dice per roll", MaxRollDice)}
	}
	return nil
}

// MustParse parses notation and panics on error. Intended for package-level
// constants.
func MustParse(notation string) Expression {
	e, err := Parse(notation)
	if err != nil {
		panic("dice: MustParse(" + notation + "): " + err.Error())
	}
	return e
}

// String renders the canonical notation: "2d6", "1d20+5", "3d8-2".
func (e Expression) String() string {
	base := fmt.Sprintf("%dd%d", e.Count, e.Sides)
	if e.Modifier == 0 {
		return base
	}
	return fmt.Sprintf("%s%+d", base, e.Modifier)
}

// WithCount returns a copy of e with a different die count.
func (e Expression) WithCount(count int) Expression {
	e.Count = count
	return e
}

// WithModifier returns a copy of e with a different flat modifier.
func (e Expression) WithModifier(modifier int) Expression {
	e.Modifier = modifier
	return e
}

// Average returns the expected total of the expression.
func (e Expression) Average() float64 {
	return float64(e.Count)*float64(e.Sides+1)/2 + float64(e.Modifier)
}
