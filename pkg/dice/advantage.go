package dice

import (
	"fmt"
	"strings"
)

// Advantage selects how a single-die roll is resolved.
type Advantage int

const (
	Normal Advantage = iota
	WithAdvantage
	WithDisadvantage
)

func (a Advantage) String() string {
	switch a {
	case WithAdvantage:
		return "advantage"
	case WithDisadvantage:
		return "disadvantage"
	default:
		return "normal"
	}
}

// ParseAdvantage accepts "", "normal", "advantage" and "disadvantage".
func ParseAdvantage(s string) (Advantage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "none":
		return Normal, nil
	case "advantage", "adv":
		return WithAdvantage, nil
	case "disadvantage", "dis":
		return WithDisadvantage, nil
	default:
		return Normal, fmt.Errorf("unknown advantage mode: %q", s)
	}
}

func (a Advantage) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Advantage) UnmarshalText(text []byte) error {
	parsed, err := ParseAdvantage(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
